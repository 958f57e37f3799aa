// Package fnvhash implements the streaming FNV-1a 64-bit hash used to
// key interned requests and session ids.
package fnvhash

const (
	prime64 uint64 = 1099511628211
	basis64 uint64 = 14695981039346656037
)

// Init returns the FNV-1a 64-bit basis value.
func Init() uint64 {
	return basis64
}

// Update folds b into hash using the FNV-1a recurrence.
func Update(hash uint64, b []byte) uint64 {
	for _, c := range b {
		hash ^= uint64(c)
		hash *= prime64
	}
	return hash
}

// UpdateIPAddr hashes only the address portion of s, stopping at the
// first port separator, whitespace or newline.
func UpdateIPAddr(hash uint64, s []byte) uint64 {
	n := indexAny(s, ": \t\n\v\r")
	if n < 0 {
		n = len(s)
	}
	return Update(hash, s[:n])
}

func indexAny(s []byte, chars string) int {
	for i, c := range s {
		for j := 0; j < len(chars); j++ {
			if c == chars[j] {
				return i
			}
		}
	}
	return -1
}
