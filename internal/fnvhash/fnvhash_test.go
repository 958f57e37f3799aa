package fnvhash

import "testing"

func TestUpdateKnownVectors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want uint64
	}{
		{"empty", "", basis64},
		{"a", "a", 0xaf63dc4c8601ec8c},
		{"foobar", "foobar", 0x85944171f73967e8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Update(Init(), []byte(tc.in))
			if got != tc.want {
				t.Fatalf("Update(%q) = %#x, want %#x", tc.in, got, tc.want)
			}
		})
	}
}

func TestUpdateIPAddrStopsAtPort(t *testing.T) {
	withoutPort := Update(Init(), []byte("10.0.0.1"))
	got := UpdateIPAddr(Init(), []byte("10.0.0.1:8080"))
	if got != withoutPort {
		t.Fatalf("UpdateIPAddr included port: got %#x, want %#x", got, withoutPort)
	}
}

func TestUpdateIPAddrStopsAtWhitespace(t *testing.T) {
	withoutSuffix := Update(Init(), []byte("192.168.1.1"))
	got := UpdateIPAddr(Init(), []byte("192.168.1.1 extra"))
	if got != withoutSuffix {
		t.Fatalf("UpdateIPAddr included trailing bytes: got %#x, want %#x", got, withoutSuffix)
	}
}

func TestUpdateStreamingMatchesSingleUpdate(t *testing.T) {
	a := Update(Update(Init(), []byte("ab")), []byte("c"))
	b := Update(Init(), []byte("abc"))
	if a != b {
		t.Fatalf("streaming update diverged from single update: %#x != %#x", a, b)
	}
}
