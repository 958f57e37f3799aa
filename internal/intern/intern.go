// Package intern implements the striped request interner: a
// content-addressed set keyed by canonicalised request bytes, handing
// out dense monotonic request ids.
package intern

import (
	"sync"
	"sync/atomic"

	"github.com/pathtrace/pathtrace/internal/fnvhash"
	"github.com/pathtrace/pathtrace/internal/truncate"
)

// Buckets is the number of striped hash buckets; must be a power of two.
const Buckets = 256

const bucketMask = Buckets - 1

// InvalidID is the sentinel request id meaning "no successor".
const InvalidID uint64 = ^uint64(0)

// RequestLenMax bounds the raw request bytes copied before
// canonicalisation; longer requests are truncated with a warning.
const RequestLenMax = 4096

type entry struct {
	data []byte
	hash uint64
	id   uint64
}

// Interner is a 256-way striped hash set. Once inserted, an entry's
// bytes are immutable, so lookups of already-resolved entries need no
// lock beyond the bucket's own.
type Interner struct {
	buckets [Buckets]struct {
		mu      sync.Mutex
		entries map[string]*entry
	}
	idCounter atomic.Uint64
}

// New returns an empty Interner.
func New() *Interner {
	in := &Interner{}
	for i := range in.buckets {
		in.buckets[i].entries = make(map[string]*entry)
	}
	return in
}

// Intern canonicalises raw via patterns, hashes the canonical bytes,
// and returns the request id for that canonical form — inserting a
// new entry with the next monotonic id if this is the first time it's
// been seen.
func (in *Interner) Intern(raw []byte, patterns *truncate.Table) uint64 {
	canonical := patterns.Canonicalize(raw)
	hash := fnvhash.Update(fnvhash.Init(), canonical)

	bucketIdx := hash & bucketMask
	b := &in.buckets[bucketIdx]
	key := string(canonical)

	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.entries[key]; ok {
		return e.id
	}

	id := in.idCounter.Add(1) - 1
	owned := make([]byte, len(canonical))
	copy(owned, canonical)
	b.entries[key] = &entry{data: owned, hash: hash, id: id}
	return id
}

// Len returns the number of distinct interned requests.
func (in *Interner) Len() int {
	n := 0
	for i := range in.buckets {
		in.buckets[i].mu.Lock()
		n += len(in.buckets[i].entries)
		in.buckets[i].mu.Unlock()
	}
	return n
}

// Table is the dense request-id-indexed view produced after all
// workers have joined.
type Table struct {
	Requests [][]byte
	Hashes   []uint64
}

// GenTable walks every bucket and writes each entry's bytes and hash
// into the slot named by its request id, producing a dense array
// indexed [0, N).
func (in *Interner) GenTable() *Table {
	n := in.Len()
	t := &Table{
		Requests: make([][]byte, n),
		Hashes:   make([]uint64, n),
	}
	for i := range in.buckets {
		b := &in.buckets[i]
		b.mu.Lock()
		for _, e := range b.entries {
			t.Requests[e.id] = e.data
			t.Hashes[e.id] = e.hash
		}
		b.mu.Unlock()
	}
	return t
}
