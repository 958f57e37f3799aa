// Package sessionmap implements the striped session map: each session
// id owns a growable, append-only vector of (request-id, timestamp)
// pairs recorded in arrival order. Ordering by timestamp is deferred
// to the path-graph builder.
package sessionmap

import (
	"encoding/binary"
	"sync"

	"github.com/pathtrace/pathtrace/internal/fnvhash"
)

// Buckets is the number of striped hash buckets; must be a power of two.
const Buckets = 1 << 16

const bucketMask = Buckets - 1

// InitCapacity is the initial capacity of a new session's request
// vector; it doubles on overflow.
const InitCapacity = 8

// Request pairs an interned request id with the millisecond timestamp
// it was observed at.
type Request struct {
	RequestID uint64
	TS        uint64
}

type entry struct {
	sessionID uint64
	requests  []Request
}

// Map is a 65536-way striped hash map keyed by 64-bit session id.
type Map struct {
	buckets [Buckets]struct {
		mu      sync.Mutex
		entries map[uint64]*entry
	}
}

// New returns an empty Map.
func New() *Map {
	m := &Map{}
	for i := range m.buckets {
		m.buckets[i].entries = make(map[uint64]*entry)
	}
	return m
}

func bucketIndex(sessionID uint64) uint64 {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], sessionID)
	h := fnvhash.Update(fnvhash.Init(), raw[:])
	return h & bucketMask
}

// Amend appends {requestID, ts} to the session's vector, creating the
// session entry with initial capacity 8 on first use. Safe for
// concurrent use across sessions and within one session.
func (m *Map) Amend(sessionID uint64, ts uint64, requestID uint64) {
	idx := bucketIndex(sessionID)
	b := &m.buckets[idx]

	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[sessionID]
	if !ok {
		e = &entry{
			sessionID: sessionID,
			requests:  make([]Request, 0, InitCapacity),
		}
		b.entries[sessionID] = e
	}
	e.requests = append(e.requests, Request{RequestID: requestID, TS: ts})
}

// Session is a read-only snapshot of one session's accumulated
// requests, safe to pass to the single-threaded graph builder once
// all workers have joined.
type Session struct {
	SessionID uint64
	Requests  []Request
}

// Sessions returns every session entry across all buckets. Order
// across sessions is unspecified; within a session, requests are in
// arrival order (not yet time-sorted).
func (m *Map) Sessions() []Session {
	var out []Session
	for i := range m.buckets {
		b := &m.buckets[i]
		b.mu.Lock()
		for _, e := range b.entries {
			out = append(out, Session{SessionID: e.sessionID, Requests: e.requests})
		}
		b.mu.Unlock()
	}
	return out
}
