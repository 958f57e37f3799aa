package sessionmap

import (
	"sync"
	"testing"
)

func TestAmendCreatesAndAppends(t *testing.T) {
	m := New()
	m.Amend(1, 100, 10)
	m.Amend(1, 200, 11)
	m.Amend(2, 150, 20)

	sessions := m.Sessions()
	byID := map[uint64]Session{}
	for _, s := range sessions {
		byID[s.SessionID] = s
	}

	if len(byID) != 2 {
		t.Fatalf("got %d sessions, want 2", len(byID))
	}
	if len(byID[1].Requests) != 2 {
		t.Fatalf("session 1 has %d requests, want 2", len(byID[1].Requests))
	}
	if len(byID[2].Requests) != 1 {
		t.Fatalf("session 2 has %d requests, want 1", len(byID[2].Requests))
	}
}

func TestAmendGrowsPastInitCapacity(t *testing.T) {
	m := New()
	const n = InitCapacity*2 + 3
	for i := 0; i < n; i++ {
		m.Amend(42, uint64(i), uint64(i))
	}
	sessions := m.Sessions()
	if len(sessions) != 1 || len(sessions[0].Requests) != n {
		t.Fatalf("got %+v, want 1 session with %d requests", sessions, n)
	}
}

func TestAmendIsConcurrencySafe(t *testing.T) {
	m := New()
	const workers = 32
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				sid := uint64(w % 4)
				m.Amend(sid, uint64(i), uint64(w*perWorker+i))
			}
		}()
	}
	wg.Wait()

	total := 0
	for _, s := range m.Sessions() {
		total += len(s.Requests)
	}
	if total != workers*perWorker {
		t.Fatalf("total requests = %d, want %d", total, workers*perWorker)
	}
}
