package pathgraph

import (
	"testing"

	"github.com/pathtrace/pathtrace/internal/sessionmap"
)

// S1: one session A@1 B@2 A@3 B@4 -> A->B nhits=2 cma=1000, B->A nhits=1
// cma=1000; A.nhits_in=2, B.nhits_in=2; A.min_depth=1, B.min_depth=2.
func TestBuild_S1_AlternatingSession(t *testing.T) {
	const A, B = 0, 1
	sessions := []sessionmap.Session{
		{SessionID: 1, Requests: []sessionmap.Request{
			{RequestID: A, TS: 1000},
			{RequestID: B, TS: 2000},
			{RequestID: A, TS: 3000},
			{RequestID: B, TS: 4000},
		}},
	}

	g := Build(sessions, 2)

	va, vb := g.Vertices[A], g.Vertices[B]
	if va == nil || vb == nil {
		t.Fatalf("expected both vertices present, got A=%v B=%v", va, vb)
	}
	if va.NHitsIn != 2 || vb.NHitsIn != 2 {
		t.Fatalf("nhits_in: A=%d B=%d, want 2 and 2", va.NHitsIn, vb.NHitsIn)
	}
	if va.MinDepth != 1 || vb.MinDepth != 2 {
		t.Fatalf("min_depth: A=%d B=%d, want 1 and 2", va.MinDepth, vb.MinDepth)
	}

	aToB := findEdge(t, va, B)
	if aToB.NHits != 2 || aToB.DurationCMA != 1000 {
		t.Fatalf("A->B = %+v, want nhits=2 cma=1000", aToB)
	}
	bToA := findEdge(t, vb, A)
	if bToA.NHits != 1 || bToA.DurationCMA != 1000 {
		t.Fatalf("B->A = %+v, want nhits=1 cma=1000", bToA)
	}
}

// S2: two sessions, each login->data; edge nhits=2, cma = mean of
// durations; both vertices nhits_in=2; login.min_depth=1 data.min_depth=2.
func TestBuild_S2_TwoSessionsSameTransition(t *testing.T) {
	const login, data = 0, 1
	sessions := []sessionmap.Session{
		{SessionID: 1, Requests: []sessionmap.Request{
			{RequestID: login, TS: 0},
			{RequestID: data, TS: 500},
		}},
		{SessionID: 2, Requests: []sessionmap.Request{
			{RequestID: login, TS: 0},
			{RequestID: data, TS: 1500},
		}},
	}

	g := Build(sessions, 2)
	vlogin, vdata := g.Vertices[login], g.Vertices[data]

	if vlogin.NHitsIn != 2 || vdata.NHitsIn != 2 {
		t.Fatalf("nhits_in: login=%d data=%d, want 2 and 2", vlogin.NHitsIn, vdata.NHitsIn)
	}
	if vlogin.MinDepth != 1 || vdata.MinDepth != 2 {
		t.Fatalf("min_depth: login=%d data=%d, want 1 and 2", vlogin.MinDepth, vdata.MinDepth)
	}

	e := findEdge(t, vlogin, data)
	if e.NHits != 2 {
		t.Fatalf("edge nhits = %d, want 2", e.NHits)
	}
	wantMean := (500.0 + 1500.0) / 2
	if e.DurationCMA != wantMean {
		t.Fatalf("edge cma = %v, want %v", e.DurationCMA, wantMean)
	}
}

// S3: one session health,health,health @ 1,2,3 -> self-edge nhits=2
// cma=1000; nhits_in=3; min_depth=1 (depth never increments).
func TestBuild_S3_SelfLoopDoesNotIncrementDepth(t *testing.T) {
	const health = 0
	sessions := []sessionmap.Session{
		{SessionID: 1, Requests: []sessionmap.Request{
			{RequestID: health, TS: 1000},
			{RequestID: health, TS: 2000},
			{RequestID: health, TS: 3000},
		}},
	}

	g := Build(sessions, 1)
	v := g.Vertices[health]

	if v.NHitsIn != 3 {
		t.Fatalf("nhits_in = %d, want 3", v.NHitsIn)
	}
	if v.MinDepth != 1 {
		t.Fatalf("min_depth = %d, want 1", v.MinDepth)
	}
	self := findEdge(t, v, health)
	if self.NHits != 2 || self.DurationCMA != 1000 {
		t.Fatalf("self edge = %+v, want nhits=2 cma=1000", self)
	}
}

func TestBuild_OutOfOrderArrivalIsTimeSorted(t *testing.T) {
	const A, B = 0, 1
	sessions := []sessionmap.Session{
		{SessionID: 1, Requests: []sessionmap.Request{
			{RequestID: B, TS: 2000},
			{RequestID: A, TS: 1000},
		}},
	}

	g := Build(sessions, 2)
	va := g.Vertices[A]
	e := findEdge(t, va, B)
	if e.NHits != 1 || e.DurationCMA != 1000 {
		t.Fatalf("A->B = %+v, want nhits=1 cma=1000 after time-sorting arrival order", e)
	}
}

func TestSortedVertices_OrdersByMinDepth(t *testing.T) {
	sessions := []sessionmap.Session{
		{SessionID: 1, Requests: []sessionmap.Request{
			{RequestID: 0, TS: 0},
			{RequestID: 1, TS: 1},
			{RequestID: 2, TS: 2},
		}},
	}
	g := Build(sessions, 3)
	sorted := g.SortedVertices()
	if len(sorted) != 3 {
		t.Fatalf("len(sorted) = %d, want 3", len(sorted))
	}
	for i := 0; i+1 < len(sorted); i++ {
		if sorted[i].MinDepth > sorted[i+1].MinDepth {
			t.Fatalf("sorted vertices not ascending by min_depth: %+v", sorted)
		}
	}
}

func findEdge(t *testing.T, v *Vertex, target uint64) Edge {
	t.Helper()
	for _, e := range v.Edges {
		if e.TargetRequestID == target {
			return e
		}
	}
	t.Fatalf("no edge from vertex %d to %d found in %+v", v.RequestID, target, v.Edges)
	return Edge{}
}
