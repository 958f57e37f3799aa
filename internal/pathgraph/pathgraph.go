// Package pathgraph builds the weighted call-path graph from the
// session map and request table left behind by the worker pool. It
// runs single-threaded after the join barrier: no locking required.
package pathgraph

import (
	"sort"

	"github.com/pathtrace/pathtrace/internal/intern"
	"github.com/pathtrace/pathtrace/internal/sessionmap"
)

// edgeInitCapacity mirrors PATH_GRAPH_VERTEX_INIT_LIM_NEDGES: the
// initial capacity of a new vertex's edge slice.
const edgeInitCapacity = 8

// Edge is one observed (source, successor) transition.
type Edge struct {
	TargetRequestID uint64
	NHits           uint64
	DurationCMA     float64
}

// Vertex is one distinct request seen in any session.
type Vertex struct {
	RequestID uint64
	Edges     []Edge
	NHitsIn   uint64
	NHitsOut  uint64
	MinDepth  uint64
}

// Graph is the finished path graph. Vertices is dense by request id —
// a nil entry is the "null vertex": no session ever visited that
// request id. SortedVertices produces the output-ordering view without
// disturbing this index-by-id invariant, since edges reference targets
// by request id.
type Graph struct {
	Vertices       []*Vertex
	TotalNHits     uint64
	TotalNEdges    uint64
	TotalEdgeNHits uint64
}

// Build consumes every session's accumulated requests and the total
// number of interned requests, producing the finished, sorted graph.
// Each session's requests are stable-sorted by timestamp first (the
// session map itself records arrival order, which may not be
// time order under concurrent scanning).
func Build(sessions []sessionmap.Session, nrequests int) *Graph {
	g := &Graph{Vertices: make([]*Vertex, nrequests)}

	for _, s := range sessions {
		reqs := make([]sessionmap.Request, len(s.Requests))
		copy(reqs, s.Requests)
		sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].TS < reqs[j].TS })

		depth := uint64(1)
		for i := range reqs {
			cur := reqs[i]
			edgeID := intern.InvalidID
			var edgeTS uint64
			if i+1 < len(reqs) {
				edgeID = reqs[i+1].RequestID
				edgeTS = reqs[i+1].TS
			}

			g.amendVertex(depth, cur.RequestID, edgeID, cur.TS, edgeTS)

			if edgeID != intern.InvalidID && edgeID != cur.RequestID {
				depth++
			}
		}
	}

	g.finalize()
	return g
}

// amendVertex records one hit on rid and, if edgeID is not the
// sentinel, an edge rid -> edgeID carrying the observed transition
// duration. The CMA recurrence is CMA_k = (d_k + (k-1)*CMA_{k-1}) / k.
func (g *Graph) amendVertex(depth, rid, edgeID uint64, ts, edgeTS uint64) {
	v := g.Vertices[rid]
	if v == nil {
		v = &Vertex{RequestID: rid, MinDepth: depth, Edges: make([]Edge, 0, edgeInitCapacity)}
		g.Vertices[rid] = v
	} else if depth < v.MinDepth {
		v.MinDepth = depth
	}

	v.NHitsIn++
	g.TotalNHits++

	if edgeID == intern.InvalidID {
		return
	}

	for i := range v.Edges {
		e := &v.Edges[i]
		if e.TargetRequestID == edgeID {
			duration := float64(edgeTS) - float64(ts)
			e.DurationCMA = (duration + float64(e.NHits)*e.DurationCMA) / float64(e.NHits+1)
			e.NHits++
			v.NHitsOut++
			return
		}
	}

	v.Edges = append(v.Edges, Edge{
		TargetRequestID: edgeID,
		NHits:           1,
		DurationCMA:     float64(edgeTS) - float64(ts),
	})
	v.NHitsOut++
	g.TotalNEdges++
}

// finalize sorts every vertex's edges ascending by hit count and
// computes TotalEdgeNHits, since nothing increments a dedicated
// counter for it during the walk.
func (g *Graph) finalize() {
	var totalEdgeHits uint64
	for _, v := range g.Vertices {
		if v == nil {
			continue
		}
		sort.SliceStable(v.Edges, func(i, j int) bool { return v.Edges[i].NHits < v.Edges[j].NHits })
		for _, e := range v.Edges {
			totalEdgeHits += e.NHits
		}
	}
	g.TotalEdgeNHits = totalEdgeHits
}

// SortedVertices returns every non-null vertex ordered ascending by
// (min-depth, nhits-in+nhits-out) — the documented comparator, which
// sorts lightest-first despite reading as "heaviest first" to a casual
// glance (see the open question decisions in DESIGN.md).
func (g *Graph) SortedVertices() []*Vertex {
	out := make([]*Vertex, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		if v != nil {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := out[i], out[j]
		if vi.MinDepth != vj.MinDepth {
			return vi.MinDepth < vj.MinDepth
		}
		return (vi.NHitsIn + vi.NHitsOut) < (vj.NHitsIn + vj.NHitsOut)
	})
	return out
}
