package graphsink

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pathtrace/pathtrace/internal/intern"
	"github.com/pathtrace/pathtrace/internal/pathgraph"
)

const (
	weakFontSize   = 14
	strongFontSize = 3 * weakFontSize
	fontScale      = strongFontSize - weakFontSize

	weakPenWidth   = 2.0
	strongPenWidth = 6.0
	penWidthScale  = strongPenWidth - weakPenWidth

	edgeColorMult      = 0.8
	edgeLabelColorMult = 0.6
)

// DotWriter renders a path graph as a Graphviz DOT digraph, grounded
// on original_source/dot.c: node weight is sqrt(nhits/total-nhits),
// font size and pen width scale linearly with weight, node fill color
// derives from the request hash, and edges are styled dotted for
// self-loops, solid when the source's min-depth doesn't exceed the
// target's, dashed otherwise.
type DotWriter struct{}

// NewDotWriter returns a DotWriter.
func NewDotWriter() *DotWriter { return &DotWriter{} }

// Write renders g using table to resolve request bytes and hashes.
func (d *DotWriter) Write(w io.Writer, g *pathgraph.Graph, table *intern.Table) error {
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, "digraph pathtrace_graph {\n"+
		"    nodesep=1.0;\n"+
		"    rankdir=LR;\n"+
		"    ranksep=1.0;\n\n")

	vertices := g.SortedVertices()
	writeNodes(bw, g, table, vertices)
	writeEdges(bw, g, table, vertices)

	fmt.Fprint(bw, "}\n")
	return bw.Flush()
}

// writeNodes declares every vertex, grouping contiguous runs of equal
// min-depth into "rank=same" subgraphs.
func writeNodes(bw *bufio.Writer, g *pathgraph.Graph, table *intern.Table, vertices []*pathgraph.Vertex) {
	subgraphID := 0
	for i := 0; i < len(vertices); {
		depth := vertices[i].MinDepth
		j := i
		for j < len(vertices) && vertices[j].MinDepth == depth {
			j++
		}

		fmt.Fprintf(bw, "    subgraph s%d {\n        rank = same;\n", subgraphID)
		subgraphID++
		for _, v := range vertices[i:j] {
			writeNode(bw, g, table, v)
		}
		fmt.Fprint(bw, "    }\n\n")

		i = j
	}
}

func writeNode(bw *bufio.Writer, g *pathgraph.Graph, table *intern.Table, v *pathgraph.Vertex) {
	data := escapeLabel(string(table.Requests[v.RequestID]))
	hash := table.Hashes[v.RequestID]

	pctIn := 100 * float64(v.NHitsIn) / float64(g.TotalNHits)
	var pctOut float64
	if v.NHitsIn > 0 {
		pctOut = 100 * float64(v.NHitsOut) / float64(v.NHitsIn)
	}
	weight := dotWeight(g.TotalNHits, v.NHitsIn)
	fontSize := dotFontSize(weight)
	penWidth := dotPenWidth(weight)
	r, gc, b := hashToNodeColor(hash)

	fmt.Fprintf(bw,
		"        r%d [label=\"%s\\n(in %.2f%% (%d), out %.2f%% (%d))\", "+
			"fontsize=%d, style=filled, fillcolor=\"#%02x%02x%02x\", penwidth=%.6f];\n",
		v.RequestID, data, pctIn, v.NHitsIn, pctOut, v.NHitsOut,
		fontSize, r, gc, b, penWidth)
}

// writeEdges links every vertex's edges, after every node has been
// declared. Each target's min-depth is read from g.Vertices by request
// id, independent of the order nodes were written in.
func writeEdges(bw *bufio.Writer, g *pathgraph.Graph, table *intern.Table, vertices []*pathgraph.Vertex) {
	for _, v := range vertices {
		hash := table.Hashes[v.RequestID]
		r, gc, b := hashToNodeColor(hash)
		edgeColor := scaleColor(r, gc, b, edgeColorMult)
		edgeLabelColor := scaleColor(r, gc, b, edgeLabelColorMult)

		for _, e := range v.Edges {
			target := g.Vertices[e.TargetRequestID]

			pct := 100 * float64(e.NHits) / float64(g.TotalEdgeNHits)
			weight := dotWeight(g.TotalNHits, e.NHits)
			fontSize := dotFontSize(weight)
			penWidth := dotPenWidth(weight)
			durationSec := e.DurationCMA / 1000.0

			style := edgeStyle(v, target, e.TargetRequestID)

			fmt.Fprintf(bw,
				"    r%d -> r%d [xlabel=\"%.2f%% (%d)\\n%.1fs\", "+
					"fontsize=%d, style=\"%s\", color=\"#%02x%02x%02x\", "+
					"fontcolor=\"#%02x%02x%02x\", penwidth=%.6f];\n",
				v.RequestID, e.TargetRequestID, pct, e.NHits, durationSec,
				fontSize, style,
				edgeColor[0], edgeColor[1], edgeColor[2],
				edgeLabelColor[0], edgeLabelColor[1], edgeLabelColor[2],
				penWidth)
		}
	}
}

func edgeStyle(source, target *pathgraph.Vertex, targetID uint64) string {
	switch {
	case source.RequestID == targetID:
		return "dotted"
	case target != nil && source.MinDepth <= target.MinDepth:
		return "solid"
	default:
		return "dashed"
	}
}

// dotWeight is sqrt(nhits/total), clamped to [0, 1] against floating
// point overshoot at the boundary.
func dotWeight(total, nhits uint64) float64 {
	if total == 0 {
		return 0
	}
	w := math.Sqrt(float64(nhits) / float64(total))
	if w > 1 {
		w = 1
	}
	if w < 0 {
		w = 0
	}
	return w
}

func dotFontSize(weight float64) int {
	return weakFontSize + int(weight*fontScale)
}

func dotPenWidth(weight float64) float64 {
	return weakPenWidth + weight*penWidthScale
}

// hashToNodeColor derives a pastel RGB triple from the low three
// bytes of hash (bits 16-23, 8-15, 0-7), OR'ing each channel with 0x80.
func hashToNodeColor(hash uint64) (r, g, b uint8) {
	r = 0x80 | uint8(hash>>16)
	g = 0x80 | uint8(hash>>8)
	b = 0x80 | uint8(hash)
	return r, g, b
}

func scaleColor(r, g, b uint8, mult float64) [3]uint8 {
	scale := func(c uint8) uint8 {
		v := float64(c) * mult
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	return [3]uint8{scale(r), scale(g), scale(b)}
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
