package graphsink

import (
	"strings"
	"testing"

	"github.com/pathtrace/pathtrace/internal/intern"
	"github.com/pathtrace/pathtrace/internal/pathgraph"
	"github.com/pathtrace/pathtrace/internal/sessionmap"
)

func TestDotWriterRendersNodesAndEdges(t *testing.T) {
	in := intern.New()

	idLogin := in.Intern([]byte("GET /login"), nil)
	idData := in.Intern([]byte("GET /data"), nil)
	table := in.GenTable()

	sessions := []sessionmap.Session{
		{SessionID: 1, Requests: []sessionmap.Request{
			{RequestID: idLogin, TS: 0},
			{RequestID: idData, TS: 1000},
		}},
	}
	g := pathgraph.Build(sessions, in.Len())

	var buf strings.Builder
	w := NewDotWriter()
	if err := w.Write(&buf, g, table); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "digraph pathtrace_graph {") {
		t.Fatalf("missing digraph header: %q", out[:min(40, len(out))])
	}
	if !strings.Contains(out, "GET /login") || !strings.Contains(out, "GET /data") {
		t.Fatalf("missing request labels in output: %s", out)
	}
	if !strings.Contains(out, "r0 -> r1") && !strings.Contains(out, "r1 -> r0") {
		t.Fatalf("missing edge declaration: %s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "}") {
		t.Fatalf("output doesn't end with closing brace: %s", out)
	}
}

func TestByNameResolvesDotGraph(t *testing.T) {
	sink, ok := ByName("dot-graph")
	if !ok || sink == nil {
		t.Fatalf("expected dot-graph to resolve")
	}
	if _, ok := ByName("unknown-format"); ok {
		t.Fatalf("expected unknown format to fail resolution")
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
