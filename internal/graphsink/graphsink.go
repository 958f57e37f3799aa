// Package graphsink defines the interface the core hands a finished
// path graph to, and a Graphviz DOT implementation of it.
package graphsink

import (
	"io"

	"github.com/pathtrace/pathtrace/internal/intern"
	"github.com/pathtrace/pathtrace/internal/pathgraph"
)

// Sink consumes a finished path graph plus the request table it
// references, rendering it in some external format. The core is
// otherwise opaque to whatever a Sink does with this data (§6 output
// contract).
type Sink interface {
	Write(w io.Writer, g *pathgraph.Graph, table *intern.Table) error
}

// ByName resolves a --format flag value to a Sink, or false if name is
// not a supported format.
func ByName(name string) (Sink, bool) {
	switch name {
	case "dot-graph":
		return NewDotWriter(), true
	default:
		return nil, false
	}
}
