package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/pathtrace/pathtrace/internal/byteview"
	"github.com/pathtrace/pathtrace/internal/fieldpattern"
	"github.com/pathtrace/pathtrace/internal/fieldscan"
	"github.com/pathtrace/pathtrace/internal/graphsink"
	"github.com/pathtrace/pathtrace/internal/intern"
	"github.com/pathtrace/pathtrace/internal/pathgraph"
	"github.com/pathtrace/pathtrace/internal/schema"
	"github.com/pathtrace/pathtrace/internal/sessionmap"
	"github.com/pathtrace/pathtrace/internal/truncate"
	"github.com/pathtrace/pathtrace/internal/workerpool"
)

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("42")).
	Padding(0, 1)

// run drives one end-to-end scan: load the log, infer its schema,
// scan it with the resolved worker pool, build the path graph, and
// render it through the requested sink.
func run(cfg appConfig) error {
	sink, ok := graphsink.ByName(cfg.Format)
	if !ok {
		return fmt.Errorf("unknown output format %q", cfg.Format)
	}

	patterns := truncate.NewEmpty()
	if cfg.TruncatePatterns != "" {
		loaded, err := truncate.Load(cfg.TruncatePatterns)
		if err != nil {
			return err
		}
		patterns = loaded
	}

	view, err := byteview.Open(cfg.LogPath)
	if err != nil {
		return err
	}
	defer view.Close()

	interner := intern.New()
	sessions := sessionmap.New()

	if view.Len() > 0 {
		patternTable, err := fieldpattern.Compile()
		if err != nil {
			return fmt.Errorf("compiling field patterns: %w", err)
		}

		firstLine, _, _ := fieldscan.Tokenise(view.Bytes(), 0, fieldscan.MaxFields, true)
		plan := schema.Infer(fieldLineBytes(view.Bytes(), firstLine), patternTable, cfg.SessionFields, cfg.IndexOverrides)

		if cfg.DumpSchema {
			if err := dumpSchema(os.Stderr, plan); err != nil {
				return err
			}
		}

		nthreads := workerpool.ResolveThreadCount(cfg.Concurrency, view.Len())
		if err := workerpool.Scan(view.Bytes(), nthreads, plan, patterns, interner, sessions); err != nil {
			return err
		}
	} else if cfg.DumpSchema {
		fmt.Fprintln(os.Stderr, "# empty input, no schema inferred")
	}

	table := interner.GenTable()
	sessionList := sessions.Sessions()
	graph := pathgraph.Build(sessionList, len(table.Requests))

	out, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := sink.Write(out, graph, table); err != nil {
		return err
	}

	if cfg.Output != "-" {
		fmt.Fprintln(os.Stderr, bannerStyle.Render(fmt.Sprintf(
			"pathtrace: %d requests, %d sessions -> %s", len(table.Requests), len(sessionList), cfg.Output)))
	}
	return nil
}

// fieldLineBytes returns the slice of src from its start through the
// end of the first line's last field, which schema.Infer re-tokenises
// itself. Bytes after that field (a closing quote, trailing blanks,
// the newline) are not included.
func fieldLineBytes(src []byte, fields []fieldscan.Field) []byte {
	if len(fields) == 0 {
		return nil
	}
	last := fields[len(fields)-1]
	return src[:last.Start+last.Len]
}

func dumpSchema(w io.Writer, plan *schema.ScanPlan) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(plan)
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening output %s: %w", path, err)
	}
	return f, f.Close, nil
}
