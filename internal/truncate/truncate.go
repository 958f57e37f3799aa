// Package truncate loads a truncation pattern file and canonicalises
// raw request bytes by replacing the first matching pattern's hits
// with its alias.
package truncate

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// MaxPatterns bounds the number of patterns a file may contain.
const MaxPatterns = 512

type pattern struct {
	regex *regexp.Regexp
	alias []byte
}

// Table is an ordered, compiled set of truncation patterns. A nil
// *Table, or an empty one from NewEmpty, canonicalises every input to
// itself unchanged, matching the "no pattern file loaded" CLI default.
type Table struct {
	patterns     []pattern
	maxAliasSize int
}

// NewEmpty returns a Table with no patterns: Canonicalize is then the
// identity function.
func NewEmpty() *Table {
	return &Table{}
}

// Load reads a truncation pattern file. Lines are trimmed of leading
// and trailing whitespace; blank lines and lines whose first
// non-space byte is '#' are skipped. A remaining line is either a bare
// PATTERN (its alias is the pattern text) or "$NAME = PATTERN" (alias
// is "$NAME"; any whitespace/"=" around the separator is consumed).
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("truncate: open %s: %w", path, err)
	}
	defer f.Close()

	t := &Table{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if len(t.patterns) >= MaxPatterns {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		alias, patternText := splitAlias(line)
		re, err := regexp.CompilePOSIX(patternText)
		if err != nil {
			return nil, fmt.Errorf("truncate: compile pattern %q: %w", patternText, err)
		}

		t.patterns = append(t.patterns, pattern{regex: re, alias: []byte(alias)})
		if len(alias) > t.maxAliasSize {
			t.maxAliasSize = len(alias)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("truncate: read %s: %w", path, err)
	}

	return t, nil
}

// splitAlias parses a trimmed, non-comment, non-blank line into its
// alias and pattern text.
func splitAlias(line string) (alias, patternText string) {
	if line[0] != '$' {
		return line, line
	}
	end := strings.IndexAny(line, " \t=")
	if end == -1 {
		return line, line
	}
	alias = line[:end]
	rest := strings.TrimLeft(line[end:], " \t=")
	return alias, rest
}

// MaxAliasSize returns the longest alias among the loaded patterns, a
// headroom hint for canonical-buffer sizing.
func (t *Table) MaxAliasSize() int {
	if t == nil {
		return 0
	}
	return t.maxAliasSize
}

// Canonicalize finds the first pattern (in file order) that matches
// anywhere in raw; if none match, raw is returned unchanged. Otherwise
// every non-overlapping match of that single pattern is replaced with
// its alias in one left-to-right pass over raw. The inserted alias text
// is not re-scanned, and matches of other patterns inside the result
// are never replaced.
func (t *Table) Canonicalize(raw []byte) []byte {
	if t == nil || len(t.patterns) == 0 {
		return raw
	}

	var chosen *pattern
	for i := range t.patterns {
		if t.patterns[i].regex.Match(raw) {
			chosen = &t.patterns[i]
			break
		}
	}
	if chosen == nil {
		return raw
	}

	var out []byte
	rest := raw
	for {
		loc := chosen.regex.FindIndex(rest)
		if loc == nil {
			out = append(out, rest...)
			break
		}
		out = append(out, rest[:loc[0]]...)
		out = append(out, chosen.alias...)
		rest = rest[loc[1]:]
	}
	return out
}
