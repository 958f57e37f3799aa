package truncate

import (
	"os"
	"path/filepath"
	"testing"
)

func writePatternFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write pattern file: %v", err)
	}
	return path
}

func TestCanonicalizeNoTableIsIdentity(t *testing.T) {
	tbl := NewEmpty()
	raw := []byte("GET /u/AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE")
	got := tbl.Canonicalize(raw)
	if string(got) != string(raw) {
		t.Fatalf("got %q, want identity", got)
	}
}

func TestCanonicalizeAliasedPattern(t *testing.T) {
	path := writePatternFile(t, "$UUID = [0-9a-fA-F-]{36}\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got1 := tbl.Canonicalize([]byte("GET /u/AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE"))
	got2 := tbl.Canonicalize([]byte("GET /u/11111111-2222-3333-4444-555555555555"))

	if string(got1) != "GET /u/$UUID" {
		t.Fatalf("got1 = %q", got1)
	}
	if string(got1) != string(got2) {
		t.Fatalf("got1=%q got2=%q, want equal canonical form", got1, got2)
	}
}

func TestCanonicalizeBarePatternAliasIsItself(t *testing.T) {
	path := writePatternFile(t, "[0-9]+\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := tbl.Canonicalize([]byte("GET /item/42"))
	if string(got) != "GET /item/[0-9]+" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalizeSkipsCommentsAndBlankLines(t *testing.T) {
	path := writePatternFile(t, "# a comment\n\n  \n$N = [0-9]+\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := tbl.Canonicalize([]byte("/item/42"))
	if string(got) != "/item/$N" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalizeOnlyFirstMatchingPatternApplies(t *testing.T) {
	path := writePatternFile(t, "$FOO = foo\n$BAR = bar\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// "bar" matches the second pattern but the first matching pattern
	// in file order for this input is $FOO, and only $FOO's matches
	// are replaced — "bar" itself is untouched even though it could
	// also have matched $BAR.
	got := tbl.Canonicalize([]byte("foobar foo"))
	if string(got) != "$FOObar $FOO" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalizeNoMatchReturnsUnchanged(t *testing.T) {
	path := writePatternFile(t, "$N = [0-9]+\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := tbl.Canonicalize([]byte("no digits here"))
	if string(got) != "no digits here" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	path := writePatternFile(t, "$UUID = [0-9a-fA-F-]{36}\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	once := tbl.Canonicalize([]byte("GET /u/AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE"))
	twice := tbl.Canonicalize(once)
	if string(once) != string(twice) {
		t.Fatalf("canonicalisation is not a fixed point: %q != %q", once, twice)
	}
}
