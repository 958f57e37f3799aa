// Package fieldscan implements the three-state field tokeniser that
// splits one log line into positional field views.
package fieldscan

// MaxFields is the maximum number of fields extracted from a single
// line; any remaining fields on an over-long line are dropped.
const MaxFields = 512

// Field is a view into the source byte slice: [Start, Start+Len).
type Field struct {
	Start int
	Len   int
}

// Bytes returns the field's bytes from src.
func (f Field) Bytes(src []byte) []byte {
	return src[f.Start : f.Start+f.Len]
}

type state int

const (
	stateSeek state = iota
	stateStandalone
	stateDoubleQuoted
)

// Tokenise returns a freshly allocated slice of field views found in
// src starting at offset start, stopping at maxFields fields, a
// newline, or the end of src.
//
// If skipLineSeek is false, the scan first advances past the next
// newline (or end of buffer) before looking for fields — used to
// resynchronise a worker's cursor mid-buffer onto a line boundary.
//
// Returns the field views found, the offset just past the consumed
// line terminator (or len(src) if no newline was found before the end
// of input), and whether a newline terminated the line (false means
// end-of-buffer was reached with no trailing newline). When maxFields
// is reached first, the returned offset is where scanning stopped,
// inside the line, and complete is true.
func Tokenise(src []byte, start int, maxFields int, skipLineSeek bool) (fields []Field, next int, complete bool) {
	i := start
	if !skipLineSeek {
		for i < len(src) && src[i] != '\n' {
			i++
		}
		if i < len(src) {
			i++ // past the newline
		}
	}

	fields = make([]Field, 0, maxFields)
	st := stateSeek

	// curIdx points at the in-progress field once one has been opened, so
	// its length can be extended in place without a second append —
	// mirroring the C tokeniser's live pointer into the field array.
	curIdx := -1

	for {
		if len(fields) == maxFields {
			return fields, i, true
		}
		if i >= len(src) {
			return fields, len(src), false
		}

		c := src[i]

		switch st {
		case stateSeek:
			switch c {
			case '\n':
				return fields, i + 1, true
			case '\v', '\t', ' ':
				i++
			case '"':
				i++
				fields = append(fields, Field{Start: i, Len: 0})
				curIdx = len(fields) - 1
				st = stateDoubleQuoted
			default:
				fields = append(fields, Field{Start: i, Len: 1})
				curIdx = len(fields) - 1
				i++
				st = stateStandalone
			}
		case stateStandalone:
			switch c {
			case '\v', '\t', ' ':
				i++
				st = stateSeek
			case '\n':
				return fields, i + 1, true
			default:
				fields[curIdx].Len++
				i++
			}
		case stateDoubleQuoted:
			switch c {
			case '"':
				i++
				st = stateSeek
			case '\n':
				return fields, i + 1, true
			default:
				fields[curIdx].Len++
				i++
			}
		}
	}
}
