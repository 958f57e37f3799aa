package intern

import (
	"bytes"

	"github.com/pathtrace/pathtrace/internal/diag"
	"github.com/pathtrace/pathtrace/internal/truncate"
)

// RequestInfo carries the raw field bytes a worker collected for one
// line, dispatched there per the line's scan plan. Exactly one of
// Request or (Method, Domain, Endpoint) is populated, matching the
// scan plan's request-representation invariant.
type RequestInfo struct {
	Request  []byte
	Method   []byte
	Protocol []byte
	Domain   []byte
	Endpoint []byte
}

// buildRaw assembles the pre-canonicalisation request bytes from
// info, grounded on the original scanner's add_request_set_entry: when
// a quoted "request" field was matched, it copies from the method
// through the first of '?', '"', whitespace or newline — dropping the
// query string and any trailing protocol version. Otherwise it
// assembles "METHOD SP [PROTOCOL '://'] DOMAIN ENDPOINT".
func buildRaw(info RequestInfo) []byte {
	if info.Request != nil {
		return truncateAtRequestTerminator(info.Request)
	}

	var buf bytes.Buffer
	buf.Write(info.Method)
	buf.WriteByte(' ')
	if info.Protocol != nil {
		buf.Write(info.Protocol)
		buf.WriteString("://")
	}
	buf.Write(info.Domain)
	buf.Write(info.Endpoint)
	return buf.Bytes()
}

// truncateAtRequestTerminator finds the method, the whitespace run
// that follows it, and then the URL up to the first '?', '"',
// whitespace or newline, returning src truncated to that point.
func truncateAtRequestTerminator(src []byte) []byte {
	methodEnd := indexOfByteSet(src, " \t\v")
	if methodEnd < 0 {
		return src
	}

	sepEnd := methodEnd
	for sepEnd < len(src) && isSpaceByte(src[sepEnd]) {
		sepEnd++
	}

	urlEnd := sepEnd
	for urlEnd < len(src) {
		switch src[urlEnd] {
		case '?', '"', ' ', '\t', '\v', '\n':
			return src[:urlEnd]
		}
		urlEnd++
	}
	return src[:urlEnd]
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v'
}

func indexOfByteSet(s []byte, set string) int {
	for i, c := range s {
		for j := 0; j < len(set); j++ {
			if c == set[j] {
				return i
			}
		}
	}
	return -1
}

// InternRequest assembles the raw request bytes from info (§4.4 step
// 1), truncating over-length requests with a warning, then interns
// the canonicalised form via Intern.
func (in *Interner) InternRequest(info RequestInfo, patterns *truncate.Table) uint64 {
	raw := buildRaw(info)
	if len(raw) > RequestLenMax {
		diag.Warnf("truncating request over %d bytes long", RequestLenMax)
		raw = raw[:RequestLenMax]
	}
	return in.Intern(raw, patterns)
}
