// Package fieldpattern holds the fixed table of anchored POSIX
// extended-regular-expression patterns used to classify a log column
// into a FieldKind, in the fixed order classification tries them.
package fieldpattern

import "regexp"

// Kind is one member of the closed FieldKind set.
type Kind int

const (
	RFC3339 Kind = iota
	RFC3339NoMS
	Date
	Time

	IPAddr
	UserAgent

	Request
	Method
	Protocol
	Domain
	Endpoint

	Unknown
)

// NumKinds is the number of real (non-Unknown) field kinds.
const NumKinds = int(Unknown)

var names = [NumKinds]string{
	RFC3339:     "rfc3339",
	RFC3339NoMS: "rfc3339-no-ms",
	Date:        "date",
	Time:        "time",
	IPAddr:      "ipaddr",
	UserAgent:   "useragent",
	Request:     "request",
	Method:      "method",
	Protocol:    "protocol",
	Domain:      "domain",
	Endpoint:    "endpoint",
}

// String returns the canonical lowercase name of k, or "unknown".
func (k Kind) String() string {
	if k == Unknown {
		return "unknown"
	}
	if k < 0 || int(k) >= NumKinds {
		return "invalid"
	}
	return names[k]
}

// ParseKind maps a canonical name back to its Kind, or Unknown if
// name is not recognised.
func ParseKind(name string) Kind {
	for i, n := range names {
		if n == name {
			return Kind(i)
		}
	}
	return Unknown
}

// classificationOrder is the fixed order field.c tries patterns in:
// timestamp-shaped kinds first, then session-key kinds, then the
// request/method/protocol/domain/endpoint family. RFC3339NoMS comes
// right after RFC3339 since a no-ms timestamp is a strict prefix
// shape of the with-ms one and must never shadow it.
var classificationOrder = []Kind{
	RFC3339,
	RFC3339NoMS,
	Date,
	Time,

	IPAddr,
	UserAgent,

	Request,
	Method,
	Protocol,
	Domain,
	Endpoint,
}

// patternText is the anchored-at-start pattern source for each kind,
// exactly as specified (ported from the original scanner's pattern
// table).
var patternText = [NumKinds]string{
	RFC3339:     `^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}\.[0-9]{3}`,
	RFC3339NoMS: `^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}$`,
	Date:        `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`,
	Time:        `^[0-9]{2}:[0-9]{2}:[0-9]{2}$`,

	IPAddr:    `^[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}`,
	UserAgent: `^(Mozilla|http-kit)`,

	Request:  `^(GET|HEAD|POST|PUT|OPTIONS|PATCH)[ \t]+(http|https)://.+`,
	Method:   `^(GET|HEAD|POST|PUT|OPTIONS|PATCH)$`,
	Protocol: `^(http|https)$`,
	Domain:   `^.+\..+$`,
	Endpoint: `^/.+$`,
}

// Table holds the compiled regex for every field kind; the order
// Classify tries them in is classificationOrder.
type Table struct {
	regexes [NumKinds]*regexp.Regexp
}

// Compile builds a Table by compiling every kind's pattern with Go's
// POSIX-ERE engine, matching the original scanner's dialect choice.
func Compile() (*Table, error) {
	t := &Table{}
	for k := 0; k < NumKinds; k++ {
		re, err := regexp.CompilePOSIX(patternText[k])
		if err != nil {
			return nil, err
		}
		t.regexes[k] = re
	}
	return t, nil
}

// Matches reports whether field matches kind's pattern.
func (t *Table) Matches(kind Kind, field []byte) bool {
	return t.regexes[kind].Match(field)
}

// Classify tries every kind in classificationOrder and returns the
// first one whose pattern matches field, or Unknown if none do.
func (t *Table) Classify(field []byte) Kind {
	for _, k := range classificationOrder {
		if t.regexes[k].Match(field) {
			return k
		}
	}
	return Unknown
}

// Order returns the fixed classification order, in case a caller
// needs to iterate it (e.g. to report which kind shadowed another).
func Order() []Kind {
	out := make([]Kind, len(classificationOrder))
	copy(out, classificationOrder)
	return out
}
