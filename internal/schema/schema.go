// Package schema infers, from a log's first line plus optional user
// overrides, which column holds which field kind and produces the
// ordered ScanPlan every worker applies to every subsequent line.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pathtrace/pathtrace/internal/diag"
	"github.com/pathtrace/pathtrace/internal/fieldpattern"
	"github.com/pathtrace/pathtrace/internal/fieldscan"
)

// FieldInfo describes one column's role in the scan plan.
type FieldInfo struct {
	Kind          fieldpattern.Kind
	ColumnIndex   int
	MatchCount    int
	IsSessionKey  bool
	UserSpecified bool
}

// ScanPlan is the ordered list of FieldInfo a worker applies to every
// line, plus the expected column count used to reject malformed lines.
type ScanPlan struct {
	Fields        []FieldInfo
	ExpectedCols  int
	HasRFC3339    bool
	HasRFC3339NoMS bool
}

// maxFieldsInLine mirrors NALL_FIELDS_MAX: the cap on columns
// considered during inference.
const maxFieldsInLine = fieldscan.MaxFields

// ParseSessionFields parses a comma list of session-key field names;
// only "ipaddr" and "useragent" are valid.
func ParseSessionFields(s string) (map[fieldpattern.Kind]bool, error) {
	out := map[fieldpattern.Kind]bool{}
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		switch tok {
		case "ipaddr":
			out[fieldpattern.IPAddr] = true
		case "useragent":
			out[fieldpattern.UserAgent] = true
		default:
			return nil, fmt.Errorf("schema: invalid session field: %q", tok)
		}
	}
	return out, nil
}

// override is one user-specified kind=column pairing.
type override struct {
	kind  fieldpattern.Kind
	index int
}

// parseOverrides parses an "index-fields" string of the form
// "kind=col,kind=col,...", col zero-based, and bounds every column
// to [0, numColumns).
func parseOverrides(s string, numColumns int) ([]override, error) {
	var out []override
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			return nil, fmt.Errorf("schema: invalid index override %q: expected kind=column", tok)
		}
		name := tok[:eq]
		idxStr := tok[eq+1:]

		kind := fieldpattern.ParseKind(name)
		if kind == fieldpattern.Unknown {
			return nil, fmt.Errorf("schema: unknown field kind: %q", name)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= numColumns {
			return nil, fmt.Errorf("schema: index for field %q out of range: %q", name, idxStr)
		}
		out = append(out, override{kind: kind, index: idx})
	}
	return out, nil
}

// totalInfo tracks, per kind, what column (if any) has claimed it.
type totalInfo struct {
	kind       fieldpattern.Kind
	index      int
	matchCount int
	isSession  bool
	isCustom   bool
	claimed    bool
}

// Infer classifies firstLine's columns against table, honouring
// sessionFields (comma list) and indexOverrides ("kind=col,..."), and
// returns the resulting ScanPlan. Fatal configuration problems are
// reported via diag.Fatalf, matching the original scanner's "no local
// recovery" policy for schema errors.
func Infer(firstLine []byte, table *fieldpattern.Table, sessionFields string, indexOverrides string) *ScanPlan {
	sessionKinds, err := ParseSessionFields(sessionFields)
	if err != nil {
		diag.Fatalf("%v", err)
	}

	fields, _, _ := fieldscan.Tokenise(firstLine, 0, maxFieldsInLine, true)
	if len(fields) == maxFieldsInLine {
		diag.Warnf("found possibly more than %d fields, ignoring the rest", maxFieldsInLine)
	}
	numColumns := len(fields)

	total := make(map[fieldpattern.Kind]*totalInfo, fieldpattern.NumKinds)
	activeFields := make([]fieldpattern.Kind, numColumns)
	for i := range activeFields {
		activeFields[i] = fieldpattern.Unknown
	}

	if indexOverrides != "" {
		overrides, err := parseOverrides(indexOverrides, numColumns)
		if err != nil {
			diag.Fatalf("%v", err)
		}
		for _, ov := range overrides {
			total[ov.kind] = &totalInfo{kind: ov.kind, index: ov.index, isCustom: true, claimed: true}
			activeFields[ov.index] = ov.kind
		}
	}

	for i, f := range fields {
		kind := table.Classify(f.Bytes(firstLine))
		if kind == fieldpattern.Unknown {
			continue
		}
		amend(total, activeFields, kind, i)
	}

	for kind := range sessionKinds {
		ti, ok := total[kind]
		if !ok {
			ti = &totalInfo{kind: kind}
			total[kind] = ti
		}
		ti.isSession = true
	}

	plan := &ScanPlan{ExpectedCols: numColumns}

	if ti, ok := total[fieldpattern.RFC3339]; ok && ti.claimed {
		plan.Fields = append(plan.Fields, toFieldInfo(ti))
		plan.HasRFC3339 = true
	} else if ti, ok := total[fieldpattern.RFC3339NoMS]; ok && ti.claimed {
		plan.Fields = append(plan.Fields, toFieldInfo(ti))
		plan.HasRFC3339NoMS = true
	} else if dti, dok := total[fieldpattern.Date]; dok && dti.claimed {
		if tti, tok := total[fieldpattern.Time]; tok && tti.claimed {
			plan.Fields = append(plan.Fields, toFieldInfo(dti), toFieldInfo(tti))
		} else {
			diag.Fatal("could not find RFC3339 timestamp, nor date and time fields")
		}
	} else {
		diag.Fatal("could not find RFC3339 timestamp, nor date and time fields")
	}

	if sessionKinds[fieldpattern.IPAddr] {
		ti, ok := total[fieldpattern.IPAddr]
		if !ok || !ti.claimed {
			diag.Fatal("could not find IP address field")
		}
		plan.Fields = append(plan.Fields, toFieldInfo(ti))
	}
	if sessionKinds[fieldpattern.UserAgent] {
		ti, ok := total[fieldpattern.UserAgent]
		if !ok || !ti.claimed {
			diag.Fatal("could not find user agent field")
		}
		plan.Fields = append(plan.Fields, toFieldInfo(ti))
	}

	if ti, ok := total[fieldpattern.Request]; ok && ti.claimed {
		plan.Fields = append(plan.Fields, toFieldInfo(ti))
	} else {
		method, mok := total[fieldpattern.Method]
		domain, dok := total[fieldpattern.Domain]
		endpoint, eok := total[fieldpattern.Endpoint]
		if mok && method.claimed && dok && domain.claimed && eok && endpoint.claimed {
			plan.Fields = append(plan.Fields, toFieldInfo(method), toFieldInfo(domain), toFieldInfo(endpoint))
			if proto, pok := total[fieldpattern.Protocol]; pok && proto.claimed {
				plan.Fields = append(plan.Fields, toFieldInfo(proto))
			}
		} else {
			diag.Fatal("could not find request, nor method, domain and endpoint fields")
		}
	}

	return plan
}

func amend(total map[fieldpattern.Kind]*totalInfo, activeFields []fieldpattern.Kind, kind fieldpattern.Kind, idx int) {
	ti, ok := total[kind]
	if ok && ti.isCustom {
		return
	}
	if activeFields[idx] != fieldpattern.Unknown {
		diag.Fatalf("cannot re-use field %q at index %d for field %q",
			activeFields[idx], idx, kind)
	}
	if !ok {
		ti = &totalInfo{kind: kind, index: idx, claimed: true}
		total[kind] = ti
		activeFields[idx] = kind
	}
	ti.matchCount++
	if ti.matchCount > 1 {
		diag.Warnf("multiple matches for field %q, consider using the '--index %s=...' command line option for specifying a custom field index", kind, kind)
	}
}

func toFieldInfo(ti *totalInfo) FieldInfo {
	return FieldInfo{
		Kind:          ti.kind,
		ColumnIndex:   ti.index,
		MatchCount:    ti.matchCount,
		IsSessionKey:  ti.isSession,
		UserSpecified: ti.isCustom,
	}
}
