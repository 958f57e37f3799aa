// Package workerpool partitions a byte source into near-equal chunks
// and scans them concurrently, tokenising lines, classifying fields
// per the scan plan, interning requests and recording session hits.
// It is the only place multiple goroutines touch the interner and
// session map; both are internally striped and safe for this.
package workerpool

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pathtrace/pathtrace/internal/fieldpattern"
	"github.com/pathtrace/pathtrace/internal/fieldscan"
	"github.com/pathtrace/pathtrace/internal/fnvhash"
	"github.com/pathtrace/pathtrace/internal/intern"
	"github.com/pathtrace/pathtrace/internal/schema"
	"github.com/pathtrace/pathtrace/internal/sessionmap"
	"github.com/pathtrace/pathtrace/internal/truncate"
	"github.com/pathtrace/pathtrace/internal/tsdecode"
)

const (
	// MTThreshold is the input size below which scanning is forced
	// single-threaded regardless of the requested concurrency.
	MTThreshold = 4 * 1024 * 1024

	// DefaultThreads is used when no concurrency was requested and the
	// logical CPU count can't be determined.
	DefaultThreads = 4

	// MaxThreads bounds both the requested and the CPU-derived thread
	// count.
	MaxThreads = 4096
)

// ResolveThreadCount applies the §4.7 policy: below MTThreshold bytes,
// force a single worker; otherwise use requested (capped at
// MaxThreads) if given, else the logical CPU count (capped, with
// DefaultThreads as a fallback for an unreadable CPU count).
func ResolveThreadCount(requested, inputLen int) int {
	if inputLen < MTThreshold {
		return 1
	}
	if requested > 0 {
		if requested > MaxThreads {
			return MaxThreads
		}
		return requested
	}
	n := runtime.NumCPU()
	if n <= 0 {
		n = DefaultThreads
	}
	if n > MaxThreads {
		n = MaxThreads
	}
	return n
}

type chunk struct {
	start, end int
}

// partition splits [0, totalLen) into nthreads near-equal chunks; the
// last chunk absorbs the remainder.
func partition(totalLen, nthreads int) []chunk {
	chunks := make([]chunk, nthreads)
	size := totalLen / nthreads
	pos := 0
	for i := 0; i < nthreads; i++ {
		start := pos
		end := start + size
		if i == nthreads-1 {
			end = totalLen
		}
		chunks[i] = chunk{start: start, end: end}
		pos = end
	}
	return chunks
}

// Scan partitions src into nthreads chunks and runs one goroutine per
// chunk, each tokenising lines, classifying fields per plan,
// interning requests via patterns, and recording hits into sessions.
// It returns once every worker has joined.
func Scan(src []byte, nthreads int, plan *schema.ScanPlan, patterns *truncate.Table, interner *intern.Interner, sessions *sessionmap.Map) error {
	chunks := partition(len(src), nthreads)

	var g errgroup.Group
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			scanChunk(src, c.start, c.end, i == 0, plan, patterns, interner, sessions)
			return nil
		})
	}
	return g.Wait()
}

// scanChunk walks [start, end) one line at a time. The first chunk's
// first iteration treats cursor as already at a line boundary; every
// other chunk's first iteration must skip past the next newline
// first, so a line straddling a chunk boundary is scanned exactly
// once, by whichever chunk it started in.
func scanChunk(src []byte, start, end int, isFirstChunk bool, plan *schema.ScanPlan, patterns *truncate.Table, interner *intern.Interner, sessions *sessionmap.Map) {
	cursor := start
	skipLineSeek := isFirstChunk

	for cursor < end {
		fields, next, _ := fieldscan.Tokenise(src, cursor, fieldscan.MaxFields, skipLineSeek)
		skipLineSeek = true

		if len(fields) == plan.ExpectedCols {
			processLine(src, fields, plan, patterns, interner, sessions)
		}

		if next <= cursor {
			return
		}
		cursor = next
	}
}

// processLine dispatches every scan-plan entry against its classified
// column, builds the timestamp and request-identity fields, interns
// the request and amends the session map.
func processLine(src []byte, fields []fieldscan.Field, plan *schema.ScanPlan, patterns *truncate.Table, interner *intern.Interner, sessions *sessionmap.Map) {
	var ts, dateMS uint64
	sessionHash := fnvhash.Init()
	var reqInfo intern.RequestInfo

	for _, fi := range plan.Fields {
		fb := fields[fi.ColumnIndex].Bytes(src)

		switch fi.Kind {
		case fieldpattern.RFC3339:
			ts = tsdecode.RFC3339WithMS(fb)
		case fieldpattern.RFC3339NoMS:
			ts = tsdecode.RFC3339NoMS(fb)
		case fieldpattern.Date:
			dateMS, _ = tsdecode.Date(fb)
		case fieldpattern.Time:
			timeMS, _ := tsdecode.Time(fb)
			ts = dateMS + timeMS
		case fieldpattern.IPAddr:
			if fi.IsSessionKey {
				sessionHash = fnvhash.UpdateIPAddr(sessionHash, fb)
			}
		case fieldpattern.UserAgent:
			if fi.IsSessionKey {
				sessionHash = fnvhash.Update(sessionHash, fb)
			}
		case fieldpattern.Request:
			reqInfo.Request = fb
		case fieldpattern.Method:
			reqInfo.Method = fb
		case fieldpattern.Protocol:
			reqInfo.Protocol = fb
		case fieldpattern.Domain:
			reqInfo.Domain = fb
		case fieldpattern.Endpoint:
			reqInfo.Endpoint = fb
		}
	}

	requestID := interner.InternRequest(reqInfo, patterns)
	sessions.Amend(sessionHash, ts, requestID)
}
