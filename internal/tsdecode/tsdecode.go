// Package tsdecode implements fast, calendar-unaware timestamp
// fragment decoders that convert RFC3339, date-only and time-only
// fields into a 64-bit millisecond count.
//
// These are deliberately approximate: a year is always 360 days (12
// constant-length 30-day months), so they must not be replaced with a
// calendar-accurate routine — doing so changes the aggregate edge
// durations the path-graph builder reports.
package tsdecode

const (
	msInYear  uint64 = 31104000000
	msInMonth uint64 = 2592000000
	msInDay   uint64 = 86400000
	msInHour  uint64 = 3600000
	msInMin   uint64 = 60000
	msInSec   uint64 = 1000

	epochYear = 1970
)

func digit(b byte) uint64 {
	return uint64(b - '0')
}

func digit2(b []byte) uint64 {
	return digit(b[0])*10 + digit(b[1])
}

// RFC3339WithMS decodes "YYYY-MM-DDTHH:MM:SS.mmm"-shaped bytes (the
// separators themselves are never inspected, only skipped by offset).
func RFC3339WithMS(s []byte) uint64 {
	year := (digit(s[0])*1000 + digit(s[1])*100 + digit(s[2])*10 + digit(s[3])) - epochYear
	s = s[5:] // skip "YYYY-"
	month := digit2(s)
	s = s[3:] // skip "MM-"
	day := digit2(s)
	s = s[3:] // skip "DDT"
	hour := digit2(s)
	s = s[3:] // skip "HH:"
	min := digit2(s)
	s = s[3:] // skip "MM:"
	sec := digit2(s)
	s = s[3:] // skip "SS."
	ms := digit(s[0])*100 + digit(s[1])*10 + digit(s[2])

	return year*msInYear + month*msInMonth + day*msInDay +
		hour*msInHour + min*msInMin + sec*msInSec + ms
}

// RFC3339NoMS decodes "YYYY-MM-DDTHH:MM:SS"-shaped bytes (no
// millisecond fraction).
func RFC3339NoMS(s []byte) uint64 {
	year := (digit(s[0])*1000 + digit(s[1])*100 + digit(s[2])*10 + digit(s[3])) - epochYear
	s = s[5:]
	month := digit2(s)
	s = s[3:]
	day := digit2(s)
	s = s[3:]
	hour := digit2(s)
	s = s[3:]
	min := digit2(s)
	s = s[3:]
	sec := digit2(s)

	return year*msInYear + month*msInMonth + day*msInDay +
		hour*msInHour + min*msInMin + sec*msInSec
}

// Date decodes a "YYYY-MM-DD"-shaped date fragment to its millisecond
// contribution and returns the number of bytes consumed (10).
func Date(s []byte) (ms uint64, consumed int) {
	year := (digit(s[0])*1000 + digit(s[1])*100 + digit(s[2])*10 + digit(s[3])) - epochYear
	s = s[5:]
	month := digit2(s)
	s = s[3:]
	day := digit2(s)

	return year*msInYear + month*msInMonth + day*msInDay, 10
}

// Time decodes a "HH:MM:SS"-shaped time-of-day fragment to its
// millisecond contribution and returns the number of bytes consumed (8).
func Time(s []byte) (ms uint64, consumed int) {
	hour := digit2(s)
	s = s[3:]
	min := digit2(s)
	s = s[3:]
	sec := digit2(s)

	return hour*msInHour + min*msInMin + sec*msInSec, 8
}
