package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Exports separate the time from the date and the meridiem from the time
// with ordinary spaces, a no-break space or a narrow no-break space.
const sep = `[\s\x{00A0}\x{202F}]+`

const stampPattern = `(\d{1,2})/(\d{1,2})/(\d{2}),` + sep + `(\d{1,2}):(\d{2}):(\d{2})` + sep + `([AaPp][Mm])`

// [M/D/YY, H:MM:SS AM] Name: Message
var (
	lineRe  = regexp.MustCompile(`^\[(` + stampPattern + `)\]\s+([^:]+):\s+(.+)$`)
	stampRe = regexp.MustCompile(`^` + stampPattern + `$`)
)

// centuryPivot splits two-digit years: 69..99 are 1969..1999 and 00..68
// are 2000..2068.
const centuryPivot = 69

// ParseLine turns one line of a chat export into a Message. Lines that do
// not have the message shape return ErrNoMatch; lines whose timestamp does
// not resolve return a *TimestampError.
func ParseLine(line string) (Message, error) {
	if !strings.HasPrefix(line, "[") {
		return Message{}, ErrNoMatch
	}
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Message{}, ErrNoMatch
	}
	// m[1] is the stamp, m[2..8] its parts, m[9] the name, m[10] the body
	name := strings.TrimSpace(m[9])
	body := strings.TrimSpace(m[10])
	if name == "" || body == "" {
		return Message{}, ErrNoMatch
	}

	ts, err := ParseTimestamp(m[1])
	if err != nil {
		return Message{}, err
	}
	return Message{Sender: name, Time: ts, Body: body}, nil
}

// ParseTimestamp resolves "M/D/YY, H:MM:SS AM" on a 12-hour clock.
func ParseTimestamp(raw string) (time.Time, error) {
	m := stampRe.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, &TimestampError{Raw: raw, Err: fmt.Errorf("unexpected layout")}
	}

	var n [6]int
	for i := range n {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return time.Time{}, &TimestampError{Raw: raw, Err: err}
		}
		n[i] = v
	}
	month, day, yy, hour, minute, second := n[0], n[1], n[2], n[3], n[4], n[5]
	year := ExpandYear(yy)

	switch {
	case month < 1 || month > 12:
		return time.Time{}, &TimestampError{Raw: raw, Err: fmt.Errorf("month %d out of range", month)}
	case day < 1 || day > daysIn(time.Month(month), year):
		return time.Time{}, &TimestampError{Raw: raw, Err: fmt.Errorf("day %d out of range", day)}
	case hour < 1 || hour > 12:
		return time.Time{}, &TimestampError{Raw: raw, Err: fmt.Errorf("hour %d out of range", hour)}
	case minute > 59:
		return time.Time{}, &TimestampError{Raw: raw, Err: fmt.Errorf("minute %d out of range", minute)}
	case second > 59:
		return time.Time{}, &TimestampError{Raw: raw, Err: fmt.Errorf("second %d out of range", second)}
	}

	hour %= 12
	if strings.EqualFold(m[7], "PM") {
		hour += 12
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// ExpandYear maps a two-digit year onto 1969..2068.
func ExpandYear(yy int) int {
	if yy >= centuryPivot {
		return 1900 + yy
	}
	return 2000 + yy
}

func daysIn(m time.Month, year int) int {
	// day 0 of the next month is the last day of m
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
