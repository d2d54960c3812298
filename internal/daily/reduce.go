// Package daily collapses a message table into one row per person per
// calendar day.
package daily

import (
	"cmp"
	"slices"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/parse"
)

// Interaction records that Name sent at least one message on Day. Day is
// midnight of that calendar day in time.UTC.
type Interaction struct {
	Name string
	Day  time.Time
}

// DayOf truncates t to its calendar day without any zone conversion.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Reduce groups messages by (sender, day) and returns one Interaction per
// group, sorted by name and then by day. Names are compared exactly, so
// "john" and "John " are different people.
func Reduce(messages []parse.Message) []Interaction {
	seen := make(map[Interaction]struct{}, len(messages))
	out := make([]Interaction, 0)
	for _, m := range messages {
		k := Interaction{Name: m.Sender, Day: DayOf(m.Time)}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.SortFunc(out, Compare)
	return out
}

// Compare orders interactions by name, then day.
func Compare(a, b Interaction) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return a.Day.Compare(b.Day)
}
