// Package selftest replays a small set of known inputs through the parser,
// collector, reducer and table writer before a run touches real data.
package selftest

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/collect"
	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/Zuo-Peng/wa-contacts/internal/parse"
	"github.com/Zuo-Peng/wa-contacts/internal/table"
	"github.com/rs/zerolog"
)

var sampleLines = []string{
	"[1/1/24, 10:00:00 AM] John: hi",
	"[1/1/24, 11:00:00 AM] John: hi again",
	"[1/2/24, 10:00:00 AM] Mary: hey",
}

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

type check struct {
	name string
	fn   func(dir string) error
}

var checks = []check{
	{"sample lines", checkSample},
	{"invalid month", checkInvalidMonth},
	{"excluded sender", checkExclusion},
	{"century pivot", checkPivot},
	{"one row per person per day", checkOnePerDay},
	{"daily table round trip", checkRoundTrip},
}

// Run executes every check, writing scratch files under dir, and returns
// the joined failures.
func Run(dir string) error {
	var errs []error
	for _, c := range checks {
		if err := c.fn(dir); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

// Count returns the number of checks Run performs.
func Count() int { return len(checks) }

func checkSample(string) error {
	c := collect.New(collect.Criteria{Cutoff: jan1}, zerolog.Nop())
	c.Add("sample", sampleLines)
	msgs := c.Table()
	if len(msgs) != 3 {
		return fmt.Errorf("got %d messages, want 3", len(msgs))
	}
	want := []daily.Interaction{{Name: "John", Day: day(1, 1)}, {Name: "Mary", Day: day(1, 2)}}
	if got := daily.Reduce(msgs); !slices.Equal(got, want) {
		return fmt.Errorf("got daily rows %v, want %v", got, want)
	}
	return nil
}

func checkInvalidMonth(string) error {
	_, err := parse.ParseLine("[13/1/24, 10:00:00 AM] X: y")
	var tsErr *parse.TimestampError
	if !errors.As(err, &tsErr) {
		return fmt.Errorf("got %v, want timestamp rejection", err)
	}
	return nil
}

func checkExclusion(string) error {
	c := collect.New(collect.Criteria{Cutoff: jan1, ExcludedSender: "John"}, zerolog.Nop())
	c.Add("sample", sampleLines)
	msgs := c.Table()
	if len(msgs) != 1 || msgs[0].Sender != "Mary" {
		return fmt.Errorf("got %v, want only Mary", msgs)
	}
	return nil
}

func checkPivot(string) error {
	if y := parse.ExpandYear(68); y != 2068 {
		return fmt.Errorf("68 -> %d, want 2068", y)
	}
	if y := parse.ExpandYear(69); y != 1969 {
		return fmt.Errorf("69 -> %d, want 1969", y)
	}
	return nil
}

func checkOnePerDay(string) error {
	at := func(d, h int) time.Time { return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC) }
	rows := daily.Reduce([]parse.Message{
		{Sender: "John", Time: at(1, 10), Body: "msg1"},
		{Sender: "John", Time: at(1, 11), Body: "msg2"},
		{Sender: "Mary", Time: at(1, 12), Body: "msg3"},
		{Sender: "John", Time: at(2, 10), Body: "msg4"},
		{Sender: "Mary", Time: at(2, 11), Body: "msg5"},
	})
	if len(rows) != 4 {
		return fmt.Errorf("got %d rows, want 4", len(rows))
	}
	if !slices.IsSortedFunc(rows, daily.Compare) {
		return fmt.Errorf("rows not sorted by name and day: %v", rows)
	}
	return nil
}

func checkRoundTrip(dir string) error {
	rows := []daily.Interaction{{Name: "John", Day: day(1, 1)}, {Name: "Mary", Day: day(1, 2)}}
	path := filepath.Join(dir, "selftest_daily.csv")
	if err := table.SaveDaily(path, rows); err != nil {
		return err
	}
	got, err := table.LoadDaily(path)
	if err != nil {
		return err
	}
	if !slices.Equal(got, rows) {
		return fmt.Errorf("reloaded %v, want %v", got, rows)
	}
	return nil
}
