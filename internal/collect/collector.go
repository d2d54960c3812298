// Package collect drives per-source line parsing, applies the recency and
// sender filters and accumulates the messages of a run.
package collect

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/parse"
	"github.com/rs/zerolog"
)

// Criteria decides which parsed messages are kept.
type Criteria struct {
	Cutoff time.Time
	// ExcludedSender drops any sender containing it; "" disables exclusion.
	ExcludedSender string
}

// CriteriaFor keeps the last days days before now.
func CriteriaFor(now time.Time, days int, exclude string) Criteria {
	return Criteria{
		Cutoff:         parse.Naive(now).Add(-time.Duration(days) * 24 * time.Hour),
		ExcludedSender: exclude,
	}
}

// Allows reports whether m passes the filters.
func (c Criteria) Allows(m parse.Message) bool {
	if m.Time.Before(c.Cutoff) {
		return false
	}
	if c.ExcludedSender != "" && strings.Contains(m.Sender, c.ExcludedSender) {
		return false
	}
	return true
}

// SourceStats counts what happened to the lines of one source.
type SourceStats struct {
	Source     string
	Lines      int // lines seen
	Candidates int // lines starting with "["
	Accepted   int
	Rejected   int // candidates the parser refused
	Filtered   int // parsed but dropped by Criteria
}

func (s SourceStats) String() string {
	return fmt.Sprintf("lines=%d candidates=%d accepted=%d rejected=%d filtered=%d",
		s.Lines, s.Candidates, s.Accepted, s.Rejected, s.Filtered)
}

// Collector accumulates messages across sources. Order is fixed only when
// Table is called.
type Collector struct {
	criteria Criteria
	log      zerolog.Logger
	messages []parse.Message
}

func New(criteria Criteria, log zerolog.Logger) *Collector {
	return &Collector{criteria: criteria, log: log}
}

// Add parses the lines of one source and keeps the messages that pass.
func (c *Collector) Add(source string, lines []string) SourceStats {
	stats := SourceStats{Source: source}

	for i, raw := range lines {
		stats.Lines++
		line := strings.TrimSpace(raw)
		if line == "" || !strings.HasPrefix(line, "[") {
			continue
		}
		stats.Candidates++

		msg, err := parse.ParseLine(line)
		if err != nil {
			stats.Rejected++
			var tsErr *parse.TimestampError
			switch {
			case errors.As(err, &tsErr):
				c.log.Warn().Str("source", source).Int("line", i+1).
					Str("date", tsErr.Raw).Err(tsErr.Err).Msg("error parsing date")
			case errors.Is(err, parse.ErrNoMatch):
				c.log.Debug().Str("source", source).Int("line", i+1).Msg("skipped non-message line")
			}
			continue
		}

		if !c.criteria.Allows(msg) {
			stats.Filtered++
			continue
		}
		c.messages = append(c.messages, msg)
		stats.Accepted++
	}

	c.log.Info().Str("source", source).
		Int("lines", stats.Lines).
		Int("messages", stats.Accepted).
		Int("rejected", stats.Rejected).
		Msg("processed chat")
	return stats
}

// Len returns the number of messages kept so far.
func (c *Collector) Len() int { return len(c.messages) }

// Table returns the kept messages sorted by time. Messages with equal
// timestamps stay in the order they were added.
func (c *Collector) Table() []parse.Message {
	out := slices.Clone(c.messages)
	slices.SortStableFunc(out, func(a, b parse.Message) int {
		return a.Time.Compare(b.Time)
	})
	if out == nil {
		out = []parse.Message{}
	}
	return out
}
