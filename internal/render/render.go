package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/Zuo-Peng/wa-contacts/internal/parse"
	"github.com/mattn/go-runewidth"
)

const (
	colorReset = "\033[0m"
	colorName  = "\033[1;34m" // bold blue
	colorDay   = "\033[1;32m" // bold green
	colorDim   = "\033[2m"
)

const (
	dayLayout  = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"
)

// Contact is everything the daily table says about one person.
type Contact struct {
	Name string
	Days []time.Time // ascending
}

func (c Contact) First() time.Time { return c.Days[0] }
func (c Contact) Last() time.Time  { return c.Days[len(c.Days)-1] }

// Contacts groups a daily table by name. rows must be sorted by name and
// day, as daily.Reduce and the daily CSV produce them.
func Contacts(rows []daily.Interaction) []Contact {
	var out []Contact
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].Name == r.Name {
			out[n-1].Days = append(out[n-1].Days, r.Day)
			continue
		}
		out = append(out, Contact{Name: r.Name, Days: []time.Time{r.Day}})
	}
	return out
}

type Options struct {
	Color    bool
	MaxWidth int // name column cap (0 = no cap)
}

func (o Options) paint(color, s string) string {
	if !o.Color {
		return s
	}
	return color + s + colorReset
}

// ContactTable renders one aligned line per contact: name, number of days
// with contact, first and last day.
func ContactTable(contacts []Contact, opts Options) string {
	nameW := runewidth.StringWidth("NAME")
	for _, c := range contacts {
		if w := runewidth.StringWidth(c.Name); w > nameW {
			nameW = w
		}
	}
	if opts.MaxWidth > 0 && nameW > opts.MaxWidth {
		nameW = opts.MaxWidth
	}

	var b strings.Builder
	header := fmt.Sprintf("%s  %5s  %-10s  %-10s", pad("NAME", nameW), "DAYS", "FIRST", "LAST")
	b.WriteString(opts.paint(colorDim, header))
	b.WriteString("\n")
	for _, c := range contacts {
		name := pad(runewidth.Truncate(c.Name, nameW, "…"), nameW)
		fmt.Fprintf(&b, "%s  %5d  %s  %s\n",
			opts.paint(colorName, name),
			len(c.Days),
			c.First().Format(dayLayout),
			c.Last().Format(dayLayout),
		)
	}
	return b.String()
}

// ContactDetail lists the days a contact was active, marking the gaps
// between them.
func ContactDetail(c Contact, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", opts.paint(colorName, c.Name))
	fmt.Fprintf(&b, "%s\n", opts.paint(colorDim, fmt.Sprintf("%d days with contact, %s .. %s",
		len(c.Days), c.First().Format(dayLayout), c.Last().Format(dayLayout))))
	b.WriteString("\n")

	for i, d := range c.Days {
		if i > 0 {
			if gap := daysBetween(c.Days[i-1], d) - 1; gap > 0 {
				fmt.Fprintf(&b, "  %s\n", opts.paint(colorDim, fmt.Sprintf("... %d %s without contact ...", gap, plural(gap, "day", "days"))))
			}
		}
		fmt.Fprintf(&b, "  %s  %s\n", opts.paint(colorDay, d.Format(dayLayout)), d.Weekday().String()[:3])
	}
	return b.String()
}

// MessagesHead renders the first n messages, one per line.
func MessagesHead(msgs []parse.Message, n int) string {
	if n > len(msgs) {
		n = len(msgs)
	}
	var b strings.Builder
	for _, m := range msgs[:n] {
		fmt.Fprintf(&b, "%s  %s: %s\n", m.Time.Format(timeLayout), m.Sender, oneLine(m.Body, 80))
	}
	return b.String()
}

// DailyHead renders the first n daily rows, one per line.
func DailyHead(rows []daily.Interaction, n int) string {
	if n > len(rows) {
		n = len(rows)
	}
	var b strings.Builder
	for _, r := range rows[:n] {
		fmt.Fprintf(&b, "%s  %s\n", r.Day.Format(dayLayout), r.Name)
	}
	return b.String()
}

// pad right-pads s with spaces to w visible columns.
func pad(s string, w int) string {
	if gap := w - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func oneLine(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > max {
		s = runewidth.Truncate(s, max, "...")
	}
	return s
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
