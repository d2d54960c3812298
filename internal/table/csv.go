// Package table reads and writes the two flat CSV outputs: the message
// table (Name, Date, Message) and the daily table (Name, Date).
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/Zuo-Peng/wa-contacts/internal/parse"
)

const (
	MessageDateLayout = "2006-01-02 15:04:05"
	DayLayout         = "2006-01-02"
)

var (
	messageHeader = []string{"Name", "Date", "Message"}
	dailyHeader   = []string{"Name", "Date"}
)

// WriteMessages writes the message table with a header row.
func WriteMessages(w io.Writer, msgs []parse.Message) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(messageHeader); err != nil {
		return err
	}
	for _, m := range msgs {
		if err := cw.Write([]string{m.Sender, m.Time.Format(MessageDateLayout), m.Body}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMessages reads a table written by WriteMessages.
func ReadMessages(r io.Reader) ([]parse.Message, error) {
	rows, err := readRows(r, messageHeader)
	if err != nil {
		return nil, err
	}
	msgs := make([]parse.Message, 0, len(rows))
	for i, row := range rows {
		ts, err := time.Parse(MessageDateLayout, row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: date %q: %w", i+2, row[1], err)
		}
		msgs = append(msgs, parse.Message{Sender: row[0], Time: ts, Body: row[2]})
	}
	return msgs, nil
}

// WriteDaily writes the daily table with a header row.
func WriteDaily(w io.Writer, rows []daily.Interaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dailyHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Name, r.Day.Format(DayLayout)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadDaily reads a table written by WriteDaily.
func ReadDaily(r io.Reader) ([]daily.Interaction, error) {
	rows, err := readRows(r, dailyHeader)
	if err != nil {
		return nil, err
	}
	out := make([]daily.Interaction, 0, len(rows))
	for i, row := range rows {
		d, err := time.Parse(DayLayout, row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: date %q: %w", i+2, row[1], err)
		}
		out = append(out, daily.Interaction{Name: row[0], Day: d})
	}
	return out, nil
}

// readRows checks the header and returns the data rows.
func readRows(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	got, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header %s", strings.Join(header, ","))
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	got[0] = strings.TrimPrefix(got[0], "\ufeff")
	for i, col := range header {
		if strings.TrimSpace(got[i]) != col {
			return nil, fmt.Errorf("unexpected header %q, want %s", strings.Join(got, ","), strings.Join(header, ","))
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

// SaveMessages writes the message table to path atomically.
func SaveMessages(path string, msgs []parse.Message) error {
	return writeFile(path, func(w io.Writer) error { return WriteMessages(w, msgs) })
}

// SaveDaily writes the daily table to path atomically.
func SaveDaily(path string, rows []daily.Interaction) error {
	return writeFile(path, func(w io.Writer) error { return WriteDaily(w, rows) })
}

// LoadMessages reads the message table at path.
func LoadMessages(path string) ([]parse.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	msgs, err := ReadMessages(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return msgs, nil
}

// LoadDaily reads the daily table at path.
func LoadDaily(path string) ([]daily.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadDaily(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// writeFile writes through a temp file in the target directory and renames
// it into place, so readers never see a half-written table.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
