package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/Zuo-Peng/wa-contacts/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMessages_Format(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMessages(&buf, []parse.Message{
		{Sender: "John", Time: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Body: "hi, there"},
		{Sender: "Mary", Time: time.Date(2024, 1, 2, 22, 5, 9, 0, time.UTC), Body: `say "hey"`},
	})
	require.NoError(t, err)

	want := "Name,Date,Message\n" +
		"John,2024-01-01 10:00:00,\"hi, there\"\n" +
		"Mary,2024-01-02 22:05:09,\"say \"\"hey\"\"\"\n"
	assert.Equal(t, want, buf.String())

	msgs, err := ReadMessages(&buf)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi, there", msgs[0].Body)
	assert.Equal(t, time.Date(2024, 1, 2, 22, 5, 9, 0, time.UTC), msgs[1].Time)
}

func TestWriteDaily_Format(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDaily(&buf, []daily.Interaction{
		{Name: "John", Day: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Mary", Day: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,Date\nJohn,2024-01-01\nMary,2024-01-02\n", buf.String())
}

func TestDaily_RoundTripKeepsOrder(t *testing.T) {
	rows := []daily.Interaction{
		{Name: "Ana", Day: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{Name: "Ana", Day: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Zé, o Grande", Day: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	path := filepath.Join(t.TempDir(), "out", "daily.csv")
	require.NoError(t, SaveDaily(path, rows))

	got, err := LoadDaily(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestReadDaily_EmptyTable(t *testing.T) {
	got, err := ReadDaily(strings.NewReader("Name,Date\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_Errors(t *testing.T) {
	_, err := ReadDaily(strings.NewReader(""))
	assert.ErrorContains(t, err, "missing header")

	_, err = ReadDaily(strings.NewReader("Who,When\nA,2024-01-01\n"))
	assert.ErrorContains(t, err, "unexpected header")

	_, err = ReadDaily(strings.NewReader("Name,Date\nA,01/01/2024\n"))
	assert.ErrorContains(t, err, "row 2")

	_, err = ReadMessages(strings.NewReader("Name,Date,Message\nA,2024-01-01 10:00:00\n"))
	assert.Error(t, err)
}

func TestReadMessages_BOMHeader(t *testing.T) {
	msgs, err := ReadMessages(strings.NewReader("\ufeffName,Date,Message\nA,2024-01-01 10:00:00,x\n"))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "A", msgs[0].Sender)
}

func TestLoadMessages_Missing(t *testing.T) {
	_, err := LoadMessages(filepath.Join(t.TempDir(), "nope.csv"))
	assert.True(t, os.IsNotExist(err))
}
