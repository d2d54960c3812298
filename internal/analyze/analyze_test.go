package analyze

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/collect"
	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, dir, name string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for n, data := range entries {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, dir, "WhatsApp Chat - John.zip", map[string][]byte{
		"_chat.txt": []byte("[1/1/24, 10:00:00 AM] John: hi\n" +
			"[1/1/24, 11:00:00 AM] John: hi again\n" +
			"which continues here\n" +
			"[12/1/23, 9:00:00 AM] John: too old\n"),
	})
	writeZip(t, dir, "WhatsApp Chat - Mary.zip", map[string][]byte{
		// latin1 bytes: "Mar\xeda" is not valid UTF-8
		"_chat.txt": []byte("[1/2/24, 10:00:00 AM] Mary: hey\n[1/2/24, 10:05:00 AM] Mar\xeda: ol\xe1\n"),
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "WhatsApp Chat - Broken.zip"), []byte("junk"), 0o644))

	var buf bytes.Buffer
	res, err := Run(Options{
		InputDir: dir,
		Criteria: collect.Criteria{Cutoff: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}, zerolog.New(&buf))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.Archives)
	assert.Equal(t, 1, res.Stats.ArchiveErrors)
	assert.Equal(t, 2, res.Stats.Sources)
	assert.Equal(t, 0, res.Stats.DecodeErrors)
	assert.Equal(t, 4, res.Stats.Messages)
	assert.Contains(t, buf.String(), "error extracting archive")

	require.Len(t, res.Sources, 2)
	assert.Equal(t, "John/_chat.txt", res.Sources[0].Source)
	assert.Equal(t, "utf-8-sig", res.Sources[0].Encoding)
	assert.Equal(t, 1, res.Sources[0].Filtered)
	assert.Equal(t, "latin1", res.Sources[1].Encoding)

	var senders []string
	for _, m := range res.Messages {
		senders = append(senders, m.Sender)
	}
	assert.Equal(t, []string{"John", "John", "Mary", "María"}, senders)

	rows := daily.Reduce(res.Messages)
	assert.Len(t, rows, 3)
}

func TestRun_DecodeFailureSkipsSource(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, dir, "a.zip", map[string][]byte{"a.txt": {0xff, 0xfe, '[', 0x80}})
	writeZip(t, dir, "b.zip", map[string][]byte{"b.txt": []byte("[1/2/24, 10:00:00 AM] Bo: yo\n")})

	res, err := Run(Options{InputDir: dir, Encodings: []string{"utf-8"}}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.DecodeErrors)
	require.Len(t, res.Sources, 2)
	assert.Error(t, res.Sources[0].Err)
	assert.NoError(t, res.Sources[1].Err)
	assert.Len(t, res.Messages, 1)
}

func TestRun_SetupErrors(t *testing.T) {
	_, err := Run(Options{InputDir: filepath.Join(t.TempDir(), "missing")}, zerolog.Nop())
	assert.ErrorContains(t, err, "input dir")

	_, err = Run(Options{InputDir: t.TempDir(), Encodings: []string{"nope-42"}}, zerolog.Nop())
	assert.ErrorContains(t, err, "encodings")
}

func TestRun_EmptyDir(t *testing.T) {
	res, err := Run(Options{InputDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Equal(t, "archives=0 archive_errors=0 sources=0 decode_errors=0 lines=0 messages=0", res.Stats.String())
}
