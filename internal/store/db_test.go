package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "nested", "wac.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDB_SchemaVersion(t *testing.T) {
	db := openTestDB(t)
	ver, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, ver)

	n, err := db.RunCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	latest, err := db.LatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRecordRun_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	run := Run{
		StartedAt:     start,
		FinishedAt:    start.Add(2 * time.Second),
		InputDir:      "conversations",
		Cutoff:        time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		Excluded:      "Me",
		Archives:      2,
		ArchiveErrors: 1,
		Sources:       1,
		Messages:      3,
		Interactions:  2,
	}
	sources := []SourceRow{
		{Source: "John/_chat.txt", Encoding: "utf-8-sig", Lines: 4, Candidates: 3, Accepted: 3},
		{Source: "Bad/_chat.txt", Error: "no candidate encoding decoded the stream"},
	}
	rows := []daily.Interaction{
		{Name: "Mary", Day: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Name: "John", Day: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	id, err := db.RecordRun(run, sources, rows)
	require.NoError(t, err)
	require.Len(t, id, 36)

	got, err := db.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	run.ID = id
	assert.Equal(t, run, *got)

	byPrefix, err := db.GetRun(id[:8])
	require.NoError(t, err)
	require.NotNil(t, byPrefix)
	assert.Equal(t, id, byPrefix.ID)

	gotSources, err := db.RunSources(id)
	require.NoError(t, err)
	assert.Equal(t, sources, gotSources)

	gotDaily, err := db.RunDaily(id)
	require.NoError(t, err)
	assert.Equal(t, []daily.Interaction{rows[1], rows[0]}, gotDaily)
}

func TestRecentRuns_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := db.RecordRun(Run{StartedAt: base.Add(time.Duration(i) * time.Hour)}, nil, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := db.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)

	latest, err := db.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest.ID)

	missing, err := db.GetRun("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecordRun_DuplicateIDRollsBack(t *testing.T) {
	db := openTestDB(t)
	run := Run{ID: "fixed", StartedAt: time.Now()}
	_, err := db.RecordRun(run, []SourceRow{{Source: "a"}}, nil)
	require.NoError(t, err)

	_, err = db.RecordRun(run, []SourceRow{{Source: "b"}}, nil)
	require.Error(t, err)

	sources, err := db.RunSources("fixed")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "a", sources[0].Source)
}
