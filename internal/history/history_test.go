package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/speccheck/internal/result"
	"github.com/seitarof/speccheck/internal/rule"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSet() *result.Set {
	set := result.New()
	set.Record(result.Result{Case: "Circle.exists", Tier: rule.PreCheck, Passed: true})
	set.Record(result.Result{Case: "Circle.type", Tier: rule.StructuralCheck, Message: "It should be public."})
	set.Finish()
	return set
}

func TestRecordAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	set := sampleSet()

	run := FromSet(set, "example.com/shapes", "student", false)
	require.NoError(t, s.Record(ctx, run))

	got, err := s.Get(ctx, set.RunID)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shapes", got.Candidate)
	assert.Equal(t, 1, got.Passed)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, "failure", got.Outcome)
	assert.False(t, got.MayPackage)
	assert.WithinDuration(t, set.Started, got.Started, time.Second)
	require.Len(t, got.Failures, 1)
	assert.Equal(t, Failure{Case: "Circle.type", Tier: "structural", Message: "It should be public."}, got.Failures[0])
}

func TestListNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	older := FromSet(sampleSet(), "a", "student", false)
	older.Started = time.Now().Add(-time.Hour)
	newer := FromSet(sampleSet(), "a", "student", false)
	other := FromSet(sampleSet(), "b", "grading", false)
	for _, r := range []Run{older, newer, other} {
		require.NoError(t, s.Record(ctx, r))
	}

	runs, err := s.List(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, older.ID, runs[1].ID)

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), FromSet(sampleSet(), "a", "student", false)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestMayPackageRecorded(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	set := result.New()
	set.Record(result.Result{Case: "Circle.type", Tier: rule.StructuralCheck, Passed: true})
	set.Record(result.Result{Case: "TestArea", Tier: rule.FunctionalCheck, Message: "wrong area"})
	set.Finish()

	require.NoError(t, s.Record(ctx, FromSet(set, "a", "student", true)))
	runs, err := s.List(ctx, "a", 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].MayPackage)
	assert.Equal(t, "partial", runs[0].Outcome)
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	conns := make([]*sql.Conn, 3)
	for i := range conns {
		c, err := s.conn.Conn(ctx)
		require.NoError(t, err)
		conns[i] = c
	}
	for i, c := range conns {
		var on int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on))
		assert.Equal(t, 1, on, "connection %d", i)
	}
	for _, c := range conns {
		require.NoError(t, c.Close())
	}
}

func TestDeletingRunRemovesFailures(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	set := sampleSet()
	require.NoError(t, s.Record(ctx, FromSet(set, "a", "student", false)))

	_, err := s.conn.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", set.RunID)
	require.NoError(t, err)
	var n int
	require.NoError(t, s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM failures").Scan(&n))
	assert.Zero(t, n)
}
