package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adherence/internal/model"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"day_logs", "support_logs", "snapshots"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found after idempotent opens", table)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestLoadDay_MissingIsEmpty(t *testing.T) {
	s := createTestStore(t)

	log, err := s.LoadDay(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.NotNil(t, log.Meals)
	assert.NotNil(t, log.MajorDeviations)
	assert.False(t, log.Sealed)
}

func TestSaveDay_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	log := model.NewDayLog()
	log.Meals[model.SlotLunch] = model.MergeMeal(model.MealRecord{}, model.MealUpdate{
		Status:         statusPtr(model.StatusPartial),
		ActualConsumed: []string{"Dal"},
	}, testTime)
	log.MajorDeviations = []model.DeviationEntry{{Type: "Party", Quantity: "2 drinks"}}
	log.Context = "travel day"
	log.UpdatedAt = testTime

	require.NoError(t, s.SaveDay(ctx, "2024-01-01", log))

	got, err := s.LoadDay(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartial, got.Meal(model.SlotLunch).Status)
	assert.Equal(t, []string{"Dal"}, got.Meal(model.SlotLunch).ActualConsumed)
	assert.Equal(t, log.MajorDeviations, got.MajorDeviations)
	assert.Equal(t, "travel day", got.Context)
	assert.True(t, got.UpdatedAt.Equal(testTime))

	other, err := s.LoadDay(ctx, "2024-01-02")
	require.NoError(t, err)
	assert.Empty(t, other.Meals, "other dates untouched")
}

func TestSaveDay_Overwrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := model.NewDayLog()
	first.MajorDeviations = []model.DeviationEntry{{Type: "Party"}, {Type: "Travel"}}
	require.NoError(t, s.SaveDay(ctx, "2024-01-01", first))

	second := model.NewDayLog()
	second.MajorDeviations = []model.DeviationEntry{{Type: "Travel"}}
	require.NoError(t, s.SaveDay(ctx, "2024-01-01", second))

	got, err := s.LoadDay(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, []model.DeviationEntry{{Type: "Travel"}}, got.MajorDeviations)
}

func TestSaveSupport_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	hours := 5.5
	log := model.NewSupportLog()
	log.Protocols[model.SupportCoffee] = model.SupportRecord{Status: model.StatusTaken, Timestamp: testTime}
	log.Sleep = model.SleepRecord{WakeTime: "06:30", Hours: &hours, Status: model.StatusTaken}

	require.NoError(t, s.SaveSupport(ctx, "2024-01-01", log))

	got, err := s.LoadSupport(ctx, "2024-01-01")
	require.NoError(t, err)
	r, ok := got.Record(model.SupportCoffee)
	require.True(t, ok)
	assert.Equal(t, model.StatusTaken, r.Status)
	assert.Equal(t, "06:30", got.Sleep.WakeTime)
	require.NotNil(t, got.Sleep.Hours)
	assert.Equal(t, 5.5, *got.Sleep.Hours)
}

func TestLoad_CorruptBlobIsEmptyAndLogged(t *testing.T) {
	var buf bytes.Buffer
	s := createTestStore(t, WithLogger(captureLogger(&buf)))
	ctx := context.Background()

	_, err := s.db.Exec(`INSERT INTO day_logs (date, data, sealed, updated_at) VALUES ('2024-01-01', '{not json', 1, '')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO support_logs (date, data, updated_at) VALUES ('2024-01-01', '[]', '')`)
	require.NoError(t, err)

	day, err := s.LoadDay(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, day.Meals)
	assert.False(t, day.Sealed)

	support, err := s.LoadSupport(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, support.Protocols)

	assert.Contains(t, buf.String(), "discarding unreadable record")
	assert.Contains(t, buf.String(), "kind=day_log")
	assert.Contains(t, buf.String(), "kind=support_log")
}

func TestLoadDay_NullCollections(t *testing.T) {
	s := createTestStore(t)
	_, err := s.db.Exec(`INSERT INTO day_logs (date, data, sealed, updated_at) VALUES ('2024-01-01', '{"records":null,"major_deviations":null,"sealed":false}', 0, '')`)
	require.NoError(t, err)

	day, err := s.LoadDay(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.NotNil(t, day.Meals)
	assert.NotNil(t, day.MajorDeviations)
}

func TestCountSealed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	n, err := s.CountSealed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for i, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		log := model.NewDayLog()
		log.Sealed = i != 1
		require.NoError(t, s.SaveDay(ctx, date, log))
	}

	n, err = s.CountSealed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// unsealing updates the count
	require.NoError(t, s.SaveDay(ctx, "2024-01-03", model.NewDayLog()))
	n, err = s.CountSealed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSnapshots_AppendAndList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 4; i++ {
		snap, err := model.NewSnapshot(
			"snap-"+string(rune('0'+i)), i, "2024-01-01",
			model.SnapshotDayLog, "LOG_MEAL", model.NewDayLog())
		require.NoError(t, err)
		require.NoError(t, s.AppendSnapshot(ctx, snap))
		// re-append is a no-op
		require.NoError(t, s.AppendSnapshot(ctx, snap))
	}

	all, err := s.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, snap := range all {
		assert.Equal(t, int64(i+1), snap.Seq)
	}
	assert.JSONEq(t, `{"major_deviations":[],"records":{},"sealed":false}`, string(all[0].Payload))
	assert.Len(t, all[0].Hash, 64)

	last, err := s.ListSnapshots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, int64(3), last[0].Seq)
	assert.Equal(t, int64(4), last[1].Seq)

	seq, err := s.LastSnapshotSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), seq)
}

func TestSnapshots_EmptyJournal(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	snaps, err := s.ListSnapshots(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, snaps)
	assert.Empty(t, snaps)

	seq, err := s.LastSnapshotSeq(ctx)
	require.NoError(t, err)
	assert.Zero(t, seq)
}

func TestWipe(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	day := model.NewDayLog()
	day.Sealed = true
	require.NoError(t, s.SaveDay(ctx, "2024-01-01", day))
	require.NoError(t, s.SaveSupport(ctx, "2024-01-01", model.NewSupportLog()))
	snap, err := model.NewSnapshot("a", 1, "2024-01-01", model.SnapshotDayLog, "SEAL", day)
	require.NoError(t, err)
	require.NoError(t, s.AppendSnapshot(ctx, snap))

	require.NoError(t, s.Wipe(ctx))

	n, err := s.CountSealed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	snaps, err := s.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, snaps)
	got, err := s.LoadDay(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.False(t, got.Sealed)
}
