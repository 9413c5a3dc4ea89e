package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

var at = time.Date(2026, 10, 12, 8, 15, 0, 0, time.UTC)

func TestRecordAndRecent(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()

	start := reminder.Event{Kind: reminder.EventBluetoothConnected, Device: "My Toyota", At: at, Source: "mqtt"}
	effects := []reminder.Effect{
		reminder.DrivingChanged(true),
		reminder.CancelNotification(model.NotificationEndDriving),
	}
	id, err := j.Record(ctx, start, effects, nil)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	_, err = j.Record(ctx, reminder.Event{Kind: reminder.EventBootCompleted, At: at.Add(time.Minute)}, nil, errors.New("save session: disk full"))
	require.NoError(t, err)

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, string(reminder.EventBootCompleted), entries[0].Kind)
	assert.True(t, entries[0].Failed())
	assert.Equal(t, "-", entries[0].Effects)
	assert.Empty(t, entries[0].Device)

	assert.Equal(t, "My Toyota", entries[1].Device)
	assert.Equal(t, "mqtt", entries[1].Source)
	assert.Equal(t, reminder.Summarize(effects), entries[1].Effects)
	assert.True(t, at.Equal(entries[1].Timestamp))
	assert.False(t, entries[1].Failed())
}

func TestRecentLimitAndFilter(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := j.Record(ctx, reminder.Event{Kind: reminder.EventReminderTimer, At: at.Add(time.Duration(i) * time.Minute)}, nil, nil)
		require.NoError(t, err)
	}
	_, err := j.Record(ctx, reminder.Event{Kind: reminder.EventConfirm, At: at.Add(time.Hour)}, nil, nil)
	require.NoError(t, err)

	entries, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = j.Recent(ctx, 0, string(reminder.EventConfirm))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(reminder.EventConfirm), entries[0].Kind)
}

func TestPrune(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()

	_, err := j.Record(ctx, reminder.Event{Kind: reminder.EventConfirm, At: at.Add(-48 * time.Hour)}, nil, nil)
	require.NoError(t, err)
	_, err = j.Record(ctx, reminder.Event{Kind: reminder.EventDeny, At: at}, nil, nil)
	require.NoError(t, err)

	n, err := j.Prune(ctx, at.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(reminder.EventDeny), entries[0].Kind)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = j.Record(ctx, reminder.Event{Kind: reminder.EventConfirm, At: at}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(ctx, path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, path, j.Path())
}
