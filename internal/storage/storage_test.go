package storage

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// =============================================================================
// DB Tests
// =============================================================================

func TestOpenClose(t *testing.T) {
	t.Run("in_memory", func(t *testing.T) {
		db, err := Open(Options{InMemory: true})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		assert.NoError(t, db.Close())
	})

	t.Run("empty_path_uses_in_memory", func(t *testing.T) {
		db, err := Open(Options{Path: ""})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		db.Close()
	})

	t.Run("on_disk_survives_reopen", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		db, err := Open(Options{Path: dir})
		require.NoError(t, err)
		assert.Equal(t, dir, db.Path())
		require.NoError(t, NewPrefs(db).SetBool(model.NSDriving, model.KeyIsDrivingPhysical, true))
		require.NoError(t, db.Close())

		db, err = Open(Options{Path: dir})
		require.NoError(t, err)
		defer db.Close()
		assert.True(t, NewPrefs(db).GetBool(model.NSDriving, model.KeyIsDrivingPhysical, false))
	})
}

func TestBadgerLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := logging.DefaultConfig()
	cfg.Output = &buf
	cfg.Level = slog.LevelDebug
	logging.Init(cfg)
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	badgerLogger{}.Warningf("value log %d is corrupt\n", 3)
	out := buf.String()
	assert.Contains(t, out, "value log 3 is corrupt")
	assert.Contains(t, out, "component=badger")
	assert.Contains(t, out, "level=WARN")
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	assert.Contains(t, path, "babyreminder")
	assert.Equal(t, "db", filepath.Base(path))
}

func TestCheckIntegrity(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.SetBytes("a", []byte("1")))
	assert.NoError(t, db.CheckIntegrity())
	assert.NoError(t, db.CheckDiskSpace())
}

func TestGetDiskSpace(t *testing.T) {
	info, err := GetDiskSpace(filepath.Join(t.TempDir(), "missing", "child"))
	require.NoError(t, err)
	assert.Greater(t, info.TotalBytes, uint64(0))
	assert.GreaterOrEqual(t, info.FreePercent(), 0.0)
	assert.Equal(t, 0.0, (&DiskSpaceInfo{}).FreePercent())
}

// =============================================================================
// CRUD Tests
// =============================================================================

func TestBytesRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBytes("missing")
	assert.True(t, IsErrKeyNotFound(err))

	require.NoError(t, db.SetBytes("k", []byte("v")))
	got, err := db.GetBytes("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	exists, err := db.Exists("k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, db.Delete("k"))
	exists, err = db.Exists("k")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, db.Delete("never-existed"))
}

func TestListByPrefix(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.SetBytes("pref:a:1", []byte("1")))
	require.NoError(t, db.SetBytes("pref:a:2", []byte("2")))
	require.NoError(t, db.SetBytes("pref:b:1", []byte("3")))

	keys, err := db.ListByPrefix("pref:a:")
	require.NoError(t, err)
	assert.Equal(t, []string{"pref:a:1", "pref:a:2"}, keys)
}

func TestIsErrKeyNotFound(t *testing.T) {
	assert.True(t, IsErrKeyNotFound(ErrKeyNotFound))
	assert.False(t, IsErrKeyNotFound(errors.New("other")))
	assert.False(t, IsErrKeyNotFound(nil))
}

// =============================================================================
// Prefs Tests
// =============================================================================

func TestPrefsDefaults(t *testing.T) {
	p := NewPrefs(setupTestDB(t))

	assert.True(t, p.GetBool(model.NSMain, model.KeyEnableSound, true))
	assert.Equal(t, 0, p.GetInt(model.NSReminder, model.KeyRepeatCount, 0))
	assert.Equal(t, "en", p.GetString(model.NSMain, model.KeyLanguage, "en"))
	assert.Equal(t, []string{}, p.GetStringSet(model.NSDevices, model.KeyDeviceNames))
}

func TestPrefsRoundTrip(t *testing.T) {
	p := NewPrefs(setupTestDB(t))

	require.NoError(t, p.SetBool(model.NSMain, model.KeyDefaultYes, false))
	assert.False(t, p.GetBool(model.NSMain, model.KeyDefaultYes, true))

	require.NoError(t, p.SetInt(model.NSReminder, model.KeyRepeatCount, 7))
	assert.Equal(t, 7, p.GetInt(model.NSReminder, model.KeyRepeatCount, 0))

	require.NoError(t, p.SetString(model.NSMain, model.KeyLanguage, "he"))
	assert.Equal(t, "he", p.GetString(model.NSMain, model.KeyLanguage, "en"))

	require.NoError(t, p.SetStringSet(model.NSDevices, model.KeyDeviceNames, []string{"Car", "Audi", "Car"}))
	assert.Equal(t, []string{"Audi", "Car"}, p.GetStringSet(model.NSDevices, model.KeyDeviceNames))

	require.NoError(t, p.Delete(model.NSMain, model.KeyLanguage))
	assert.Equal(t, "en", p.GetString(model.NSMain, model.KeyLanguage, "en"))
}

func TestPrefsNamespacesAreIsolated(t *testing.T) {
	p := NewPrefs(setupTestDB(t))

	require.NoError(t, p.SetBool(model.NSDriving, "flag", true))
	assert.False(t, p.GetBool(model.NSMain, "flag", false))
	assert.Equal(t, "pref:driving_prefs:flag", PrefKey(model.NSDriving, "flag"))
}

func TestPrefsTypeMismatchFallsBackToDefault(t *testing.T) {
	p := NewPrefs(setupTestDB(t))

	require.NoError(t, p.SetString(model.NSReminder, model.KeyRepeatCount, "three"))
	assert.Equal(t, 5, p.GetInt(model.NSReminder, model.KeyRepeatCount, 5))
}

func TestPrefsReturnsFreshCopies(t *testing.T) {
	p := NewPrefs(setupTestDB(t))
	require.NoError(t, p.SetStringSet(model.NSDevices, model.KeyDeviceNames, []string{"Car"}))

	first := p.GetStringSet(model.NSDevices, model.KeyDeviceNames)
	first[0] = "mutated"
	assert.Equal(t, []string{"Car"}, p.GetStringSet(model.NSDevices, model.KeyDeviceNames))
}

func TestPrefsRecord(t *testing.T) {
	p := NewPrefs(setupTestDB(t))

	var s model.Session
	found, err := p.GetRecord(model.NSDriving, model.KeySession, &s)
	require.NoError(t, err)
	assert.False(t, found)

	in := model.Session{State: model.SessionAwaitingEndResponse, RepeatCount: 4, Denied: false}
	require.NoError(t, p.SetRecord(model.NSDriving, model.KeySession, in))

	found, err = p.GetRecord(model.NSDriving, model.KeySession, &s)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.SessionAwaitingEndResponse, s.State)
	assert.Equal(t, 4, s.RepeatCount)
}

// =============================================================================
// WebhookRepo Tests
// =============================================================================

func TestWebhookRepoCRUD(t *testing.T) {
	repo := NewWebhookRepo(setupTestDB(t))

	wh := model.NewWebhook("family", model.WebhookTypeDiscord, "https://discord.com/api/webhooks/1/x")
	require.NoError(t, repo.Create(wh))

	exists, err := repo.Exists("family")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.Get("family")
	require.NoError(t, err)
	assert.Equal(t, "webhook:family", got.Key)
	assert.True(t, got.Enabled)

	require.NoError(t, repo.SetEnabled("family", false))
	got, err = repo.Get("family")
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, repo.UpdateLastUsed("family", errors.New("HTTP 500")))
	got, err = repo.Get("family")
	require.NoError(t, err)
	assert.Equal(t, "HTTP 500", got.LastError)
	assert.False(t, got.LastUsed.IsZero())

	require.NoError(t, repo.Delete("family"))
	_, err = repo.Get("family")
	assert.True(t, IsErrKeyNotFound(err))
}

func TestWebhookRepoListFor(t *testing.T) {
	repo := NewWebhookRepo(setupTestDB(t))

	all := model.NewWebhook("all", model.WebhookTypeGeneric, "https://example.com/a")
	urgent := model.NewWebhook("urgent", model.WebhookTypeGeneric, "https://example.com/u")
	urgent.EmergencyOnly = true
	off := model.NewWebhook("off", model.WebhookTypeGeneric, "https://example.com/o")
	off.Enabled = false
	for _, wh := range []*model.Webhook{all, urgent, off} {
		require.NoError(t, repo.Create(wh))
	}

	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 3)

	normal := model.NewNotification(model.NotifyEndDriving, "t", "m")
	matched, err := repo.ListFor(normal)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "all", matched[0].Name)

	emergency := model.NewNotification(model.NotifyEmergency, "t", "m")
	emergency.Channel = model.ChannelEmergency
	matched, err = repo.ListFor(emergency)
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}
