package runtime

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/output"
	"github.com/manav03panchal/babyreminder/internal/service"
	"github.com/manav03panchal/babyreminder/internal/storage"
	"github.com/manav03panchal/babyreminder/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Context Tests
// =============================================================================

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.NotEmpty(t, opts.DBPath)
	assert.False(t, opts.InMemory)
	assert.Equal(t, output.FormatCLI, opts.Format)
	assert.Equal(t, output.ColorAuto, opts.ColorMode)
	assert.False(t, opts.Debug)
}

func TestNew(t *testing.T) {
	ctx, err := New(Options{InMemory: true})
	require.NoError(t, err)
	defer ctx.Close()

	assert.NotNil(t, ctx.Formatter)
	assert.NotNil(t, ctx.Config)
	assert.Nil(t, ctx.db, "database opens lazily")

	db, err := ctx.DB()
	require.NoError(t, err)
	assert.NotNil(t, db)

	again, err := ctx.DB()
	require.NoError(t, err)
	assert.Same(t, db, again)
}

func TestNewWithOptions(t *testing.T) {
	cfg := config.DefaultRuntimeConfig()
	ctx, err := New(Options{
		InMemory:  true,
		Format:    output.FormatJSON,
		ColorMode: output.ColorNever,
		Debug:     true,
		Config:    cfg,
	})
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal(t, output.FormatJSON, ctx.Formatter.Format)
	assert.Equal(t, output.ColorNever, ctx.Formatter.ColorMode)
	assert.True(t, ctx.Debug)
	assert.Same(t, cfg, ctx.Config)
}

func TestNewWithEnvVariable(t *testing.T) {
	t.Setenv(EnvDatabase, ":memory:")

	ctx, err := New(Options{})
	require.NoError(t, err)
	defer ctx.Close()

	assert.True(t, ctx.inMemory)
	db, err := ctx.DB()
	require.NoError(t, err)
	assert.Empty(t, db.Path())
}

func TestNewWithEnvVariablePath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "babyreminder-test.db")
	t.Setenv(EnvDatabase, dbPath)

	ctx, err := New(Options{})
	require.NoError(t, err)
	defer ctx.Close()

	db, err := ctx.DB()
	require.NoError(t, err)
	assert.Equal(t, dbPath, db.Path())
}

func TestContextClose(t *testing.T) {
	ctx, err := New(Options{InMemory: true})
	require.NoError(t, err)
	_, err = ctx.DB()
	require.NoError(t, err)

	assert.NoError(t, ctx.Close())
	assert.Nil(t, ctx.db)

	// Closing twice, or a zero context, is safe.
	assert.NoError(t, ctx.Close())
	nilCtx := &Context{}
	assert.NoError(t, nilCtx.Close())
}

func TestContextDBLocked(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	held, err := storage.Open(storage.Options{Path: dir})
	require.NoError(t, err)
	defer held.Close()

	ctx, err := New(Options{DBPath: dir})
	require.NoError(t, err)
	defer ctx.Close()

	_, err = ctx.DB()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLockHeld))
	assert.Contains(t, errors.GetSuggestion(err), "daemon stop")
}

func TestContextFormatters(t *testing.T) {
	ctx, err := New(Options{InMemory: true})
	require.NoError(t, err)
	defer ctx.Close()

	assert.NotNil(t, ctx.CLIFormatter())
	assert.NotNil(t, ctx.JSONFormatter())
}

func TestContextIsJSON(t *testing.T) {
	t.Run("json_format", func(t *testing.T) {
		ctx, err := New(Options{InMemory: true, Format: output.FormatJSON})
		require.NoError(t, err)
		defer ctx.Close()

		assert.True(t, ctx.IsJSON())
		assert.False(t, ctx.IsCLI())
	})

	t.Run("cli_format", func(t *testing.T) {
		ctx, err := New(Options{InMemory: true, Format: output.FormatCLI})
		require.NoError(t, err)
		defer ctx.Close()

		assert.False(t, ctx.IsJSON())
		assert.True(t, ctx.IsCLI())
	})
}

func TestContextDebugf(t *testing.T) {
	t.Run("debug_enabled", func(t *testing.T) {
		var buf bytes.Buffer
		ctx, err := New(Options{InMemory: true, Debug: true})
		require.NoError(t, err)
		defer ctx.Close()

		ctx.Formatter.Writer = &buf
		ctx.Debugf("test message %s", "arg1")

		assert.Contains(t, buf.String(), "[DEBUG]")
		assert.Contains(t, buf.String(), "test message arg1")
	})

	t.Run("debug_disabled", func(t *testing.T) {
		var buf bytes.Buffer
		ctx, err := New(Options{InMemory: true, Debug: false})
		require.NoError(t, err)
		defer ctx.Close()

		ctx.Formatter.Writer = &buf
		ctx.Debugf("test message")

		assert.Empty(t, buf.String())
	})
}

// =============================================================================
// Backend Tests
// =============================================================================

func TestBackendLocal(t *testing.T) {
	ctx, err := New(Options{InMemory: true})
	require.NoError(t, err)
	defer ctx.Close()

	backend, err := ctx.Backend(context.Background())
	require.NoError(t, err)
	_, ok := backend.(*service.Service)
	assert.True(t, ok, "in-memory contexts never use the daemon")

	require.NoError(t, backend.AddDevice(context.Background(), "My Toyota"))
	devices, err := backend.Devices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"My Toyota"}, devices)

	st, err := backend.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ctx.Config.Reminder.MaxRepeats, st.MaxRepeats)
}

func TestBackendDaemon(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	srv := httptest.NewServer(web.NewAPI(service.NewLocal(db)).NewRouter())
	defer srv.Close()

	ctx, err := New(Options{
		DBPath:  filepath.Join(t.TempDir(), "db"),
		APIAddr: srv.URL,
	})
	require.NoError(t, err)
	defer ctx.Close()

	backend, err := ctx.Backend(context.Background())
	require.NoError(t, err)
	_, ok := backend.(*service.Client)
	require.True(t, ok)
	assert.Nil(t, ctx.db, "the daemon owns the database")

	require.NoError(t, backend.AddDevice(context.Background(), "Car Audio"))
	devices, err := service.NewLocal(db).Devices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Car Audio"}, devices)

	client, err := ctx.DaemonClient(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.URL, client.Addr())
}

func TestBackendDaemonUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	addr := srv.URL
	srv.Close()

	ctx, err := New(Options{
		DBPath:  filepath.Join(t.TempDir(), "db"),
		APIAddr: addr,
	})
	require.NoError(t, err)
	defer ctx.Close()

	backend, err := ctx.Backend(context.Background())
	require.NoError(t, err)
	_, ok := backend.(*service.Service)
	assert.True(t, ok)

	_, err = ctx.DaemonClient(context.Background())
	assert.ErrorIs(t, err, errors.ErrDaemonNotRunning)
}

func TestJournal(t *testing.T) {
	t.Run("opens_configured_path", func(t *testing.T) {
		cfg := config.DefaultRuntimeConfig()
		cfg.Journal.Path = filepath.Join(t.TempDir(), "journal.db")

		ctx, err := New(Options{InMemory: true, Config: cfg})
		require.NoError(t, err)
		defer ctx.Close()

		j, err := ctx.Journal(context.Background())
		require.NoError(t, err)
		entries, err := j.Recent(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := config.DefaultRuntimeConfig()
		cfg.Journal.Path = ""

		ctx, err := New(Options{InMemory: true, Config: cfg})
		require.NoError(t, err)
		defer ctx.Close()

		_, err = ctx.Journal(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsUserError(err))
	})
}

func TestPublisherDisabled(t *testing.T) {
	ctx, err := New(Options{InMemory: true})
	require.NoError(t, err)
	defer ctx.Close()

	_, err = ctx.Publisher()
	assert.ErrorIs(t, err, errors.ErrBrokerUnavailable)
}

// =============================================================================
// Error Tests
// =============================================================================

func TestFormatError(t *testing.T) {
	t.Run("with_suggestion", func(t *testing.T) {
		formatted := FormatError(errors.ErrDaemonNotRunning)
		assert.Contains(t, formatted, "daemon start")
	})

	t.Run("without_suggestion", func(t *testing.T) {
		formatted := FormatError(stderrors.New("custom error"))
		assert.Equal(t, "custom error", formatted)
	})
}

func TestDiskFullError(t *testing.T) {
	base := stderrors.New("write failed")
	err := NewDiskFullError("write", "/data/db", base)

	assert.Contains(t, err.Error(), "disk full during write on /data/db")
	assert.True(t, errors.Is(err, errors.ErrDiskFull))

	noPath := NewDiskFullError("sync", "", base)
	assert.Equal(t, "disk full during sync: write failed", noPath.Error())
}

func TestIsDiskFullError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", errors.ErrDiskFull, true},
		{"enospc", syscall.ENOSPC, true},
		{"wrapped_enospc", fmt.Errorf("sync: %w", syscall.ENOSPC), true},
		{"message", stderrors.New("write /x: no space left on device"), true},
		{"other", stderrors.New("permission denied"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDiskFullError(tt.err))
		})
	}
}

func TestWrapDiskFullError(t *testing.T) {
	assert.NoError(t, WrapDiskFullError(nil, "write", ""))

	other := stderrors.New("boom")
	assert.Same(t, other, WrapDiskFullError(other, "write", ""))

	wrapped := WrapDiskFullError(syscall.ENOSPC, "open", "/data")
	var dfe *DiskFullError
	require.True(t, stderrors.As(wrapped, &dfe))
	assert.Equal(t, "open", dfe.Op)
	assert.Equal(t, "/data", dfe.Path)
}
