package gpio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 10, 12, 7, 30, 0, 0, time.UTC)

// =============================================================================
// FakeReader Tests
// =============================================================================

func TestFakeReaderRepeatsLast(t *testing.T) {
	f := NewFakeReader(false, true)

	v, err := f.Read()
	require.NoError(t, err)
	assert.False(t, v)
	for i := 0; i < 3; i++ {
		v, err = f.Read()
		require.NoError(t, err)
		assert.True(t, v)
	}

	f.Reset()
	v, _ = f.Read()
	assert.False(t, v)
}

func TestFakeReaderErrors(t *testing.T) {
	_, err := NewFakeReader().Read()
	assert.Error(t, err)

	f := NewFakeReader(true)
	f.ReadError = errors.New("bus error")
	_, err = f.Read()
	assert.EqualError(t, err, "bus error")

	require.NoError(t, f.Close())
	assert.True(t, f.Closed)
}

// =============================================================================
// Watcher Tests
// =============================================================================

func TestWatcherDebounce(t *testing.T) {
	w := NewWatcher(nil, time.Second, false)

	_, ok := w.Step(t0, true)
	assert.False(t, ok, "first high sample starts the debounce")

	_, ok = w.Step(t0.Add(500*time.Millisecond), true)
	assert.False(t, ok)

	ev, ok := w.Step(t0.Add(time.Second), true)
	require.True(t, ok)
	assert.Equal(t, reminder.EventCarModeEntered, ev.Kind)
	assert.Equal(t, "gpio", ev.Source)
	assert.True(t, w.Stable())

	_, ok = w.Step(t0.Add(2*time.Second), true)
	assert.False(t, ok, "steady level emits once")
}

func TestWatcherIgnoresGlitch(t *testing.T) {
	w := NewWatcher(nil, time.Second, true)

	_, ok := w.Step(t0, false)
	assert.False(t, ok)
	_, ok = w.Step(t0.Add(300*time.Millisecond), true)
	assert.False(t, ok)
	_, ok = w.Step(t0.Add(1500*time.Millisecond), false)
	assert.False(t, ok, "glitch reset the debounce window")

	ev, ok := w.Step(t0.Add(2500*time.Millisecond), false)
	require.True(t, ok)
	assert.Equal(t, reminder.EventCarModeExited, ev.Kind)
}

func TestWatcherInitialStateMatches(t *testing.T) {
	w := NewWatcher(nil, 0, true)
	_, ok := w.Step(t0, true)
	assert.False(t, ok)
}

func TestWatcherRun(t *testing.T) {
	reader := NewFakeReader(false, true)
	w := NewWatcher(reader, 0, false)

	tick := make(chan time.Time)
	events := make(chan reminder.Event, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, tick, func(ev reminder.Event) { events <- ev })
		close(done)
	}()

	tick <- t0
	tick <- t0.Add(time.Second)

	select {
	case ev := <-events:
		assert.Equal(t, reminder.EventCarModeEntered, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}

	cancel()
	<-done
}
