// Package gpio watches an ignition sense line and turns its level changes
// into car mode events. The real reader uses the Linux GPIO character
// device; the fake lets tests run without hardware.
package gpio

import (
	"context"
	"time"

	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// Reader reads the logical ignition level.
type Reader interface {
	// Read returns true while the ignition is on.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Watcher debounces ignition readings. A new level must hold for the
// debounce period before it produces an event.
type Watcher struct {
	reader   Reader
	debounce time.Duration

	stable    bool
	candidate bool
	since     time.Time
	pending   bool
}

// NewWatcher creates a watcher. initial is the ignition state the rest of
// the system already believes, so a matching first reading emits nothing.
func NewWatcher(r Reader, debounce time.Duration, initial bool) *Watcher {
	return &Watcher{reader: r, debounce: debounce, stable: initial}
}

// Step feeds one reading taken at now and returns the event to emit, if any.
func (w *Watcher) Step(now time.Time, on bool) (reminder.Event, bool) {
	if on == w.stable {
		w.pending = false
		return reminder.Event{}, false
	}
	if !w.pending || on != w.candidate {
		w.pending = true
		w.candidate = on
		w.since = now
	}
	if now.Sub(w.since) < w.debounce {
		return reminder.Event{}, false
	}

	w.stable = on
	w.pending = false
	kind := reminder.EventCarModeExited
	if on {
		kind = reminder.EventCarModeEntered
	}
	return reminder.Event{Kind: kind, At: now, Source: "gpio"}, true
}

// Stable returns the debounced level.
func (w *Watcher) Stable() bool {
	return w.stable
}

// Run samples the line on every tick until ctx is done. Read errors are
// logged and the sample is skipped.
func (w *Watcher) Run(ctx context.Context, tick <-chan time.Time, emit func(reminder.Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick:
			on, err := w.reader.Read()
			if err != nil {
				logging.Warn("ignition read failed", logging.KeyError, err)
				continue
			}
			if ev, ok := w.Step(now, on); ok {
				logging.Info("ignition changed", logging.KeyEvent, string(ev.Kind))
				emit(ev)
			}
		}
	}
}
