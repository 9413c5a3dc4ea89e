package daemon

import (
	"context"
	"time"

	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// eventBuffer bounds the events waiting for the loop.
const eventBuffer = 64

// Recorder stores handled events.
type Recorder interface {
	Record(ctx context.Context, ev reminder.Event, effects []reminder.Effect, handleErr error) (int64, error)
}

// Core serializes every event through the engine. Sources only submit;
// the loop goroutine is the only one touching the session.
type Core struct {
	engine    *reminder.Engine
	exec      *Executor
	journal   Recorder
	metrics   *Metrics
	onHandled func(reminder.Event)
	events    chan reminder.Event
	now       func() time.Time
}

// NewCore creates the event loop.
func NewCore(engine *reminder.Engine, exec *Executor, metrics *Metrics) *Core {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Core{
		engine:  engine,
		exec:    exec,
		metrics: metrics,
		events:  make(chan reminder.Event, eventBuffer),
		now:     time.Now,
	}
}

// WithClock replaces the clock used when restoring timers.
func (c *Core) WithClock(now func() time.Time) *Core {
	c.now = now
	return c
}

// WithJournal records every handled event.
func (c *Core) WithJournal(r Recorder) *Core {
	c.journal = r
	return c
}

// OnHandled registers a hook run after each event.
func (c *Core) OnHandled(fn func(reminder.Event)) *Core {
	c.onHandled = fn
	return c
}

// Submit queues an event. It blocks while the queue is full.
func (c *Core) Submit(ctx context.Context, ev reminder.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	select {
	case c.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handle runs one event through the engine and the executor and returns
// the effects that were applied.
func (c *Core) Handle(ctx context.Context, ev reminder.Event) []reminder.Effect {
	ctx = logging.NewEventContext(ctx)

	effects, err := c.engine.HandleEvent(ctx, ev)
	if err != nil {
		logging.ErrorContext(ctx, "event handling failed",
			logging.KeyEvent, ev.String(), logging.KeyError, err)
	}
	if kind := ev.Kind; kind == reminder.EventAutoResponseTimer || kind == reminder.EventReminderTimer {
		c.metrics.RecordTimerFired()
	}
	c.metrics.RecordEvent(string(ev.Kind), err)

	if xerr := c.exec.Apply(ctx, effects); xerr != nil && err == nil {
		err = xerr
	}

	if c.journal != nil {
		if _, jerr := c.journal.Record(ctx, ev, effects, err); jerr != nil {
			logging.WarnContext(ctx, "failed to journal event", logging.KeyError, jerr)
		}
	}
	if c.onHandled != nil {
		c.onHandled(ev)
	}
	return effects
}

// Run handles queued events until ctx is done.
func (c *Core) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if n := len(c.events); n > 0 {
				logging.Warn("dropping queued events on shutdown", logging.KeyCount, n)
			}
			return
		case ev := <-c.events:
			c.Handle(ctx, ev)
		}
	}
}

// Restore applies the effects that re-arm a persisted session.
func (c *Core) Restore(ctx context.Context) {
	effects := c.engine.Restore(c.now())
	if len(effects) == 0 {
		return
	}
	logging.Info("restoring session timers", logging.KeyCount, len(effects))
	if err := c.exec.Apply(ctx, effects); err != nil {
		logging.Warn("failed to restore session timers", logging.KeyError, err)
	}
}
