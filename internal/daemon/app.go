package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/manav03panchal/babyreminder/internal/alarm"
	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/driving"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/gpio"
	"github.com/manav03panchal/babyreminder/internal/journal"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/mqtt"
	"github.com/manav03panchal/babyreminder/internal/notify"
	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/manav03panchal/babyreminder/internal/schedule"
	"github.com/manav03panchal/babyreminder/internal/service"
	"github.com/manav03panchal/babyreminder/internal/storage"
	"github.com/manav03panchal/babyreminder/internal/web"
)

// journalRetention bounds how long handled events are kept.
const journalRetention = 30 * 24 * time.Hour

// Options are the pieces of an App that tests or the command line can
// replace. Nil fields are built from the runtime config.
type Options struct {
	// Broker overrides dialing cfg.MQTT.
	Broker mqtt.Client
	// GPIO overrides opening the ignition line.
	GPIO gpio.Reader
	// Journal overrides opening cfg.Journal.Path.
	Journal *journal.Journal
	// LogFile is rotated periodically when set.
	LogFile *LogFile
	// APIAddr overrides cfg.API.Addr. "-" disables the API.
	APIAddr string
	Version string
}

// App is the running reminder daemon.
type App struct {
	cfg *config.RuntimeConfig
	db  *storage.DB

	prefs    *storage.Prefs
	tracker  *driving.Tracker
	rules    *schedule.Store
	engine   *reminder.Engine
	queue    *notify.RetryQueue
	dispatch *notify.Dispatcher
	broker   mqtt.Client
	gpio     gpio.Reader
	alarms   *alarm.Scheduler
	metrics  *Metrics
	health   *HealthChecker
	core     *Core
	journal  *journal.Journal
	service  *service.Service
	api      *web.Server
	logFile  *LogFile
	apiAddr  string

	stateMu   sync.Mutex
	lastState mqtt.StatePayload
	published bool
}

// NewApp wires the daemon around an open database. Optional outputs that
// fail to start (broker, journal, GPIO) are logged and skipped.
func NewApp(ctx context.Context, cfg *config.RuntimeConfig, db *storage.DB, opts Options) *App {
	a := &App{
		cfg:     cfg,
		db:      db,
		prefs:   storage.NewPrefs(db),
		metrics: NewMetrics(),
		health:  NewHealthChecker(opts.Version),
		logFile: opts.LogFile,
		apiAddr: cfg.API.Addr,
	}
	if opts.APIAddr != "" {
		a.apiAddr = opts.APIAddr
	}

	a.tracker = driving.NewTracker(a.prefs)
	a.rules = schedule.NewStore(a.prefs)
	a.engine = reminder.NewEngine(a.prefs, a.tracker, a.rules, reminder.ConfigFrom(cfg))

	webhooks := storage.NewWebhookRepo(db)
	a.queue = notify.NewRetryQueue(notify.NewHTTPClient())
	a.dispatch = notify.NewDispatcher(webhooks).WithRetryQueue(a.queue)

	a.broker = opts.Broker
	if a.broker == nil && cfg.MQTT.Enabled() {
		client, err := mqtt.Dial(cfg.MQTT)
		if err != nil {
			logging.Warn("mqtt disabled", logging.KeyError, err)
		} else {
			a.broker = client
		}
	}

	a.gpio = opts.GPIO
	if a.gpio == nil && cfg.GPIO.Enabled() {
		r, err := gpio.NewRealReader(cfg.GPIO.Chip, cfg.GPIO.IgnitionPin, cfg.GPIO.ActiveLow)
		if err != nil {
			logging.Warn("ignition input disabled", logging.KeyError, err)
		} else {
			a.gpio = r
		}
	}

	a.journal = opts.Journal
	if a.journal == nil && cfg.Journal.Path != "" {
		j, err := journal.Open(ctx, cfg.Journal.Path)
		if err != nil {
			logging.Warn("event journal disabled", logging.KeyError, err)
		} else {
			a.journal = j
		}
	}

	notifiers := notify.Multi{notify.LogNotifier{}, a.dispatch}
	if a.broker != nil {
		notifiers = append(notifiers, mqtt.NewNotificationSink(a.broker))
	}

	a.alarms = alarm.New(a.fire, cfg.Alarms.Exact)
	exec := NewExecutor(notifiers, a.alarms, a.metrics)
	if a.broker != nil {
		exec = exec.WithSystem(a.broker)
	}

	a.core = NewCore(a.engine, exec, a.metrics).OnHandled(func(reminder.Event) { a.publishState() })
	if a.journal != nil {
		a.core = a.core.WithJournal(a.journal)
	}

	a.service = service.New(a.prefs, a.tracker, a.rules, webhooks, a.dispatch).
		WithSubmitter(a.core.Submit).
		WithTimers(a.alarms.Pending).
		WithRetries(a.queue.Pending).
		WithMaxRepeats(a.engine.Config().MaxRepeats)

	a.health.AddCheck("database", db.CheckIntegrity)
	a.health.AddCheck("disk", db.CheckDiskSpace)
	if a.broker != nil {
		a.health.AddCheck("mqtt", func() error {
			if !a.broker.IsConnected() {
				return errors.ErrBrokerUnavailable
			}
			return nil
		})
	}
	a.health.SetGauge("retry_queue", a.queue.Pending)
	a.health.SetGauge("pending_timers", func() int { return len(a.alarms.Pending()) })

	return a
}

// Core returns the event loop.
func (a *App) Core() *Core { return a.core }

// Service returns the backend served over the API.
func (a *App) Service() *service.Service { return a.service }

// Metrics returns the daemon counters.
func (a *App) Metrics() *Metrics { return a.metrics }

// APIAddr returns the address the API listens on, once started.
func (a *App) APIAddr() string {
	if a.api != nil {
		return a.api.Addr()
	}
	return a.apiAddr
}

// fire turns an expired alarm into an event. It runs on the alarm
// goroutine, so it only submits.
func (a *App) fire(id reminder.TimerID, at time.Time) {
	ev := reminder.Event{Kind: id.Event(), At: at, Source: "alarm"}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.core.Submit(ctx, ev); err != nil {
		logging.Error("failed to submit timer event", logging.KeyTimer, string(id), logging.KeyError, err)
	}
}

// Run starts every source and blocks until ctx is done, then shuts down
// in reverse order.
func (a *App) Run(ctx context.Context) error {
	a.queue.Start()
	a.alarms.Start()

	if a.broker != nil {
		if err := a.broker.Subscribe(func(ev reminder.Event) {
			if err := a.core.Submit(ctx, ev); err != nil {
				logging.Warn("rejected mqtt event", logging.KeyEvent, ev.String(), logging.KeyError, err)
			}
		}); err != nil {
			logging.Warn("mqtt subscribe failed", logging.KeyError, err)
		}
		a.publishSystem(mqtt.SystemStartup, "")
	}

	if a.apiAddr != "-" {
		api := web.NewAPI(a.service).
			WithHealth(func() any { return a.health.Check() }).
			WithMetrics(func() any { return a.metrics.Snapshot() })
		srv, err := web.Listen(a.apiAddr, api.NewRouter())
		if err != nil {
			a.shutdown()
			return errors.NewSystemErrorWithOp("listen", "failed to start API", err)
		}
		a.api = srv
		logging.Info("api listening", "addr", srv.Addr())
	}

	var wg sync.WaitGroup
	runLoop := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	loopCtx, stopLoops := context.WithCancel(ctx)
	runLoop(func() { a.core.Run(loopCtx) })

	a.resume(ctx)

	if a.gpio != nil {
		runLoop(func() { a.watchIgnition(loopCtx) })
	}
	runLoop(func() { a.watchTracker(loopCtx) })
	runLoop(func() { a.housekeeping(loopCtx) })

	a.publishState()
	<-ctx.Done()
	stopLoops()
	wg.Wait()

	a.shutdown()
	return nil
}

// resume decides between a fresh start after reboot and restoring the
// persisted session.
func (a *App) resume(ctx context.Context) {
	changed, err := BootChanged(a.prefs, a.cfg.Daemon.BootIDPath)
	if err != nil {
		logging.Warn("failed to store boot id", logging.KeyError, err)
	}
	if changed {
		logging.Info("reboot detected, resetting session")
		if err := a.core.Submit(ctx, reminder.Event{Kind: reminder.EventBootCompleted, At: time.Now(), Source: "boot"}); err != nil {
			logging.Warn("failed to submit boot event", logging.KeyError, err)
		}
		return
	}
	a.core.Restore(ctx)
}

func (a *App) watchIgnition(ctx context.Context) {
	interval := a.cfg.GPIO.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w := gpio.NewWatcher(a.gpio, a.cfg.GPIO.Debounce, a.tracker.IsDriving())
	w.Run(ctx, ticker.C, func(ev reminder.Event) {
		if err := a.core.Submit(ctx, ev); err != nil {
			logging.Warn("failed to submit ignition event", logging.KeyError, err)
		}
	})
}

// watchTracker republishes state when the allowlist or driving flag
// changes outside of an event, for example from the API.
func (a *App) watchTracker(ctx context.Context) {
	ch, unsubscribe := a.tracker.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			a.publishState()
		}
	}
}

// housekeeping rotates the log and prunes the journal.
func (a *App) housekeeping(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.logFile != nil {
				if rotated, err := a.logFile.Rotate(DefaultMaxLogSize); err != nil {
					logging.Warn("log rotation failed", logging.KeyError, err)
				} else if rotated {
					logging.Info("rotated daemon log")
				}
			}
			if a.journal != nil {
				if n, err := a.journal.Prune(ctx, time.Now().Add(-journalRetention)); err != nil {
					logging.Warn("journal prune failed", logging.KeyError, err)
				} else if n > 0 {
					logging.Info("pruned journal", logging.KeyCount, n)
				}
			}
		}
	}
}

// publishState sends the retained state topic when it changed.
func (a *App) publishState() {
	if a.broker == nil {
		return
	}
	session := a.engine.Session()
	state := mqtt.StatePayload{
		Driving:     a.tracker.IsDriving(),
		Session:     string(session.State),
		RepeatCount: session.RepeatCount,
	}

	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if a.published && a.lastState == state {
		return
	}
	a.lastState = state
	a.published = true

	state.Timestamp = time.Now()
	if err := a.broker.PublishState(state); err != nil {
		logging.Warn("failed to publish state", logging.KeyError, err)
	}
}

func (a *App) publishSystem(event, reason string) {
	err := a.broker.PublishSystem(mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     event,
		Reason:    reason,
		Retained:  true,
	})
	if err != nil {
		logging.Warn("failed to publish system event", logging.KeyEvent, event, logging.KeyError, err)
	}
}

func (a *App) shutdown() {
	if a.api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.api.Shutdown(ctx); err != nil {
			logging.Warn("api shutdown failed", logging.KeyError, err)
		}
		cancel()
	}
	a.alarms.Stop()
	a.queue.Stop()
	a.dispatch.Wait()
	if a.gpio != nil {
		if err := a.gpio.Close(); err != nil {
			logging.Warn("failed to release ignition line", logging.KeyError, err)
		}
	}
	if a.broker != nil {
		a.publishSystem(mqtt.SystemShutdown, "")
		a.broker.Close()
	}
	if a.journal != nil {
		a.journal.Close()
	}
}
