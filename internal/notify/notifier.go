package notify

import (
	"context"
	"sync"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
)

// Notifier shows and removes notifications. Showing a notification with
// an id already shown replaces it.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
	Cancel(ctx context.Context, id int) error
}

// Multi fans out to several notifiers. Every notifier is called even when
// an earlier one fails.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n *model.Notification) error {
	var errs []error
	for _, nt := range m {
		errs = append(errs, nt.Notify(ctx, n))
	}
	return errors.Join(errs...)
}

// Cancel implements Notifier.
func (m Multi) Cancel(ctx context.Context, id int) error {
	var errs []error
	for _, nt := range m {
		errs = append(errs, nt.Cancel(ctx, id))
	}
	return errors.Join(errs...)
}

// LogNotifier writes notifications to the daemon log. It is always part of
// the fan-out so a notification is never silently lost.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(ctx context.Context, n *model.Notification) error {
	args := []any{
		logging.KeyNotification, n.ID,
		logging.KeyChannel, n.Channel,
		"title", n.Title,
	}
	if n.IsEmergency() {
		logging.WarnContext(ctx, "notification", args...)
		return nil
	}
	logging.InfoContext(ctx, "notification", args...)
	return nil
}

// Cancel implements Notifier.
func (LogNotifier) Cancel(ctx context.Context, id int) error {
	logging.DebugContext(ctx, "notification cancelled", logging.KeyNotification, id)
	return nil
}

// Fake records calls for tests.
type Fake struct {
	mu        sync.Mutex
	Shown     []*model.Notification
	Cancelled []int
	active    map[int]*model.Notification

	// NotifyError is returned from Notify when set.
	NotifyError error
}

// NewFake creates an empty fake notifier.
func NewFake() *Fake {
	return &Fake{active: make(map[int]*model.Notification)}
}

// Notify implements Notifier.
func (f *Fake) Notify(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NotifyError != nil {
		return f.NotifyError
	}
	f.Shown = append(f.Shown, n)
	f.active[n.ID] = n
	return nil
}

// Cancel implements Notifier.
func (f *Fake) Cancel(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cancelled = append(f.Cancelled, id)
	delete(f.active, id)
	return nil
}

// Active returns the notification currently shown under id, if any.
func (f *Fake) Active(id int) (*model.Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.active[id]
	return n, ok
}

// ShownCount returns the number of Notify calls recorded.
func (f *Fake) ShownCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Shown)
}

// Reset clears recorded calls.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Shown = nil
	f.Cancelled = nil
	f.active = make(map[int]*model.Notification)
	f.NotifyError = nil
}
