package mqtt

import (
	"sync"

	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// FakeClient records published messages for test assertions and lets tests
// inject inbound events.
type FakeClient struct {
	mu sync.Mutex

	// Notifications holds every published notification.
	Notifications []*model.Notification

	// Cleared holds the ids of cleared notifications.
	Cleared []int

	// States holds every published driving state.
	States []StatePayload

	// Events holds events published by PublishEvent.
	Events []reminder.Event

	// SystemEvents holds every published system event.
	SystemEvents []SystemEvent

	// PublishError, if set, is returned by every publish method.
	PublishError error

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool

	handler Handler
}

// NewFakeClient creates a connected FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{Connected: true}
}

// PublishNotification records n.
func (f *FakeClient) PublishNotification(n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Notifications = append(f.Notifications, n)
	return nil
}

// ClearNotification records id.
func (f *FakeClient) ClearNotification(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Cleared = append(f.Cleared, id)
	return nil
}

// PublishState records state.
func (f *FakeClient) PublishState(state StatePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.States = append(f.States, state)
	return nil
}

// PublishEvent records ev.
func (f *FakeClient) PublishEvent(ev reminder.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Events = append(f.Events, ev)
	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// Subscribe stores the handler for Inject.
func (f *FakeClient) Subscribe(h Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
	return nil
}

// Inject decodes payload as if it arrived from the broker.
func (f *FakeClient) Inject(payload []byte) error {
	ev, err := ParseEvent(payload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(ev)
	}
	return nil
}

// IsConnected reports whether the fake is "connected".
func (f *FakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Reset clears recorded messages.
func (f *FakeClient) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Notifications = nil
	f.Cleared = nil
	f.States = nil
	f.Events = nil
	f.SystemEvents = nil
	f.PublishError = nil
}

// PublishedStates returns a copy of the recorded states.
func (f *FakeClient) PublishedStates() []StatePayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StatePayload(nil), f.States...)
}

// PublishedSystemEvents returns the names of the recorded system events.
func (f *FakeClient) PublishedSystemEvents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		out[i] = e.Event
	}
	return out
}
