// Package driving tracks whether the user is driving and which Bluetooth
// devices count as a car.
package driving

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/storage"
)

// Manufacturers are name fragments that identify a car head unit even when
// the user never saved the device.
var Manufacturers = []string{
	"Toyota", "Volkswagen", "Ford", "Honda", "Chevrolet", "Nissan",
	"BMW", "Mercedes", "Audi", "Hyundai", "Kia", "Subaru", "Mazda",
	"Lexus", "Jeep", "GMC", "Ram", "Cadillac", "Buick", "Acura",
	"Volvo", "Tesla",
}

// Snapshot is a point-in-time view of the tracker.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Driving   bool      `json:"driving"`
	Devices   []string  `json:"devices"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker holds the driving flag and the device allowlist, mirrors both to
// the preference store and fans changes out to observers.
type Tracker struct {
	prefs storage.Store

	mu        sync.RWMutex
	driving   bool
	devices   []string
	updatedAt time.Time

	subMu  sync.Mutex
	subs   map[int]chan Snapshot
	nextID int
}

// NewTracker loads the persisted state.
func NewTracker(prefs storage.Store) *Tracker {
	return &Tracker{
		prefs:     prefs,
		driving:   prefs.GetBool(model.NSDriving, model.KeyIsDrivingPhysical, false),
		devices:   prefs.GetStringSet(model.NSDevices, model.KeyDeviceNames),
		updatedAt: time.Now(),
		subs:      make(map[int]chan Snapshot),
	}
}

// IsDriving returns the last set driving state.
func (t *Tracker) IsDriving() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.driving
}

// SetDrivingState overwrites, persists and publishes the driving state.
// Setting the same value again still writes it.
func (t *Tracker) SetDrivingState(driving bool) error {
	t.mu.Lock()
	t.driving = driving
	t.updatedAt = time.Now()
	snap := t.snapshotLocked()
	t.mu.Unlock()

	err := t.prefs.SetBool(model.NSDriving, model.KeyIsDrivingPhysical, driving)
	if err != nil {
		logging.Error("failed to persist driving state", logging.KeyError, err)
	}
	t.publish(snap)
	return err
}

// Devices returns a sorted copy of the allowlist.
func (t *Tracker) Devices() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.devices)
}

// AddDevice adds name to the allowlist.
func (t *Tracker) AddDevice(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.InvalidInput(errors.ErrEmptyDeviceName, "device", name)
	}

	t.mu.Lock()
	next := slices.Clone(t.devices)
	if !slices.Contains(next, name) {
		next = append(next, name)
		slices.Sort(next)
	}
	return t.commitDevicesLocked(next)
}

// RemoveDevice removes name from the allowlist.
func (t *Tracker) RemoveDevice(name string) error {
	t.mu.Lock()
	i := slices.Index(t.devices, name)
	if i < 0 {
		t.mu.Unlock()
		return errors.InvalidInput(errors.ErrDeviceNotFound, "device", name)
	}
	next := slices.Delete(slices.Clone(t.devices), i, i+1)
	return t.commitDevicesLocked(next)
}

// commitDevicesLocked persists next and only then installs it, so a failed
// write leaves memory matching the store. It releases the lock and
// publishes the new snapshot.
func (t *Tracker) commitDevicesLocked(next []string) error {
	if err := t.prefs.SetStringSet(model.NSDevices, model.KeyDeviceNames, next); err != nil {
		t.mu.Unlock()
		return errors.Wrap(err, "saving device list")
	}
	t.devices = next
	t.updatedAt = time.Now()
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snap)
	return nil
}

// IsCarDevice reports whether a Bluetooth device name belongs to a car.
// The allowlist is checked first, then the manufacturer list, both as
// case-insensitive substring matches.
func (t *Tracker) IsCarDevice(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	lower := strings.ToLower(name)

	t.mu.RLock()
	devices := t.devices
	t.mu.RUnlock()

	for _, saved := range devices {
		if saved != "" && strings.Contains(lower, strings.ToLower(saved)) {
			return true
		}
	}
	for _, m := range Manufacturers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		Driving:   t.driving,
		Devices:   slices.Clone(t.devices),
		UpdatedAt: t.updatedAt,
	}
}

// Subscribe registers an observer. The channel always holds the latest
// snapshot; a slow reader misses intermediate values. Call the returned
// function to unsubscribe.
func (t *Tracker) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	// The initial value is sent under subMu, so no publish can fill the
	// buffer first.
	t.subMu.Lock()
	id := t.nextID
	t.nextID++
	ch <- t.Snapshot()
	t.subs[id] = ch
	t.subMu.Unlock()

	return ch, func() {
		t.subMu.Lock()
		if c, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(c)
		}
		t.subMu.Unlock()
	}
}

func (t *Tracker) publish(snap Snapshot) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	for _, ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
