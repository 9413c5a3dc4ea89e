package errors

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Category groups errors by who can fix them.
type Category int

const (
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = iota
	// CategoryUser is bad input or a missing prerequisite, such as the daemon.
	CategoryUser
	// CategorySystem is the host failing: disk, permissions, a corrupt database.
	CategorySystem
	// CategoryRecoverable clears up on its own: a dropped broker or network.
	CategoryRecoverable
)

func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategorySystem:
		return "system"
	case CategoryRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// Classify determines the category of an error. Typed errors win over
// sentinels, which win over errno values.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case IsUserError(err):
		return CategoryUser
	case IsSystemError(err):
		return CategorySystem
	case IsRecoverableError(err):
		return CategoryRecoverable
	case isSystemLevel(err):
		return CategorySystem
	case isTransient(err):
		return CategoryRecoverable
	}
	return CategoryUnknown
}

func isSystemLevel(err error) bool {
	if errors.Is(err, ErrDiskFull) ||
		errors.Is(err, ErrDatabaseCorrupted) ||
		errors.Is(err, ErrPermissionDenied) {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOSPC, syscall.EACCES, syscall.EPERM, syscall.EIO, syscall.EROFS:
			return true
		}
	}
	return false
}

// isTransient matches failures of the broker, the network and the webhook
// endpoints, which are expected while a phone or car moves between networks.
func isTransient(err error) bool {
	if errors.Is(err, ErrNetworkUnavailable) ||
		errors.Is(err, ErrBrokerUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrLockHeld) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN, syscall.EINTR, syscall.ETIMEDOUT, syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH:
			return true
		}
	}
	return false
}
