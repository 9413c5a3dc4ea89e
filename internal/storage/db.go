// Package storage keeps preferences and webhooks in an embedded Badger
// database.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/manav03panchal/babyreminder/internal/logging"
)

// AppName names the data directory.
const AppName = "babyreminder"

// DB is an open Badger database. Only one process may hold it.
type DB struct {
	db   *badger.DB
	path string
}

// Options configures Open. An empty Path opens an in-memory database.
type Options struct {
	Path     string
	InMemory bool
}

// DefaultPath returns $XDG_DATA_HOME/babyreminder/db.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// Open opens the database described by opts, creating the directory if needed.
func Open(opts Options) (*DB, error) {
	inMemory := opts.InMemory || opts.Path == ""

	bo := badger.DefaultOptions(opts.Path)
	if inMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Preferences are tiny and overwritten in place; one version is enough.
	bo = bo.
		WithLogger(badgerLogger{}).
		WithLoggingLevel(badger.WARNING).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(bo)
	if err != nil {
		return nil, err
	}

	d := &DB{db: db}
	if !inMemory {
		d.path = opts.Path
	}
	return d, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the on-disk location, or "" for an in-memory database.
func (d *DB) Path() string {
	return d.path
}

// badgerLogger routes Badger's printf-style messages into the structured
// logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logging.Component("badger").Error(badgerMessage(format, args))
}

func (badgerLogger) Warningf(format string, args ...any) {
	logging.Component("badger").Warn(badgerMessage(format, args))
}

func (badgerLogger) Infof(format string, args ...any) {
	logging.Component("badger").Info(badgerMessage(format, args))
}

func (badgerLogger) Debugf(format string, args ...any) {
	logging.Component("badger").Debug(badgerMessage(format, args))
}

func badgerMessage(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
