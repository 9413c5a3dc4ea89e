package storage

import (
	"fmt"
	"sort"

	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
)

// Store is namespaced key-value persistence for preferences. Reads never
// fail: a missing or unreadable key yields the supplied default.
type Store interface {
	GetBool(ns, key string, def bool) bool
	SetBool(ns, key string, v bool) error
	GetInt(ns, key string, def int) int
	SetInt(ns, key string, v int) error
	GetString(ns, key, def string) string
	SetString(ns, key, v string) error
	GetStringSet(ns, key string) []string
	SetStringSet(ns, key string, v []string) error
	GetRecord(ns, key string, v any) (bool, error)
	SetRecord(ns, key string, v any) error
	Delete(ns, key string) error
}

// Prefs implements Store on top of the Badger database.
type Prefs struct {
	db *DB
}

var _ Store = (*Prefs)(nil)

// NewPrefs creates a preference store backed by db.
func NewPrefs(db *DB) *Prefs {
	return &Prefs{db: db}
}

// PrefKey builds the database key for a preference.
func PrefKey(ns, key string) string {
	return fmt.Sprintf("%s:%s:%s", model.PrefixPref, ns, key)
}

// get decodes the value at ns/key into v. It reports false when the key is
// missing or unreadable; the latter is logged.
func (p *Prefs) get(ns, key string, v any) bool {
	err := p.db.GetJSON(PrefKey(ns, key), v)
	if err == nil {
		return true
	}
	if !IsErrKeyNotFound(err) {
		logging.Warn("preference read failed, using default",
			"namespace", ns, "key", key, logging.KeyError, err)
	}
	return false
}

// GetBool returns the boolean at ns/key or def.
func (p *Prefs) GetBool(ns, key string, def bool) bool {
	var v bool
	if p.get(ns, key, &v) {
		return v
	}
	return def
}

// SetBool stores a boolean.
func (p *Prefs) SetBool(ns, key string, v bool) error {
	return p.db.SetJSON(PrefKey(ns, key), v)
}

// GetInt returns the integer at ns/key or def.
func (p *Prefs) GetInt(ns, key string, def int) int {
	var v int
	if p.get(ns, key, &v) {
		return v
	}
	return def
}

// SetInt stores an integer.
func (p *Prefs) SetInt(ns, key string, v int) error {
	return p.db.SetJSON(PrefKey(ns, key), v)
}

// GetString returns the string at ns/key or def.
func (p *Prefs) GetString(ns, key, def string) string {
	var v string
	if p.get(ns, key, &v) {
		return v
	}
	return def
}

// SetString stores a string.
func (p *Prefs) SetString(ns, key, v string) error {
	return p.db.SetJSON(PrefKey(ns, key), v)
}

// GetStringSet returns the set at ns/key as a sorted slice, empty when missing.
func (p *Prefs) GetStringSet(ns, key string) []string {
	var v []string
	if !p.get(ns, key, &v) {
		return []string{}
	}
	return normalizeSet(v)
}

// SetStringSet stores a set of strings. Duplicates are collapsed.
func (p *Prefs) SetStringSet(ns, key string, v []string) error {
	return p.db.SetJSON(PrefKey(ns, key), normalizeSet(v))
}

// GetRecord decodes a structured value into v. It returns false with a nil
// error when the key does not exist.
func (p *Prefs) GetRecord(ns, key string, v any) (bool, error) {
	err := p.db.GetJSON(PrefKey(ns, key), v)
	if IsErrKeyNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetRecord stores a structured value as JSON.
func (p *Prefs) SetRecord(ns, key string, v any) error {
	return p.db.SetJSON(PrefKey(ns, key), v)
}

// Delete removes ns/key.
func (p *Prefs) Delete(ns, key string) error {
	return p.db.Delete(PrefKey(ns, key))
}

func normalizeSet(v []string) []string {
	seen := make(map[string]struct{}, len(v))
	out := make([]string, 0, len(v))
	for _, s := range v {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
