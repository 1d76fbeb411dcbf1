// Package language stores the display language chosen for a session.
package language

import (
	"errors"
	"strings"
)

type Code string

const (
	Serbian Code = "sr"
	English Code = "en"

	Default = Serbian
)

var ErrUnsupported = errors.New("unsupported language")

// Parse accepts "sr" or "en", case-insensitively.
func Parse(s string) (Code, error) {
	switch Code(strings.ToLower(strings.TrimSpace(s))) {
	case Serbian:
		return Serbian, nil
	case English:
		return English, nil
	default:
		return "", ErrUnsupported
	}
}

// Store is the snapshot store the preference is persisted in.
type Store interface {
	Get(key string, dst any) bool
	Set(key string, value any)
}

// Preferences reads and writes per-session language choices.
type Preferences struct {
	store Store
}

func NewPreferences(store Store) *Preferences {
	return &Preferences{store: store}
}

func Key(sessionID string) string {
	return "language:" + sessionID
}

// Get returns the stored language, or Default when nothing valid is stored.
func (p *Preferences) Get(sessionID string) Code {
	var raw string
	if !p.store.Get(Key(sessionID), &raw) {
		return Default
	}
	code, err := Parse(raw)
	if err != nil {
		return Default
	}
	return code
}

func (p *Preferences) Set(sessionID string, code Code) {
	p.store.Set(Key(sessionID), string(code))
}

// Toggle switches between sr and en and returns the new value.
func (p *Preferences) Toggle(sessionID string) Code {
	next := English
	if p.Get(sessionID) == English {
		next = Serbian
	}
	p.Set(sessionID, next)
	return next
}

// Pick returns the localized text for code, falling back to sr when the
// English text is empty.
func Pick(code Code, sr, en string) string {
	if code == English && en != "" {
		return en
	}
	return sr
}
