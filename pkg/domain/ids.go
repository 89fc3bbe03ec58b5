// Package domain holds the typed identifiers shared across audit packages.
//
// Session and run IDs are UUIDs minted by the registry. User IDs are opaque
// strings supplied by the caller (header or CLI flag) and only bounded here.
package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "rmfaudit/pkg/domain-errors"
)

const maxUserIDLength = 128

type (
	SessionID uuid.UUID
	RunID     uuid.UUID
	UserID    string
)

func NewSessionID() SessionID { return SessionID(uuid.New()) }
func NewRunID() RunID         { return RunID(uuid.New()) }

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RunID) String() string { return uuid.UUID(id).String() }
func (id RunID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string { return string(id) }
func (id UserID) IsNil() bool    { return id == "" }

// MarshalText lets typed UUIDs serialize as strings in JSON bodies and events.
func (id SessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id RunID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }

func (id *SessionID) UnmarshalText(b []byte) error {
	parsed, err := ParseSessionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RunID) UnmarshalText(b []byte) error {
	parsed, err := ParseRunID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session ID")
	return SessionID(u), err
}

func ParseRunID(s string) (RunID, error) {
	u, err := parseUUID(s, "run ID")
	return RunID(u), err
}

// ParseUserID trims s and rejects empty, oversized, non-UTF8 or control
// character input.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "user ID is required")
	}
	if len(s) > maxUserIDLength {
		return "", dErrors.New(dErrors.CodeValidation, "user ID is too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeValidation, "user ID must be valid UTF-8")
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return "", dErrors.New(dErrors.CodeValidation, "user ID contains control characters")
		}
	}
	return UserID(s), nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" is required")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label)
	}
	return u, nil
}
