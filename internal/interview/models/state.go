package models

import "fmt"

// State is the position of an AuditSession in the question/evidence cycle.
type State int

const (
	StateAwaitingObservation State = iota + 1
	StateAwaitingEvidence
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateAwaitingObservation:
		return "awaiting_observation"
	case StateAwaitingEvidence:
		return "awaiting_evidence"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) IsValid() bool {
	return s >= StateAwaitingObservation && s <= StateCompleted
}

func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid session state %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "awaiting_observation":
		*s = StateAwaitingObservation
	case "awaiting_evidence":
		*s = StateAwaitingEvidence
	case "completed":
		*s = StateCompleted
	default:
		return fmt.Errorf("unknown session state %q", string(b))
	}
	return nil
}

// RunStatus reports whether a multi-category run still has work left.
type RunStatus string

const (
	RunStatusActive    RunStatus = "active"
	RunStatusCompleted RunStatus = "completed"
)
