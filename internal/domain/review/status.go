package review

import (
	"fmt"
)

// Status represents the learning stage of a card.
type Status string

const (
	StatusNew        Status = "new"        // Never answered in context.
	StatusLearning   Status = "learning"   // Working through the learning step ladder.
	StatusReview     Status = "review"     // Graduated to day-scale intervals.
	StatusRelearning Status = "relearning" // Lapsed, working through the relearning ladder.
)

// IsValid reports whether s is one of the four defined statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusReview, StatusRelearning:
		return true
	}
	return false
}

// InLadder reports whether the card is currently on a step ladder.
func (s Status) InLadder() bool {
	return s == StatusLearning || s == StatusRelearning
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("review: invalid status: %q", string(s))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v := Status(text)
	if !v.IsValid() {
		return fmt.Errorf("review: invalid status: %q", text)
	}
	*s = v
	return nil
}
