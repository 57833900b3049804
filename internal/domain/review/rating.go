package review

import (
	"fmt"
)

// Rating represents the user's assessment of their recall quality.
type Rating int

const (
	Again Rating = iota + 1 // Failed to recall.
	Hard                    // Recalled with significant effort.
	Good                    // Recalled correctly.
	Easy                    // Recalled effortlessly.
)

var ratingNames = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}

var ratingByName = map[string]Rating{
	"again": Again,
	"hard":  Hard,
	"good":  Good,
	"easy":  Easy,
}

// ratingLabels are the display labels shown on answer buttons.
var ratingLabels = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

// Ratings lists all valid ratings in ascending order.
func Ratings() []Rating {
	return []Rating{Again, Hard, Good, Easy}
}

// IsValid reports whether r is one of the four defined ratings.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// String returns the wire name of the rating ("again", "hard", "good", "easy").
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// Label returns the human-facing label ("Again", "Hard", "Good", "Easy").
func (r Rating) Label() string {
	if r.IsValid() {
		return ratingLabels[r]
	}
	return r.String()
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("review: invalid rating: %d", int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, ok := ratingByName[string(text)]
	if !ok {
		return fmt.Errorf("review: invalid rating: %q", text)
	}
	*r = v
	return nil
}
