package review

import "context"

// SchemaVersion is the current version of the persisted state blob.
const SchemaVersion = 3

// StoredState is the whole persisted scheduler state for one profile: every
// card's state, the scheduler configuration and the day's counters. It is
// always read and written as a unit.
type StoredState struct {
	Version    int
	Cards      map[string]CardState
	Config     SchedulerConfig
	DailyStats DailyStats
}

// NewStoredState returns a fresh state with default config and zeroed
// counters for the given day key.
func NewStoredState(dayKey string) *StoredState {
	return &StoredState{
		Version:    SchemaVersion,
		Cards:      map[string]CardState{},
		Config:     DefaultSchedulerConfig(),
		DailyStats: NewDailyStats(dayKey),
	}
}

// Store defines the contract for persisting scheduler state. Implementations
// must tolerate malformed or out-of-date blobs on Load (normalizing instead
// of failing) and perform the daily-stats rollover on both Load and Save.
//
// The read-modify-write cycle between Load and Save assumes no interleaving
// for the same profile; callers in concurrent settings must serialize per
// profile.
type Store interface {
	Load(ctx context.Context, profile string) (*StoredState, error)
	Save(ctx context.Context, profile string, state *StoredState) error
}
