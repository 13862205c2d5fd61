package progression

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// #region state

// State is the single shared progression state for one session. It is owned
// by the engine's logic goroutine and mutated only by the discovery registry
// and the level-advancement step; it performs no locking of its own.
type State struct {
	config    Config
	sessionID string
	startedAt time.Time

	level         int
	discoveries   map[string]time.Time
	syncCount     int
	flags         map[Flag]time.Time
	lastUnlockAt  time.Time
}

// NewState creates a fresh session state at level 0. The ladder is validated
// loudly: a bad ladder is a programming error surfaced at initialization.
func NewState(config Config, startedAt time.Time) (*State, error) {
	if len(config.Ladder) != MaxLevel {
		return nil, fmt.Errorf("ladder must have %d thresholds, got %d", MaxLevel, len(config.Ladder))
	}
	for i := 1; i < len(config.Ladder); i++ {
		if config.Ladder[i] < config.Ladder[i-1] {
			return nil, fmt.Errorf("ladder must be non-decreasing at index %d", i)
		}
	}
	return &State{
		config:      config,
		sessionID:   uuid.New().String(),
		startedAt:   startedAt,
		discoveries: make(map[string]time.Time),
		flags:       make(map[Flag]time.Time),
	}, nil
}

// SessionID returns the session identifier.
func (s *State) SessionID() string { return s.sessionID }

// StartedAt returns the session start time.
func (s *State) StartedAt() time.Time { return s.startedAt }

// Level returns the current level.
func (s *State) Level() int { return s.level }

// #endregion state

// #region advance

// Advance moves the level up by at most one step when confidence meets the
// next level's threshold. Called once per classification tick; the
// single-step rule prevents skipping intermediate unlock eligibility.
func (s *State) Advance(confidence float64) (int, bool) {
	if s.level >= MaxLevel {
		return s.level, false
	}
	if confidence < s.config.Ladder[s.level] {
		return s.level, false
	}
	s.level++
	return s.level, true
}

// #endregion advance

// #region discoveries

// HasDiscovery reports whether the discovery is already unlocked.
func (s *State) HasDiscovery(id string) bool {
	_, ok := s.discoveries[id]
	return ok
}

// RecordDiscovery inserts a discovery id, idempotently. Returns false when
// the id was already present.
func (s *State) RecordDiscovery(id string, at time.Time) bool {
	if _, ok := s.discoveries[id]; ok {
		return false
	}
	s.discoveries[id] = at
	s.lastUnlockAt = at
	return true
}

// LastUnlockAt returns the time of the most recent successful unlock.
func (s *State) LastUnlockAt() time.Time { return s.lastUnlockAt }

// #endregion discoveries

// #region flags

// SetFlag sets a sticky session flag. Re-setting is a no-op.
func (s *State) SetFlag(f Flag, at time.Time) bool {
	if _, ok := s.flags[f]; ok {
		return false
	}
	s.flags[f] = at
	return true
}

// HasFlag reports whether the flag is set.
func (s *State) HasFlag(f Flag) bool {
	_, ok := s.flags[f]
	return ok
}

// IncrementSynchronicity bumps the synchronicity counter.
func (s *State) IncrementSynchronicity() int {
	s.syncCount++
	return s.syncCount
}

// #endregion flags

// #region snapshot

// Snapshot copies the current state for consumers.
func (s *State) Snapshot(at time.Time) Snapshot {
	discoveries := make([]string, 0, len(s.discoveries))
	for id := range s.discoveries {
		discoveries = append(discoveries, id)
	}
	sort.Strings(discoveries)

	flags := make([]string, 0, len(s.flags))
	for f := range s.flags {
		flags = append(flags, string(f))
	}
	sort.Strings(flags)

	return Snapshot{
		SessionID:          s.sessionID,
		Level:              s.level,
		Discoveries:        discoveries,
		SynchronicityCount: s.syncCount,
		Flags:              flags,
		TakenAt:            at,
	}
}

// #endregion snapshot
