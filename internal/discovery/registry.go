// Package discovery enforces at-most-once unlock semantics over the static
// descriptor table, gating each unlock behind the session's current level.
package discovery

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/engagement-engine/internal/feedback"
	"github.com/danielpatrickdp/engagement-engine/internal/progression"
)

// #region registry

// Registry checks unlock eligibility and routes successful unlocks to the
// feedback dispatcher. It runs on the engine's logic goroutine; the
// check-then-mutate inside TryUnlock is therefore atomic with respect to
// re-entrant synchronous calls.
type Registry struct {
	config     Config
	table      map[string]Descriptor
	byTrigger  map[TriggerKind][]Descriptor
	state      *progression.State
	dispatcher *feedback.Dispatcher
	log        *zap.Logger
}

// NewRegistry validates the descriptor table and builds the trigger index.
// Misconfiguration (duplicate id, level out of range, unknown trigger) fails
// loudly here so steady-state operation never sees it.
func NewRegistry(
	config Config,
	descriptors []Descriptor,
	state *progression.State,
	dispatcher *feedback.Dispatcher,
	log *zap.Logger,
) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	table := make(map[string]Descriptor, len(descriptors))
	byTrigger := make(map[TriggerKind][]Descriptor)
	for _, d := range descriptors {
		if d.ID == "" {
			return nil, fmt.Errorf("descriptor with empty id")
		}
		if _, dup := table[d.ID]; dup {
			return nil, fmt.Errorf("duplicate descriptor id %q", d.ID)
		}
		if d.RequiredLevel < 0 || d.RequiredLevel > progression.MaxLevel {
			return nil, fmt.Errorf("descriptor %q: required level %d outside 0..%d",
				d.ID, d.RequiredLevel, progression.MaxLevel)
		}
		if !knownTriggers[d.Trigger] {
			return nil, fmt.Errorf("descriptor %q: unknown trigger %q", d.ID, d.Trigger)
		}
		table[d.ID] = d
		byTrigger[d.Trigger] = append(byTrigger[d.Trigger], d)
	}
	return &Registry{
		config:     config,
		table:      table,
		byTrigger:  byTrigger,
		state:      state,
		dispatcher: dispatcher,
		log:        log,
	}, nil
}

// Descriptor looks up a descriptor by id.
func (r *Registry) Descriptor(id string) (Descriptor, bool) {
	d, ok := r.table[id]
	return d, ok
}

// #endregion registry

// #region try-unlock

// TryUnlock attempts one unlock. It succeeds iff the discovery exists, is not
// yet unlocked, and the session level meets the required level. Failure is a
// side-effect-free no-op, never an error: callers may retry unboundedly.
func (r *Registry) TryUnlock(id, source string, at time.Time) bool {
	desc, ok := r.table[id]
	if !ok {
		r.log.Warn("unlock attempt for unknown discovery", zap.String("discovery", id))
		return false
	}
	if r.state.HasDiscovery(id) {
		return false
	}
	if r.state.Level() < desc.RequiredLevel {
		return false
	}

	prevUnlock := r.state.LastUnlockAt()
	if !r.state.RecordDiscovery(id, at) {
		return false
	}

	span := time.Duration(r.config.SynchronicitySpanSeconds * float64(time.Second))
	if !prevUnlock.IsZero() && at.Sub(prevUnlock) <= span {
		r.state.IncrementSynchronicity()
	}

	r.dispatcher.Dispatch(feedback.Notification{
		Discovery: id,
		Payload:   desc.Feedback,
		Level:     r.state.Level(),
		Source:    source,
		At:        at,
	})
	return true
}

// UnlockByTrigger attempts every descriptor bound to the trigger kind whose
// Param matches detail (empty Param matches anything). Returns the ids
// actually unlocked.
func (r *Registry) UnlockByTrigger(kind TriggerKind, detail, source string, at time.Time) []string {
	var unlocked []string
	for _, d := range r.byTrigger[kind] {
		if d.Param != "" && d.Param != detail {
			continue
		}
		if r.TryUnlock(d.ID, source, at) {
			unlocked = append(unlocked, d.ID)
		}
	}
	return unlocked
}

// Eligible reports whether the discovery could unlock at the current level.
func (r *Registry) Eligible(id string) bool {
	d, ok := r.table[id]
	return ok && !r.state.HasDiscovery(id) && r.state.Level() >= d.RequiredLevel
}

// #endregion try-unlock
