package game

import (
	"sync"

	"go.uber.org/zap"
)

// Replay is the ordered list of snapshots of one match.
type Replay struct {
	MatchID      string
	States       []*Snapshot
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates a new replay instance
func NewReplay(matchID string) *Replay {
	return &Replay{
		MatchID: matchID,
		States:  make([]*Snapshot, 0),
	}
}

// RecordState appends a snapshot to the replay
func (r *Replay) RecordState(snapshot *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.States = append(r.States, snapshot)
}

// Start rewinds the replay
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the state at the cursor and moves forward
func (r *Replay) Next() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.States) {
		state := r.States[r.CurrentIndex]
		r.CurrentIndex++
		return state
	}
	return nil
}

// Previous moves back one state and returns it
func (r *Replay) Previous() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.States[r.CurrentIndex]
	}
	return nil
}

// Skip moves the cursor by count states, clamped to the recording
func (r *Replay) Skip(count int) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	newIndex := r.CurrentIndex + count
	if newIndex >= len(r.States) {
		newIndex = len(r.States) - 1
	}
	if newIndex < 0 {
		newIndex = 0
	}

	r.CurrentIndex = newIndex
	if r.CurrentIndex < len(r.States) {
		return r.States[r.CurrentIndex]
	}
	return nil
}

// Size returns the number of recorded states
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.States)
}

// GetStateAt returns the state at a specific index
func (r *Replay) GetStateAt(index int) *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.States) {
		return r.States[index]
	}
	return nil
}

// Last returns the newest recorded state
func (r *Replay) Last() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// ReplayRecorder keeps an in-memory replay per match of the managers it is
// attached to.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay // matchID -> Replay
	order   []string
}

// NewReplayRecorder creates a new replay recorder
func NewReplayRecorder(logger *zap.Logger) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
	}
}

// Attach records every snapshot m publishes until the returned function is
// called.
func (rr *ReplayRecorder) Attach(m *Manager) (detach func()) {
	return m.Subscribe(func(s Snapshot) {
		rr.RecordState(&s)
	})
}

// RecordState stores a snapshot under its match. Snapshots taken outside a
// match are ignored.
func (rr *ReplayRecorder) RecordState(snapshot *Snapshot) {
	if snapshot == nil || snapshot.MatchID == "" {
		return
	}

	rr.mu.Lock()
	replay, exists := rr.replays[snapshot.MatchID]
	if !exists {
		replay = NewReplay(snapshot.MatchID)
		rr.replays[snapshot.MatchID] = replay
		rr.order = append(rr.order, snapshot.MatchID)
		rr.logger.Info("started replay recording", zap.String("match_id", snapshot.MatchID))
	}
	rr.mu.Unlock()

	replay.RecordState(snapshot)
	rr.logger.Debug("recorded replay state",
		zap.String("match_id", snapshot.MatchID),
		zap.Int("state_count", replay.Size()),
	)
}

// GetReplay returns the replay for a match
func (rr *ReplayRecorder) GetReplay(matchID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[matchID]
	return replay, exists
}

// MatchIDs lists recorded matches in the order they started
func (rr *ReplayRecorder) MatchIDs() []string {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return append([]string(nil), rr.order...)
}

// ClearReplay removes a replay from memory
func (rr *ReplayRecorder) ClearReplay(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, matchID)
	for i, id := range rr.order {
		if id == matchID {
			rr.order = append(rr.order[:i], rr.order[i+1:]...)
			break
		}
	}
	rr.logger.Debug("cleared replay from memory", zap.String("match_id", matchID))
}
