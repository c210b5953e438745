package rules

import (
	"fmt"
)

// Phase is one step of a player's turn.
type Phase int

const (
	PhaseDraw Phase = iota
	PhasePlay
	PhaseAttack
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseDraw:   "draw",
	PhasePlay:   "play",
	PhaseAttack: "attack",
	PhaseEnd:    "end",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase_%d", int(p))
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// turnSequence is the fixed phase order within one turn.
var turnSequence = []Phase{PhaseDraw, PhasePlay, PhaseAttack, PhaseEnd}

// TurnManager tracks the active player, the phase and the turn counter. It is
// not safe for concurrent use; the game manager serialises access.
type TurnManager struct {
	orderIndex  int
	turnNumber  int
	activeIndex int
	players     int
	maxTurns    int
	over        bool
}

// NewTurnManager creates a turn manager at turn 1, draw phase, with the first
// player active. maxTurns <= 0 disables the turn limit.
func NewTurnManager(players, maxTurns int) *TurnManager {
	if players < 1 {
		players = 1
	}
	return &TurnManager{
		turnNumber: 1,
		players:    players,
		maxTurns:   maxTurns,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActiveIndex returns the index of the player who has the turn.
func (tm *TurnManager) ActiveIndex() int {
	return tm.activeIndex
}

// MaxTurns returns the configured turn limit.
func (tm *TurnManager) MaxTurns() int {
	return tm.maxTurns
}

// IsOver reports whether the match reached a terminal state.
func (tm *TurnManager) IsOver() bool {
	return tm.over
}

// End marks the match terminal. Further advances are no-ops.
func (tm *TurnManager) End() {
	tm.over = true
}

// AdvancePhase moves to the next phase. Leaving the end phase rotates the
// active player and increments the turn number; passing maxTurns ends the
// match instead of starting a new turn. newTurn is set when a turn began.
func (tm *TurnManager) AdvancePhase() (phase Phase, newTurn bool) {
	if tm.over {
		return tm.CurrentPhase(), false
	}

	if tm.orderIndex < len(turnSequence)-1 {
		tm.orderIndex++
		return tm.CurrentPhase(), false
	}

	tm.turnNumber++
	if tm.maxTurns > 0 && tm.turnNumber > tm.maxTurns {
		tm.over = true
		return tm.CurrentPhase(), false
	}
	tm.orderIndex = 0
	tm.activeIndex = (tm.activeIndex + 1) % tm.players
	return tm.CurrentPhase(), true
}
