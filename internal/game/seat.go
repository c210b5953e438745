package game

import (
	"github.com/hexclash/hexclash-server-go/internal/game/board"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
)

// Seat issues commands on behalf of one side. Turn commands from a seat are
// refused with ReasonNotYourTurn while the other side is active.
type Seat struct {
	m    *Manager
	side player.Side
}

// Seat returns the command handle of side.
func (m *Manager) Seat(side player.Side) *Seat {
	return &Seat{m: m, side: side}
}

// Side returns the side this seat plays.
func (s *Seat) Side() player.Side {
	return s.side
}

// SelectCard is Manager.SelectCard for this side.
func (s *Seat) SelectCard(cardID string) error {
	return s.m.selectCard(&s.side, cardID)
}

// PlayCard is Manager.PlayCard for this side.
func (s *Seat) PlayCard(c board.Coord) error {
	return s.m.playCard(&s.side, c)
}

// Attack is Manager.Attack for this side.
func (s *Seat) Attack(from, to board.Coord) error {
	return s.m.attack(&s.side, from, to)
}

// Heal is Manager.Heal for this side.
func (s *Seat) Heal(from, to board.Coord) error {
	return s.m.heal(&s.side, from, to)
}

// NextTurn ends this side's turn.
func (s *Seat) NextTurn() error {
	return s.m.nextTurn(&s.side)
}

// ClaimLoot takes a template from the loser. It is refused with
// ReasonNotWinner unless this side won the last match.
func (s *Seat) ClaimLoot(templateID string) error {
	return s.m.claimLoot(&s.side, templateID)
}

// Snapshot returns the current state of the match.
func (s *Seat) Snapshot() Snapshot {
	return s.m.Snapshot()
}
