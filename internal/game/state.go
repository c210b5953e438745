package game

import (
	"github.com/hexclash/hexclash-server-go/internal/game/board"
	"github.com/hexclash/hexclash-server-go/internal/game/cards"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
	"github.com/hexclash/hexclash-server-go/internal/game/rules"
)

// Message kinds.
const (
	MessageSystem = "system"
	MessageAction = "action"
	MessageCombat = "combat"
	MessageFlavor = "flavor"
)

// Message is one line of the match log.
type Message struct {
	Turn int    `json:"turn"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// gameState is the single record of one match. Only the Manager touches it,
// always under its mutex.
type gameState struct {
	matchID  string
	started  bool
	over     bool
	winner   player.Side
	players  [2]*player.Player
	board    *board.Board
	inPlay   map[string]*cards.Instance
	turns    *rules.TurnManager
	selected string
	// lootOpen is set when a decided match lets the winner claim a card.
	lootOpen bool

	messages    []Message
	maxMessages int
}

func newGameState(maxMessages int) *gameState {
	if maxMessages <= 0 {
		maxMessages = 50
	}
	return &gameState{
		inPlay:      make(map[string]*cards.Instance),
		messages:    make([]Message, 0, maxMessages),
		maxMessages: maxMessages,
	}
}

func (s *gameState) active() *player.Player {
	return s.players[s.turns.ActiveIndex()]
}

func (s *gameState) opponent() *player.Player {
	return s.players[1-s.turns.ActiveIndex()]
}

func (s *gameState) playerBySide(side player.Side) *player.Player {
	for _, p := range s.players {
		if p != nil && p.Side == side {
			return p
		}
	}
	return nil
}

func (s *gameState) turn() int {
	if s.turns == nil {
		return 0
	}
	return s.turns.TurnNumber()
}

func (s *gameState) phase() rules.Phase {
	if s.turns == nil {
		return rules.PhaseDraw
	}
	return s.turns.CurrentPhase()
}

// addMessage appends to the log, keeping only the newest maxMessages lines.
func (s *gameState) addMessage(kind, text string) {
	s.messages = append(s.messages, Message{Turn: s.turn(), Kind: kind, Text: text})
	if len(s.messages) > s.maxMessages {
		s.messages = append(s.messages[:0:0], s.messages[len(s.messages)-s.maxMessages:]...)
	}
}

// occupantAt returns the card on a tile and the side that owns it.
func (s *gameState) occupantAt(c board.Coord) (*cards.Instance, player.Side, bool) {
	t, ok := s.board.Tile(c)
	if !ok || !t.Occupied() {
		return nil, "", false
	}
	card, ok := s.inPlay[t.Occupant.CardID]
	return card, t.Occupant.Side, ok
}
