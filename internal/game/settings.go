package game

import (
	"fmt"

	"github.com/hexclash/hexclash-server-go/internal/game/board"
)

// Settings are the rules of a match.
type Settings struct {
	StartingHealth   int
	MaxHealth        int
	StartingMana     int
	MaxMana          int
	ManaPerTurn      int
	DrawPerTurn      int
	MaxHandSize      int
	StartingHandSize int
	DeckSize         int
	MaxTurns         int
	MaxMessages      int

	// CategoryCostMultiplier layers the per-category multiplier onto card costs.
	CategoryCostMultiplier bool
	// TypeAdvantage scales damage by the category matchup table.
	TypeAdvantage bool

	Board board.Spec

	// Seed drives shuffles and critical rolls. Matches with the same seed and
	// command sequence are identical.
	Seed int64

	PlayerNames [2]string

	// Teams lists the template IDs each side builds its deck from. An empty
	// team uses the whole catalog.
	Teams [2][]string
}

// DefaultSettings returns the standard rules: 100 health, 10 of 20 mana with
// +3 per turn, 7 card hands and a 30 turn limit on a 5x4 board.
func DefaultSettings() Settings {
	return Settings{
		StartingHealth:   100,
		MaxHealth:        100,
		StartingMana:     10,
		MaxMana:          20,
		ManaPerTurn:      3,
		DrawPerTurn:      1,
		MaxHandSize:      7,
		StartingHandSize: 5,
		DeckSize:         20,
		MaxTurns:         30,
		MaxMessages:      50,
		TypeAdvantage:    true,
		Board:            board.Spec{Kind: board.KindSquare, Width: 5, Height: 4},
		PlayerNames:      [2]string{"Player", "Opponent"},
	}
}

// Validate checks that the settings describe a playable match.
func (s Settings) Validate() error {
	switch {
	case s.StartingHealth <= 0:
		return fmt.Errorf("starting health must be positive, got %d", s.StartingHealth)
	case s.MaxHealth < s.StartingHealth:
		return fmt.Errorf("max health %d below starting health %d", s.MaxHealth, s.StartingHealth)
	case s.StartingMana < 0 || s.MaxMana < s.StartingMana:
		return fmt.Errorf("mana must satisfy 0 <= starting (%d) <= max (%d)", s.StartingMana, s.MaxMana)
	case s.ManaPerTurn < 0 || s.DrawPerTurn < 0:
		return fmt.Errorf("per-turn mana and draw must not be negative")
	case s.MaxHandSize <= 0:
		return fmt.Errorf("max hand size must be positive, got %d", s.MaxHandSize)
	case s.StartingHandSize < 0 || s.StartingHandSize > s.MaxHandSize:
		return fmt.Errorf("starting hand size %d outside [0, %d]", s.StartingHandSize, s.MaxHandSize)
	case s.DeckSize < s.StartingHandSize:
		return fmt.Errorf("deck size %d smaller than starting hand %d", s.DeckSize, s.StartingHandSize)
	case s.MaxTurns < 0:
		return fmt.Errorf("max turns must not be negative, got %d", s.MaxTurns)
	}
	if _, err := s.Board.Geometry(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	return nil
}
