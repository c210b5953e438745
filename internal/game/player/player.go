package player

import (
	"errors"
	"fmt"

	"github.com/hexclash/hexclash-server-go/internal/game/cards"
	"github.com/hexclash/hexclash-server-go/internal/game/mana"
)

var (
	// ErrCardNotInHand is returned when a hand operation names an unknown card.
	ErrCardNotInHand = errors.New("card not in hand")
	// ErrInsufficientMana is returned when a play costs more than the pool holds.
	ErrInsufficientMana = errors.New("not enough mana")
	// ErrHandFull is returned when a card cannot be added to a full hand.
	ErrHandFull = errors.New("hand is full")
)

// Side identifies which half of the match a player controls.
type Side string

const (
	SideA Side = "side-a"
	SideB Side = "side-b"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// RNG is the random source used for shuffling. *rand.Rand satisfies it.
type RNG interface {
	Intn(n int) int
}

// Player holds one side's economy: piles, mana, health and score. Every card
// instance the player owns lives in exactly one of Hand, Deck, Discard or
// Fallen unless it is on the board.
type Player struct {
	ID          string
	Name        string
	Side        Side
	Health      int
	MaxHealth   int
	Mana        *mana.Pool
	MaxHandSize int
	Hand        []*cards.Instance
	Deck        []*cards.Instance
	Discard     []*cards.Instance
	Fallen      []*cards.Instance
	Score       int
	Active      bool
}

// Config holds the starting economy of a player.
type Config struct {
	StartingHealth int
	MaxHealth      int
	StartingMana   int
	MaxMana        int
	MaxHandSize    int
}

// New creates a player with an empty hand and the given deck.
func New(id, name string, side Side, cfg Config, deck []*cards.Instance) *Player {
	maxHealth := cfg.MaxHealth
	if maxHealth <= 0 {
		maxHealth = cfg.StartingHealth
	}
	return &Player{
		ID:          id,
		Name:        name,
		Side:        side,
		Health:      min(cfg.StartingHealth, maxHealth),
		MaxHealth:   maxHealth,
		Mana:        mana.NewPool(cfg.StartingMana, cfg.MaxMana),
		MaxHandSize: cfg.MaxHandSize,
		Hand:        make([]*cards.Instance, 0, cfg.MaxHandSize),
		Deck:        append([]*cards.Instance(nil), deck...),
		Discard:     make([]*cards.Instance, 0),
		Fallen:      make([]*cards.Instance, 0),
	}
}

// DrawResult describes what happened during one draw.
type DrawResult struct {
	// Card is the card added to the hand, nil when nothing was drawn into it.
	Card *cards.Instance
	// Burned is the card sent to discard because the hand was full.
	Burned *cards.Instance
	// Reshuffled is set when the discard pile was recycled into the deck.
	Reshuffled bool
}

// Draw takes the front card of the deck. An empty deck is refilled from the
// discard pile first. With a full hand the drawn card goes to discard.
func (p *Player) Draw(rng RNG) DrawResult {
	var res DrawResult
	if len(p.Deck) == 0 {
		if len(p.Discard) == 0 {
			return res
		}
		p.Deck = append(p.Deck, p.Discard...)
		p.Discard = p.Discard[:0]
		p.Shuffle(rng)
		res.Reshuffled = true
	}

	card := p.Deck[0]
	p.Deck = p.Deck[1:]

	if p.HandFull() {
		p.Discard = append(p.Discard, card)
		res.Burned = card
		return res
	}
	p.Hand = append(p.Hand, card)
	res.Card = card
	return res
}

// HandFull reports whether the hand is at its size limit.
func (p *Player) HandFull() bool {
	return len(p.Hand) >= p.MaxHandSize
}

// FindInHand returns the hand card with the given id.
func (p *Player) FindInHand(cardID string) (*cards.Instance, bool) {
	idx := p.handIndex(cardID)
	if idx < 0 {
		return nil, false
	}
	return p.Hand[idx], true
}

// PlayCard removes a card from the hand and pays its cost. If the mana is not
// there the hand and pool are left untouched.
func (p *Player) PlayCard(cardID string, cost int) (*cards.Instance, error) {
	idx := p.handIndex(cardID)
	if idx < 0 {
		return nil, fmt.Errorf("play %s: %w", cardID, ErrCardNotInHand)
	}
	if err := p.Mana.Spend(cost); err != nil {
		return nil, fmt.Errorf("play %s costs %d, have %d: %w", cardID, cost, p.Mana.Available(), ErrInsufficientMana)
	}
	return p.removeFromHand(idx), nil
}

// DiscardCard moves a hand card to the discard pile.
func (p *Player) DiscardCard(cardID string) error {
	idx := p.handIndex(cardID)
	if idx < 0 {
		return fmt.Errorf("discard %s: %w", cardID, ErrCardNotInHand)
	}
	p.Discard = append(p.Discard, p.removeFromHand(idx))
	return nil
}

// DiscardHand moves the whole hand to the discard pile and returns the count.
func (p *Player) DiscardHand() int {
	n := len(p.Hand)
	p.Discard = append(p.Discard, p.Hand...)
	p.Hand = p.Hand[:0]
	return n
}

// AddToHand puts a card into the hand, respecting the size limit.
func (p *Player) AddToHand(card *cards.Instance) error {
	if p.HandFull() {
		return ErrHandFull
	}
	p.Hand = append(p.Hand, card)
	return nil
}

// Bury records a card destroyed on the board.
func (p *Player) Bury(card *cards.Instance) {
	p.Fallen = append(p.Fallen, card)
}

// TakeDamage lowers health, floored at zero, and reports whether the player
// is still alive.
func (p *Player) TakeDamage(amount int) (applied int, alive bool) {
	if amount > 0 {
		applied = min(amount, p.Health)
		p.Health -= applied
	}
	return applied, p.Health > 0
}

// Heal restores health up to MaxHealth and returns the amount restored.
func (p *Player) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	applied := min(amount, p.MaxHealth-p.Health)
	p.Health += applied
	return applied
}

// RestoreMana adds mana up to the pool's max and returns the amount added.
func (p *Player) RestoreMana(amount int) int {
	return p.Mana.Add(amount)
}

// Shuffle permutes the deck in place with Fisher-Yates.
func (p *Player) Shuffle(rng RNG) {
	for i := len(p.Deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i]
	}
}

// IsAlive reports whether the player has health left.
func (p *Player) IsAlive() bool {
	return p.Health > 0
}

// CardCount returns the number of cards across hand, deck, discard and fallen.
func (p *Player) CardCount() int {
	return len(p.Hand) + len(p.Deck) + len(p.Discard) + len(p.Fallen)
}

func (p *Player) handIndex(cardID string) int {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

func (p *Player) removeFromHand(idx int) *cards.Instance {
	card := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return card
}
