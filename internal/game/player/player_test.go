package player

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexclash/hexclash-server-go/internal/game/cards"
)

func testConfig() Config {
	return Config{StartingHealth: 100, MaxHealth: 100, StartingMana: 10, MaxMana: 20, MaxHandSize: 3}
}

func testDeck(n int) []*cards.Instance {
	deck := make([]*cards.Instance, n)
	for i := range deck {
		deck[i] = &cards.Instance{ID: fmt.Sprintf("card-%d", i), Category: cards.CategoryAttack, Rarity: cards.RarityCommon, Level: 1, Health: 10}
	}
	return deck
}

func ids(cs []*cards.Instance) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestDrawFromFront(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), testDeck(4))

	res := p.Draw(rand.New(rand.NewSource(1)))
	require.NotNil(t, res.Card)
	assert.Equal(t, "card-0", res.Card.ID)
	assert.Equal(t, []string{"card-0"}, ids(p.Hand))
	assert.Len(t, p.Deck, 3)
	assert.False(t, res.Reshuffled)
}

func TestDrawBurnsWhenHandFull(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), testDeck(5))
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 3; i++ {
		p.Draw(rng)
	}
	res := p.Draw(rng)

	assert.Nil(t, res.Card)
	require.NotNil(t, res.Burned)
	assert.Equal(t, "card-3", res.Burned.ID)
	assert.Len(t, p.Hand, 3)
	assert.Equal(t, []string{"card-3"}, ids(p.Discard))
	assert.Equal(t, 5, p.CardCount())
}

func TestDrawReshufflesDiscard(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), nil)
	p.Discard = testDeck(3)

	res := p.Draw(rand.New(rand.NewSource(7)))
	assert.True(t, res.Reshuffled)
	require.NotNil(t, res.Card)
	assert.Empty(t, p.Discard)
	assert.Len(t, p.Deck, 2)
	assert.Equal(t, 3, p.CardCount())
}

func TestDrawFromEmptyPiles(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), nil)

	res := p.Draw(rand.New(rand.NewSource(1)))
	assert.Nil(t, res.Card)
	assert.Nil(t, res.Burned)
	assert.False(t, res.Reshuffled)
}

func TestHandNeverExceedsLimit(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	p := New("p1", "Alice", SideA, testConfig(), testDeck(12))

	for i := 0; i < 40; i++ {
		p.Draw(rng)
		require.LessOrEqual(t, len(p.Hand), p.MaxHandSize)
		require.Equal(t, 12, p.CardCount())
		if i%4 == 0 && len(p.Hand) > 0 {
			require.NoError(t, p.DiscardCard(p.Hand[0].ID))
		}
	}
}

func TestPlayCard(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), testDeck(2))
	rng := rand.New(rand.NewSource(1))
	p.Draw(rng)
	p.Draw(rng)

	card, err := p.PlayCard("card-1", 3)
	require.NoError(t, err)
	assert.Equal(t, "card-1", card.ID)
	assert.Equal(t, 7, p.Mana.Available())
	assert.Equal(t, []string{"card-0"}, ids(p.Hand))
}

func TestPlayCardInsufficientMana(t *testing.T) {
	cfg := testConfig()
	cfg.StartingMana = 3
	p := New("p1", "Alice", SideA, cfg, testDeck(2))
	rng := rand.New(rand.NewSource(1))
	p.Draw(rng)
	p.Draw(rng)

	card, err := p.PlayCard("card-0", 5)
	assert.Nil(t, card)
	assert.True(t, errors.Is(err, ErrInsufficientMana))
	assert.Equal(t, 3, p.Mana.Available())
	assert.Equal(t, []string{"card-0", "card-1"}, ids(p.Hand), "hand must be unchanged")
}

func TestPlayCardNotInHand(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), testDeck(1))

	_, err := p.PlayCard("missing", 1)
	assert.ErrorIs(t, err, ErrCardNotInHand)
	assert.Equal(t, 10, p.Mana.Available())
}

func TestDiscardHand(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), testDeck(3))
	rng := rand.New(rand.NewSource(1))
	p.Draw(rng)
	p.Draw(rng)

	assert.Equal(t, 2, p.DiscardHand())
	assert.Empty(t, p.Hand)
	assert.Len(t, p.Discard, 2)
}

func TestAddToHandRespectsLimit(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), nil)
	for _, c := range testDeck(3) {
		require.NoError(t, p.AddToHand(c))
	}
	assert.ErrorIs(t, p.AddToHand(&cards.Instance{ID: "extra"}), ErrHandFull)
}

func TestTakeDamageAndHeal(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), nil)

	applied, alive := p.TakeDamage(30)
	assert.Equal(t, 30, applied)
	assert.True(t, alive)

	assert.Equal(t, 30, p.Heal(50))
	assert.Equal(t, 100, p.Health)

	applied, alive = p.TakeDamage(250)
	assert.Equal(t, 100, applied)
	assert.False(t, alive)
	assert.Equal(t, 0, p.Health)
}

func TestRestoreManaCapped(t *testing.T) {
	p := New("p1", "Alice", SideA, testConfig(), nil)
	p.RestoreMana(3)
	p.RestoreMana(30)
	assert.Equal(t, 20, p.Mana.Available())
}

func TestShuffleIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	for n := 0; n < 20; n++ {
		p := New("p1", "Alice", SideA, testConfig(), testDeck(n))
		before := ids(p.Deck)
		p.Shuffle(rng)
		after := ids(p.Deck)

		sort.Strings(before)
		sort.Strings(after)
		require.Equal(t, before, after)
	}
}

func TestSideOpponent(t *testing.T) {
	assert.Equal(t, SideB, SideA.Opponent())
	assert.Equal(t, SideA, SideB.Opponent())
}
