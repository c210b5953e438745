package game

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/hexclash/hexclash-server-go/internal/game/board"
	"github.com/hexclash/hexclash-server-go/internal/game/cards"
	"github.com/hexclash/hexclash-server-go/internal/game/combat"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
	"github.com/hexclash/hexclash-server-go/internal/game/rules"
)

const testSeed = 42

// constRNG returns the same roll every time. 0.99 never crits.
type constRNG float64

func (c constRNG) Float64() float64 {
	return float64(c)
}

func grunt() cards.Template {
	return cards.Template{
		ID:       "grunt",
		Name:     "Grunt",
		Category: cards.CategoryAttack,
		Rarity:   cards.RarityCommon,
		Attack:   5,
		Defense:  3,
		Speed:    2,
		Health:   40,
	}
}

func testSettings() Settings {
	s := DefaultSettings()
	s.Seed = testSeed
	s.TypeAdvantage = false
	return s
}

// newTestManager builds a manager over the grunt catalog unless templates are
// given. mutate may tweak the settings first.
func newTestManager(t *testing.T, mutate func(*Settings), templates ...cards.Template) *Manager {
	t.Helper()
	s := testSettings()
	if mutate != nil {
		mutate(&s)
	}
	if len(templates) == 0 {
		templates = []cards.Template{grunt()}
	}
	m, err := NewManager(zaptest.NewLogger(t), s, templates)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

// startedManager starts a match and removes critical hits from combat.
func startedManager(t *testing.T, mutate func(*Settings), templates ...cards.Template) *Manager {
	t.Helper()
	m := newTestManager(t, mutate, templates...)
	if err := m.StartGame(); err != nil {
		t.Fatalf("start game: %v", err)
	}
	m.mu.Lock()
	m.resolver = combat.NewResolver(constRNG(0.99), false)
	m.mu.Unlock()
	return m
}

// advanceTo moves the current turn forward to phase without going through the
// command layer.
func advanceTo(t *testing.T, m *Manager, phase rules.Phase) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; m.state.phase() != phase; i++ {
		if i > 4 {
			t.Fatalf("phase %s not reached", phase)
		}
		m.state.turns.AdvancePhase()
	}
}

// placeCard puts a fresh instance of tmpl for side directly onto the board.
func placeCard(t *testing.T, m *Manager, side player.Side, tmpl cards.Template, at board.Coord) *cards.Instance {
	t.Helper()
	card, err := cards.NewInstance(tmpl, tmpl.ID+"@"+at.String())
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.state.board.Place(at, side, card.ID); err != nil {
		t.Fatalf("place %s: %v", card.ID, err)
	}
	m.state.inPlay[card.ID] = card
	return card
}

// recorder collects every snapshot a manager publishes.
type recorder struct {
	snaps []Snapshot
}

func (r *recorder) listen(s Snapshot) {
	r.snaps = append(r.snaps, s)
}

func (r *recorder) last() Snapshot {
	return r.snaps[len(r.snaps)-1]
}

// scriptedFlavor answers immediately unless gate is set, in which case intros
// wait for it to close.
type scriptedFlavor struct {
	gate chan struct{}
}

func (f *scriptedFlavor) BattleIntro(ctx context.Context, playerName, opponentName string) string {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ""
		}
	}
	return playerName + " faces " + opponentName
}

func (f *scriptedFlavor) TacticalComment(ctx context.Context, playerName, cardName string) string {
	return playerName + " trusts " + cardName
}
