// Package ai drives one side of a match through the same seat commands a
// client uses.
package ai

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hexclash/hexclash-server-go/internal/game"
	"github.com/hexclash/hexclash-server-go/internal/game/board"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
	"github.com/hexclash/hexclash-server-go/internal/game/rules"
)

// RNG picks placement tiles.
type RNG interface {
	Intn(n int) int
}

// Bot plays a turn in priority order: place the most expensive affordable
// card, strike the weakest target in reach, end the turn.
type Bot struct {
	logger *zap.Logger
	seat   *game.Seat
	rng    RNG

	mu   sync.Mutex
	busy bool
}

// New creates a bot for seat. A nil rng is seeded from the clock.
func New(logger *zap.Logger, seat *game.Seat, rng RNG) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Bot{
		logger: logger.With(zap.String("side", string(seat.Side()))),
		seat:   seat,
		rng:    rng,
	}
}

// OnSnapshot is a game.Listener. The snapshot only triggers the bot; it acts
// on the live state, so queued snapshots of turns it already played are
// ignored.
func (b *Bot) OnSnapshot(game.Snapshot) {
	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		return
	}
	b.busy = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.busy = false
		b.mu.Unlock()
	}()

	if err := b.TakeTurn(); err != nil {
		b.logger.Warn("bot turn failed", zap.Error(err))
	}
}

// TakeTurn plays the bot's turn if it is the active side. After a won match
// it claims the first template offered as loot.
func (b *Bot) TakeTurn() error {
	snap := b.seat.Snapshot()
	if snap.GameOver {
		return b.claimLoot(snap)
	}
	if !b.myTurn(snap) {
		return nil
	}

	if snap.Phase == rules.PhasePlay {
		if err := b.playBest(snap); err != nil {
			return err
		}
		snap = b.seat.Snapshot()
	}
	if snap.Phase == rules.PhaseAttack && !snap.GameOver {
		if err := b.attackWeakest(snap); err != nil {
			return err
		}
		snap = b.seat.Snapshot()
	}
	if snap.GameOver {
		return nil
	}
	return b.seat.NextTurn()
}

func (b *Bot) claimLoot(snap game.Snapshot) error {
	if snap.Winner != b.seat.Side() || len(snap.Loot) == 0 {
		return nil
	}
	b.logger.Debug("claiming loot", zap.String("template", snap.Loot[0]))
	return b.seat.ClaimLoot(snap.Loot[0])
}

func (b *Bot) myTurn(snap game.Snapshot) bool {
	return snap.Started && !snap.GameOver && snap.ActiveSide == b.seat.Side()
}

func (b *Bot) playBest(snap game.Snapshot) error {
	me := snap.Player(b.seat.Side())
	if me == nil {
		return nil
	}
	card, ok := pickCard(me.Hand, me.Mana)
	if !ok {
		b.logger.Debug("no affordable card", zap.Int("mana", me.Mana))
		return nil
	}
	free := freeTiles(snap, board.ZoneFor(b.seat.Side()))
	if len(free) == 0 {
		return nil
	}
	at := free[b.rng.Intn(len(free))]

	if err := b.seat.SelectCard(card.ID); err != nil {
		return fmt.Errorf("select %s: %w", card.ID, err)
	}
	if err := b.seat.PlayCard(at); err != nil {
		return fmt.Errorf("play %s at %s: %w", card.ID, at, err)
	}
	b.logger.Debug("bot played card", zap.String("card", card.Name), zap.Stringer("at", at))
	return nil
}

// attackWeakest tries strikes from the weakest target up. Rejections such as
// out of range move on to the next candidate.
func (b *Bot) attackWeakest(snap game.Snapshot) error {
	for _, s := range strikes(snap, b.seat.Side()) {
		err := b.seat.Attack(s.from, s.to)
		if err == nil {
			b.logger.Debug("bot attacked", zap.Stringer("from", s.from), zap.Stringer("to", s.to))
			return nil
		}
		var re *game.RejectedError
		if !errors.As(err, &re) {
			return err
		}
	}
	return nil
}

// pickCard returns the most expensive card that mana covers, earliest in hand
// on ties.
func pickCard(hand []game.CardView, mana int) (game.CardView, bool) {
	best, found := game.CardView{}, false
	for _, c := range hand {
		if c.Cost > mana {
			continue
		}
		if !found || c.Cost > best.Cost {
			best, found = c, true
		}
	}
	return best, found
}

func freeTiles(snap game.Snapshot, zone board.Zone) []board.Coord {
	var out []board.Coord
	for _, t := range snap.Board.Tiles {
		if t.Zone == zone && t.Occupant == nil {
			out = append(out, board.Coord{X: t.X, Y: t.Y})
		}
	}
	return out
}

type strike struct {
	from, to board.Coord
	health   int
}

// strikes lists every attacker/target pair, weakest target first. Enemy
// cards weigh their health; empty enemy tiles weigh the enemy player's.
func strikes(snap game.Snapshot, side player.Side) []strike {
	enemy := snap.Player(side.Opponent())
	if enemy == nil {
		return nil
	}
	enemyZone := board.ZoneFor(side.Opponent())

	var attackers []board.Coord
	var targets []strike
	for _, t := range snap.Board.Tiles {
		c := board.Coord{X: t.X, Y: t.Y}
		switch {
		case t.Occupant != nil && t.Occupant.Side == side:
			attackers = append(attackers, c)
		case t.Occupant != nil:
			targets = append(targets, strike{to: c, health: t.Occupant.Card.Health})
		case t.Zone == enemyZone:
			targets = append(targets, strike{to: c, health: enemy.Health})
		}
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].health < targets[j].health
	})

	out := make([]strike, 0, len(attackers)*len(targets))
	for _, target := range targets {
		for _, from := range attackers {
			out = append(out, strike{from: from, to: target.to, health: target.health})
		}
	}
	return out
}
