package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hexclash/hexclash-server-go/internal/game/board"
	"github.com/hexclash/hexclash-server-go/internal/game/cards"
	"github.com/hexclash/hexclash-server-go/internal/game/combat"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
	"github.com/hexclash/hexclash-server-go/internal/game/rules"
	"github.com/hexclash/hexclash-server-go/internal/game/watchers"
)

// Command names used in rejections and logs.
const (
	CommandStartGame  = "start_game"
	CommandSelectCard = "select_card"
	CommandPlayCard   = "play_card"
	CommandAttack     = "attack"
	CommandHeal       = "heal"
	CommandNextTurn   = "next_turn"
	CommandResetGame  = "reset_game"
	CommandClaimLoot  = "claim_loot"
)

var sides = [2]player.Side{player.SideA, player.SideB}

// Listener receives a snapshot after every successful command. Each listener
// gets its own copy.
type Listener func(Snapshot)

type listenerEntry struct {
	id int
	fn Listener
}

// Option configures a Manager.
type Option func(*Manager)

// WithFlavor enables narrative text for intros and card plays.
func WithFlavor(f FlavorText) Option {
	return func(m *Manager) {
		m.flavor = f
	}
}

// Manager owns one match and is the only thing that mutates it. Commands are
// serialised; listeners are notified in order, outside the state lock, once
// the mutation is complete.
type Manager struct {
	logger   *zap.Logger
	settings Settings
	pricing  cards.Pricing
	flavor   FlavorText
	seed     int64

	ctx      context.Context
	cancel   context.CancelFunc
	flavorWG sync.WaitGroup

	mu       sync.Mutex
	rng      *rand.Rand
	resolver *combat.Resolver
	state    *gameState
	epoch    uint64
	bus      *rules.EventBus
	watchers *rules.WatcherRegistry

	// collections are the templates each side deals its deck from. Loot
	// moves templates between them for the lifetime of the manager.
	collections [2][]cards.Template

	deliverMu    sync.Mutex
	listeners    []listenerEntry
	nextListener int
	pending      []Snapshot
	delivering   bool
}

// NewManager creates a manager for matches played with settings and the
// given card catalog. A zero seed is replaced by the current time. Team
// entries must name catalog templates.
func NewManager(logger *zap.Logger, settings Settings, templates []cards.Template, opts ...Option) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if len(templates) == 0 {
		return nil, errors.New("card catalog is empty")
	}
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
	}
	collections, err := buildCollections(templates, settings.Teams)
	if err != nil {
		return nil, err
	}
	for i, name := range settings.PlayerNames {
		if strings.TrimSpace(name) == "" {
			settings.PlayerNames[i] = DefaultSettings().PlayerNames[i]
		}
	}

	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:      logger,
		settings:    settings,
		pricing:     cards.Pricing{CategoryMultiplier: settings.CategoryCostMultiplier},
		seed:        seed,
		ctx:         ctx,
		cancel:      cancel,
		rng:         rand.New(rand.NewSource(seed)),
		state:       newGameState(settings.MaxMessages),
		bus:         rules.NewEventBus(),
		watchers:    rules.NewWatcherRegistry(),
		collections: collections,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.resolver = combat.NewResolver(m.rng, settings.TypeAdvantage)
	watchers.RegisterDefaults(m.watchers)
	m.bus.Subscribe(m.watchers.NotifyWatchers)
	m.bus.Subscribe(m.logEvent)
	return m, nil
}

// Seed returns the seed matches of this manager are derived from.
func (m *Manager) Seed() int64 {
	return m.seed
}

// Pricing returns the cost formula in use.
func (m *Manager) Pricing() cards.Pricing {
	return m.pricing
}

// Close cancels outstanding flavor requests and waits for them.
func (m *Manager) Close() {
	m.cancel()
	m.flavorWG.Wait()
}

// Subscribe registers a listener and returns a function that removes it.
func (m *Manager) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	m.deliverMu.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners = append(m.listeners, listenerEntry{id: id, fn: l})
	m.deliverMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.deliverMu.Lock()
			defer m.deliverMu.Unlock()
			for i, e := range m.listeners {
				if e.id == id {
					m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Snapshot returns the current state of the match.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// IsGameOver reports whether the current match reached its end.
func (m *Manager) IsGameOver() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.over
}

// StartGame deals a new match. It is refused while a match is in progress.
func (m *Manager) StartGame() error {
	return m.run(CommandStartGame, nil, false, func(st *gameState) error {
		if st.started && !st.over {
			return reject(CommandStartGame, ReasonAlreadyStarted, "match %s in progress", st.matchID)
		}
		return m.startLocked()
	})
}

// ResetGame abandons the current match. Flavor text still in flight for it is
// dropped when it arrives.
func (m *Manager) ResetGame() error {
	return m.run(CommandResetGame, nil, false, func(st *gameState) error {
		m.epoch++
		m.state = newGameState(m.settings.MaxMessages)
		m.watchers.ResetWatchers()
		m.state.addMessage(MessageSystem, "Match reset")
		m.emit(rules.NewEvent(rules.EventMatchReset, "", "", st.matchID))
		m.logger.Info("match reset", zap.String("match_id", st.matchID), zap.Uint64("epoch", m.epoch))
		return nil
	})
}

// SelectCard marks a card in the active player's hand for the next play and
// highlights the free tiles it may go to.
func (m *Manager) SelectCard(cardID string) error {
	return m.selectCard(nil, cardID)
}

// PlayCard pays for the selected card and places it on c.
func (m *Manager) PlayCard(c board.Coord) error {
	return m.playCard(nil, c)
}

// Attack strikes from the active player's card at from to the enemy card at
// to, or to the enemy player when to is an empty tile of the enemy zone.
func (m *Manager) Attack(from, to board.Coord) error {
	return m.attack(nil, from, to)
}

// Heal uses the card at from to restore health to a friendly card at to.
func (m *Manager) Heal(from, to board.Coord) error {
	return m.heal(nil, from, to)
}

// NextTurn ends the active player's turn and runs the opponent's draw phase.
func (m *Manager) NextTurn() error {
	return m.nextTurn(nil)
}

// ClaimLoot moves the template templateID from the loser's collection to the
// winner's once a match was won. Later matches deal from the new collections.
func (m *Manager) ClaimLoot(templateID string) error {
	return m.claimLoot(nil, templateID)
}

func (m *Manager) selectCard(actor *player.Side, cardID string) error {
	return m.run(CommandSelectCard, actor, true, func(st *gameState) error {
		if phase := st.phase(); phase != rules.PhasePlay {
			return reject(CommandSelectCard, ReasonWrongPhase, "cards are selected in the play phase, not %s", phase)
		}
		p := st.active()
		card, ok := p.FindInHand(cardID)
		if !ok {
			if _, theirs := st.opponent().FindInHand(cardID); theirs {
				return reject(CommandSelectCard, ReasonNotYourCard, "%s is not in %s's hand", cardID, p.Name)
			}
			return reject(CommandSelectCard, ReasonUnknownCard, "%s", cardID)
		}

		st.selected = card.ID
		st.board.ClearHighlights()
		for _, t := range st.board.ZoneTiles(board.ZoneFor(p.Side)) {
			if !t.Occupied() {
				st.board.Highlight(t.Coord)
			}
		}
		m.emit(rules.NewEvent(rules.EventCardSelected, p.ID, card.ID, ""))
		st.addMessage(MessageAction, fmt.Sprintf("%s selects %s (cost %d)", p.Name, card.Name, m.pricing.CostOf(card)))
		return nil
	})
}

func (m *Manager) playCard(actor *player.Side, c board.Coord) error {
	return m.run(CommandPlayCard, actor, true, func(st *gameState) error {
		if phase := st.phase(); phase != rules.PhasePlay {
			return reject(CommandPlayCard, ReasonWrongPhase, "cards are played in the play phase, not %s", phase)
		}
		p := st.active()
		if st.selected == "" {
			return reject(CommandPlayCard, ReasonNoSelection, "select a card first")
		}
		card, ok := p.FindInHand(st.selected)
		if !ok {
			return reject(CommandPlayCard, ReasonNoSelection, "selected card %s left the hand", st.selected)
		}
		tile, ok := st.board.Tile(c)
		if !ok {
			return reject(CommandPlayCard, ReasonOutOfBounds, "%s", c)
		}
		if tile.Zone != board.ZoneFor(p.Side) {
			return reject(CommandPlayCard, ReasonNotInZone, "%s belongs to %s", c, tile.Zone)
		}
		if tile.Occupied() {
			return reject(CommandPlayCard, ReasonOccupied, "%s", c)
		}

		cost := m.pricing.CostOf(card)
		if err := st.board.Place(c, p.Side, card.ID); err != nil {
			return fmt.Errorf("place %s: %w", card.ID, err)
		}
		if _, err := p.PlayCard(card.ID, cost); err != nil {
			// The hand and mana are untouched; only the tile needs clearing.
			if _, verr := st.board.Vacate(c); verr != nil {
				m.logger.Error("vacate after refused play", zap.String("card", card.ID), zap.Error(verr))
			}
			reason := ReasonUnknownCard
			if errors.Is(err, player.ErrInsufficientMana) {
				reason = ReasonInsufficientMana
			}
			return &RejectedError{
				Command: CommandPlayCard,
				Reason:  reason,
				Detail:  fmt.Sprintf("%s costs %d, %d available", card.Name, cost, p.Mana.Available()),
				Err:     err,
			}
		}
		st.inPlay[card.ID] = card
		m.clearSelectionLocked()

		m.emit(rules.NewEventWithAmount(rules.EventCardPlayed, p.ID, card.ID, "", cost))
		st.addMessage(MessageAction, fmt.Sprintf("%s plays %s at %s for %d mana", p.Name, card.Name, c, cost))
		m.advanceLocked()
		m.requestComment(m.epoch, p.Name, card.Name)
		return nil
	})
}

func (m *Manager) attack(actor *player.Side, from, to board.Coord) error {
	return m.run(CommandAttack, actor, true, func(st *gameState) error {
		if phase := st.phase(); phase != rules.PhaseAttack {
			return reject(CommandAttack, ReasonWrongPhase, "attacks happen in the attack phase, not %s", phase)
		}
		p, opp := st.active(), st.opponent()

		attacker, err := m.friendlyCardAt(CommandAttack, st, p, from)
		if err != nil {
			return err
		}
		target, ok := st.board.Tile(to)
		if !ok {
			return reject(CommandAttack, ReasonOutOfBounds, "%s", to)
		}
		defender, defSide, occupied := st.occupantAt(to)
		switch {
		case occupied && defSide == p.Side:
			return reject(CommandAttack, ReasonInvalidTarget, "%s holds a friendly card", to)
		case !occupied && target.Zone != board.ZoneFor(opp.Side):
			return reject(CommandAttack, ReasonInvalidTarget, "%s is empty and outside the enemy zone", to)
		}
		distance := st.board.Distance(from, to)
		if !combat.CanAttack(attacker, distance) {
			return reject(CommandAttack, ReasonOutOfRange, "%s reaches %d, target is %d away", attacker.Name, combat.MaxRange(attacker.Category), distance)
		}

		if occupied {
			m.strikeCardLocked(p, opp, attacker, defender, to)
		} else {
			m.strikePlayerLocked(p, opp, attacker)
		}
		if !st.over {
			m.advanceLocked()
		}
		return nil
	})
}

func (m *Manager) heal(actor *player.Side, from, to board.Coord) error {
	return m.run(CommandHeal, actor, true, func(st *gameState) error {
		if phase := st.phase(); phase != rules.PhaseAttack {
			return reject(CommandHeal, ReasonWrongPhase, "healing happens in the attack phase, not %s", phase)
		}
		p := st.active()

		healer, err := m.friendlyCardAt(CommandHeal, st, p, from)
		if err != nil {
			return err
		}
		if from == to {
			return reject(CommandHeal, ReasonInvalidTarget, "%s cannot heal itself", healer.Name)
		}
		if _, ok := st.board.Tile(to); !ok {
			return reject(CommandHeal, ReasonOutOfBounds, "%s", to)
		}
		target, side, ok := st.occupantAt(to)
		if !ok || side != p.Side {
			return reject(CommandHeal, ReasonInvalidTarget, "%s holds no friendly card", to)
		}
		distance := st.board.Distance(from, to)
		if !combat.CanAttack(healer, distance) {
			return reject(CommandHeal, ReasonOutOfRange, "%s reaches %d, target is %d away", healer.Name, combat.MaxRange(healer.Category), distance)
		}

		applied := target.Heal(combat.Healing(healer, target))
		m.emit(rules.NewEventWithAmount(rules.EventCardHealed, p.ID, healer.ID, target.ID, applied))
		st.addMessage(MessageCombat, fmt.Sprintf("%s heals %s for %d", healer.Name, target.Name, applied))
		m.advanceLocked()
		return nil
	})
}

func (m *Manager) nextTurn(actor *player.Side) error {
	return m.run(CommandNextTurn, actor, true, func(st *gameState) error {
		p := st.active()
		m.clearSelectionLocked()
		st.addMessage(MessageAction, fmt.Sprintf("%s ends the turn", p.Name))
		for st.active() == p && !st.over {
			m.advanceLocked()
		}
		return nil
	})
}

func (m *Manager) claimLoot(actor *player.Side, templateID string) error {
	return m.run(CommandClaimLoot, actor, false, func(st *gameState) error {
		switch {
		case !st.started:
			return reject(CommandClaimLoot, ReasonNotStarted, "no match was played")
		case !st.over || !st.lootOpen:
			return reject(CommandClaimLoot, ReasonNoLoot, "nothing to claim")
		case actor != nil && *actor != st.winner:
			return reject(CommandClaimLoot, ReasonNotWinner, "%s won the match", st.winner)
		}
		wi, li := sideIndex(st.winner), 1-sideIndex(st.winner)
		idx := -1
		for i, t := range m.collections[li] {
			if t.ID == templateID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return reject(CommandClaimLoot, ReasonUnknownCard, "%s is not in the loser's collection", templateID)
		}

		loser := m.collections[li]
		tmpl := loser[idx]
		m.collections[li] = append(loser[:idx:idx], loser[idx+1:]...)
		m.collections[wi] = append(m.collections[wi], tmpl)
		st.lootOpen = false

		w := st.players[wi]
		m.emit(rules.NewEvent(rules.EventLootClaimed, string(w.Side), tmpl.ID, string(st.players[li].Side)))
		st.addMessage(MessageSystem, fmt.Sprintf("%s claims %s from %s", w.Name, tmpl.Name, st.players[li].Name))
		m.logger.Info("loot claimed",
			zap.String("match_id", st.matchID),
			zap.String("winner", string(w.Side)),
			zap.String("template", tmpl.ID),
		)
		return nil
	})
}

// run executes one command under the state lock and then notifies
// listeners. fn must validate everything before it mutates.
func (m *Manager) run(command string, actor *player.Side, live bool, fn func(*gameState) error) error {
	m.mu.Lock()
	if live {
		if err := m.checkLiveLocked(command, actor); err != nil {
			m.mu.Unlock()
			m.logRejection(err)
			return err
		}
	}
	if err := fn(m.state); err != nil {
		m.mu.Unlock()
		m.logRejection(err)
		return err
	}
	m.enqueueLocked()
	m.mu.Unlock()

	m.flush()
	return nil
}

func (m *Manager) checkLiveLocked(command string, actor *player.Side) error {
	st := m.state
	switch {
	case !st.started:
		return reject(command, ReasonNotStarted, "no match in progress")
	case st.over:
		return reject(command, ReasonGameOver, "match %s is over", st.matchID)
	case actor != nil && *actor != st.active().Side:
		return reject(command, ReasonNotYourTurn, "%s is active", st.active().Name)
	}
	return nil
}

func (m *Manager) logRejection(err error) {
	var re *RejectedError
	if errors.As(err, &re) {
		m.logger.Debug("command rejected",
			zap.String("command", re.Command),
			zap.String("reason", string(re.Reason)),
			zap.String("detail", re.Detail),
		)
		return
	}
	m.logger.Error("command failed", zap.Error(err))
}

// enqueueLocked queues a snapshot of the state for delivery. Called with mu
// held so snapshots queue in mutation order.
func (m *Manager) enqueueLocked() {
	snap := m.snapshotLocked()
	m.deliverMu.Lock()
	m.pending = append(m.pending, snap)
	m.deliverMu.Unlock()
}

// flush delivers queued snapshots. Only one goroutine delivers at a time; a
// command issued from inside a listener queues its snapshot and returns, and
// the outer delivery loop picks it up after the current round.
func (m *Manager) flush() {
	m.deliverMu.Lock()
	if m.delivering {
		m.deliverMu.Unlock()
		return
	}
	m.delivering = true
	for len(m.pending) > 0 {
		snap := m.pending[0]
		m.pending = m.pending[1:]
		listeners := append([]listenerEntry(nil), m.listeners...)
		m.deliverMu.Unlock()

		for _, l := range listeners {
			l.fn(snap.clone())
		}

		m.deliverMu.Lock()
	}
	m.delivering = false
	m.deliverMu.Unlock()
}

func (m *Manager) startLocked() error {
	epoch := m.epoch + 1
	var decks [2][]*cards.Instance
	for i, side := range sides {
		deck, err := buildDeck(m.collections[i], side, m.settings.DeckSize, m.seed, epoch)
		if err != nil {
			return fmt.Errorf("build %s deck: %w", side, err)
		}
		decks[i] = deck
	}
	geometry, err := m.settings.Board.Geometry()
	if err != nil {
		return fmt.Errorf("build board: %w", err)
	}

	m.epoch = epoch
	m.rng = rand.New(rand.NewSource(m.seed + int64(epoch)))
	m.resolver = combat.NewResolver(m.rng, m.settings.TypeAdvantage)
	m.watchers.ResetWatchers()

	st := newGameState(m.settings.MaxMessages)
	st.matchID = uuid.NewString()
	st.board = board.New(geometry)
	st.turns = rules.NewTurnManager(len(sides), m.settings.MaxTurns)
	cfg := player.Config{
		StartingHealth: m.settings.StartingHealth,
		MaxHealth:      m.settings.MaxHealth,
		StartingMana:   m.settings.StartingMana,
		MaxMana:        m.settings.MaxMana,
		MaxHandSize:    m.settings.MaxHandSize,
	}
	for i, side := range sides {
		p := player.New(string(side), m.settings.PlayerNames[i], side, cfg, decks[i])
		p.Shuffle(m.rng)
		st.players[i] = p
	}
	st.started = true
	m.state = st

	a, b := st.players[0], st.players[1]
	st.addMessage(MessageSystem, fmt.Sprintf("Match started: %s vs %s", a.Name, b.Name))
	m.emit(rules.NewEvent(rules.EventMatchStarted, "", "", st.matchID))
	for _, p := range st.players {
		for i := 0; i < m.settings.StartingHandSize; i++ {
			m.drawLocked(p)
		}
	}
	m.beginTurnLocked(true)

	m.logger.Info("match started",
		zap.String("match_id", st.matchID),
		zap.Int64("seed", m.seed),
		zap.Uint64("epoch", epoch),
	)
	m.requestIntro(epoch, a.Name, b.Name)
	return nil
}

// beginTurnLocked runs the draw phase of the active player and moves on to
// play. The opening turn uses the starting hand and mana as they are.
func (m *Manager) beginTurnLocked(first bool) {
	st := m.state
	p := st.active()
	for _, q := range st.players {
		q.Active = q == p
	}
	m.watchers.ResetWatchersByScope(rules.WatcherScopeTurn)
	m.emit(rules.NewEvent(rules.EventTurnBegan, p.ID, "", ""))
	st.addMessage(MessageSystem, fmt.Sprintf("Turn %d: %s", st.turn(), p.Name))

	for _, c := range p.Hand {
		c.TickCooldowns()
	}
	for _, t := range st.board.OwnedBy(p.Side) {
		if c, ok := st.inPlay[t.Occupant.CardID]; ok {
			c.TickCooldowns()
		}
	}

	if !first {
		if added := p.RestoreMana(m.settings.ManaPerTurn); added > 0 {
			m.emit(rules.NewEventWithAmount(rules.EventManaRestored, p.ID, "", p.ID, added))
		}
		for i := 0; i < m.settings.DrawPerTurn; i++ {
			m.drawLocked(p)
		}
	}
	m.advanceLocked()
}

// advanceLocked moves one phase forward and handles turn rollover and the
// turn limit.
func (m *Manager) advanceLocked() {
	st := m.state
	phase, newTurn := st.turns.AdvancePhase()
	if st.turns.IsOver() {
		m.finishByScoreLocked()
		return
	}
	evt := rules.NewEvent(rules.EventPhaseChanged, st.active().ID, "", "")
	evt.Data = phase.String()
	m.emit(evt)
	if newTurn {
		m.beginTurnLocked(false)
	}
}

func (m *Manager) drawLocked(p *player.Player) {
	st := m.state
	res := p.Draw(m.rng)
	if res.Reshuffled {
		m.emit(rules.NewEvent(rules.EventDeckReshuffled, p.ID, "", ""))
		st.addMessage(MessageSystem, fmt.Sprintf("%s reshuffles the discard pile into the deck", p.Name))
	}
	switch {
	case res.Card != nil:
		m.emit(rules.NewEvent(rules.EventCardDrawn, p.ID, res.Card.ID, ""))
	case res.Burned != nil:
		m.emit(rules.NewEvent(rules.EventCardBurned, p.ID, res.Burned.ID, ""))
		st.addMessage(MessageSystem, fmt.Sprintf("%s's hand is full, %s is discarded", p.Name, res.Burned.Name))
	}
}

func (m *Manager) friendlyCardAt(command string, st *gameState, p *player.Player, c board.Coord) (*cards.Instance, error) {
	if _, ok := st.board.Tile(c); !ok {
		return nil, reject(command, ReasonOutOfBounds, "%s", c)
	}
	card, side, ok := st.occupantAt(c)
	if !ok {
		return nil, reject(command, ReasonNoAttacker, "no card at %s", c)
	}
	if side != p.Side {
		return nil, reject(command, ReasonNotYourCard, "%s belongs to %s", card.Name, side)
	}
	return card, nil
}

func (m *Manager) strikeCardLocked(p, opp *player.Player, attacker, defender *cards.Instance, at board.Coord) {
	st := m.state
	res := m.resolver.Resolve(attacker, defender)
	applied := defender.Damage(res.Damage)
	p.Score += applied

	evt := rules.NewEventWithAmount(rules.EventAttackResolved, p.ID, attacker.ID, defender.ID, applied)
	evt.Flag = res.IsCritical
	evt.Data = strings.Join(res.AbilitiesUsed, ",")
	m.emit(evt)
	st.addMessage(MessageCombat, describeHit(attacker.Name, defender.Name, applied, res))

	if !defender.IsDead() {
		return
	}
	if _, err := st.board.Vacate(at); err != nil {
		m.logger.Error("vacate destroyed card", zap.String("card", defender.ID), zap.Error(err))
	}
	delete(st.inPlay, defender.ID)
	opp.Bury(defender)
	m.emit(rules.NewEvent(rules.EventCardDestroyed, p.ID, attacker.ID, defender.ID))
	st.addMessage(MessageCombat, fmt.Sprintf("%s is destroyed", defender.Name))

	if attacker.LevelUp() {
		m.emit(rules.NewEventWithAmount(rules.EventCardLeveled, p.ID, attacker.ID, "", attacker.Level))
		st.addMessage(MessageCombat, fmt.Sprintf("%s reaches level %d", attacker.Name, attacker.Level))
	}
}

func (m *Manager) strikePlayerLocked(p, opp *player.Player, attacker *cards.Instance) {
	st := m.state
	// A player has no armour; only health feeds ability formulas.
	target := &cards.Instance{
		ID:     opp.ID,
		Name:   opp.Name,
		Health: min(opp.Health, cards.MaxHealth),
		Level:  1,
	}
	res := m.resolver.Resolve(attacker, target)
	applied, alive := opp.TakeDamage(res.Damage)
	p.Score += applied

	evt := rules.NewEventWithAmount(rules.EventPlayerDamaged, p.ID, attacker.ID, opp.ID, applied)
	evt.Flag = res.IsCritical
	evt.Data = strings.Join(res.AbilitiesUsed, ",")
	m.emit(evt)
	st.addMessage(MessageCombat, describeHit(attacker.Name, opp.Name, applied, res))

	if !alive {
		m.finishLocked(p.Side, fmt.Sprintf("%s has no health left", opp.Name))
	}
}

func (m *Manager) finishByScoreLocked() {
	a, b := m.state.players[0], m.state.players[1]
	reason := fmt.Sprintf("turn limit reached, score %d to %d", a.Score, b.Score)
	switch {
	case a.Score > b.Score:
		m.finishLocked(a.Side, reason)
	case b.Score > a.Score:
		m.finishLocked(b.Side, reason)
	default:
		m.finishLocked("", reason)
	}
}

func (m *Manager) finishLocked(winner player.Side, reason string) {
	st := m.state
	st.over = true
	st.winner = winner
	st.turns.End()
	m.clearSelectionLocked()

	text := "Match ends in a draw: " + reason
	if w := st.playerBySide(winner); w != nil {
		text = fmt.Sprintf("%s wins: %s", w.Name, reason)
	}
	st.addMessage(MessageSystem, text)
	// The loser always keeps at least one template.
	if winner != "" && len(m.collections[1-sideIndex(winner)]) > 1 {
		st.lootOpen = true
	}

	evt := rules.NewEvent(rules.EventMatchEnded, string(winner), "", st.matchID)
	evt.Data = reason
	m.emit(evt)
	m.logger.Info("match over",
		zap.String("match_id", st.matchID),
		zap.String("winner", string(winner)),
		zap.String("reason", reason),
	)
}

func (m *Manager) clearSelectionLocked() {
	st := m.state
	st.selected = ""
	if st.board != nil {
		st.board.ClearHighlights()
	}
}

func (m *Manager) emit(evt rules.Event) {
	evt.Turn = m.state.turn()
	m.bus.Publish(evt)
}

func (m *Manager) logEvent(evt rules.Event) {
	m.logger.Debug("match event",
		zap.String("type", string(evt.Type)),
		zap.Int("turn", evt.Turn),
		zap.String("player", evt.PlayerID),
		zap.String("source", evt.SourceID),
		zap.String("target", evt.TargetID),
		zap.Int("amount", evt.Amount),
	)
}

func describeHit(attacker, defender string, damage int, res combat.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s hits %s for %d", attacker, defender, damage)
	if res.IsCritical {
		b.WriteString(" (critical)")
	}
	if len(res.AbilitiesUsed) > 0 {
		fmt.Fprintf(&b, " using %s", strings.Join(res.AbilitiesUsed, ", "))
	}
	return b.String()
}

func sideIndex(side player.Side) int {
	if side == player.SideB {
		return 1
	}
	return 0
}

// buildCollections resolves each team against the catalog.
func buildCollections(templates []cards.Template, teams [2][]string) ([2][]cards.Template, error) {
	var out [2][]cards.Template
	byID := make(map[string]cards.Template, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}
	for i, team := range teams {
		if len(team) == 0 {
			out[i] = append([]cards.Template(nil), templates...)
			continue
		}
		seen := make(map[string]bool, len(team))
		for _, id := range team {
			t, ok := byID[id]
			if !ok {
				return out, fmt.Errorf("team %s: unknown card %q", sides[i], id)
			}
			if seen[id] {
				return out, fmt.Errorf("team %s: card %q listed twice", sides[i], id)
			}
			seen[id] = true
			out[i] = append(out[i], t)
		}
	}
	return out, nil
}
