package watchers

import (
	"github.com/hexclash/hexclash-server-go/internal/game/rules"
)

// Watcher keys.
const (
	KeyCardsPlayed    = "CardsPlayedWatcher"
	KeyCardsDrawn     = "CardsDrawnWatcher"
	KeyDamageDealt    = "DamageDealtWatcher"
	KeyCardsDestroyed = "CardsDestroyedWatcher"
	KeyDamageThisTurn = "DamageThisTurnWatcher"
)

// CardsPlayedWatcher tracks cards placed on the board per side.
type CardsPlayedWatcher struct {
	*rules.BaseWatcher
	played map[string][]string // side -> card IDs
}

// NewCardsPlayedWatcher creates a new cards played watcher.
func NewCardsPlayedWatcher() *CardsPlayedWatcher {
	return &CardsPlayedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeMatch, KeyCardsPlayed),
		played:      make(map[string][]string),
	}
}

// Watch implements the Watcher interface.
func (w *CardsPlayedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardPlayed || event.PlayerID == "" || event.SourceID == "" {
		return
	}
	w.played[event.PlayerID] = append(w.played[event.PlayerID], event.SourceID)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsPlayedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.played = make(map[string][]string)
}

// GetCardsPlayed returns the card IDs a side has played, in order.
func (w *CardsPlayedWatcher) GetCardsPlayed(side string) []string {
	return w.played[side]
}

// GetCount returns the number of cards a side has played.
func (w *CardsPlayedWatcher) GetCount(side string) int {
	return len(w.played[side])
}

// CardsDrawnWatcher counts cards drawn into hand per side.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	drawn map[string]int
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	return &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeMatch, KeyCardsDrawn),
		drawn:       make(map[string]int),
	}
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardDrawn || event.PlayerID == "" {
		return
	}
	w.drawn[event.PlayerID]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.drawn = make(map[string]int)
}

// GetCount returns the number of cards a side has drawn.
func (w *CardsDrawnWatcher) GetCount(side string) int {
	return w.drawn[side]
}

// DamageDealtWatcher sums attack damage per attacking side, split between
// card and player targets.
type DamageDealtWatcher struct {
	*rules.BaseWatcher
	toCards   map[string]int
	toPlayers map[string]int
}

// NewDamageDealtWatcher creates a new damage dealt watcher.
func NewDamageDealtWatcher() *DamageDealtWatcher {
	return &DamageDealtWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeMatch, KeyDamageDealt),
		toCards:     make(map[string]int),
		toPlayers:   make(map[string]int),
	}
}

// Watch implements the Watcher interface.
func (w *DamageDealtWatcher) Watch(event rules.Event) {
	if event.PlayerID == "" || event.Amount <= 0 {
		return
	}
	switch event.Type {
	case rules.EventAttackResolved:
		w.toCards[event.PlayerID] += event.Amount
	case rules.EventPlayerDamaged:
		w.toPlayers[event.PlayerID] += event.Amount
	default:
		return
	}
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *DamageDealtWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.toCards = make(map[string]int)
	w.toPlayers = make(map[string]int)
}

// GetToCards returns damage a side dealt to enemy cards.
func (w *DamageDealtWatcher) GetToCards(side string) int {
	return w.toCards[side]
}

// GetToPlayers returns damage a side dealt directly to the enemy player.
func (w *DamageDealtWatcher) GetToPlayers(side string) int {
	return w.toPlayers[side]
}

// GetTotal returns all damage a side dealt.
func (w *DamageDealtWatcher) GetTotal(side string) int {
	return w.toCards[side] + w.toPlayers[side]
}

// CardsDestroyedWatcher counts enemy cards destroyed per side.
type CardsDestroyedWatcher struct {
	*rules.BaseWatcher
	destroyed map[string][]string // destroying side -> card IDs
}

// NewCardsDestroyedWatcher creates a new cards destroyed watcher.
func NewCardsDestroyedWatcher() *CardsDestroyedWatcher {
	return &CardsDestroyedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeMatch, KeyCardsDestroyed),
		destroyed:   make(map[string][]string),
	}
}

// Watch implements the Watcher interface.
func (w *CardsDestroyedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardDestroyed || event.PlayerID == "" || event.TargetID == "" {
		return
	}
	w.destroyed[event.PlayerID] = append(w.destroyed[event.PlayerID], event.TargetID)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsDestroyedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.destroyed = make(map[string][]string)
}

// GetDestroyed returns the IDs of cards a side destroyed.
func (w *CardsDestroyedWatcher) GetDestroyed(side string) []string {
	return w.destroyed[side]
}

// GetCount returns the number of cards a side destroyed.
func (w *CardsDestroyedWatcher) GetCount(side string) int {
	return len(w.destroyed[side])
}

// DamageThisTurnWatcher sums the damage each side dealt since the current
// turn began. The manager resets it with the other turn-scoped watchers.
type DamageThisTurnWatcher struct {
	*rules.BaseWatcher
	dealt map[string]int
}

// NewDamageThisTurnWatcher creates a new per-turn damage watcher.
func NewDamageThisTurnWatcher() *DamageThisTurnWatcher {
	return &DamageThisTurnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeTurn, KeyDamageThisTurn),
		dealt:       make(map[string]int),
	}
}

// Watch implements the Watcher interface.
func (w *DamageThisTurnWatcher) Watch(event rules.Event) {
	if event.PlayerID == "" || event.Amount <= 0 {
		return
	}
	if event.Type != rules.EventAttackResolved && event.Type != rules.EventPlayerDamaged {
		return
	}
	w.dealt[event.PlayerID] += event.Amount
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *DamageThisTurnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.dealt = make(map[string]int)
}

// GetDamage returns the damage side dealt this turn.
func (w *DamageThisTurnWatcher) GetDamage(side string) int {
	return w.dealt[side]
}

// RegisterDefaults adds the standard match statistics watchers to registry.
func RegisterDefaults(registry *rules.WatcherRegistry) {
	registry.AddWatcher(NewCardsPlayedWatcher())
	registry.AddWatcher(NewCardsDrawnWatcher())
	registry.AddWatcher(NewDamageDealtWatcher())
	registry.AddWatcher(NewCardsDestroyedWatcher())
	registry.AddWatcher(NewDamageThisTurnWatcher())
}
