package rules

import (
	"sync"
)

// EventType indicates the category of a match event.
type EventType string

const (
	// Match lifecycle
	EventMatchStarted EventType = "MATCH_STARTED"
	EventMatchEnded   EventType = "MATCH_ENDED"
	EventMatchReset   EventType = "MATCH_RESET"

	// Turn structure
	EventTurnBegan    EventType = "TURN_BEGAN"
	EventPhaseChanged EventType = "PHASE_CHANGED"

	// Resources
	EventCardDrawn      EventType = "CARD_DRAWN"
	EventCardBurned     EventType = "CARD_BURNED"
	EventDeckReshuffled EventType = "DECK_RESHUFFLED"
	EventManaRestored   EventType = "MANA_RESTORED"

	// Board and combat
	EventCardSelected   EventType = "CARD_SELECTED"
	EventCardPlayed     EventType = "CARD_PLAYED"
	EventAttackResolved EventType = "ATTACK_RESOLVED"
	EventCardHealed     EventType = "CARD_HEALED"
	EventCardDestroyed  EventType = "CARD_DESTROYED"
	EventPlayerDamaged  EventType = "PLAYER_DAMAGED"
	EventCardLeveled    EventType = "CARD_LEVELED"

	// Between matches
	EventLootClaimed EventType = "LOOT_CLAIMED"
)

// Event is a single fact about the match, published after it happened.
type Event struct {
	Type        EventType
	Turn        int    // Turn number the event occurred on
	PlayerID    string // Side the event belongs to
	SourceID    string // Acting card
	TargetID    string // Affected card or player
	Amount      int    // Damage, healing, mana, cost
	Flag        bool   // Critical hit, direct attack
	Data        string // Phase name, winner, ability names
	Description string // Human-readable description
}

// NewEvent creates an event with the common fields populated.
func NewEvent(eventType EventType, playerID, sourceID, targetID string) Event {
	return Event{
		Type:     eventType,
		PlayerID: playerID,
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// NewEventWithAmount creates an event carrying a numeric value.
func NewEventWithAmount(eventType EventType, playerID, sourceID, targetID string, amount int) Event {
	evt := NewEvent(eventType, playerID, sourceID, targetID)
	evt.Amount = amount
	return evt
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty means every type
	callback  Listener
}

// EventBus is a synchronous publish/subscribe hub. Listeners are called in
// subscription order.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.SubscribeTyped("", listener)
}

// SubscribeTyped registers a listener for a single event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, callback: listener})
	return handle
}

// Unsubscribe removes a listener by handle. Unknown handles are ignored.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, s := range bus.subs {
		if s.handle == handle {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

// Publish delivers event to every matching listener. The subscriber list is
// copied first so listeners may subscribe or unsubscribe while running.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subs))
	copy(subs, bus.subs)
	bus.mu.RUnlock()

	for _, s := range subs {
		if s.eventType == "" || s.eventType == event.Type {
			s.callback(event)
		}
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}
