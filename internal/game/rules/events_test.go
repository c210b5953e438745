package rules

import (
	"testing"
)

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	playedCount := 0
	damagedCount := 0

	handle1 := bus.SubscribeTyped(EventCardPlayed, func(e Event) {
		playedCount++
	})
	handle2 := bus.SubscribeTyped(EventPlayerDamaged, func(e Event) {
		damagedCount++
	})

	bus.Publish(NewEvent(EventCardPlayed, "side-a", "card1", ""))
	if playedCount != 1 {
		t.Fatalf("expected played count 1, got %d", playedCount)
	}
	if damagedCount != 0 {
		t.Fatalf("expected damaged count 0, got %d", damagedCount)
	}

	bus.Publish(NewEventWithAmount(EventPlayerDamaged, "side-a", "card1", "side-b", 5))
	if damagedCount != 1 {
		t.Fatalf("expected damaged count 1, got %d", damagedCount)
	}

	bus.Unsubscribe(handle1)
	bus.Publish(NewEvent(EventCardPlayed, "side-a", "card2", ""))
	if playedCount != 1 {
		t.Fatalf("expected played count still 1 after unsubscribe, got %d", playedCount)
	}

	bus.Unsubscribe(handle2)
	if bus.Len() != 0 {
		t.Fatalf("expected no listeners, got %d", bus.Len())
	}
}

func TestEventBusOrder(t *testing.T) {
	bus := NewEventBus()

	var order []int
	for i := 0; i < 4; i++ {
		i := i
		bus.Subscribe(func(Event) { order = append(order, i) })
	}

	bus.Publish(NewEvent(EventTurnBegan, "side-a", "", ""))
	for i, v := range order {
		if v != i {
			t.Fatalf("expected listeners in subscription order, got %v", order)
		}
	}
}

func TestEventBusListenerMayUnsubscribe(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	var handle int
	handle = bus.Subscribe(func(Event) {
		calls++
		bus.Unsubscribe(handle)
	})

	bus.Publish(NewEvent(EventTurnBegan, "", "", ""))
	bus.Publish(NewEvent(EventTurnBegan, "", "", ""))
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestEventBusNilListener(t *testing.T) {
	bus := NewEventBus()
	if h := bus.Subscribe(nil); h != -1 {
		t.Fatalf("expected -1 handle for nil listener, got %d", h)
	}
}
