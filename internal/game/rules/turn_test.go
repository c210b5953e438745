package rules

import "testing"

func TestTurnManagerSequence(t *testing.T) {
	tm := NewTurnManager(2, 10)

	expected := []struct {
		phase  Phase
		active int
		turn   int
	}{
		{PhaseDraw, 0, 1},
		{PhasePlay, 0, 1},
		{PhaseAttack, 0, 1},
		{PhaseEnd, 0, 1},
		{PhaseDraw, 1, 2},
		{PhasePlay, 1, 2},
		{PhaseAttack, 1, 2},
		{PhaseEnd, 1, 2},
		{PhaseDraw, 0, 3},
	}

	for i, exp := range expected {
		if tm.CurrentPhase() != exp.phase {
			t.Fatalf("step %d: expected phase %s, got %s", i, exp.phase, tm.CurrentPhase())
		}
		if tm.ActiveIndex() != exp.active {
			t.Fatalf("step %d: expected active player %d, got %d", i, exp.active, tm.ActiveIndex())
		}
		if tm.TurnNumber() != exp.turn {
			t.Fatalf("step %d: expected turn %d, got %d", i, exp.turn, tm.TurnNumber())
		}
		if i < len(expected)-1 {
			tm.AdvancePhase()
		}
	}
}

func TestTurnManagerReportsNewTurn(t *testing.T) {
	tm := NewTurnManager(2, 10)

	for i := 0; i < 3; i++ {
		if _, newTurn := tm.AdvancePhase(); newTurn {
			t.Fatalf("advance %d should stay within turn 1", i)
		}
	}
	phase, newTurn := tm.AdvancePhase()
	if !newTurn || phase != PhaseDraw {
		t.Fatalf("expected a new turn in draw phase, got %s (newTurn=%v)", phase, newTurn)
	}
}

func TestTurnManagerEndsAfterMaxTurns(t *testing.T) {
	tm := NewTurnManager(2, 2)

	for i := 0; i < 8; i++ {
		tm.AdvancePhase()
	}
	if !tm.IsOver() {
		t.Fatalf("expected game over after turn limit, turn=%d", tm.TurnNumber())
	}

	phase, turn, active := tm.CurrentPhase(), tm.TurnNumber(), tm.ActiveIndex()
	tm.AdvancePhase()
	if tm.CurrentPhase() != phase || tm.TurnNumber() != turn || tm.ActiveIndex() != active {
		t.Fatal("advancing a finished match must be a no-op")
	}
}

func TestTurnManagerEnd(t *testing.T) {
	tm := NewTurnManager(2, 0)
	tm.AdvancePhase()
	tm.End()

	if !tm.IsOver() {
		t.Fatal("expected match to be over")
	}
	if phase, _ := tm.AdvancePhase(); phase != PhasePlay {
		t.Fatalf("expected phase to stay play, got %s", phase)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseAttack.String() != "attack" {
		t.Fatalf("unexpected phase name %s", PhaseAttack)
	}
	if Phase(9).String() != "phase_9" {
		t.Fatalf("unexpected fallback name %s", Phase(9))
	}
}

func TestPhaseTextRoundTrip(t *testing.T) {
	for _, phase := range turnSequence {
		text, err := phase.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", phase, err)
		}
		var got Phase
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if got != phase {
			t.Fatalf("expected %v, got %v", phase, got)
		}
	}

	var p Phase
	if err := p.UnmarshalText([]byte("upkeep")); err == nil {
		t.Fatalf("expected error for unknown phase")
	}
}
