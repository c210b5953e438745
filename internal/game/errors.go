package game

import (
	"errors"
	"fmt"
)

// RejectReason classifies why a command was refused.
type RejectReason string

const (
	ReasonNotStarted       RejectReason = "not_started"
	ReasonAlreadyStarted   RejectReason = "already_started"
	ReasonGameOver         RejectReason = "game_over"
	ReasonWrongPhase       RejectReason = "wrong_phase"
	ReasonNotYourTurn      RejectReason = "not_your_turn"
	ReasonNotYourCard      RejectReason = "not_your_card"
	ReasonUnknownCard      RejectReason = "unknown_card"
	ReasonNoSelection      RejectReason = "no_selection"
	ReasonOutOfBounds      RejectReason = "out_of_bounds"
	ReasonNotInZone        RejectReason = "not_in_zone"
	ReasonOccupied         RejectReason = "occupied"
	ReasonInsufficientMana RejectReason = "insufficient_mana"
	ReasonOutOfRange       RejectReason = "out_of_range"
	ReasonInvalidTarget    RejectReason = "invalid_target"
	ReasonNoAttacker       RejectReason = "no_attacker"
	ReasonNoLoot           RejectReason = "no_loot"
	ReasonNotWinner        RejectReason = "not_winner"
)

// RejectedError is returned by a command that was refused. A rejected command
// leaves the match untouched and notifies no listener.
type RejectedError struct {
	Command string
	Reason  RejectReason
	Detail  string
	Err     error
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s rejected: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("%s rejected: %s: %s", e.Command, e.Reason, e.Detail)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Is matches any RejectedError with the same reason, so the Err* values below
// work with errors.Is.
func (e *RejectedError) Is(target error) bool {
	t, ok := target.(*RejectedError)
	return ok && t.Reason == e.Reason
}

// Sentinels for errors.Is.
var (
	ErrNotStarted       = &RejectedError{Reason: ReasonNotStarted}
	ErrAlreadyStarted   = &RejectedError{Reason: ReasonAlreadyStarted}
	ErrGameOver         = &RejectedError{Reason: ReasonGameOver}
	ErrWrongPhase       = &RejectedError{Reason: ReasonWrongPhase}
	ErrNotYourTurn      = &RejectedError{Reason: ReasonNotYourTurn}
	ErrNotYourCard      = &RejectedError{Reason: ReasonNotYourCard}
	ErrUnknownCard      = &RejectedError{Reason: ReasonUnknownCard}
	ErrNoSelection      = &RejectedError{Reason: ReasonNoSelection}
	ErrOutOfBounds      = &RejectedError{Reason: ReasonOutOfBounds}
	ErrNotInZone        = &RejectedError{Reason: ReasonNotInZone}
	ErrOccupied         = &RejectedError{Reason: ReasonOccupied}
	ErrInsufficientMana = &RejectedError{Reason: ReasonInsufficientMana}
	ErrOutOfRange       = &RejectedError{Reason: ReasonOutOfRange}
	ErrInvalidTarget    = &RejectedError{Reason: ReasonInvalidTarget}
	ErrNoAttacker       = &RejectedError{Reason: ReasonNoAttacker}
	ErrNoLoot           = &RejectedError{Reason: ReasonNoLoot}
	ErrNotWinner        = &RejectedError{Reason: ReasonNotWinner}
)

// ReasonOf extracts the rejection reason from err, or "" if err is not a
// rejection.
func ReasonOf(err error) RejectReason {
	var re *RejectedError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}

func reject(command string, reason RejectReason, format string, args ...any) *RejectedError {
	return &RejectedError{Command: command, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
