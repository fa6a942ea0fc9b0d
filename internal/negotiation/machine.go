// internal/negotiation/machine.go
package negotiation

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a single vendor proposal.
type Status string

const (
	StatusSubmitted        Status = "SUBMITTED"
	StatusNegotiating      Status = "NEGOTIATING"
	StatusCounterOffered   Status = "COUNTER_OFFERED" // transient, persisted only by older writers
	StatusWaitingForVendor Status = "WAITING_FOR_VENDOR"
	StatusResubmitted      Status = "RESUBMITTED"
	StatusAccepted         Status = "ACCEPTED"
	StatusRejected         Status = "REJECTED"
)

// Action is an owner- or vendor-initiated move on a proposal.
type Action string

const (
	ActionStartNegotiation Action = "START_NEGOTIATION"
	ActionCounterOffer     Action = "COUNTER_OFFER"
	ActionResubmit         Action = "RESUBMIT"
	ActionAccept           Action = "ACCEPT"
	ActionReject           Action = "REJECT"
)

// transitions maps each action to its legal source states and target state.
// COUNTER_OFFERED is the instantaneous intermediate of recording a counter
// offer; documents written by older clients can still carry it, so it is a
// legal source wherever NEGOTIATING is.
var transitions = map[Action]struct {
	from []Status
	to   Status
}{
	ActionStartNegotiation: {from: []Status{StatusSubmitted, StatusResubmitted}, to: StatusNegotiating},
	ActionCounterOffer:     {from: []Status{StatusNegotiating, StatusCounterOffered}, to: StatusWaitingForVendor},
	ActionResubmit:         {from: []Status{StatusWaitingForVendor}, to: StatusResubmitted},
	ActionAccept:           {from: []Status{StatusSubmitted, StatusResubmitted, StatusNegotiating, StatusCounterOffered}, to: StatusAccepted},
	ActionReject: {from: []Status{
		StatusSubmitted, StatusNegotiating, StatusCounterOffered, StatusWaitingForVendor, StatusResubmitted,
	}, to: StatusRejected},
}

// IsTerminal reports whether no further action can move the proposal.
func IsTerminal(s Status) bool {
	return s == StatusAccepted || s == StatusRejected
}

// IsActive reports whether the proposal sits in an ongoing negotiation
// exchange. The project status engine uses this to rank NEGOTIATE above
// deadline pressure.
func IsActive(s Status) bool {
	switch s {
	case StatusNegotiating, StatusCounterOffered, StatusWaitingForVendor, StatusResubmitted:
		return true
	}
	return false
}

// Result describes an applied (or idempotently skipped) transition.
type Result struct {
	From Status
	To   Status
	// NoOp is set when accept/reject hit a proposal already in that terminal
	// state. The caller must not restamp timestamps in that case.
	NoOp bool
}

// InvalidTransitionError names the attempted move and the actual state so
// the UI can explain why an action is disabled. Illegal moves never
// silently no-op.
type InvalidTransitionError struct {
	Action  Action
	From    Status
	Allowed []Status
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, string(s))
	}
	return fmt.Sprintf("cannot %s a proposal in status %s (allowed from: %s)",
		strings.ToLower(string(e.Action)), e.From, strings.Join(allowed, ", "))
}

// Apply validates one action against the current status and returns the
// resulting status. Re-accepting an accepted proposal and re-rejecting a
// rejected one are reported as no-ops, not errors.
func Apply(action Action, from Status) (Result, error) {
	if action == ActionAccept && from == StatusAccepted {
		return Result{From: from, To: from, NoOp: true}, nil
	}
	if action == ActionReject && from == StatusRejected {
		return Result{From: from, To: from, NoOp: true}, nil
	}

	t, ok := transitions[action]
	if !ok {
		return Result{}, fmt.Errorf("unknown proposal action: %s", action)
	}
	for _, s := range t.from {
		if s == from {
			return Result{From: from, To: t.to}, nil
		}
	}
	return Result{}, &InvalidTransitionError{Action: action, From: from, Allowed: t.from}
}
