package negotiation

import (
	"errors"
	"testing"
)

func TestApplyLegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		from   Status
		want   Status
	}{
		{"start negotiation from submitted", ActionStartNegotiation, StatusSubmitted, StatusNegotiating},
		{"start negotiation re-entrant from resubmitted", ActionStartNegotiation, StatusResubmitted, StatusNegotiating},
		{"counter offer from negotiating", ActionCounterOffer, StatusNegotiating, StatusWaitingForVendor},
		{"counter offer from legacy counter-offered", ActionCounterOffer, StatusCounterOffered, StatusWaitingForVendor},
		{"resubmit from waiting", ActionResubmit, StatusWaitingForVendor, StatusResubmitted},
		{"accept from submitted", ActionAccept, StatusSubmitted, StatusAccepted},
		{"accept from resubmitted", ActionAccept, StatusResubmitted, StatusAccepted},
		{"accept from negotiating", ActionAccept, StatusNegotiating, StatusAccepted},
		{"reject from submitted", ActionReject, StatusSubmitted, StatusRejected},
		{"reject from waiting", ActionReject, StatusWaitingForVendor, StatusRejected},
		{"reject from resubmitted", ActionReject, StatusResubmitted, StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Apply(tt.action, tt.from)
			if err != nil {
				t.Fatalf("Apply(%s, %s) error = %v", tt.action, tt.from, err)
			}
			if res.To != tt.want || res.NoOp {
				t.Errorf("Apply(%s, %s) = %+v, want To=%s NoOp=false", tt.action, tt.from, res, tt.want)
			}
		})
	}
}

func TestApplyIllegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		from   Status
	}{
		{"start negotiation from negotiating", ActionStartNegotiation, StatusNegotiating},
		{"start negotiation from accepted", ActionStartNegotiation, StatusAccepted},
		{"counter offer from submitted", ActionCounterOffer, StatusSubmitted},
		{"counter offer from waiting", ActionCounterOffer, StatusWaitingForVendor},
		{"resubmit from submitted", ActionResubmit, StatusSubmitted},
		{"resubmit from negotiating", ActionResubmit, StatusNegotiating},
		{"accept from waiting", ActionAccept, StatusWaitingForVendor},
		{"accept from rejected", ActionAccept, StatusRejected},
		{"reject from accepted", ActionReject, StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tt.action, tt.from)
			var invalid *InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Fatalf("Apply(%s, %s) error = %v, want *InvalidTransitionError", tt.action, tt.from, err)
			}
			// The error must name the attempted action and the actual state
			// so the UI can explain why the button is disabled.
			if invalid.Action != tt.action || invalid.From != tt.from {
				t.Errorf("error = %+v, want action %s from %s", invalid, tt.action, tt.from)
			}
			if len(invalid.Allowed) == 0 {
				t.Error("error carries no allowed source states")
			}
		})
	}
}

// Re-invoking accept/reject on an already-terminal proposal is a reported
// no-op, never an error.
func TestApplyTerminalIdempotence(t *testing.T) {
	res, err := Apply(ActionAccept, StatusAccepted)
	if err != nil {
		t.Fatalf("accept on accepted: %v", err)
	}
	if !res.NoOp || res.To != StatusAccepted {
		t.Errorf("accept on accepted = %+v, want NoOp at ACCEPTED", res)
	}

	res, err = Apply(ActionReject, StatusRejected)
	if err != nil {
		t.Fatalf("reject on rejected: %v", err)
	}
	if !res.NoOp || res.To != StatusRejected {
		t.Errorf("reject on rejected = %+v, want NoOp at REJECTED", res)
	}
}

func TestIsTerminalAndIsActive(t *testing.T) {
	for _, s := range []Status{StatusAccepted, StatusRejected} {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = false, want true", s)
		}
		if IsActive(s) {
			t.Errorf("IsActive(%s) = true, want false", s)
		}
	}
	for _, s := range []Status{StatusNegotiating, StatusCounterOffered, StatusWaitingForVendor, StatusResubmitted} {
		if !IsActive(s) {
			t.Errorf("IsActive(%s) = false, want true", s)
		}
	}
	if IsActive(StatusSubmitted) || IsTerminal(StatusSubmitted) {
		t.Error("SUBMITTED must be neither active nor terminal")
	}
}
