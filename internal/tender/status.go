// internal/tender/status.go
package tender

import (
	"time"

	"construction-marketplace-api-server/internal/models"
	"construction-marketplace-api-server/internal/negotiation"
)

// Status is the single externally displayed tender state of a project.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusRevise     Status = "REVISE"
	StatusApproved   Status = "APPROVED"
	StatusOpen       Status = "OPEN"
	StatusLocked     Status = "LOCKED"
	StatusNegotiate  Status = "NEGOTIATE"
	StatusAwarded    Status = "AWARDED"
	StatusOnGoing    Status = "ON_GOING"
	StatusFailed     Status = "FAILED"
	StatusCompleted  Status = "COMPLETED"
)

// Action is the one primary action rendered for the owner.
type Action string

const (
	ActionEdit        Action = "EDIT"
	ActionView        Action = "VIEW"
	ActionViewOffer   Action = "VIEW_OFFER"
	ActionMakePayment Action = "MAKE_PAYMENT"
	ActionResubmit    Action = "RESUBMIT"
	ActionDisabled    Action = "DISABLED"
)

// Decision is the status engine's output for one project snapshot.
type Decision struct {
	Status Status `json:"status"`
	Action Action `json:"action"`
	Label  string `json:"label"`
	// HoursRemaining is only set while the tender clock matters (OPEN and
	// LOCKED). nil means "no deadline situation", not "expired".
	HoursRemaining *float64 `json:"hoursRemaining,omitempty"`
}

// Evaluate derives the displayed status from moderation state, the tender
// clock, the aggregate negotiation state across proposals, and payment
// facts. The first matching rule wins; the order is the contract. An
// accepted proposal always outranks a passed deadline, and an active
// negotiation always outranks deadline pressure, so a vendor who responded
// in time is never penalized by a clock that expired during review.
//
// The caller must pass a freshly loaded snapshot; status must never be
// computed from stale negotiation state.
func Evaluate(p *models.Project, proposals []models.Proposal, now time.Time) Decision {
	// Rules 1-3: the moderation gate.
	switch p.ModerationStatus {
	case models.ModerationDraft:
		return Decision{Status: StatusInProgress, Action: ActionEdit, Label: "Continue editing"}
	case models.ModerationPending, models.ModerationUnderReview:
		return Decision{Status: StatusReview, Action: ActionDisabled, Label: "Waiting for admin review"}
	case models.ModerationRejected, models.ModerationRevisionRequired:
		return Decision{Status: StatusRevise, Action: ActionEdit, Label: "Revise and resubmit"}
	case models.ModerationApproved:
		// fall through to rules 4-5
	default:
		return fallback(p)
	}

	// Rule 4: approved, but not an open-bidding tender.
	if p.ProcurementMethod != models.ProcurementTender {
		return Decision{Status: StatusApproved, Action: ActionView, Label: "View project"}
	}

	// Rule 5a: an award exists. Acceptance of a proposal and the project's
	// own award flags are treated as synonyms here.
	if hasAcceptedProposal(proposals) || p.SelectedVendorID != "" || p.NegotiationAccepted {
		if p.CompletedAt != nil {
			return Decision{Status: StatusCompleted, Action: ActionView, Label: "View completed project"}
		}
		if p.PaymentCompleted {
			return Decision{Status: StatusOnGoing, Action: ActionView, Label: "Work in progress"}
		}
		return Decision{Status: StatusAwarded, Action: ActionMakePayment, Label: "Make down payment"}
	}

	// Rule 5b: an active negotiation outranks the clock.
	for _, prop := range proposals {
		if negotiation.IsActive(prop.Status) {
			return Decision{Status: StatusNegotiate, Action: ActionViewOffer, Label: "View offer"}
		}
	}

	// Rules 5c-5e: the tender clock. nil hours means "unknown deadline",
	// which is not a deadline situation: the tender stays open.
	hours := HoursUntil(ComputeDeadline(p.TenderClockStart(), p.TenderDuration), now)
	if hours != nil {
		if *hours <= 0 {
			return Decision{Status: StatusFailed, Action: ActionResubmit, Label: "Reopen tender"}
		}
		if *hours <= 24 {
			return Decision{Status: StatusLocked, Action: ActionView, Label: "Tender locked, closing soon", HoursRemaining: hours}
		}
	}
	return Decision{Status: StatusOpen, Action: ActionView, Label: "Tender open", HoursRemaining: hours}
}

func hasAcceptedProposal(proposals []models.Proposal) bool {
	for _, p := range proposals {
		if p.Status == negotiation.StatusAccepted {
			return true
		}
	}
	return false
}

// Rule 6: the project's raw stored status string, or IN_PROGRESS when absent.
func fallback(p *models.Project) Decision {
	if p.Status != "" {
		return Decision{Status: Status(p.Status), Action: ActionView, Label: "View project"}
	}
	return Decision{Status: StatusInProgress, Action: ActionEdit, Label: "Continue editing"}
}
