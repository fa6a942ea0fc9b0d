package tender

import (
	"testing"
	"time"

	"construction-marketplace-api-server/internal/models"
	"construction-marketplace-api-server/internal/negotiation"
)

func tenderProject(created time.Time, duration string) *models.Project {
	return &models.Project{
		ProjectID:         "PRJ-TEST0001",
		ModerationStatus:  models.ModerationApproved,
		ProcurementMethod: models.ProcurementTender,
		TenderDuration:    duration,
		CreatedAt:         created,
	}
}

func proposalWith(status negotiation.Status) models.Proposal {
	return models.Proposal{ProposalID: "PROP-TEST0001", Status: status}
}

func TestEvaluateModerationGate(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		moderation string
		wantStatus Status
		wantAction Action
	}{
		{"draft", models.ModerationDraft, StatusInProgress, ActionEdit},
		{"pending", models.ModerationPending, StatusReview, ActionDisabled},
		{"under review", models.ModerationUnderReview, StatusReview, ActionDisabled},
		{"rejected", models.ModerationRejected, StatusRevise, ActionEdit},
		{"revision required", models.ModerationRevisionRequired, StatusRevise, ActionEdit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tenderProject(now, "2 minggu")
			p.ModerationStatus = tt.moderation
			d := Evaluate(p, nil, now)
			if d.Status != tt.wantStatus || d.Action != tt.wantAction {
				t.Errorf("Evaluate() = %+v, want %s/%s", d, tt.wantStatus, tt.wantAction)
			}
		})
	}
}

func TestEvaluateApprovedNonTender(t *testing.T) {
	now := time.Now()
	for _, method := range []string{
		models.ProcurementDirectAppointment, models.ProcurementContract, models.ProcurementNegotiation,
	} {
		p := tenderProject(now, "2 minggu")
		p.ProcurementMethod = method
		d := Evaluate(p, nil, now)
		if d.Status != StatusApproved || d.Action != ActionView {
			t.Errorf("method %s: Evaluate() = %+v, want APPROVED/VIEW", method, d)
		}
	}
}

// Rule 5a must outrank rule 5d: a vendor who was accepted in time is never
// penalized by a clock that expired during review.
func TestEvaluateAcceptedOutranksExpiredDeadline(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.AddDate(0, 6, 0) // deadline long gone

	p := tenderProject(created, "2 minggu")
	proposals := []models.Proposal{proposalWith(negotiation.StatusAccepted)}

	d := Evaluate(p, proposals, now)
	if d.Status != StatusAwarded {
		t.Fatalf("Evaluate() = %+v, want AWARDED, never FAILED", d)
	}
	if d.Action != ActionMakePayment {
		t.Errorf("action = %s, want MAKE_PAYMENT", d.Action)
	}

	p.PaymentCompleted = true
	if d := Evaluate(p, proposals, now); d.Status != StatusOnGoing {
		t.Errorf("paid award = %+v, want ON_GOING", d)
	}

	done := now.Add(-time.Hour)
	p.CompletedAt = &done
	if d := Evaluate(p, proposals, now); d.Status != StatusCompleted {
		t.Errorf("completed project = %+v, want COMPLETED", d)
	}
}

func TestEvaluateAwardFlagsAreSynonyms(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.AddDate(0, 0, 60)

	p := tenderProject(created, "2 minggu")
	p.SelectedVendorID = "USR-VENDOR01"
	if d := Evaluate(p, nil, now); d.Status != StatusAwarded {
		t.Errorf("selectedVendorID set: %+v, want AWARDED", d)
	}

	p = tenderProject(created, "2 minggu")
	p.NegotiationAccepted = true
	if d := Evaluate(p, nil, now); d.Status != StatusAwarded {
		t.Errorf("negotiationAccepted set: %+v, want AWARDED", d)
	}
}

// Rule 5b must outrank 5c/5d: active negotiation suspends deadline pressure.
func TestEvaluateNegotiationOutranksDeadline(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.AddDate(0, 0, 60)

	for _, s := range []negotiation.Status{
		negotiation.StatusNegotiating,
		negotiation.StatusCounterOffered,
		negotiation.StatusWaitingForVendor,
		negotiation.StatusResubmitted,
	} {
		p := tenderProject(created, "2 minggu")
		d := Evaluate(p, []models.Proposal{proposalWith(s)}, now)
		if d.Status != StatusNegotiate || d.Action != ActionViewOffer {
			t.Errorf("proposal %s: Evaluate() = %+v, want NEGOTIATE/VIEW_OFFER", s, d)
		}
	}

	// A rejected proposal is not an active negotiation; the clock rules apply.
	p := tenderProject(created, "2 minggu")
	d := Evaluate(p, []models.Proposal{proposalWith(negotiation.StatusRejected)}, now)
	if d.Status != StatusFailed {
		t.Errorf("rejected proposal only: %+v, want FAILED", d)
	}
}

func TestEvaluateDeadlineWindow(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p := tenderProject(created, "2 minggu") // deadline = created + 14d

	tests := []struct {
		name       string
		now        time.Time
		wantStatus Status
		wantAction Action
	}{
		{"freshly opened", created.Add(time.Hour), StatusOpen, ActionView},
		{"13 days in, lock window", created.AddDate(0, 0, 13), StatusLocked, ActionView},
		{"one minute before close", created.AddDate(0, 0, 14).Add(-time.Minute), StatusLocked, ActionView},
		{"exactly at deadline", created.AddDate(0, 0, 14), StatusFailed, ActionResubmit},
		{"long past deadline", created.AddDate(0, 1, 0), StatusFailed, ActionResubmit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(p, nil, tt.now)
			if d.Status != tt.wantStatus || d.Action != tt.wantAction {
				t.Errorf("Evaluate() = %+v, want %s/%s", d, tt.wantStatus, tt.wantAction)
			}
			if tt.wantStatus == StatusLocked && (d.HoursRemaining == nil || *d.HoursRemaining <= 0 || *d.HoursRemaining > 24) {
				t.Errorf("LOCKED must carry hours remaining in (0, 24], got %+v", d.HoursRemaining)
			}
		})
	}
}

// Submitted (not yet negotiated) proposals do not suspend the clock.
func TestEvaluateSubmittedProposalKeepsClockRunning(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p := tenderProject(created, "2 minggu")
	proposals := []models.Proposal{proposalWith(negotiation.StatusSubmitted)}

	if d := Evaluate(p, proposals, created.Add(time.Hour)); d.Status != StatusOpen {
		t.Errorf("open tender with submitted proposal = %+v, want OPEN", d)
	}
	if d := Evaluate(p, proposals, created.AddDate(0, 0, 30)); d.Status != StatusFailed {
		t.Errorf("expired tender with submitted proposal = %+v, want FAILED", d)
	}
}

// Unparseable duration gets the 30-day default; the tender is still OPEN.
func TestEvaluateDefaultDuration(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p := tenderProject(created, "secepatnya")

	if d := Evaluate(p, nil, created.AddDate(0, 0, 10)); d.Status != StatusOpen {
		t.Errorf("day 10 of default window = %+v, want OPEN", d)
	}
	if d := Evaluate(p, nil, created.AddDate(0, 0, 31)); d.Status != StatusFailed {
		t.Errorf("day 31 of default window = %+v, want FAILED", d)
	}
}

// Reopening stamps tenderStartAt; the clock runs from there, not createdAt.
func TestEvaluateTenderStartOverridesCreatedAt(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reopened := created.AddDate(0, 3, 0)

	p := tenderProject(created, "2 minggu")
	p.TenderStartAt = &reopened

	if d := Evaluate(p, nil, reopened.AddDate(0, 0, 3)); d.Status != StatusOpen {
		t.Errorf("reopened tender = %+v, want OPEN", d)
	}
}

func TestEvaluateFallback(t *testing.T) {
	now := time.Now()

	p := &models.Project{ModerationStatus: "archived", Status: "ON_GOING"}
	if d := Evaluate(p, nil, now); d.Status != StatusOnGoing {
		t.Errorf("raw stored status fallback = %+v, want ON_GOING", d)
	}

	p = &models.Project{ModerationStatus: "archived"}
	if d := Evaluate(p, nil, now); d.Status != StatusInProgress {
		t.Errorf("absent stored status fallback = %+v, want IN_PROGRESS", d)
	}
}
