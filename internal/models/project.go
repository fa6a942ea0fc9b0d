// internal/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"construction-marketplace-api-server/internal/boq"
)

// Moderation statuses (admin-controlled gate, independent of tender mechanics).
const (
	ModerationDraft            = "draft"
	ModerationPending          = "pending"
	ModerationUnderReview      = "under_review"
	ModerationApproved         = "approved"
	ModerationRejected         = "rejected"
	ModerationRevisionRequired = "revision_required"
)

// Procurement methods.
const (
	ProcurementDirectAppointment = "direct_appointment"
	ProcurementTender            = "tender"
	ProcurementContract          = "contract"
	ProcurementNegotiation       = "negotiation"
)

// OriginalData is the legacy envelope older writers nested project data
// under. Only the BOQ reference inside it is still read.
type OriginalData struct {
	BOQ *boq.BillOfQuantities `bson:"boq,omitempty" json:"boq,omitempty"`
}

// Project is the owner-posted work a tender runs for. It is read and
// written as a whole document.
type Project struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID         string             `bson:"projectID" json:"projectID"` // e.g. "PRJ-1A2B3C4D"
	OwnerID           string             `bson:"ownerID" json:"ownerID"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Address           string             `bson:"address,omitempty" json:"address,omitempty"`
	ProjectType       string             `bson:"projectType" json:"projectType"` // "new_build", "renovation", "interior"
	ModerationStatus  string             `bson:"moderationStatus" json:"moderationStatus"`
	ModerationNote    string             `bson:"moderationNote,omitempty" json:"moderationNote,omitempty"`
	ProcurementMethod string             `bson:"procurementMethod" json:"procurementMethod"`
	Status            string             `bson:"status,omitempty" json:"status,omitempty"` // raw stored status, fallback only
	TenderDuration    string             `bson:"tenderDuration,omitempty" json:"tenderDuration,omitempty"` // free text, e.g. "2 minggu"
	// TenderStartAt is stamped on approval and again on reopen; the tender
	// clock runs from here, falling back to CreatedAt for older documents.
	TenderStartAt *time.Time `bson:"tenderStartAt,omitempty" json:"tenderStartAt,omitempty"`

	// BOQ attachment points, in boq.ReferenceOrder precedence.
	BOQ          *boq.BillOfQuantities `bson:"boq,omitempty" json:"boq,omitempty"`
	AttachedBOQ  *boq.BillOfQuantities `bson:"attachedBoq,omitempty" json:"attachedBoq,omitempty"`
	OriginalData *OriginalData         `bson:"originalData,omitempty" json:"originalData,omitempty"`

	DocumentURLs []string `bson:"documentURLs,omitempty" json:"documentURLs,omitempty"`

	SelectedVendorID    string `bson:"selectedVendorID,omitempty" json:"selectedVendorID,omitempty"`
	NegotiationAccepted bool   `bson:"negotiationAccepted,omitempty" json:"negotiationAccepted,omitempty"`
	PaymentCompleted    bool   `bson:"paymentCompleted,omitempty" json:"paymentCompleted,omitempty"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// TenderClockStart is the instant the tender deadline counts from.
func (p *Project) TenderClockStart() time.Time {
	if p.TenderStartAt != nil {
		return *p.TenderStartAt
	}
	return p.CreatedAt
}

// BOQRefs returns the attachment points in resolution precedence, ready for
// boq.Resolve.
func (p *Project) BOQRefs() []*boq.BillOfQuantities {
	refs := []*boq.BillOfQuantities{p.BOQ, p.AttachedBOQ}
	if p.OriginalData != nil {
		refs = append(refs, p.OriginalData.BOQ)
	}
	return refs
}

// ResolveBOQ applies the attachment-point precedence for this project.
func (p *Project) ResolveBOQ() (*boq.BillOfQuantities, error) {
	return boq.Resolve(p.BOQRefs()...)
}
