// internal/models/proposal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"construction-marketplace-api-server/internal/boq"
	"construction-marketplace-api-server/internal/negotiation"
)

// NegotiationRecord holds the latest counter-offer exchanged on a proposal.
type NegotiationRecord struct {
	Actor     string                      `bson:"actor" json:"actor"` // user ID of whoever moved last
	Note      string                      `bson:"note,omitempty" json:"note,omitempty"`
	Revisions []negotiation.PriceRevision `bson:"revisions,omitempty" json:"revisions,omitempty"`
	CreatedAt time.Time                   `bson:"createdAt" json:"createdAt"`
}

// Proposal is one vendor's priced offer on a project. It carries its own
// BOQ snapshot; the project's BOQ is never mutated by negotiation.
type Proposal struct {
	ID          primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	ProposalID  string                `bson:"proposalID" json:"proposalID"` // e.g. "PROP-1A2B3C4D"
	ProjectID   string                `bson:"projectID" json:"projectID"`
	VendorID    string                `bson:"vendorID" json:"vendorID"`
	Status      negotiation.Status    `bson:"status" json:"status"`
	TotalAmount float64               `bson:"totalAmount" json:"totalAmount"`
	BOQ         *boq.BillOfQuantities `bson:"boq" json:"boq"`
	Negotiation *NegotiationRecord    `bson:"negotiation,omitempty" json:"negotiation,omitempty"`

	AttachmentURLs []string `bson:"attachmentURLs,omitempty" json:"attachmentURLs,omitempty"`

	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updatedAt"`
	AcceptedAt *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	RejectedAt *time.Time `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
}
