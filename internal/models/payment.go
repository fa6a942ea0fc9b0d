// internal/models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses as reported by the external gateway. The core only
// consumes these values; it never constructs or signs payment requests.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentExpired   = "expired"
)

// Payment tracks one gateway invoice for an awarded project, keyed by the
// gateway's external transaction ID.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaymentID     string             `bson:"paymentID" json:"paymentID"` // e.g. "PAY-1A2B3C4D"
	ProjectID     string             `bson:"projectID" json:"projectID"`
	OwnerID       string             `bson:"ownerID" json:"ownerID"`
	TransactionID string             `bson:"transactionID" json:"transactionID"` // gateway-side key
	Amount        float64            `bson:"amount" json:"amount"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
