// internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
	RoleVendor = "vendor"
)

// User struct matches the document in MongoDB.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"userID" json:"userID"` // e.g. "USR-1A2B3C4D"
	Email       string             `bson:"email" json:"email"`
	Name        string             `bson:"name" json:"name"`
	Password    string             `bson:"password" json:"-"`
	Role        string             `bson:"role" json:"role"` // "admin", "owner", "vendor"
	CompanyName string             `bson:"companyName,omitempty" json:"companyName,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Status      string             `bson:"status" json:"status"` // "active", "inactive"
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
