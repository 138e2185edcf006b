// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents every account in the system: community reporters,
// NGO and government validators, and researchers.
//
// Role is fixed at registration; profile updates never touch it.
// Points, ReportsSubmitted, and ReportsValidated are only mutated through
// the userstore counter ledger so every delta is logged with a reason.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	Role         string             `bson:"role" json:"role"` // community | ngo | government | researcher
	Organization string             `bson:"organization,omitempty" json:"organization,omitempty"`
	Location     UserLocation       `bson:"location,omitempty" json:"location,omitempty"`

	IsActive         bool `bson:"is_active" json:"is_active"`
	Points           int  `bson:"points" json:"points"`
	ReportsSubmitted int  `bson:"reports_submitted" json:"reports_submitted"`
	ReportsValidated int  `bson:"reports_validated" json:"reports_validated"`

	LastLogin *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// UserLocation is the optional home location shown on profiles.
type UserLocation struct {
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// FullName returns the display name for profiles and leaderboards.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
