// Package models defines the data structures shared by the generation
// pipeline, the HTTP handlers and the stores.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User is an account holder. Customers save style guides and hold a
// subscription; admins run the blog generator and must enrol in 2FA.
type User struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // Never serialize the hash
	DisplayName      string    `json:"display_name"`
	Role             Role      `json:"role"`
	TOTPSecret       *string   `json:"-"`
	TOTPEnabled      bool      `json:"totp_enabled"`
	SubscriptionTier Tier      `json:"subscription_tier"`
	StripeCustomerID *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Needs2FASetup returns true if the user has not completed 2FA enrollment.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}

// Tier returns the effective subscription tier, defaulting to free.
func (u *User) Tier() Tier {
	if u == nil || u.SubscriptionTier == "" {
		return TierFree
	}
	return u.SubscriptionTier
}
