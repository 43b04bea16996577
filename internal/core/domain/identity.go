package domain

import "strings"

// Claim is the set of identity assertions carried by a verified token.
// Email is always expected; UserID is absent on legacy tokens.
type Claim struct {
	UserID string
	Email  string
}

// Normalize trims both fields and lower-cases the email.
func (c Claim) Normalize() Claim {
	return Claim{
		UserID: strings.TrimSpace(c.UserID),
		Email:  strings.ToLower(strings.TrimSpace(c.Email)),
	}
}

// AuthenticatedContext is the per-request identity produced by the gate.
type AuthenticatedContext struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
}
