package model

import "time"

// Profile represents the business account that owns events, leads and contents.
// CreatedAt is the account creation instant used for access-phase evaluation.
type Profile struct {
	UserID           string    `db:"user_id" json:"user_id"`
	BusinessName     string    `db:"business_name" json:"business_name"`
	Email            string    `db:"email" json:"email"`
	IsPremium        bool      `db:"is_premium" json:"is_premium"`
	StripeCustomerID *string   `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
