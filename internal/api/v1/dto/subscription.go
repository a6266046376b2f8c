package dto

// SessionURLResponse carries a hosted Stripe page to redirect to.
type SessionURLResponse struct {
	URL string `json:"url"`
}
