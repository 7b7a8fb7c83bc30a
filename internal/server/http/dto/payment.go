package dto

// PaymentRequest asks for a checkout session.
type PaymentRequest struct {
	Token string `json:"token"`
	Plan  string `json:"plan"`
}

// PaymentResponse carries the checkout redirect.
type PaymentResponse struct {
	URL string `json:"url"`
}

// WebhookResponse acknowledges a processed notification.
type WebhookResponse struct {
	Received bool `json:"received"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status string `json:"status"`
}
