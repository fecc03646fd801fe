package contact

// SubmitRequest is the contact form payload.
type SubmitRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,min=6,max=30"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,min=10,max=4000"`
}

// SubmitResult reports what happened with the submission. Degraded means the
// message was stored but the notification email could not be sent.
type SubmitResult struct {
	MessageID string `json:"message_id"`
	Degraded  bool   `json:"degraded,omitempty"`
}
