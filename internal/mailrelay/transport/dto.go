package transport

// SendEmailRequest is the body of POST /api/send-email. To may hold several
// comma-separated addresses.
type SendEmailRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// RecipientResult reports the delivery of one recipient.
type RecipientResult struct {
	Recipient string `json:"recipient"`
	MessageID string `json:"messageId,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// SendEmailResponse is returned when at least the SMTP server was reachable.
type SendEmailResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Results []RecipientResult `json:"results"`
}

// FailureResponse is the relay's error body.
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Status string `json:"status"`
}
