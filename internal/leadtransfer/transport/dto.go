package transport

// FormData is the captured customer data.
type FormData struct {
	FirstName     string `json:"first_name" validate:"required,min=2"`
	LastName      string `json:"last_name" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	IDNumber      string `json:"id_number,omitempty" validate:"omitempty,za_id"`
	QuoteID       string `json:"quote_id,omitempty"`
	ContactNumber string `json:"contact_number" validate:"required,min=10"`
}

// AgentInfo identifies the agent making the transfer.
type AgentInfo struct {
	Agent  string `json:"agent" validate:"required,min=2"`
	Branch string `json:"branch" validate:"required,min=2"`
}

// TransferRequest is the body of POST /leads/transfer.
type TransferRequest struct {
	FormData  FormData  `json:"formData" validate:"required"`
	AgentInfo AgentInfo `json:"agentInfo" validate:"required"`
	SessionID string    `json:"sessionId,omitempty"`
}

// TransferResponse is returned after a successful transfer.
type TransferResponse struct {
	Success     bool   `json:"success"`
	ClientID    string `json:"clientId,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Message     string `json:"message,omitempty"`
}
