package dto

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// TokenResponse carries a bearer token after login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// StatementResponse is a persisted statement as returned by the API.
type StatementResponse struct {
	ID             int64     `json:"id"`
	Issuer         string    `json:"issuer"`
	CardVariant    string    `json:"card_variant,omitempty"`
	CardLast4      string    `json:"card_last_4,omitempty"`
	BillingCycle   string    `json:"billing_cycle,omitempty"`
	PaymentDueDate string    `json:"payment_due_date,omitempty"`
	TotalAmountDue *float64  `json:"total_amount_due"`
	ParsedAt       string    `json:"parsed_at"`
	PDFPath        string    `json:"pdf_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ParseResponse is the result of a statement upload: the stored statement
// plus its transactions with assigned ids.
type ParseResponse struct {
	Statement    StatementResponse `json:"statement"`
	Transactions []Transaction     `json:"transactions"`
}
