package dto

// Transaction is one normalized statement transaction. Amount is signed:
// credits and payments positive, debits negative; nil when no numeric amount
// could be resolved. Date keeps the extractor's format, it is not reparsed.
type Transaction struct {
	ID          int64    `json:"id,omitempty"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
}

// StatementRecord is the canonical schema every extractor output is
// normalized into. Issuer is never empty after normalization ("UNKNOWN" at
// worst); TotalAmountDue is numeric or nil, never a raw currency string.
type StatementRecord struct {
	Issuer         string        `json:"issuer"`
	CardVariant    string        `json:"card_variant,omitempty"`
	CardLast4      string        `json:"card_last_4,omitempty"`
	BillingCycle   string        `json:"billing_cycle,omitempty"`
	PaymentDueDate string        `json:"payment_due_date,omitempty"`
	TotalAmountDue *float64      `json:"total_amount_due"`
	ParsedAt       string        `json:"parsed_at"`
	Transactions   []Transaction `json:"transactions"`
}
