package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/statement-parser/dto"
)

func sampleRecord() dto.StatementRecord {
	total := 12345.67
	spend := -1234.56
	payment := 5000.0
	return dto.StatementRecord{
		Issuer:         "HDFC",
		CardVariant:    "HDFC Millennia",
		CardLast4:      "3458",
		BillingCycle:   "01-01-2024 to 31-01-2024",
		PaymentDueDate: "05-02-2024",
		TotalAmountDue: &total,
		ParsedAt:       "2024-02-01T10:00:00Z",
		Transactions: []dto.Transaction{
			{Date: "15-01-2024", Description: "AMAZON RETAIL", Amount: &spend},
			{Date: "16-01-2024", Description: "PAYMENT RECEIVED", Amount: &payment},
		},
	}
}

func TestRenderJSON(t *testing.T) {
	body, contentType, err := Render(sampleRecord(), "")
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Contains(t, string(body), `"issuer": "HDFC"`)
	assert.Contains(t, string(body), `"card_last_4": "3458"`)
}

func TestRenderCSV(t *testing.T) {
	body, contentType, err := Render(sampleRecord(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "issuer,card_last_4,billing_cycle,date,description,amount", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "AMAZON RETAIL")
	assert.Contains(t, lines[1], "-1234.56")
	assert.Contains(t, lines[2], "5000.00")
}

func TestRenderPretty(t *testing.T) {
	body, contentType, err := Render(sampleRecord(), "pretty")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", contentType)

	out := string(body)
	assert.Contains(t, out, "Issuer:           HDFC")
	assert.Contains(t, out, "Total Amount Due: 12345.67")
	assert.Contains(t, out, "Transactions (2):")
	assert.Contains(t, out, "AMAZON RETAIL")
}

func TestRenderUnknownFormat(t *testing.T) {
	_, _, err := Render(sampleRecord(), "xml")
	assert.Error(t, err)
}

func TestRenderPrettyMissingValues(t *testing.T) {
	out := RenderPretty(dto.StatementRecord{Issuer: "UNKNOWN"})
	assert.Contains(t, out, "Card Last 4:      -")
	assert.Contains(t, out, "Total Amount Due: -")
	assert.Contains(t, out, "Transactions (0):")
}
