package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/Aashish23092/statement-parser/dto"
)

// Output formats accepted by Render.
const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatPretty = "pretty"
)

// Render serializes a statement record in the requested format and returns
// the payload with its content type. An empty format means JSON.
func Render(rec dto.StatementRecord, format string) ([]byte, string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		out, err := json.MarshalIndent(rec, "", "  ")
		return out, "application/json", err
	case FormatCSV:
		out, err := RenderCSV(rec)
		return out, "text/csv", err
	case FormatPretty, "text":
		return []byte(RenderPretty(rec)), "text/plain; charset=utf-8", nil
	default:
		return nil, "", fmt.Errorf("unsupported output format %q", format)
	}
}

type csvTransactionRow struct {
	Issuer       string `csv:"issuer"`
	CardLast4    string `csv:"card_last_4"`
	BillingCycle string `csv:"billing_cycle"`
	Date         string `csv:"date"`
	Description  string `csv:"description"`
	Amount       string `csv:"amount"`
}

// RenderCSV emits one row per transaction, each carrying the statement's
// identifying columns so the file stands alone.
func RenderCSV(rec dto.StatementRecord) ([]byte, error) {
	rows := make([]*csvTransactionRow, 0, len(rec.Transactions))
	for _, t := range rec.Transactions {
		rows = append(rows, &csvTransactionRow{
			Issuer:       rec.Issuer,
			CardLast4:    rec.CardLast4,
			BillingCycle: rec.BillingCycle,
			Date:         t.Date,
			Description:  t.Description,
			Amount:       formatAmount(t.Amount),
		})
	}
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// RenderPretty is the human-readable report used by the CLI-style text
// output.
func RenderPretty(rec dto.StatementRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Issuer:           %s\n", orDash(rec.Issuer))
	fmt.Fprintf(&b, "Card Variant:     %s\n", orDash(rec.CardVariant))
	fmt.Fprintf(&b, "Card Last 4:      %s\n", orDash(rec.CardLast4))
	fmt.Fprintf(&b, "Billing Cycle:    %s\n", orDash(rec.BillingCycle))
	fmt.Fprintf(&b, "Payment Due Date: %s\n", orDash(rec.PaymentDueDate))
	fmt.Fprintf(&b, "Total Amount Due: %s\n", orDash(formatAmount(rec.TotalAmountDue)))
	fmt.Fprintf(&b, "Parsed At:        %s\n", orDash(rec.ParsedAt))
	fmt.Fprintf(&b, "Transactions (%d):\n", len(rec.Transactions))
	for _, t := range rec.Transactions {
		fmt.Fprintf(&b, "  %-12s %12s  %s\n", t.Date, orDash(formatAmount(t.Amount)), t.Description)
	}
	return b.String()
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
