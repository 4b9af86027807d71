package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Aashish23092/statement-parser/dto"
)

// paymentKeywords mark transactions that are repayments toward the card.
// Extractors sometimes sign those negative like a spend; they are flipped
// positive during normalization.
var paymentKeywords = []string{
	"payment received", "payment", "auto debit", "autopay", "upi credit",
}

var (
	reCurrencyWord = regexp.MustCompile(`(?i)(rs\.?|inr|₹)`)
	reNumberJunk   = regexp.MustCompile(`[,\s]`)
)

// Normalize folds an extractor's issuer-specific output into the canonical
// statement record. It is idempotent: feeding canonical keys back through
// changes nothing. The issuer falls back to the caller hint, then "UNKNOWN".
func Normalize(res dto.ExtractionResult, hint string) dto.StatementRecord {
	fields := res.Fields
	if fields == nil {
		fields = map[string]any{}
	}

	issuer := res.Issuer
	if issuer == "" {
		issuer = pickString(fields, "issuer", "issuer_name", "bank", "bank_name")
	}
	if issuer == "" && hint != "" {
		issuer = strings.ToUpper(hint)
	}
	if issuer == "" {
		issuer = "UNKNOWN"
	}

	parsedAt := res.ParsedAt
	if parsedAt == "" {
		parsedAt = time.Now().Format(time.RFC3339)
	}

	txns := make([]dto.Transaction, 0, len(res.Transactions))
	for _, raw := range res.Transactions {
		txns = append(txns, normalizeTransaction(raw))
	}

	return dto.StatementRecord{
		Issuer:         issuer,
		CardVariant:    pickString(fields, "card_variant", "cardVariant", "variant"),
		CardLast4:      pickString(fields, "card_last_4", "card_last_4_digits", "last4", "last_4", "lastFour"),
		BillingCycle:   pickString(fields, "billing_cycle", "billing_period", "cycle"),
		PaymentDueDate: pickString(fields, "payment_due_date", "due_date", "paymentDueDate"),
		TotalAmountDue: toNumber(pick(fields, "total_amount_due", "total_due", "amount_due")),
		ParsedAt:       parsedAt,
		Transactions:   txns,
	}
}

// normalizeTransaction resolves one raw transaction. The amount is resolved
// in order: a direct amount field, then separate credit/debit columns, then a
// base amount with a DR/CR flag. A negative amount on a payment-keyword
// description is a sign artifact and flips positive.
func normalizeTransaction(raw dto.RawTransaction) dto.Transaction {
	desc := pickTxn(raw, "description", "narration", "merchant", "memo")
	if desc == "" {
		desc = "—"
	}

	amount := parseAmount(pickTxn(raw, "amount", "amt", "value"))
	if amount == nil {
		if credit := parseAmount(pickTxn(raw, "credit", "cr_amount", "credit_amount")); credit != nil {
			v := math.Abs(*credit)
			amount = &v
		} else if debit := parseAmount(pickTxn(raw, "debit", "dr_amount", "debit_amount")); debit != nil {
			v := -math.Abs(*debit)
			amount = &v
		}
	}
	if amount == nil {
		if base := parseAmount(pickTxn(raw, "value_in_inr", "inr", "base_amount")); base != nil {
			v := math.Abs(*base)
			flag := strings.ToUpper(pickTxn(raw, "dr_cr", "type", "direction"))
			if strings.Contains(flag, "DR") {
				v = -v
			}
			amount = &v
		}
	}
	if amount != nil && *amount < 0 && isPayment(desc) {
		v := math.Abs(*amount)
		amount = &v
	}

	return dto.Transaction{
		Date:        pickTxn(raw, "date", "txn_date", "transaction_date", "posted_on"),
		Description: desc,
		Amount:      amount,
	}
}

func isPayment(desc string) bool {
	lower := strings.ToLower(desc)
	for _, kw := range paymentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// pick returns the first alias present with a non-empty value.
func pick(fields map[string]any, keys ...string) any {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func pickString(fields map[string]any, keys ...string) string {
	v := pick(fields, keys...)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func pickTxn(raw dto.RawTransaction, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(raw[k]); v != "" {
			return v
		}
	}
	return ""
}

// toNumber coerces a field value into a float, tolerating currency prefixes,
// thousands separators and stray whitespace. Nil when nothing numeric is left.
func toNumber(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		f := t
		return &f
	case int:
		f := float64(t)
		return &f
	case string:
		return parseAmount(t)
	default:
		return parseAmount(fmt.Sprint(t))
	}
}

func parseAmount(s string) *float64 {
	s = reCurrencyWord.ReplaceAllString(s, "")
	s = reNumberJunk.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
