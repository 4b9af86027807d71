package extractor

import (
	"time"

	"github.com/Aashish23092/statement-parser/dto"
)

const cycleLayout = "02-01-2006"

// MaxTransactions caps the final list of any single statement.
const MaxTransactions = 100

// Cycle is a parsed billing cycle, both endpoints DD-MM-YYYY.
type Cycle struct {
	Start, End string
}

// String renders the cycle the way statements and the canonical record
// carry it.
func (c Cycle) String() string {
	return c.Start + " to " + c.End
}

// Year returns the cycle end's year, 0 when the end does not parse. Used as
// the context year for transaction dates that omit one.
func (c Cycle) Year() int {
	end, err := time.Parse(cycleLayout, c.End)
	if err != nil {
		return 0
	}
	return end.Year()
}

// FilterToCycle keeps transactions dated within [start-padDays, end+padDays].
// Statements are routinely off by a few days around the cycle edges, hence
// the pad. Transactions whose date does not parse cannot be validated and
// are kept.
func FilterToCycle(txns []dto.RawTransaction, cycle *Cycle, padDays int) []dto.RawTransaction {
	if cycle == nil || len(txns) == 0 {
		return txns
	}
	start, err := time.Parse(cycleLayout, cycle.Start)
	if err != nil {
		return txns
	}
	end, err := time.Parse(cycleLayout, cycle.End)
	if err != nil {
		return txns
	}
	start = start.AddDate(0, 0, -padDays)
	end = end.AddDate(0, 0, padDays)

	kept := make([]dto.RawTransaction, 0, len(txns))
	for _, t := range txns {
		dt, err := time.Parse(cycleLayout, t["date"])
		if err != nil {
			kept = append(kept, t)
			continue
		}
		if !dt.Before(start) && !dt.After(end) && t["description"] != "" {
			kept = append(kept, t)
		}
	}
	return kept
}

// Dedupe drops exact (date, description, amount) duplicates, preserving
// first-occurrence order. Idempotent.
func Dedupe(txns []dto.RawTransaction) []dto.RawTransaction {
	type key struct{ date, desc, amount string }
	seen := make(map[key]bool, len(txns))
	out := make([]dto.RawTransaction, 0, len(txns))
	for _, t := range txns {
		k := key{t["date"], t["description"], t["amount"]}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

// CapTransactions truncates to MaxTransactions.
func CapTransactions(txns []dto.RawTransaction) []dto.RawTransaction {
	if len(txns) > MaxTransactions {
		return txns[:MaxTransactions]
	}
	return txns
}

// InferCycle synthesizes a billing cycle from the statement date and the
// earliest transaction date, used only when the statement printed no explicit
// cycle. Empty when any date fails to parse or the ordering is not sane.
func InferCycle(statementDate string, txns []dto.RawTransaction) string {
	if statementDate == "" || len(txns) == 0 {
		return ""
	}
	end, err := time.Parse(cycleLayout, statementDate)
	if err != nil {
		return ""
	}
	var start time.Time
	for _, t := range txns {
		dt, err := time.Parse(cycleLayout, t["date"])
		if err != nil {
			return ""
		}
		if start.IsZero() || dt.Before(start) {
			start = dt
		}
	}
	if start.IsZero() || start.After(end) {
		return ""
	}
	return start.Format(cycleLayout) + " to " + end.Format(cycleLayout)
}
