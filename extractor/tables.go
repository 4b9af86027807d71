package extractor

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/statement-parser/dto"
)

// Keywords that identify a transaction table's header row.
var headerKeywords = []string{
	"date", "transaction", "description", "amount",
	"debit", "credit", "value", "cr/dr", "remarks", "merchant",
}

// TxnRules parametrizes the shared transaction walk per issuer.
type TxnRules struct {
	// SkipDesc drops rows whose description matches a noise pattern
	// (reward-point lines, limit summaries).
	SkipDesc *regexp.Regexp
	// SkipRow drops summary rows (totals, opening/closing balances). Nil
	// when the issuer's tables carry none.
	SkipRow *regexp.Regexp
	// JoinExtraDescColumns concatenates secondary description columns
	// (merchant, remarks) into the description.
	JoinExtraDescColumns bool
	// RequireAmountColumn rejects tables mapping no amount/debit/credit
	// column at all.
	RequireAmountColumn bool
	// NormalizeDate renders a raw date cell; defaults to NormalizeDate.
	NormalizeDate func(string) string
}

func (r TxnRules) normalizeDate(raw string) string {
	if r.NormalizeDate != nil {
		return r.NormalizeDate(raw)
	}
	return NormalizeDate(raw)
}

func (r TxnRules) skip(desc string) bool {
	if desc == "" {
		return true
	}
	if r.SkipDesc != nil && r.SkipDesc.MatchString(desc) {
		return true
	}
	if r.SkipRow != nil && r.SkipRow.MatchString(desc) {
		return true
	}
	return false
}

// ColumnMap holds header-cell indices per semantic role, -1 when absent.
type ColumnMap struct {
	Date, Desc, Desc2, Merchant, Remarks int
	Amount, Debit, Credit, CrDr          int
}

// FindHeader locates the header row: the first row within the table's first
// six whose joined text scores at least two keyword hits. Returns -1, nil
// when the table has no recognizable header.
func FindHeader(rows [][]string) (int, []string) {
	limit := len(rows)
	if limit > 6 {
		limit = 6
	}
	for idx := 0; idx < limit; idx++ {
		lower := strings.ToLower(strings.Join(rows[idx], " "))
		score := 0
		for _, w := range headerKeywords {
			if strings.Contains(lower, w) {
				score++
			}
		}
		if score >= 2 {
			return idx, rows[idx]
		}
	}
	return -1, nil
}

// MapColumns assigns header cells to semantic roles by keyword containment,
// first match per role wins, left to right.
func MapColumns(header []string) ColumnMap {
	cols := ColumnMap{Date: -1, Desc: -1, Desc2: -1, Merchant: -1, Remarks: -1,
		Amount: -1, Debit: -1, Credit: -1, CrDr: -1}
	for i, h := range header {
		hl := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(hl, "date") && cols.Date < 0:
			cols.Date = i
		case strings.Contains(hl, "cr/dr") || strings.Contains(hl, "crdr") || strings.Contains(hl, "cr / dr"):
			if cols.CrDr < 0 {
				cols.CrDr = i
			}
		case containsAny(hl, "desc", "narration", "transaction", "particular", "merchant"):
			if cols.Desc < 0 {
				cols.Desc = i
			} else if cols.Desc2 < 0 {
				cols.Desc2 = i
			}
		case strings.Contains(hl, "remarks") && cols.Remarks < 0:
			cols.Remarks = i
		case strings.Contains(hl, "amount") && cols.Amount < 0:
			cols.Amount = i
		case strings.Contains(hl, "debit") && cols.Debit < 0:
			cols.Debit = i
		case strings.Contains(hl, "credit") && cols.Credit < 0:
			cols.Credit = i
		}
	}
	return cols
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// TransactionsFromTables walks every extracted table and returns raw
// transactions with signed, glyph-prefixed amount strings. Rows without a
// date-shaped date cell or a numeric amount are dropped.
func TransactionsFromTables(tables [][][]string, rules TxnRules) []dto.RawTransaction {
	var txns []dto.RawTransaction
	for _, table := range tables {
		if len(table) < 2 {
			continue
		}

		norm := make([][]string, len(table))
		for i, row := range table {
			norm[i] = make([]string, len(row))
			for j, cell := range row {
				norm[i][j] = Clean(cell)
			}
		}

		headerIdx, header := FindHeader(norm)
		if headerIdx < 0 {
			continue
		}
		cols := MapColumns(header)
		if cols.Date < 0 {
			continue
		}
		if rules.RequireAmountColumn && cols.Amount < 0 && cols.Debit < 0 && cols.Credit < 0 {
			continue
		}

		for _, row := range norm[headerIdx+1:] {
			for len(row) < len(header) {
				row = append(row, "")
			}

			dateCell := cellAt(row, cols.Date)
			if !LooksLikeDate(dateCell) {
				continue
			}

			descParts := []string{cellAt(row, cols.Desc)}
			if rules.JoinExtraDescColumns {
				descParts = append(descParts,
					cellAt(row, cols.Desc2), cellAt(row, cols.Merchant), cellAt(row, cols.Remarks))
			}
			desc := StripAmountTrail(Clean(strings.Join(descParts, " ")))
			if rules.skip(desc) {
				continue
			}

			sign := "-"
			amountCell := ""
			if cols.Amount >= 0 {
				amountCell = cellAt(row, cols.Amount)
				tail := amountCell + " " + cellAt(row, cols.CrDr)
				if reCRMarker.MatchString(tail) {
					sign = "+"
				}
			} else {
				credit := cellAt(row, cols.Credit)
				debit := cellAt(row, cols.Debit)
				if ExtractAmount(credit) != "" {
					amountCell = credit
					sign = "+"
				} else if ExtractAmount(debit) != "" {
					amountCell = debit
					sign = "-"
				}
			}
			amount := ExtractAmount(amountCell)
			if amount == "" {
				continue
			}

			txns = append(txns, dto.RawTransaction{
				"date":        rules.normalizeDate(dateCell),
				"description": desc,
				"amount":      sign + "₹" + amount,
			})
		}
	}
	return txns
}

// TransactionsFromText is the regex fallback used only when no table yielded
// a transaction. The pattern must expose named groups date, desc, amt and
// crdr. Descriptions under 3 characters are noise and dropped.
func TransactionsFromText(text string, pattern *regexp.Regexp, rules TxnRules) []dto.RawTransaction {
	var txns []dto.RawTransaction
	dateIdx := pattern.SubexpIndex("date")
	descIdx := pattern.SubexpIndex("desc")
	amtIdx := pattern.SubexpIndex("amt")
	crdrIdx := pattern.SubexpIndex("crdr")

	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		desc := StripAmountTrail(m[descIdx])
		if len(desc) < 3 || rules.skip(desc) {
			continue
		}
		sign := "-"
		if strings.Contains(strings.ToLower(m[crdrIdx]), "cr") {
			sign = "+"
		}
		amount := strings.ReplaceAll(m[amtIdx], ",", "")
		txns = append(txns, dto.RawTransaction{
			"date":        rules.normalizeDate(m[dateIdx]),
			"description": desc,
			"amount":      sign + "₹" + amount,
		})
	}
	return txns
}
