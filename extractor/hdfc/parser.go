// Package hdfc extracts structured fields from HDFC Bank credit card
// statements.
package hdfc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Aashish23092/statement-parser/dto"
	"github.com/Aashish23092/statement-parser/extractor"
	"github.com/Aashish23092/statement-parser/pdfsource"
)

const issuerCode = "HDFC"

// Parser extracts HDFC statement fields. All patterns are compiled once at
// construction and read-only afterwards, so one Parser can serve many
// sequential parse calls.
type Parser struct {
	open extractor.OpenFunc

	variantPatterns []*regexp.Regexp
	genericSuffix   *regexp.Regexp
	brandMention    *regexp.Regexp

	cardLabels   []*regexp.Regexp
	maskTail     *regexp.Regexp
	maskedBlocks *regexp.Regexp

	periodPatterns []*regexp.Regexp
	statementDate  *regexp.Regexp

	dueDirect       []*regexp.Regexp
	dueLabelStrict  []*regexp.Regexp
	dueLabelLoose   []*regexp.Regexp
	dueWindowLabel  *regexp.Regexp

	totalDuePatterns []*regexp.Regexp
	totalDueLabels   []*regexp.Regexp

	txnFallback *regexp.Regexp
	txnRules    extractor.TxnRules
}

func New() *Parser {
	return NewWithOpener(pdfsource.Open)
}

func NewWithOpener(open extractor.OpenFunc) *Parser {
	p := &Parser{open: open}

	p.variantPatterns = []*regexp.Regexp{
		// "Paytm HDFC Bank Credit Card"
		regexp.MustCompile(`(?i)([A-Za-z][A-Za-z \-]+?)\s+HDFC\s+Bank\s+Credit\s+Card`),
		regexp.MustCompile(`(?i)(?:Card\s*(?:Type|Name))[:\s]+([A-Z][A-Z \-]+)`),
		regexp.MustCompile(`(?i)(REGALIA|DINERS(?:\s+CLUB)?|MILLENNIA|INFINIA|MONEYBACK|FREEDOM|TIMES|PLATINUM|TITANIUM|OCTANE|PAYTM)`),
	}
	p.genericSuffix = regexp.MustCompile(`(?i)\b(CREDIT\s*CARD|CARD)\b`)
	p.brandMention = regexp.MustCompile(`(?i)\bHDFC\s+Bank\b`)

	p.cardLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bcard\s*(?:no|number)\b`),
		regexp.MustCompile(`(?i)\bhdfc\s*bank\s*credit\s*card\b`),
	}
	// "Card No: 4695 25XX XXXX 3458" -> "3458", "… XX58" -> "58"
	p.maskTail = regexp.MustCompile(`(?:\d{4}[\s\-]*)?(?:\d{2})?(?:X{2,4}|x{2,4})(?:[\s\-]*X{3,4}){0,2}[\s\-]*(\d{2,4})\b`)
	p.maskedBlocks = regexp.MustCompile(`(?:X|\*){4}(?:[\s\-]+(?:X|\*){4}){2}[\s\-]+(\d{2,4})\b`)

	p.periodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Statement|Billing)\s+(?:Period|Cycle|Date)[:\s]+(\d{1,2}[/-][A-Za-z]{3}[/-]\d{2,4})\s+(?:to|-)\s+(\d{1,2}[/-][A-Za-z]{3}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:Statement|Billing)\s+(?:Period|Cycle|Date)[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(?:to|-)\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)Statement\s+from[:\s]+(\d{1,2}\s+\w+\s+\d{2,4})\s+to\s+(\d{1,2}\s+\w+\s+\d{2,4})`),
	}
	p.statementDate = regexp.MustCompile(`(?i)Statement\s+Date[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)

	p.dueDirect = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Payment\s+)?Due\s+(?:Date|By)[:\s]+(\d{1,2}[/-][A-Za-z]{3}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:Payment\s+)?Due\s+(?:Date|By)[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:Payment\s+)?Due\s+on[:\s]+(\d{1,2}\s+\w+\s+\d{2,4})`),
	}
	p.dueLabelStrict = []*regexp.Regexp{regexp.MustCompile(`(?i)\bpayment\s+due\s+date\b`)}
	p.dueLabelLoose = []*regexp.Regexp{regexp.MustCompile(`(?i)\bdue\s+date\b`)}
	p.dueWindowLabel = regexp.MustCompile(`(?i)payment\s+due\s+date`)

	p.totalDuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total\s+Amount\s+Due[:\s]+(?:Rs\.?|INR|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)Total\s+Dues?[:\s]+(?:Rs\.?|INR|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)Amount\s+Payable[:\s]+(?:Rs\.?|INR|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)Total\s+Outstanding[:\s]+(?:Rs\.?|INR|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
	}
	p.totalDueLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s+amount\s+due`),
		regexp.MustCompile(`(?i)total\s+dues?`),
		regexp.MustCompile(`(?i)(?:amount|amt)\s+payable`),
		regexp.MustCompile(`(?i)total\s+outstanding`),
	}

	p.txnFallback = regexp.MustCompile(
		`(?i)(?P<date>\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{1,2}[ -][A-Za-z]{3}[ -]\d{2,4})` +
			`\s+(?P<desc>.+?)\s+(?:Rs\.?|INR|₹)?\s*(?P<amt>[\d,]+(?:\.\d{1,2})?)\s*(?P<crdr>Cr|DR|CR)?\b`)

	p.txnRules = extractor.TxnRules{
		SkipDesc: regexp.MustCompile(`(?i)(reward\s+points|account\s+summary|available\s+(?:credit|cash)\s+limit|past\s+dues|important\s+information|total\s+)\b`),
		SkipRow:  regexp.MustCompile(`(?i)^\s*(opening|closing|total|new\s+balance|previous\s+balance|minimum\s+amount\s+due|gst|tax)\b`),
		JoinExtraDescColumns: true,
	}
	return p
}

func (p *Parser) IssuerCode() string {
	return issuerCode
}

func (p *Parser) RequiredFields() []string {
	return []string{"card_variant", "card_last_4_digits", "billing_cycle", "payment_due_date", "total_amount_due"}
}

// Parse extracts everything it can from the statement. Each field is
// independently fault tolerant: a miss leaves the field absent, it never
// aborts the parse.
func (p *Parser) Parse(pdfPath string) (res dto.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = dto.NewFailure(dto.FailureExtractor, fmt.Sprintf("HDFC parsing error: %v", r))
		}
	}()

	doc, err := p.open(pdfPath)
	if err != nil {
		return dto.NewFailure(dto.FailureSourceRead, fmt.Sprintf("HDFC parsing error: %v", err))
	}
	defer doc.Close()

	return p.parseDocument(doc)
}

func (p *Parser) parseDocument(doc pdfsource.Document) dto.ExtractionResult {
	pages := extractor.ReadPages(doc)
	header := pages.HeaderText

	res := dto.ExtractionResult{
		Fields:       map[string]any{},
		Transactions: []dto.RawTransaction{},
	}
	setField := func(key, val string) {
		if val != "" {
			res.Fields[key] = val
		}
	}

	setField("card_variant", p.extractCardVariant(header))
	setField("card_last_4_digits", p.extractCardNumber(header))

	cycle := p.extractBillingCycle(header)
	if cycle != nil {
		setField("billing_cycle", cycle.String())
	}
	statementDate := p.extractStatementDate(header)

	setField("payment_due_date", p.extractDueDate(header))
	setField("total_amount_due", p.extractTotalDue(header))

	txns := extractor.TransactionsFromTables(pages.Tables, p.txnRules)
	if len(txns) == 0 {
		txns = extractor.TransactionsFromText(strings.Join(pages.PageTexts, "\n"), p.txnFallback, p.txnRules)
	}
	txns = extractor.FilterToCycle(txns, cycle, 5)
	txns = extractor.Dedupe(txns)

	if cycle == nil {
		if inferred := extractor.InferCycle(statementDate, txns); inferred != "" {
			setField("billing_cycle", inferred)
		}
	}

	res.Transactions = extractor.CapTransactions(txns)
	return res
}

func (p *Parser) extractCardVariant(text string) string {
	for _, pat := range p.variantPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		variant := strings.TrimSpace(p.genericSuffix.ReplaceAllString(extractor.Clean(m[1]), ""))
		if variant == "" {
			continue
		}
		words := strings.Fields(variant)
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
		return "HDFC " + strings.Join(words, " ")
	}
	if p.brandMention.MatchString(text) {
		return "HDFC Credit Card"
	}
	return ""
}

// extractCardNumber returns the visible card tail: the 4 digits as printed,
// or "XX" + the 2 visible digits when the statement masks all but two. The
// mask prefix tells the UI the number is only partially visible.
func (p *Parser) extractCardNumber(text string) string {
	if tail := extractor.ValueAfterLabels(text, p.cardLabels, p.maskTail, 4); tail != "" {
		if len(tail) == 4 {
			return tail
		}
		if len(tail) == 2 {
			return "XX" + tail
		}
	}

	for _, line := range extractor.CleanLines(text) {
		if m := p.maskTail.FindStringSubmatch(line); m != nil {
			return tailOrMasked(m[1])
		}
	}

	if m := p.maskedBlocks.FindStringSubmatch(text); m != nil {
		return tailOrMasked(m[1])
	}
	return ""
}

func tailOrMasked(tail string) string {
	if len(tail) == 4 {
		return tail
	}
	return "XX" + tail
}

func (p *Parser) extractBillingCycle(text string) *extractor.Cycle {
	for _, pat := range p.periodPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start := extractor.NormalizeDate(m[1])
		end := extractor.NormalizeDate(m[2])
		if start != "" && end != "" {
			return &extractor.Cycle{Start: start, End: end}
		}
	}
	return nil
}

func (p *Parser) extractStatementDate(text string) string {
	if m := p.statementDate.FindStringSubmatch(text); m != nil {
		return extractor.NormalizeDate(m[1])
	}
	return ""
}

// extractDueDate accepts only date-shaped tokens near a due-date label, so a
// stray figure like "0 GST" can never be captured as a date.
func (p *Parser) extractDueDate(text string) string {
	for _, pat := range p.dueDirect {
		if m := pat.FindStringSubmatch(text); m != nil {
			token := strings.TrimSpace(m[1])
			if extractor.LooksLikeDateToken(token) {
				return extractor.NormalizeDate(token)
			}
		}
	}

	scanLines := func(labels []*regexp.Regexp) string {
		lines := extractor.CleanLines(text)
		for i, line := range lines {
			matched := false
			for _, label := range labels {
				if label.MatchString(line) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			// this line plus the next three
			for j := 0; j < 4 && i+j < len(lines); j++ {
				if m := extractor.ReDateToken.FindStringSubmatch(lines[i+j]); m != nil {
					token := strings.TrimSpace(m[1])
					if extractor.LooksLikeDateToken(token) {
						return extractor.NormalizeDate(token)
					}
				}
			}
		}
		return ""
	}

	// prefer the strict "Payment Due Date" label over a loose "Due Date"
	// that can appear in footnotes
	if got := scanLines(p.dueLabelStrict); got != "" {
		return got
	}
	if got := scanLines(p.dueLabelLoose); got != "" {
		return got
	}

	// final fallback: character window after the first strict label
	if loc := p.dueWindowLabel.FindStringIndex(text); loc != nil {
		end := loc[1] + 200
		if end > len(text) {
			end = len(text)
		}
		if m := extractor.ReDateToken.FindStringSubmatch(text[loc[1]:end]); m != nil {
			token := strings.TrimSpace(m[1])
			if extractor.LooksLikeDateToken(token) {
				return extractor.NormalizeDate(token)
			}
		}
	}
	return ""
}

func (p *Parser) extractTotalDue(text string) string {
	for _, pat := range p.totalDuePatterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			return "₹" + strings.ReplaceAll(m[1], ",", "")
		}
	}
	if raw := extractor.ValueAfterLabels(text, p.totalDueLabels, extractor.ReCurrencyAmount, 4); raw != "" {
		return "₹" + strings.ReplaceAll(raw, ",", "")
	}
	return ""
}
