// Package sbi extracts structured fields from SBI Card statements.
package sbi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Aashish23092/statement-parser/dto"
	"github.com/Aashish23092/statement-parser/extractor"
	"github.com/Aashish23092/statement-parser/pdfsource"
)

const issuerCode = "SBI"

// Parser extracts SBI statement fields. Patterns are compiled once at
// construction and read-only afterwards.
type Parser struct {
	open extractor.OpenFunc

	variantPatterns []*regexp.Regexp
	genericSuffix   *regexp.Regexp
	brandMention    *regexp.Regexp

	maskedLast4   *regexp.Regexp
	last4Fallback *regexp.Regexp
	cardLabels    []*regexp.Regexp
	maskedTail    *regexp.Regexp
	blockMask     *regexp.Regexp
	lineMask      *regexp.Regexp
	labelledMask  *regexp.Regexp

	periodPatterns []*regexp.Regexp
	fromTo         *regexp.Regexp

	dueDirect []*regexp.Regexp
	dueLabels []*regexp.Regexp
	dueDayMon *regexp.Regexp
	payBy     *regexp.Regexp

	totalDuePatterns []*regexp.Regexp
	totalDueLabels   []*regexp.Regexp
	totalDueBracket  []*regexp.Regexp

	txnFallback *regexp.Regexp
	txnRules    extractor.TxnRules
}

func New() *Parser {
	return NewWithOpener(pdfsource.Open)
}

func NewWithOpener(open extractor.OpenFunc) *Parser {
	p := &Parser{open: open}

	p.variantPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Card\s*(?:Type|Name))[:\s]+([A-Z][A-Z \-]+)`),
		// "Your SBI Card SIMPLYCLICK ..."
		regexp.MustCompile(`(?i)Your\s+SBI\s+Card\s+([A-Z][A-Z \-]+)`),
		regexp.MustCompile(`(?i)(AURUM|ELITE|PRIME|SIMPLYCLICK|SIMPLYSAVE|BPCL|OLA|IRCTC|AIR\s*INDIA|CLUB\s*VISTARA|YATRA|OCTANE)`),
	}
	p.genericSuffix = regexp.MustCompile(`(?i)\b(CREDIT\s*CARD|CARD)\b`)
	p.brandMention = regexp.MustCompile(`(?i)\bSBI\s+Card\b|\bState\s+Bank\s+of\s+India\b`)

	p.maskedLast4 = regexp.MustCompile(
		`(?:Card\s*(?:Number|No\.?)|Credit\s*Card\s*(?:Number|No\.?)|Card\s*Ending|Card\s*Ending\s*with)` +
			`[:\s]*[Xx*]+[ \-Xx*]*[Xx*]+[ \-Xx*]*[Xx*]+[ \-Xx*]*(\d{4})`)
	p.last4Fallback = regexp.MustCompile(`(?:XXXX|xxxx|\*{4})[ -]*(?:XXXX|xxxx|\*{4})[ -]*(?:XXXX|xxxx|\*{4})[ -]*(\d{4})`)
	p.cardLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)credit\s*card\s*number`),
		regexp.MustCompile(`(?i)card\s*(?:a/c|ac|account)?\s*(?:no|number)`),
	}
	p.maskedTail = regexp.MustCompile(`(?i)(?:(?:X|\*)[\s\-]*)+(\d{2,4})\b`)
	p.blockMask = regexp.MustCompile(`(?:X|\*){8,}[\s\-]*(?:X|\*)*[\s\-]*(\d{2,4})\b`)
	p.lineMask = regexp.MustCompile(`(?i)(?:(?:X|\*)[\s\-]*){6,}(\d{2,4})$`)
	p.labelledMask = regexp.MustCompile(`(?i)(?:card\s*(?:a/c|ac|account)?\s*(?:no|number)\.?)\s*[:\-]?\s*(?:X|\*){4,}[\s\-\*X]*(\d{2,4})`)

	p.periodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Statement|Billing)\s+(?:Period|Cycle|Date)[:\s]+(\d{1,2}[/-][A-Za-z]{3}[/-]\d{2,4})\s+(?:to|-)\s+(\d{1,2}[/-][A-Za-z]{3}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:Statement|Billing)\s+(?:Period|Cycle|Date)[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(?:to|-)\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)Period\s*(?:From)?[:\s]+(\d{1,2}\s+\w+\s+\d{2,4})\s+(?:to|-)\s+(\d{1,2}\s+\w+\s+\d{2,4})`),
	}
	p.fromTo = regexp.MustCompile(
		`(?i)(?:From|Period\s*From)[:\s]+([0-9]{1,2}[/-][A-Za-z]{3}[/-]\d{2,4}|[0-9]{1,2}[/-][0-9]{1,2}[/-]\d{2,4})` +
			`\s+(?:To|-)\s+([0-9]{1,2}[/-][A-Za-z]{3}[/-]\d{2,4}|[0-9]{1,2}[/-][0-9]{1,2}[/-]\d{2,4})`)

	p.dueDirect = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Payment\s+)?Due\s+(?:Date|By)[:\s]+(\d{1,2}[/-][A-Za-z]{3}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:Payment\s+)?Due\s+(?:Date|By)[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:Payment\s+)?Due\s+on[:\s]+(\d{1,2}\s+\w+\s+\d{2,4})`),
		regexp.MustCompile(`(?i)Last\s+Date\s+for\s+Payment[:\s]+(\d{1,2}[/-][A-Za-z]{3}[/-]\d{2,4})`),
	}
	p.dueLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)payment\s+due\s+date`),
		regexp.MustCompile(`(?i)\bdue\s+date\b`),
	}
	p.dueDayMon = regexp.MustCompile(`(?i)(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*(?:\s+\d{2,4})?)`)
	p.payBy = regexp.MustCompile(`(?i)Pay\s*by[:\s]+(\d{1,2}\s+\w+\s+\d{2,4})`)

	p.totalDuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total\s+Amount\s+Due[:\s]+(?:Rs\.?|INR|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)Total\s+(?:Outstanding|Dues?)[:\s]+(?:Rs\.?|INR|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)Closing\s+Balance[:\s]+(?:Rs\.?|INR|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
	}
	p.totalDueLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s+amount\s+due`),
		regexp.MustCompile(`(?i)total\s+dues?`),
		regexp.MustCompile(`(?i)(?:amount|amt)\s+payable`),
	}
	// some layouts print "Total Dues (INR)" with the amount alone on the next line
	p.totalDueBracket = []*regexp.Regexp{regexp.MustCompile(`(?i)total\s+dues?\s*\(.*\)`)}

	p.txnFallback = regexp.MustCompile(
		`(?i)(?P<date>\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?|\d{1,2}[ -][A-Za-z]{3}[ -]\d{2,4})` +
			`\s+(?P<desc>.+?)\s+(?:Rs\.?|INR|₹)?\s*(?P<amt>[\d,]+(?:\.\d{1,2})?)\s*(?P<crdr>CR|DR)?\b`)

	p.txnRules = extractor.TxnRules{
		SkipDesc:            regexp.MustCompile(`(?i)(available\s+(?:credit|cash)\s+limit|payment\s+due\s+date)`),
		RequireAmountColumn: true,
	}
	return p
}

func (p *Parser) IssuerCode() string {
	return issuerCode
}

func (p *Parser) RequiredFields() []string {
	return []string{"card_variant", "card_last_4_digits", "billing_cycle", "payment_due_date", "total_amount_due"}
}

func (p *Parser) Parse(pdfPath string) (res dto.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = dto.NewFailure(dto.FailureExtractor, fmt.Sprintf("SBI parsing error: %v", r))
		}
	}()

	doc, err := p.open(pdfPath)
	if err != nil {
		return dto.NewFailure(dto.FailureSourceRead, fmt.Sprintf("SBI parsing error: %v", err))
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
	contextYear := 0
	if cycle != nil {
		setField("billing_cycle", cycle.String())
		contextYear = cycle.Year()
	}

	setField("payment_due_date", p.extractDueDate(header, contextYear))
	setField("total_amount_due", p.extractTotalDue(header))

	rules := p.txnRules
	rules.NormalizeDate = func(raw string) string {
		return extractor.NormalizeTxnDate(raw, contextYear)
	}
	txns := extractor.TransactionsFromTables(pages.Tables, rules)
	if len(txns) == 0 {
		txns = extractor.TransactionsFromText(strings.Join(pages.PageTexts, "\n"), p.txnFallback, rules)
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
		if variant != "" {
			return "SBI " + strings.ToUpper(extractor.Clean(variant))
		}
	}
	if p.brandMention.MatchString(text) {
		return "SBI Card"
	}
	return ""
}

// extractCardNumber returns the visible tail of the card number. SBI prints
// either four visible digits ("XXXX XXXX XXXX 1234" -> "1234") or only two
// ("... XX92" -> "XX92", the mask prefix signalling partial visibility).
func (p *Parser) extractCardNumber(text string) string {
	if m := p.maskedLast4.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := p.last4Fallback.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	// label on one line, masked number on the next
	if tail := extractor.ValueAfterLabels(text, p.cardLabels, p.maskedTail, 3); tail != "" {
		if len(tail) == 4 {
			return tail
		}
		if len(tail) == 2 {
			return "XX" + tail
		}
	}

	// single-block masking: XXXXXXXXXXXX 1234
	if m := p.blockMask.FindStringSubmatch(text); m != nil {
		return tailOrMasked(m[1])
	}

	for _, line := range extractor.CleanLines(text) {
		if m := p.lineMask.FindStringSubmatch(line); m != nil {
			return tailOrMasked(m[1])
		}
	}

	if m := p.labelledMask.FindStringSubmatch(text); m != nil {
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
		if m := pat.FindStringSubmatch(text); m != nil {
			start := extractor.NormalizeDate(m[1])
			end := extractor.NormalizeDate(m[2])
			if start != "" && end != "" {
				return &extractor.Cycle{Start: start, End: end}
			}
		}
	}
	// some layouts print "From ... To ..." apart from any statement label
	if m := p.fromTo.FindStringSubmatch(text); m != nil {
		return &extractor.Cycle{
			Start: extractor.NormalizeDate(m[1]),
			End:   extractor.NormalizeDate(m[2]),
		}
	}
	return nil
}

func (p *Parser) extractDueDate(text string, contextYear int) string {
	for _, pat := range p.dueDirect {
		if m := pat.FindStringSubmatch(text); m != nil {
			return extractor.NormalizeDate(m[1])
		}
	}

	// "dd Mon" with no year near the label; borrow the cycle end's year
	if raw := extractor.ValueAfterLabels(text, p.dueLabels, p.dueDayMon, 3); raw != "" {
		return extractor.NormalizeDate(extractor.MaybeAddYear(raw, contextYear))
	}

	if m := p.payBy.FindStringSubmatch(text); m != nil {
		return extractor.NormalizeDate(m[1])
	}
	return ""
}

func (p *Parser) extractTotalDue(text string) string {
	for _, pat := range p.totalDuePatterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			return "₹" + strings.ReplaceAll(m[1], ",", "")
		}
	}
	if raw := extractor.ValueAfterLabels(text, p.totalDueLabels, extractor.ReCurrencyAmount, 3); raw != "" {
		return "₹" + strings.ReplaceAll(raw, ",", "")
	}
	if raw := extractor.ValueAfterLabels(text, p.totalDueBracket, extractor.ReCurrencyAmount, 3); raw != "" {
		return "₹" + strings.ReplaceAll(raw, ",", "")
	}
	return ""
}
