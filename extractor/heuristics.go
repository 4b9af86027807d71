package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthAbbr = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`

// Generic token shapes shared by all issuers. These are immutable after
// compile; issuer-specific pattern tables live on the parser instances.
var (
	reWS          = regexp.MustCompile(`\s+`)
	reAmountToken = regexp.MustCompile(`([\d,]+(?:\.\d{1,2})?)`)
	reAmountTrail = regexp.MustCompile(`(?i)\s+(?:Rs\.?|INR|₹)?\s*[\d,]+(?:\.\d{1,2})?\s*(?:CR|DR)?\s*$`)
	reCRMarker    = regexp.MustCompile(`(?i)\bcr\b`)

	reDateNumeric  = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?$`)
	reDateMonWord  = regexp.MustCompile(`(?i)^\d{1,2}[ -]` + monthAbbr + `[ -]\d{2,4}$`)
	reTokenNumeric = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`)
	reTokenMonSp   = regexp.MustCompile(`(?i)^\d{1,2}\s+` + monthAbbr + `[a-z]*(?:\s+\d{2,4})?$`)
	reTokenMonSep  = regexp.MustCompile(`(?i)^\d{1,2}[/-]` + monthAbbr + `[/-]\d{2,4}$`)
	reDayMonthOnly = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}$`)
	reDayMonWord   = regexp.MustCompile(`(?i)^\d{1,2}\s+` + monthAbbr + `$`)
	reTrailingYear = regexp.MustCompile(`^\d{2}$|^\d{4}$`)

	// A date-shaped token anywhere in a line, used by label-window scans.
	// Month words are restricted to real month names so a figure next to an
	// arbitrary word ("0 GST") is never taken for a date.
	ReDateToken = regexp.MustCompile(
		`(?i)\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{1,2}[/-]` + monthAbbr + `[/-]\d{2,4}|\d{1,2}\s+` + monthAbbr + `[a-z]*(?:\s+\d{2,4})?)\b`)

	// A currency-formatted number with optional prefix, group 1 is the number.
	ReCurrencyAmount = regexp.MustCompile(`(?i)(?:Rs\.?|INR|₹)?\s*([\d,]+(?:\.\d{1,2})?)`)
)

// Date layouts tried in order when normalizing to DD-MM-YYYY. Layouts
// without a year parse to year 0 and get the current year patched in.
var dateLayouts = []string{
	"02-01-2006", "02/01/2006",
	"02-Jan-2006", "02/Jan/2006",
	"02-01-06", "02/01/06",
	"02-Jan-06", "02/Jan/06",
	"2 January 2006", "2 Jan 2006",
	"02-01", "02/01",
}

// Clean collapses whitespace and trims.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(reWS.ReplaceAllString(s, " "))
}

// StripAmountTrail removes a trailing currency amount and CR/DR remnant from
// a description.
func StripAmountTrail(s string) string {
	if s == "" {
		return ""
	}
	return reAmountTrail.ReplaceAllString(Clean(s), "")
}

// ExtractAmount pulls the first amount-shaped token out of a cell and strips
// thousands separators. Empty when the cell holds no number.
func ExtractAmount(s string) string {
	if s == "" {
		return ""
	}
	m := reAmountToken.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], ",", "")
}

// LooksLikeDate is the loose check used on table date cells.
func LooksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return reDateNumeric.MatchString(s) || reDateMonWord.MatchString(s)
}

// LooksLikeDateToken is the strict check applied to due-date candidates so a
// stray number is never accepted as a date.
func LooksLikeDateToken(s string) bool {
	s = strings.TrimSpace(s)
	return reTokenNumeric.MatchString(s) || reTokenMonSp.MatchString(s) || reTokenMonSep.MatchString(s)
}

// NormalizeDate renders any known date shape as DD-MM-YYYY and returns the
// input unchanged when no layout matches.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() < 1970 {
			t = time.Date(time.Now().Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t.Format("02-01-2006")
	}
	return s
}

// NormalizeTxnDate is NormalizeDate with a context year patched into
// transaction dates that omit one (statements often print DD/MM only).
func NormalizeTxnDate(raw string, contextYear int) string {
	raw = strings.TrimSpace(raw)
	if contextYear > 0 {
		if reDayMonthOnly.MatchString(raw) {
			sep := "-"
			if strings.Contains(raw, "/") {
				sep = "/"
			}
			raw = raw + sep + strconv.Itoa(contextYear)
		} else if reDayMonWord.MatchString(raw) {
			raw = raw + " " + strconv.Itoa(contextYear)
		}
	}
	return NormalizeDate(raw)
}

// MaybeAddYear appends a fallback year to a date string that lacks one.
func MaybeAddYear(s string, fallbackYear int) string {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) > 0 && reTrailingYear.MatchString(fields[len(fields)-1]) {
		return s
	}
	year := fallbackYear
	if year <= 0 {
		year = time.Now().Year()
	}
	return s + " " + strconv.Itoa(year)
}

// ValueAfterLabels finds a label line and looks on the same line, then up to
// lookahead following lines, for the value pattern. PDFs routinely place
// labels and values in different columns so they land on separate lines.
// Returns group 1 of the value pattern, or "".
func ValueAfterLabels(text string, labels []*regexp.Regexp, value *regexp.Regexp, lookahead int) string {
	lines := CleanLines(text)
	for i, line := range lines {
		for _, label := range labels {
			if !label.MatchString(line) {
				continue
			}
			if m := value.FindStringSubmatch(line); len(m) > 1 {
				return m[1]
			}
			for j := 1; j <= lookahead && i+j < len(lines); j++ {
				if m := value.FindStringSubmatch(lines[i+j]); len(m) > 1 {
					return m[1]
				}
			}
		}
	}
	return ""
}

// CleanLines splits text into cleaned non-empty lines.
func CleanLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if c := Clean(l); c != "" {
			lines = append(lines, c)
		}
	}
	return lines
}
