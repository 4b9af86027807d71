package extractor

import (
	"github.com/Aashish23092/statement-parser/dto"
	"github.com/Aashish23092/statement-parser/pdfsource"
)

// StatementExtractor is implemented once per supported issuer. Parse never
// raises: every internal failure comes back as the failure variant of the
// result. Extractors are stateless after construction and safe to reuse
// across sequential parse calls.
type StatementExtractor interface {
	IssuerCode() string
	RequiredFields() []string
	Parse(pdfPath string) dto.ExtractionResult
}

// OpenFunc opens a statement PDF. Extractors take one at construction so
// tests can feed synthetic documents instead of real files.
type OpenFunc func(path string) (pdfsource.Document, error)

// PageSet is the read-once content of a statement: header text (first two
// pages), all page texts, and all tables across pages.
type PageSet struct {
	HeaderText string
	PageTexts  []string
	Tables     [][][]string
}

// ReadPages drains a document into a PageSet. The header text falls back to
// the first page when the first two pages carry no text.
func ReadPages(doc pdfsource.Document) PageSet {
	var set PageSet
	header := ""
	for n := 1; n <= doc.NumPages(); n++ {
		page := doc.Page(n)
		set.PageTexts = append(set.PageTexts, page.Text)
		set.Tables = append(set.Tables, page.Tables...)
		if n <= 2 {
			header += page.Text + "\n"
		}
	}
	set.HeaderText = header
	if Clean(header) == "" && len(set.PageTexts) > 0 {
		set.HeaderText = set.PageTexts[0]
	}
	return set
}
