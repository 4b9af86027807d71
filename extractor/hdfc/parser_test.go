package hdfc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/statement-parser/dto"
	"github.com/Aashish23092/statement-parser/pdfsource"
)

type fakeDocument struct {
	pages []pdfsource.RawPage
}

func (d *fakeDocument) NumPages() int               { return len(d.pages) }
func (d *fakeDocument) Page(n int) pdfsource.RawPage { return d.pages[n-1] }
func (d *fakeDocument) Close() error                { return nil }

func openerFor(doc pdfsource.Document) func(string) (pdfsource.Document, error) {
	return func(string) (pdfsource.Document, error) { return doc, nil }
}

func TestParseTypicalStatement(t *testing.T) {
	doc := &fakeDocument{pages: []pdfsource.RawPage{{
		Text: `HDFC Bank Credit Card Statement
Millennia HDFC Bank Credit Card
Card No: 4695 25XX XXXX 3458
Statement Period: 01/01/2024 to 31/01/2024
Payment Due Date: 05-Feb-2024
Total Amount Due: ₹12,345.67`,
		Tables: [][][]string{{
			{"Date", "Description", "Amount"},
			{"15/01/2024", "AMAZON RETAIL", "1,234.56"},
			{"16/01/2024", "PAYMENT RECEIVED 5,000.00 Cr", "5,000.00 Cr"},
		}},
	}}}

	p := NewWithOpener(openerFor(doc))
	res := p.Parse("statement.pdf")

	require.False(t, res.Failed())
	assert.Equal(t, "HDFC Millennia", res.Fields["card_variant"])
	assert.Equal(t, "3458", res.Fields["card_last_4_digits"])
	assert.Equal(t, "01-01-2024 to 31-01-2024", res.Fields["billing_cycle"])
	assert.Equal(t, "05-02-2024", res.Fields["payment_due_date"])
	assert.Equal(t, "₹12345.67", res.Fields["total_amount_due"])

	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "15-01-2024", res.Transactions[0]["date"])
	assert.Equal(t, "AMAZON RETAIL", res.Transactions[0]["description"])
	assert.Equal(t, "-₹1234.56", res.Transactions[0]["amount"])
	assert.Equal(t, "+₹5000.00", res.Transactions[1]["amount"])
}

func TestParseBrandFallbackVariant(t *testing.T) {
	doc := &fakeDocument{pages: []pdfsource.RawPage{{
		Text: "HDFC Bank statement of account\nCard No: XXXX XXXX XXXX 1111",
	}}}

	res := NewWithOpener(openerFor(doc)).Parse("x.pdf")

	require.False(t, res.Failed())
	assert.Equal(t, "HDFC Credit Card", res.Fields["card_variant"])
	assert.Equal(t, "1111", res.Fields["card_last_4_digits"])
}

func TestParseTwoDigitMaskKeepsPrefix(t *testing.T) {
	doc := &fakeDocument{pages: []pdfsource.RawPage{{
		Text: "HDFC Bank Credit Card\nCard No: 4695 25XX XX58",
	}}}

	res := NewWithOpener(openerFor(doc)).Parse("x.pdf")

	require.False(t, res.Failed())
	assert.Equal(t, "XX58", res.Fields["card_last_4_digits"])
}

func TestParseDueDateRejectsNonDateToken(t *testing.T) {
	doc := &fakeDocument{pages: []pdfsource.RawPage{{
		Text: `HDFC Bank Credit Card
Payment Due Date
0
GST Summary`,
	}}}

	res := NewWithOpener(openerFor(doc)).Parse("x.pdf")

	require.False(t, res.Failed())
	_, has := res.Fields["payment_due_date"]
	assert.False(t, has)
}

func TestParseCycleFilterAndDedupe(t *testing.T) {
	doc := &fakeDocument{pages: []pdfsource.RawPage{{
		Text: "HDFC Bank Credit Card\nStatement Period: 01/01/2024 to 31/01/2024",
		Tables: [][][]string{{
			{"Date", "Description", "Amount"},
			{"15/01/2024", "SWIGGY ORDER", "450.00"},
			{"15/01/2024", "SWIGGY ORDER", "450.00"},
			{"15/11/2023", "WAY OUT OF CYCLE", "100.00"},
		}},
	}}}

	res := NewWithOpener(openerFor(doc)).Parse("x.pdf")

	require.False(t, res.Failed())
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "SWIGGY ORDER", res.Transactions[0]["description"])
}

func TestParseInfersCycleFromStatementDate(t *testing.T) {
	doc := &fakeDocument{pages: []pdfsource.RawPage{{
		Text: "HDFC Bank Credit Card\nStatement Date: 31/01/2024",
		Tables: [][][]string{{
			{"Date", "Description", "Amount"},
			{"03/01/2024", "FIRST SPEND", "100.00"},
			{"20/01/2024", "LATER SPEND", "200.00"},
		}},
	}}}

	res := NewWithOpener(openerFor(doc)).Parse("x.pdf")

	require.False(t, res.Failed())
	assert.Equal(t, "03-01-2024 to 31-01-2024", res.Fields["billing_cycle"])
}

func TestParseOpenError(t *testing.T) {
	p := NewWithOpener(func(string) (pdfsource.Document, error) {
		return nil, errors.New("no such file")
	})
	res := p.Parse("missing.pdf")

	require.True(t, res.Failed())
	assert.Equal(t, dto.FailureSourceRead, res.Failure.Kind)
	assert.Contains(t, res.Failure.Message, "HDFC parsing error")
}

func TestRequiredFields(t *testing.T) {
	assert.Equal(t,
		[]string{"card_variant", "card_last_4_digits", "billing_cycle", "payment_due_date", "total_amount_due"},
		New().RequiredFields())
	assert.Equal(t, "HDFC", New().IssuerCode())
}
