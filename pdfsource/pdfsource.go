package pdfsource

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// RawPage holds the issuer-agnostic content of one PDF page: the plain text
// plus any tabular structures recovered from word positions. A page with
// nothing extractable yields empty text and no tables, never an error.
type RawPage struct {
	Text   string
	Tables [][][]string
}

// Document yields page-level content for one opened PDF. Pages are extracted
// lazily, one call at a time.
type Document interface {
	NumPages() int
	Page(n int) RawPage
	Close() error
}

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
}

// Open opens a PDF read-only. The caller owns the handle and must Close it
// on every path.
func Open(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat pdf: %w", err)
	}
	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	return &pdfDocument{file: f, reader: reader}, nil
}

func (d *pdfDocument) NumPages() int {
	return d.reader.NumPage()
}

// Page extracts text and tables for the 1-based page n.
func (d *pdfDocument) Page(n int) RawPage {
	var page RawPage
	if n < 1 || n > d.reader.NumPage() {
		return page
	}
	p := d.reader.Page(n)
	if p.V.IsNull() {
		return page
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return page
	}

	var cellRows [][]string
	var lines []string
	for _, row := range rows {
		words := make([]positionedWord, 0, len(row.Content))
		for _, t := range row.Content {
			if t.S == "" {
				continue
			}
			words = append(words, positionedWord{x: t.X, w: t.W, s: t.S})
		}
		sort.Slice(words, func(i, j int) bool { return words[i].x < words[j].x })
		cells := splitRowIntoCells(words)
		if len(cells) == 0 {
			continue
		}
		cellRows = append(cellRows, cells)
		lines = append(lines, strings.Join(cells, " "))
	}

	page.Text = strings.Join(lines, "\n")
	page.Tables = tablesFromCellRows(cellRows)
	return page
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}
