package pdfsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRowIntoCells(t *testing.T) {
	// "Date" | "Amazon Retail" | "1,234.56"
	row := []positionedWord{
		{x: 0, w: 20, s: "Date"},
		{x: 60, w: 30, s: "Amazon"},
		{x: 92, w: 30, s: "Retail"},
		{x: 200, w: 40, s: "1,234.56"},
	}

	cells := splitRowIntoCells(row)
	assert.Equal(t, []string{"Date", "Amazon Retail", "1,234.56"}, cells)
}

func TestSplitRowIntoCellsTightRuns(t *testing.T) {
	// glyph runs closer than the word gap are joined without a space
	row := []positionedWord{
		{x: 0, w: 10, s: "46"},
		{x: 10.2, w: 10, s: "95"},
	}
	assert.Equal(t, []string{"4695"}, splitRowIntoCells(row))
}

func TestSplitRowIntoCellsEmpty(t *testing.T) {
	assert.Nil(t, splitRowIntoCells(nil))
}

func TestTablesFromCellRows(t *testing.T) {
	rows := [][]string{
		{"HDFC Bank Credit Card Statement"},
		{"Date", "Description", "Amount"},
		{"15/01/2024", "AMAZON RETAIL", "1,234.56"},
		{"16/01/2024", "SWIGGY ORDER", "450.00"},
		{"This is trailing prose"},
		{"Lonely", "Pair"},
	}

	tables := tablesFromCellRows(rows)
	assert.Len(t, tables, 1)
	assert.Len(t, tables[0], 3)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, tables[0][0])
}

func TestTablesFromCellRowsNoTables(t *testing.T) {
	rows := [][]string{
		{"just prose"},
		{"more prose"},
	}
	assert.Empty(t, tablesFromCellRows(rows))
}
