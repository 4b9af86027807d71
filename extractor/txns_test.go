package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aashish23092/statement-parser/dto"
)

func txn(date, desc, amount string) dto.RawTransaction {
	return dto.RawTransaction{"date": date, "description": desc, "amount": amount}
}

func TestFilterToCycleBoundary(t *testing.T) {
	cycle := &Cycle{Start: "01-01-2024", End: "31-01-2024"}
	txns := []dto.RawTransaction{
		txn("27-12-2023", "FIVE DAYS BEFORE START", "-₹100"),
		txn("26-12-2023", "SIX DAYS BEFORE START", "-₹100"),
		txn("05-02-2024", "FIVE DAYS AFTER END", "-₹100"),
		txn("06-02-2024", "SIX DAYS AFTER END", "-₹100"),
		txn("15-01-2024", "IN CYCLE", "-₹100"),
	}

	kept := FilterToCycle(txns, cycle, 5)
	descs := make([]string, 0, len(kept))
	for _, k := range kept {
		descs = append(descs, k["description"])
	}
	assert.Equal(t, []string{"FIVE DAYS BEFORE START", "FIVE DAYS AFTER END", "IN CYCLE"}, descs)
}

func TestFilterToCycleKeepsUnparsableDates(t *testing.T) {
	cycle := &Cycle{Start: "01-01-2024", End: "31-01-2024"}
	txns := []dto.RawTransaction{txn("??", "ODD DATE", "-₹100")}
	assert.Len(t, FilterToCycle(txns, cycle, 5), 1)
}

func TestFilterToCycleNilCycle(t *testing.T) {
	txns := []dto.RawTransaction{txn("15-01-2024", "A", "-₹1")}
	assert.Equal(t, txns, FilterToCycle(txns, nil, 5))
}

func TestDedupe(t *testing.T) {
	txns := []dto.RawTransaction{
		txn("15-01-2024", "AMAZON", "-₹100"),
		txn("15-01-2024", "AMAZON", "-₹100"),
		txn("15-01-2024", "AMAZON", "-₹200"),
	}

	once := Dedupe(txns)
	assert.Len(t, once, 2)
	assert.Equal(t, "-₹100", once[0]["amount"])
	assert.Equal(t, "-₹200", once[1]["amount"])

	// idempotent
	assert.Equal(t, once, Dedupe(once))
}

func TestCapTransactions(t *testing.T) {
	txns := make([]dto.RawTransaction, MaxTransactions+20)
	for i := range txns {
		txns[i] = txn("15-01-2024", "X", "-₹1")
	}
	assert.Len(t, CapTransactions(txns), MaxTransactions)
}

func TestInferCycle(t *testing.T) {
	txns := []dto.RawTransaction{
		txn("10-01-2024", "B", "-₹1"),
		txn("03-01-2024", "A", "-₹1"),
	}
	assert.Equal(t, "03-01-2024 to 31-01-2024", InferCycle("31-01-2024", txns))

	// any unparsable transaction date blocks inference
	withBad := append(txns, txn("??", "C", "-₹1"))
	assert.Equal(t, "", InferCycle("31-01-2024", withBad))

	assert.Equal(t, "", InferCycle("", txns))
	assert.Equal(t, "", InferCycle("01-01-2020", txns))
}

func TestCycleYear(t *testing.T) {
	assert.Equal(t, 2024, Cycle{Start: "01-01-2024", End: "31-01-2024"}.Year())
	assert.Equal(t, 0, Cycle{End: "??"}.Year())
}
