package dto

// FailureKind classifies why an extraction produced no usable result.
type FailureKind string

const (
	// FailureSourceRead means the PDF could not be opened or read at all.
	FailureSourceRead FailureKind = "source_read"
	// FailureIssuerUnresolved means neither hint, signature detection nor
	// fallback scoring produced a usable extractor result.
	FailureIssuerUnresolved FailureKind = "issuer_unresolved"
	// FailureExtractor means the extractor itself failed mid-parse.
	FailureExtractor FailureKind = "extractor"
)

// ExtractionFailure is the failure variant of an ExtractionResult.
type ExtractionFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *ExtractionFailure) Error() string {
	return f.Message
}

// RawTransaction is one transaction as an extractor emitted it: issuer-local
// key names, amounts still carrying sign and currency glyph as text.
type RawTransaction map[string]string

// ExtractionResult is the pre-normalization output of a single extractor run.
// Fields carries issuer-specific key names mapped to raw values; the
// normalizer resolves those into the canonical schema. On failure only
// Issuer, ParsedAt and Failure are meaningful.
type ExtractionResult struct {
	Issuer       string           `json:"issuer,omitempty"`
	ParsedAt     string           `json:"parsed_at,omitempty"`
	Fields       map[string]any   `json:"fields,omitempty"`
	Transactions []RawTransaction `json:"transactions"`
	Failure      *ExtractionFailure `json:"failure,omitempty"`
}

// Failed reports whether the result is the failure variant.
func (r ExtractionResult) Failed() bool {
	return r.Failure != nil
}

// NewFailure builds the failure variant with an empty transaction list.
func NewFailure(kind FailureKind, message string) ExtractionResult {
	return ExtractionResult{
		Transactions: []RawTransaction{},
		Failure:      &ExtractionFailure{Kind: kind, Message: message},
	}
}
