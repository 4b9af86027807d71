package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aashish23092/statement-parser/dto"
	"github.com/Aashish23092/statement-parser/extractor"
	"github.com/Aashish23092/statement-parser/pdfsource"
)

// allowedIssuers is the closed set of issuer codes the service accepts.
// Registering an extractor outside this set is a no-op.
var allowedIssuers = map[string]bool{"SBI": true, "HDFC": true}

// issuerSignature maps an issuer code to the phrases that identify its
// statements. Checked in order against the lowercased first two pages.
type issuerSignature struct {
	code    string
	phrases []string
}

var issuerSignatures = []issuerSignature{
	{code: "SBI", phrases: []string{"sbi card", "state bank of india"}},
	{code: "HDFC", phrases: []string{"hdfc bank", "hdfc credit card"}},
}

// Dispatcher routes a statement PDF to the right extractor. Resolution order:
// trusted caller hint, then signature detection on the document header, then
// running every registered extractor and scoring the results.
type Dispatcher struct {
	log        zerolog.Logger
	open       extractor.OpenFunc
	extractors []extractor.StatementExtractor
	byCode     map[string]extractor.StatementExtractor
}

func NewDispatcher(log zerolog.Logger, extractors ...extractor.StatementExtractor) *Dispatcher {
	return NewDispatcherWithOpener(log, pdfsource.Open, extractors...)
}

func NewDispatcherWithOpener(log zerolog.Logger, open extractor.OpenFunc, extractors ...extractor.StatementExtractor) *Dispatcher {
	d := &Dispatcher{
		log:    log,
		open:   open,
		byCode: make(map[string]extractor.StatementExtractor),
	}
	for _, ex := range extractors {
		d.Register(ex)
	}
	return d
}

// Register adds an extractor. Codes outside the allow-list are refused.
// Registration order is the tie-break order for fallback scoring.
func (d *Dispatcher) Register(ex extractor.StatementExtractor) {
	code := strings.ToUpper(ex.IssuerCode())
	if !allowedIssuers[code] {
		d.log.Warn().Str("issuer", code).Msg("refusing extractor outside issuer allow-list")
		return
	}
	if _, dup := d.byCode[code]; dup {
		return
	}
	d.byCode[code] = ex
	d.extractors = append(d.extractors, ex)
}

// Issuers returns the registered issuer codes in registration order.
func (d *Dispatcher) Issuers() []string {
	codes := make([]string, 0, len(d.extractors))
	for _, ex := range d.extractors {
		codes = append(codes, ex.IssuerCode())
	}
	return codes
}

// Parse extracts a statement. A non-empty hint naming a registered issuer is
// trusted exclusively, with no fallback on failure; the result carries that
// issuer either way. Without a usable hint the dispatcher identifies the
// issuer from the header text, and as a last resort runs every extractor and
// keeps the best-scoring success.
func (d *Dispatcher) Parse(path, hint string) dto.ExtractionResult {
	if hint != "" {
		code := strings.ToUpper(hint)
		if ex, ok := d.byCode[code]; ok {
			d.log.Info().Str("issuer", code).Msg("dispatching on caller hint")
			return stamp(d.safeParse(ex, path), code)
		}
		d.log.Warn().Str("hint", hint).Msg("hint names no registered issuer, detecting instead")
	}

	code, err := d.identify(path)
	if err != nil {
		return dto.NewFailure(dto.FailureSourceRead, fmt.Sprintf("could not read statement: %v", err))
	}
	if ex, ok := d.byCode[code]; ok {
		d.log.Info().Str("issuer", code).Msg("issuer identified from statement header")
		return stamp(d.safeParse(ex, path), code)
	}

	return d.parseByScore(path)
}

// identify matches the lowercased first two pages against the signature
// phrases. Empty when no phrase matches.
func (d *Dispatcher) identify(path string) (string, error) {
	doc, err := d.open(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var header strings.Builder
	last := doc.NumPages()
	if last > 2 {
		last = 2
	}
	for n := 1; n <= last; n++ {
		header.WriteString(doc.Page(n).Text)
		header.WriteString("\n")
	}
	text := strings.ToLower(header.String())

	for _, sig := range issuerSignatures {
		if _, registered := d.byCode[sig.code]; !registered {
			continue
		}
		for _, phrase := range sig.phrases {
			if strings.Contains(text, phrase) {
				return sig.code, nil
			}
		}
	}
	return "", nil
}

// parseByScore runs every registered extractor and keeps the best-scoring
// successful result. Failed results never win; when nothing scores above
// zero the statement is unresolvable.
func (d *Dispatcher) parseByScore(path string) dto.ExtractionResult {
	var (
		bestCode  string
		bestRes   dto.ExtractionResult
		bestScore float64
	)
	for _, ex := range d.extractors {
		res := d.safeParse(ex, path)
		if res.Failed() {
			d.log.Debug().
				Str("issuer", ex.IssuerCode()).
				Str("reason", res.Failure.Message).
				Msg("extractor failed during fallback scoring")
			continue
		}
		score := scoreResult(ex, res)
		d.log.Debug().Str("issuer", ex.IssuerCode()).Float64("score", score).Msg("fallback score")
		if score > bestScore {
			bestScore, bestRes, bestCode = score, res, ex.IssuerCode()
		}
	}
	if bestCode == "" {
		return dto.NewFailure(dto.FailureIssuerUnresolved, fmt.Sprintf(
			"Could not identify issuer or parse with available extractors (%s)",
			strings.Join(d.Issuers(), "/")))
	}
	d.log.Info().Str("issuer", bestCode).Float64("score", bestScore).Msg("issuer chosen by fallback scoring")
	return stamp(bestRes, bestCode)
}

// safeParse shields the dispatcher from a misbehaving extractor.
func (d *Dispatcher) safeParse(ex extractor.StatementExtractor, path string) (res dto.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = dto.NewFailure(dto.FailureExtractor,
				fmt.Sprintf("%s extractor panicked: %v", ex.IssuerCode(), r))
		}
	}()
	return ex.Parse(path)
}

// scoreResult rates an extraction: one point per populated required field,
// a fifth of a point when any transactions came out.
func scoreResult(ex extractor.StatementExtractor, res dto.ExtractionResult) float64 {
	score := 0.0
	for _, field := range ex.RequiredFields() {
		if populated(res.Fields[field]) {
			score++
		}
	}
	if len(res.Transactions) > 0 {
		score += 0.2
	}
	return score
}

func populated(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}

func stamp(res dto.ExtractionResult, code string) dto.ExtractionResult {
	res.Issuer = code
	res.ParsedAt = time.Now().Format(time.RFC3339)
	return res
}
