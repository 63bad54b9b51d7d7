package features

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Mode selects whether an extraction learns the lexical vocabulary or reuses
// a previously learned one.
type Mode int

const (
	// Fit learns a fresh vocabulary from the input corpus.
	Fit Mode = iota
	// Reuse applies the frozen vocabulary; unseen terms contribute zero.
	Reuse
)

// StructuralWidth is the number of leading structural feature slots.
const StructuralWidth = 5

// featureNames describes the feature schema, in slot order.
var featureNames = []string{
	"bid_amount",
	"proposal_length",
	"company_name_length",
	"submission_hour",
	"submission_weekday",
	"text_features",
}

// Extractor turns bid records into fixed-schema feature matrices. The
// structural slot order is frozen: [amount, proposal length, company name
// length, submission hour, submission weekday], followed by the lexical
// block. Reordering would corrupt any scaler or model fit on its output.
type Extractor struct {
	Vectorizer *Vectorizer
}

// NewExtractor creates an Extractor with a fresh vectorizer of the given
// vocabulary bound.
func NewExtractor(vocabSize int) *Extractor {
	return &Extractor{Vectorizer: NewVectorizer(vocabSize)}
}

// FeatureNames returns the names of the feature groups, in slot order.
func FeatureNames() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}

// Extract converts records into a feature matrix. In Fit mode the lexical
// vocabulary is (re)learned from the input; in Reuse mode the frozen
// vocabulary is applied verbatim. Zero records yield an empty matrix.
func (e *Extractor) Extract(records []Record, mode Mode) ([][]float64, error) {
	if len(records) == 0 {
		return [][]float64{}, nil
	}

	structural := make([][]float64, len(records))
	docs := make([]string, len(records))
	for i, r := range records {
		hour, weekday := r.submissionSlots()
		structural[i] = []float64{
			r.BidAmount,
			float64(utf8.RuneCountInString(r.Proposal)),
			float64(utf8.RuneCountInString(r.CompanyName)),
			hour,
			weekday,
		}
		docs[i] = r.Proposal + " " + r.CompanyName
	}

	var lexical [][]float64
	var err error
	switch mode {
	case Fit:
		lexical, err = e.Vectorizer.FitTransform(docs)
	case Reuse:
		lexical, err = e.Vectorizer.Transform(docs)
	default:
		return nil, errors.New("unknown extraction mode")
	}
	if err != nil {
		return nil, fmt.Errorf("lexical features: %w", err)
	}

	out := make([][]float64, len(records))
	for i := range records {
		row := make([]float64, 0, StructuralWidth+len(lexical[i]))
		row = append(row, structural[i]...)
		row = append(row, lexical[i]...)
		out[i] = row
	}
	return out, nil
}
