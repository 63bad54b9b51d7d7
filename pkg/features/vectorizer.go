package features

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
)

// DefaultVocabularySize bounds the lexical block width.
const DefaultVocabularySize = 100

// Vectorizer builds frequency-weighted (TF-IDF) text features over a bounded
// vocabulary. The vocabulary and term weights are learned once by Fit and
// frozen afterwards; Transform ignores terms outside the vocabulary.
// Exported fields are gob-encoded by the persistence layer.
type Vectorizer struct {
	MaxFeatures int
	Terms       []string       // column index -> term
	Vocabulary  map[string]int // term -> column index
	IDF         []float64
	Fitted      bool
}

// NewVectorizer creates an unfitted Vectorizer with the given vocabulary bound.
// A non-positive maxFeatures falls back to DefaultVocabularySize.
func NewVectorizer(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultVocabularySize
	}
	return &Vectorizer{MaxFeatures: maxFeatures}
}

// Width returns the lexical block dimensionality. Zero until fitted.
func (v *Vectorizer) Width() int {
	return len(v.Terms)
}

// Fit learns the vocabulary and inverse-document-frequency weights from docs.
func (v *Vectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return errors.New("empty corpus")
	}

	// Corpus-wide term counts pick the vocabulary, document frequencies
	// weight it.
	termCount := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range tokenize(doc) {
			termCount[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	terms := make([]string, 0, len(termCount))
	for term := range termCount {
		terms = append(terms, term)
	}
	// Most frequent first; ties broken alphabetically for determinism
	sort.Slice(terms, func(i, j int) bool {
		if termCount[terms[i]] != termCount[terms[j]] {
			return termCount[terms[i]] > termCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	// Columns are assigned in alphabetical order
	sort.Strings(terms)

	v.Terms = terms
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		v.Vocabulary[term] = i
		// Smoothed IDF keeps weights finite for terms in every document
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	v.Fitted = true
	return nil
}

// Transform produces one TF-IDF row per document using the frozen vocabulary.
// Terms never seen at fit time contribute nothing.
func (v *Vectorizer) Transform(docs []string) ([][]float64, error) {
	if !v.Fitted {
		return nil, errors.New("vectorizer not fitted")
	}

	out := make([][]float64, len(docs))
	for i, doc := range docs {
		row := make([]float64, len(v.Terms))
		for _, term := range tokenize(doc) {
			if j, ok := v.Vocabulary[term]; ok {
				row[j] += v.IDF[j]
			}
		}
		normalize(row)
		out[i] = row
	}
	return out, nil
}

// FitTransform fits the vocabulary and returns the transformed corpus.
func (v *Vectorizer) FitTransform(docs []string) ([][]float64, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

// tokenize lowercases the text and splits it into alphanumeric terms of two
// or more characters, dropping stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || isStopWord(f) {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// normalize scales a row to unit Euclidean length in place.
func normalize(row []float64) {
	var sum float64
	for _, v := range row {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range row {
		row[i] /= norm
	}
}
