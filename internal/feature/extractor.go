// Package feature implements TF-IDF vectorization over normalized
// documents. Fit learns a vocabulary and IDF weights once; Transform
// maps arbitrary documents onto that frozen vocabulary.
package feature

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// Vector is a sparse feature vector keyed by vocabulary index.
type Vector map[int]float64

// ErrNoDocuments rejects fitting on an empty corpus.
var ErrNoDocuments = errors.New("no documents to fit")

// Extractor learns and applies a TF-IDF vocabulary.
type Extractor struct {
	maxVocab int
	ngramMax int
	vocab    map[string]int
	idf      []float64
	fitted   bool
}

// NewExtractor creates an extractor with a vocabulary size cap and a
// maximum n-gram order (1 = unigrams only, 2 adds bigrams).
func NewExtractor(maxVocab, ngramMax int) *Extractor {
	if maxVocab <= 0 {
		maxVocab = 2000
	}
	if ngramMax <= 0 {
		ngramMax = 1
	}
	return &Extractor{maxVocab: maxVocab, ngramMax: ngramMax}
}

// Restore rebuilds an extractor from a persisted vocabulary and IDF
// table, for inference against a stored model snapshot.
func Restore(vocab map[string]int, idf []float64, ngramMax int) *Extractor {
	if ngramMax <= 0 {
		ngramMax = 1
	}
	v := make(map[string]int, len(vocab))
	for term, idx := range vocab {
		v[term] = idx
	}
	w := make([]float64, len(idf))
	copy(w, idf)
	return &Extractor{
		maxVocab: len(vocab),
		ngramMax: ngramMax,
		vocab:    v,
		idf:      w,
		fitted:   true,
	}
}

// Fit builds the vocabulary and IDF weights from a training corpus.
// Terms are ranked by document frequency with lexicographic tie-break,
// so fitting the same corpus twice yields identical results.
func (e *Extractor) Fit(docs [][]string) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range e.terms(doc) {
			seen[term] = struct{}{}
		}
		for term := range seen {
			df[term]++
		}
	}

	ranked := make([]string, 0, len(df))
	for term := range df {
		ranked = append(ranked, term)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if df[ranked[i]] != df[ranked[j]] {
			return df[ranked[i]] > df[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > e.maxVocab {
		ranked = ranked[:e.maxVocab]
	}
	sort.Strings(ranked)

	n := float64(len(docs))
	e.vocab = make(map[string]int, len(ranked))
	e.idf = make([]float64, len(ranked))
	for i, term := range ranked {
		e.vocab[term] = i
		e.idf[i] = math.Log((1+n)/float64(1+df[term])) + 1
	}
	e.fitted = true
	return nil
}

// Transform maps a document onto the fitted vocabulary. Unknown terms
// are dropped; the vocabulary is never altered. The resulting tf-idf
// vector is L2-normalized.
func (e *Extractor) Transform(doc []string) Vector {
	v := make(Vector)
	if !e.fitted || len(doc) == 0 {
		return v
	}

	for _, term := range e.terms(doc) {
		if idx, ok := e.vocab[term]; ok {
			v[idx]++
		}
	}

	var norm float64
	for idx := range v {
		v[idx] *= e.idf[idx]
		norm += v[idx] * v[idx]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range v {
			v[idx] /= norm
		}
	}
	return v
}

// VocabularySize returns the number of fitted terms.
func (e *Extractor) VocabularySize() int { return len(e.vocab) }

// Vocabulary returns a copy of the fitted term-to-index map.
func (e *Extractor) Vocabulary() map[string]int {
	out := make(map[string]int, len(e.vocab))
	for term, idx := range e.vocab {
		out[term] = idx
	}
	return out
}

// IDF returns a copy of the fitted inverse-document-frequency weights.
func (e *Extractor) IDF() []float64 {
	out := make([]float64, len(e.idf))
	copy(out, e.idf)
	return out
}

// terms expands a token sequence into unigrams and higher-order n-grams
// up to the configured order.
func (e *Extractor) terms(doc []string) []string {
	out := make([]string, 0, len(doc)*e.ngramMax)
	for order := 1; order <= e.ngramMax; order++ {
		for i := 0; i+order <= len(doc); i++ {
			out = append(out, strings.Join(doc[i:i+order], " "))
		}
	}
	return out
}
