package feature

import (
	"math"
	"reflect"
	"testing"
)

func fitDocs() [][]string {
	return [][]string{
		{"battery", "hinge"},
		{"hinge", "screen"},
	}
}

func TestFit_VocabularyAndIDF(t *testing.T) {
	e := NewExtractor(10, 1)
	if err := e.Fit(fitDocs()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	wantVocab := map[string]int{"battery": 0, "hinge": 1, "screen": 2}
	if !reflect.DeepEqual(e.Vocabulary(), wantVocab) {
		t.Errorf("vocabulary = %v, want %v", e.Vocabulary(), wantVocab)
	}

	idf := e.IDF()
	wantRare := math.Log(3.0/2.0) + 1  // df=1 of n=2
	wantCommon := math.Log(3.0/3.0) + 1 // df=2 of n=2
	if math.Abs(idf[0]-wantRare) > 1e-12 || math.Abs(idf[2]-wantRare) > 1e-12 {
		t.Errorf("rare-term idf = %v, want %v", idf[0], wantRare)
	}
	if math.Abs(idf[1]-wantCommon) > 1e-12 {
		t.Errorf("common-term idf = %v, want %v", idf[1], wantCommon)
	}
}

func TestFit_CapWithTieBreak(t *testing.T) {
	e := NewExtractor(2, 1)
	if err := e.Fit(fitDocs()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// hinge wins on frequency; battery beats screen lexicographically.
	want := map[string]int{"battery": 0, "hinge": 1}
	if !reflect.DeepEqual(e.Vocabulary(), want) {
		t.Errorf("vocabulary = %v, want %v", e.Vocabulary(), want)
	}
}

func TestFit_Deterministic(t *testing.T) {
	a := NewExtractor(5, 2)
	b := NewExtractor(5, 2)
	docs := [][]string{
		{"battery", "life", "great"},
		{"battery", "swollen", "hinge"},
		{"screen", "flicker", "hinge"},
	}
	if err := a.Fit(docs); err != nil {
		t.Fatalf("Fit a: %v", err)
	}
	if err := b.Fit(docs); err != nil {
		t.Fatalf("Fit b: %v", err)
	}
	if !reflect.DeepEqual(a.Vocabulary(), b.Vocabulary()) {
		t.Errorf("vocabularies differ: %v vs %v", a.Vocabulary(), b.Vocabulary())
	}
	if !reflect.DeepEqual(a.IDF(), b.IDF()) {
		t.Errorf("idf tables differ")
	}
}

func TestFit_NoDocuments(t *testing.T) {
	if err := NewExtractor(10, 1).Fit(nil); err != ErrNoDocuments {
		t.Errorf("Fit(nil) = %v, want ErrNoDocuments", err)
	}
}

func TestTransform_L2Normalized(t *testing.T) {
	e := NewExtractor(10, 1)
	if err := e.Fit(fitDocs()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	v := e.Transform([]string{"battery", "hinge", "hinge"})
	var norm float64
	for _, w := range v {
		norm += w * w
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-12 {
		t.Errorf("vector norm = %v, want 1", math.Sqrt(norm))
	}
}

func TestTransform_DropsUnknownTerms(t *testing.T) {
	e := NewExtractor(10, 1)
	if err := e.Fit(fitDocs()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	before := e.VocabularySize()
	v := e.Transform([]string{"keyboard", "trackpad"})
	if len(v) != 0 {
		t.Errorf("unknown-only document produced features: %v", v)
	}
	if e.VocabularySize() != before {
		t.Errorf("vocabulary grew from %d to %d", before, e.VocabularySize())
	}

	v = e.Transform([]string{"battery", "keyboard"})
	if len(v) != 1 {
		t.Errorf("expected only the known term, got %v", v)
	}
}

func TestTransform_Bigrams(t *testing.T) {
	e := NewExtractor(10, 2)
	docs := [][]string{
		{"battery", "life"},
		{"battery", "drain"},
	}
	if err := e.Fit(docs); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	vocab := e.Vocabulary()
	if _, ok := vocab["battery life"]; !ok {
		t.Errorf("expected bigram in vocabulary, got %v", vocab)
	}

	v := e.Transform([]string{"battery", "life"})
	if _, ok := v[vocab["battery life"]]; !ok {
		t.Errorf("bigram feature missing from transform: %v", v)
	}
}

func TestRestore_MatchesFitted(t *testing.T) {
	e := NewExtractor(10, 2)
	if err := e.Fit(fitDocs()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	r := Restore(e.Vocabulary(), e.IDF(), 2)
	doc := []string{"battery", "hinge", "screen"}
	if !reflect.DeepEqual(e.Transform(doc), r.Transform(doc)) {
		t.Errorf("restored extractor disagrees with fitted one")
	}
}
