package textnorm

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize_StripsURLsAndMarkup(t *testing.T) {
	n := New(false)
	raw := "Check https://example.com/review **amazing** [benchmarks](http://x.test) " +
		"![photo](http://img.test/a.png) over at r/GamingLaptops"
	tokens := n.Normalize(raw)

	joined := strings.Join(tokens, " ")
	if strings.Contains(joined, "http") || strings.Contains(joined, "png") {
		t.Errorf("URL fragments survived normalization: %v", tokens)
	}
	for _, want := range []string{"amaz", "benchmark", "gaminglaptop"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected stem %q in %v", want, tokens)
		}
	}
}

func TestNormalize_HTMLEntitiesAndTags(t *testing.T) {
	n := New(false)
	tokens := n.Normalize("<p>battery &amp; screen</p><script>alert(1)</script>")

	joined := strings.Join(tokens, " ")
	if !strings.Contains(joined, "batteri") || !strings.Contains(joined, "screen") {
		t.Errorf("expected battery and screen stems, got %v", tokens)
	}
	if strings.Contains(joined, "alert") {
		t.Errorf("script content survived: %v", tokens)
	}
}

func TestNormalize_DropsShortTokens(t *testing.T) {
	n := New(false)
	if tokens := n.Normalize("an is to of it 4k 32"); tokens != nil {
		t.Errorf("expected no tokens, got %v", tokens)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := New(false)
	if tokens := n.Normalize(""); tokens != nil {
		t.Errorf("expected nil for empty input, got %v", tokens)
	}
	if tokens := n.Normalize("   \n\t "); tokens != nil {
		t.Errorf("expected nil for blank input, got %v", tokens)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n := New(false)
	raw := "My laptop's battery lasts 9 hours; the display is gorgeous!"
	a := n.Normalize(raw)
	b := n.Normalize(raw)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("normalization is not deterministic: %v vs %v", a, b)
	}
	if len(a) == 0 {
		t.Fatal("expected tokens for non-empty text")
	}
}

func TestNormalize_StopwordDrop(t *testing.T) {
	keep := New(false).Normalize("this laptop has the best keyboard")
	drop := New(true).Normalize("this laptop has the best keyboard")

	if len(drop) >= len(keep) {
		t.Errorf("stopword dropping removed nothing: keep=%v drop=%v", keep, drop)
	}
	for _, tok := range drop {
		if tok == "the" || tok == "this" || tok == "has" {
			t.Errorf("stopword %q survived", tok)
		}
	}
}

func TestNormalize_Lowercases(t *testing.T) {
	for _, tok := range New(false).Normalize("ThinkPad OWNERS Unite") {
		if tok != strings.ToLower(tok) {
			t.Errorf("token %q is not lowercase", tok)
		}
	}
}
