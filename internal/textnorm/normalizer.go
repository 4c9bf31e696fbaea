// Package textnorm reduces raw forum text to a normalized token
// sequence used by both the crawl prefilter and feature extraction.
package textnorm

import (
	"html"
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
	xhtml "golang.org/x/net/html"
)

var (
	urlRe       = regexp.MustCompile(`https?://\S+`)
	imageRe     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	boldRe      = regexp.MustCompile(`\*\*([^*]*)\*\*`)
	communityRe = regexp.MustCompile(`/?[ru]/(\w+)`)
	nonLetterRe = regexp.MustCompile(`[^A-Za-z]+`)
)

// stopwords is a minimal English function-word set, used only when the
// normalizer is configured to drop them.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "your": {}, "with": {}, "this": {}, "that": {}, "have": {},
	"has": {}, "had": {}, "was": {}, "were": {}, "they": {}, "them": {},
	"from": {}, "what": {}, "when": {}, "where": {}, "which": {}, "will": {},
	"would": {}, "there": {}, "their": {}, "about": {}, "just": {},
	"can": {}, "all": {}, "any": {}, "out": {}, "get": {}, "got": {},
}

// Normalizer is a pure text-to-tokens function. Same input always
// yields the same output; there is no mutable state.
type Normalizer struct {
	dropStopwords bool
}

// New creates a normalizer. dropStopwords removes common English
// function words after stemming-independent matching.
func New(dropStopwords bool) *Normalizer {
	return &Normalizer{dropStopwords: dropStopwords}
}

// Normalize maps raw text to a sequence of lowercase stemmed tokens.
// URLs, markup and non-letter runs are stripped; tokens of two or fewer
// characters are dropped. Empty input yields an empty sequence.
func (n *Normalizer) Normalize(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	text := html.UnescapeString(raw)
	text = stripMarkup(text)
	text = urlRe.ReplaceAllString(text, " ")
	text = imageRe.ReplaceAllString(text, " ")
	text = linkRe.ReplaceAllString(text, "$1")
	text = boldRe.ReplaceAllString(text, "$1")
	text = communityRe.ReplaceAllString(text, "$1")
	text = nonLetterRe.ReplaceAllString(text, " ")
	text = strings.ToLower(text)

	var tokens []string
	for _, word := range strings.Fields(text) {
		if len(word) <= 2 {
			continue
		}
		if n.dropStopwords {
			if _, ok := stopwords[word]; ok {
				continue
			}
		}
		stemmed, err := snowball.Stem(word, "english", false)
		if err != nil || stemmed == "" {
			stemmed = word
		}
		if len(stemmed) <= 2 {
			continue
		}
		tokens = append(tokens, stemmed)
	}
	return tokens
}

// stripMarkup extracts the text content of HTML-bearing bodies. Text
// without angle brackets passes through untouched.
func stripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	node, err := xhtml.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		if n.Type == xhtml.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return b.String()
}
