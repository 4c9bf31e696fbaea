package crawl

import "strings"

// Decision is the coarse prefilter outcome.
type Decision int

const (
	Accept Decision = iota
	Reject
)

// Prefilter is the cheap keyword gate applied to a container's
// descriptive text before deeper traversal. It is deliberately
// high-recall: positive evidence always overrides a negative match, so
// ambiguous containers are left for the trained classifier.
type Prefilter struct {
	positive []string
	negative []string
}

// NewPrefilter creates a gate from positive and negative term sets.
// Matching is case-insensitive substring matching.
func NewPrefilter(positive, negative []string) *Prefilter {
	return &Prefilter{
		positive: lowerAll(positive),
		negative: lowerAll(negative),
	}
}

// Classify returns Reject only when a negative term matches and no
// positive term does; everything else is accepted.
func (p *Prefilter) Classify(text string) Decision {
	t := strings.ToLower(text)
	for _, term := range p.positive {
		if strings.Contains(t, term) {
			return Accept
		}
	}
	for _, term := range p.negative {
		if strings.Contains(t, term) {
			return Reject
		}
	}
	return Accept
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
