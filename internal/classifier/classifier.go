// Package classifier scores and filters canonical tokens.
//
// Three variants share the Classifier interface:
//   - Threshold: keeps tokens passing every check, input order preserved
//   - ScoredThreshold: weighted pass/fail score, keeps score > 5, ranked
//   - WeightedScore: graded sub-scores, total in [0,10], categorized
package classifier

import (
	"errors"
	"fmt"

	"solana-token-scanner/internal/domain"
)

// Configuration errors. All of them wrap ErrConfiguration.
var (
	ErrConfiguration     = errors.New("classifier configuration error")
	ErrUnknownClassifier = fmt.Errorf("%w: unknown classifier type", ErrConfiguration)
	ErrMissingParameter  = fmt.Errorf("%w: missing required parameter", ErrConfiguration)
	ErrInvalidParameter  = fmt.Errorf("%w: invalid parameter", ErrConfiguration)
)

// Classifier turns a scan's tokens into a Result.
// Implementations are pure apart from attaching score fields to tokens.
type Classifier interface {
	// Classify filters or categorizes tokens.
	Classify(tokens []*domain.Token) *Result

	// Name returns a human-readable classifier name.
	Name() string

	// Parameters returns the configured thresholds keyed by parameter name.
	Parameters() map[string]any
}

// Kind tags the shape of a Result.
type Kind int

const (
	// KindFiltered results carry an ordered token list.
	KindFiltered Kind = iota
	// KindCategorized results carry per-category ordered lists.
	KindCategorized
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFiltered:
		return "filtered"
	case KindCategorized:
		return "categorized"
	default:
		return "unknown"
	}
}

// Result is the output of Classify.
type Result struct {
	Kind       Kind
	Classifier string

	// Tokens is set for KindFiltered.
	Tokens []*domain.Token

	// Categories is set for KindCategorized. Every category is present.
	Categories map[domain.Category][]*domain.Token
}

// Count returns the number of tokens in the result.
func (r *Result) Count() int {
	if r.Kind == KindFiltered {
		return len(r.Tokens)
	}
	n := 0
	for _, tokens := range r.Categories {
		n += len(tokens)
	}
	return n
}

// All returns every token in the result. Categorized results are flattened
// in domain.Categories order.
func (r *Result) All() []*domain.Token {
	if r.Kind == KindFiltered {
		return r.Tokens
	}
	out := make([]*domain.Token, 0, r.Count())
	for _, c := range domain.Categories {
		out = append(out, r.Categories[c]...)
	}
	return out
}

func newFiltered(name string, tokens []*domain.Token) *Result {
	return &Result{Kind: KindFiltered, Classifier: name, Tokens: tokens}
}

func newCategorized(name string) *Result {
	r := &Result{
		Kind:       KindCategorized,
		Classifier: name,
		Categories: make(map[domain.Category][]*domain.Token, len(domain.Categories)),
	}
	for _, c := range domain.Categories {
		r.Categories[c] = []*domain.Token{}
	}
	return r
}
