package interactive

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/shieldworks/protect/internal/usecase"
)

const maxSuggestions = 3

// FuzzySuggester proposes catalog names close to a mistyped one
type FuzzySuggester struct{}

// NewFuzzySuggester creates a new suggester
func NewFuzzySuggester() *FuzzySuggester {
	return &FuzzySuggester{}
}

// Suggest returns up to three candidates, best match first. Case is ignored and
// candidates containing the input as a substring always qualify.
func (FuzzySuggester) Suggest(name string, candidates []string) []string {
	if name == "" {
		return nil
	}
	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}
	input := strings.ToLower(name)

	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] && len(out) < maxSuggestions {
			seen[s] = true
			out = append(out, s)
		}
	}

	for i, c := range lowered {
		if strings.Contains(c, input) || strings.Contains(input, c) {
			add(candidates[i])
		}
	}
	for _, m := range fuzzy.Find(input, lowered) {
		add(candidates[m.Index])
	}
	return out
}

var _ usecase.UnitSuggester = FuzzySuggester{}
