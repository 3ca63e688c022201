package interactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzySuggester(t *testing.T) {
	candidates := []string{"PolicyCenter", "ProtectionPool", "PriorityPoolFactory", "MockUSDC", "tokens"}
	s := NewFuzzySuggester()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"case insensitive prefix", "policy", []string{"PolicyCenter"}},
		{"substring", "pool", []string{"ProtectionPool", "PriorityPoolFactory"}},
		{"subsequence", "PrtPool", []string{"ProtectionPool"}},
		{"empty input", "", nil},
		{"no match", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Suggest(tt.input, candidates)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Subset(t, got, tt.want)
		})
	}

	t.Run("at most three", func(t *testing.T) {
		got := s.Suggest("o", candidates)
		assert.LessOrEqual(t, len(got), maxSuggestions)
	})
}
