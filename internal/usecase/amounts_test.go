package usecase

import (
	"math/big"
	"testing"

	"github.com/shieldworks/protect/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{"1", 18, "1000000000000000000", false},
		{"1.5", 6, "1500000", false},
		{"0.000001", 6, "1", false},
		{"1000000000", 6, "1000000000000000", false},
		{"0", 18, "0", false},
		{"0.0000001", 6, "", true},
		{"-1", 6, "", true},
		{"abc", 6, "", true},
		{"", 6, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in, tt.decimals)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(nil, 18))
	assert.Equal(t, "1.5", FormatAmount(big.NewInt(1_500_000), 6))
	assert.Equal(t, "1000", FormatAmount(big.NewInt(1_000_000_000), 6))
}

func TestAmountRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		decimals := rapid.SampledFrom([]uint8{DecimalsSettlement, DecimalsGovernance}).Draw(t, "decimals")
		v := new(big.Int).SetUint64(rapid.Uint64().Draw(t, "units"))

		back, err := ParseAmount(FormatAmount(v, decimals), decimals)
		if err != nil {
			t.Fatalf("parse of formatted %s failed: %v", v, err)
		}
		if back.Cmp(v) != 0 {
			t.Fatalf("round trip changed %s into %s", v, back)
		}
	})
}

func TestParseUint(t *testing.T) {
	v, err := ParseUint("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	_, err = ParseUint("-1")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = ParseUint("1.5")
	assert.Error(t, err)
}
