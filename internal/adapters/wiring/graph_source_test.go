package wiring

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shieldworks/protect/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphSource_Default(t *testing.T) {
	graph, err := NewGraphSource("").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultWiringGraph(), graph)
}

func TestGraphSource_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wiring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`edges:
  - contract: Executor
    target: Treasury
  - contract: PolicyCenter
    target: ExchangeByToken
    key: MockUSDC
    only_on: [localhost]
`), 0o644))

	graph, err := NewGraphSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, graph.Edges, 2)
	assert.Equal(t, "treasury()", graph.Edges[0].GetterSignature())
	assert.Equal(t, "setExchangeByToken(address,address)", graph.Edges[1].SetterSignature())
	assert.Equal(t, []string{"localhost"}, graph.Edges[1].OnlyOn)
}

func TestDecodeGraph_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"unknown field", "edges:\n  - contract: A\n    target: B\n    colour: red\n"},
		{"not a list", "edges: nope\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeGraph([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestEncodeGraph_RoundTrip(t *testing.T) {
	data, err := EncodeGraph(domain.DefaultWiringGraph())
	require.NoError(t, err)
	graph, err := DecodeGraph(data)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultWiringGraph(), graph)
}

func TestGraphSource_MissingFile(t *testing.T) {
	_, err := NewGraphSource(filepath.Join(t.TempDir(), "missing.yaml")).Load(context.Background())
	assert.Error(t, err)
}
