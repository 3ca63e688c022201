package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWiringEdgeSignatures(t *testing.T) {
	plain := WiringEdge{Contract: ContractPolicyCenter, Target: ContractTreasury}
	assert.Equal(t, "treasury()", plain.GetterSignature())
	assert.Equal(t, "setTreasury(address)", plain.SetterSignature())
	assert.Equal(t, "PolicyCenter.treasury -> Treasury", plain.ID())
	assert.Equal(t, []string{ContractPolicyCenter, ContractTreasury}, plain.Keys())

	keyed := WiringEdge{Contract: ContractPolicyCenter, Target: "Exchange", Key: ContractMockUSDC}
	assert.Equal(t, "exchange(address)", keyed.GetterSignature())
	assert.Equal(t, "setExchange(address,address)", keyed.SetterSignature())
	assert.Equal(t, "PolicyCenter.exchange[MockUSDC] -> Exchange", keyed.ID())
	assert.Len(t, keyed.Keys(), 3)

	custom := WiringEdge{Contract: ContractPolicyCenter, Target: ContractMockPriceGetter, Getter: "priceGetter()", Setter: "setPriceGetter(address)"}
	assert.Equal(t, "priceGetter()", custom.GetterSignature())
	assert.Equal(t, "setPriceGetter(address)", custom.SetterSignature())
}

func TestWiringGraphValidate(t *testing.T) {
	require.NoError(t, DefaultWiringGraph().Validate())

	bad := WiringGraph{Edges: []WiringEdge{
		{Contract: "", Target: "X"},
		{Contract: "A", Target: "A"},
		{Contract: "A", Target: "B", Getter: "b("},
		{Contract: "A", Target: "C"},
		{Contract: "A", Target: "C"},
	}}
	err := bad.Validate()
	require.Error(t, err)
	for _, want := range []string{"edge 0", "reference itself", "malformed", "duplicate edge"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestWiringGraphFor(t *testing.T) {
	g := DefaultWiringGraph()

	local := g.For(NetworkLocalhost)
	mainnet := g.For(NetworkAvax)
	assert.Len(t, local, len(mainnet), "each network gets exactly one price getter edge")

	hasTarget := func(edges []WiringEdge, target string) bool {
		for _, e := range edges {
			if e.Target == target {
				return true
			}
		}
		return false
	}
	assert.True(t, hasTarget(local, ContractMockPriceGetter))
	assert.False(t, hasTarget(local, ContractPriceGetter))
	assert.True(t, hasTarget(mainnet, ContractPriceGetter))
	assert.False(t, hasTarget(mainnet, ContractMockPriceGetter))
}
