package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
)

// WiringEdge states that Contract must store the recorded address of Target.
// Getter and Setter are Solidity signatures; when empty they are derived from the
// target name (treasury() / setTreasury(address)). With Key set, the recorded
// address of Key is passed as the first argument of both calls.
type WiringEdge struct {
	Contract string   `yaml:"contract" json:"contract"`
	Target   string   `yaml:"target" json:"target"`
	Getter   string   `yaml:"getter,omitempty" json:"getter,omitempty"`
	Setter   string   `yaml:"setter,omitempty" json:"setter,omitempty"`
	Key      string   `yaml:"key,omitempty" json:"key,omitempty"`
	OnlyOn   []string `yaml:"only_on,omitempty" json:"onlyOn,omitempty"`
	SkipOn   []string `yaml:"skip_on,omitempty" json:"skipOn,omitempty"`
}

// GetterSignature returns the getter's Solidity signature.
func (e WiringEdge) GetterSignature() string {
	if e.Getter != "" {
		return e.Getter
	}
	if e.Key != "" {
		return lowerFirst(e.Target) + "(address)"
	}
	return lowerFirst(e.Target) + "()"
}

// SetterSignature returns the setter's Solidity signature.
func (e WiringEdge) SetterSignature() string {
	if e.Setter != "" {
		return e.Setter
	}
	if e.Key != "" {
		return "set" + e.Target + "(address,address)"
	}
	return "set" + e.Target + "(address)"
}

// ID identifies the edge in reports.
func (e WiringEdge) ID() string {
	getter := e.GetterSignature()
	if i := strings.IndexByte(getter, '('); i >= 0 {
		getter = getter[:i]
	}
	if e.Key != "" {
		return fmt.Sprintf("%s.%s[%s] -> %s", e.Contract, getter, e.Key, e.Target)
	}
	return fmt.Sprintf("%s.%s -> %s", e.Contract, getter, e.Target)
}

// Keys returns the registry keys the edge reads.
func (e WiringEdge) Keys() []string {
	keys := []string{e.Contract, e.Target}
	if e.Key != "" {
		keys = append(keys, e.Key)
	}
	return keys
}

// AppliesTo reports whether the edge is part of the desired graph on a network.
func (e WiringEdge) AppliesTo(network string) bool {
	if len(e.OnlyOn) > 0 && !slices.Contains(e.OnlyOn, network) {
		return false
	}
	return !slices.Contains(e.SkipOn, network)
}

// WiringGraph is the desired set of cross-contract references.
type WiringGraph struct {
	Edges []WiringEdge `yaml:"edges" json:"edges"`
}

// Validate checks the graph for malformed and duplicate edges.
func (g WiringGraph) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for i, e := range g.Edges {
		if e.Contract == "" || e.Target == "" {
			errs = append(errs, fmt.Errorf("edge %d: contract and target are required", i))
			continue
		}
		if e.Contract == e.Target && e.Key == "" {
			errs = append(errs, fmt.Errorf("edge %d: %s cannot reference itself", i, e.Contract))
		}
		if !strings.HasSuffix(e.GetterSignature(), ")") || !strings.HasSuffix(e.SetterSignature(), ")") {
			errs = append(errs, fmt.Errorf("edge %d: malformed getter or setter signature", i))
		}
		if seen[e.ID()] {
			errs = append(errs, fmt.Errorf("edge %d: duplicate edge %s", i, e.ID()))
		}
		seen[e.ID()] = true
	}
	return errors.Join(errs...)
}

// For returns the edges that apply to a network, in declaration order.
func (g WiringGraph) For(network string) []WiringEdge {
	var edges []WiringEdge
	for _, e := range g.Edges {
		if e.AppliesTo(network) {
			edges = append(edges, e)
		}
	}
	return edges
}

// WiringOutcome is what reconciling one edge did.
type WiringOutcome string

const (
	WiringInSync  WiringOutcome = "in-sync"
	WiringUpdated WiringOutcome = "updated"
	WiringDrift   WiringOutcome = "drift"
	WiringFailed  WiringOutcome = "failed"
)

// EdgeResult reports one reconciled edge.
type EdgeResult struct {
	Edge    WiringEdge     `json:"edge"`
	Outcome WiringOutcome  `json:"outcome"`
	Current common.Address `json:"current"`
	Desired common.Address `json:"desired"`
	TxHash  common.Hash    `json:"txHash,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// DefaultWiringGraph returns the protocol's cross-contract references.
func DefaultWiringGraph() WiringGraph {
	edges := func(contract string, targets ...string) []WiringEdge {
		out := make([]WiringEdge, 0, len(targets))
		for _, t := range targets {
			out = append(out, WiringEdge{Contract: contract, Target: t})
		}
		return out
	}

	var g WiringGraph
	g.Edges = append(g.Edges, edges(ContractPolicyCenter,
		ContractPriorityPoolFactory,
		ContractWeightedFarmingPool,
		ContractCoverRightTokenFactory,
		ContractPayoutPool,
		ContractTreasury,
	)...)
	g.Edges = append(g.Edges,
		WiringEdge{
			Contract: ContractPolicyCenter,
			Target:   ContractPriceGetter,
			OnlyOn:   mainnetOnly,
		},
		WiringEdge{
			Contract: ContractPolicyCenter,
			Target:   ContractMockPriceGetter,
			Getter:   "priceGetter()",
			Setter:   "setPriceGetter(address)",
			SkipOn:   mainnetOnly,
		},
	)
	g.Edges = append(g.Edges, edges(ContractProtectionPool,
		ContractPolicyCenter,
		ContractIncidentReport,
		ContractPriorityPoolFactory,
	)...)
	g.Edges = append(g.Edges, edges(ContractPriorityPoolFactory,
		ContractPolicyCenter,
		ContractIncidentReport,
		ContractExecutor,
		ContractWeightedFarmingPool,
		ContractPremiumRewardPool,
		ContractPayoutPool,
		ContractPriorityPoolDeployer,
	)...)
	g.Edges = append(g.Edges, edges(ContractIncidentReport,
		ContractPriorityPoolFactory,
		ContractPolicyCenter,
	)...)
	g.Edges = append(g.Edges, edges(ContractOnboardProposal,
		ContractPriorityPoolFactory,
	)...)
	g.Edges = append(g.Edges, edges(ContractExecutor,
		ContractPriorityPoolFactory,
		ContractIncidentReport,
		ContractOnboardProposal,
		ContractTreasury,
	)...)
	g.Edges = append(g.Edges, edges(ContractCoverRightTokenFactory,
		ContractPayoutPool,
	)...)
	return g
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
