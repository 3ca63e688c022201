package domain

import (
	"fmt"
	"math/big"
	"slices"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DeployMode selects how a unit puts its contract on chain.
type DeployMode string

const (
	// ModeDirect constructs the contract once with constructor arguments.
	ModeDirect DeployMode = "direct"
	// ModeProxied deploys a logic contract behind a transparent proxy and calls its initializer.
	ModeProxied DeployMode = "proxied"
)

// UnitState is the per-run state of a deploy unit.
type UnitState string

const (
	UnitPending  UnitState = "pending"
	UnitDeployed UnitState = "deployed"
	UnitRecorded UnitState = "recorded"
	UnitSkipped  UnitState = "skipped"
	UnitFailed   UnitState = "failed"
)

// DefaultInitializer is the initializer invoked through a freshly created proxy.
const DefaultInitializer = "initialize"

// ArgEnv is what a unit argument can be resolved against.
type ArgEnv struct {
	Network string
	Book    AddressBook
	// Production holds the tokens already resolved for the production network.
	Production ExternalTokens
}

// Arg is a constructor or initializer argument of a deploy unit.
type Arg interface {
	// Keys returns the registry keys the argument reads on a network.
	Keys(network string) []string
	// Resolve produces the ABI value passed to the chain.
	Resolve(env ArgEnv) (any, error)
	String() string
}

// RefArg reads a recorded contract address.
type RefArg struct {
	Key string
}

func (a RefArg) Keys(string) []string { return []string{a.Key} }

func (a RefArg) Resolve(env ArgEnv) (any, error) {
	addr, ok := env.Book.Lookup(env.Network, a.Key)
	if !ok {
		return nil, &MissingDependencyError{
			Network: env.Network,
			Missing: []MissingKey{{Consumer: "argument", Key: a.Key}},
		}
	}
	return addr, nil
}

func (a RefArg) String() string { return "@" + a.Key }

// TokenArg reads one of the network's external protocol tokens.
type TokenArg struct {
	Role TokenRole
}

func (a TokenArg) Keys(network string) []string {
	if IsProduction(network) {
		return nil
	}
	return []string{MockTokenKeys[a.Role]}
}

func (a TokenArg) Resolve(env ArgEnv) (any, error) {
	if IsProduction(env.Network) {
		addr := env.Production.ByRole(a.Role)
		if addr == (common.Address{}) {
			return nil, &MissingDependencyError{
				Network: env.Network,
				Missing: []MissingKey{{Key: ProductionTokenKeys[a.Role]}},
			}
		}
		return addr, nil
	}
	return RefArg{Key: MockTokenKeys[a.Role]}.Resolve(env)
}

func (a TokenArg) String() string { return "token:" + string(a.Role) }

// LitArg is a fixed value.
type LitArg struct {
	Value any
}

func (a LitArg) Keys(string) []string { return nil }

func (a LitArg) Resolve(ArgEnv) (any, error) { return a.Value, nil }

func (a LitArg) String() string {
	if s, ok := a.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(a.Value)
}

// NetworkArg picks a different argument per network.
type NetworkArg struct {
	Choices map[string]Arg
	Default Arg
}

func (a NetworkArg) pick(network string) Arg {
	if arg, ok := a.Choices[network]; ok {
		return arg
	}
	return a.Default
}

func (a NetworkArg) Keys(network string) []string { return a.pick(network).Keys(network) }

func (a NetworkArg) Resolve(env ArgEnv) (any, error) { return a.pick(env.Network).Resolve(env) }

func (a NetworkArg) String() string {
	networks := make([]string, 0, len(a.Choices))
	for n := range a.Choices {
		networks = append(networks, n)
	}
	sort.Strings(networks)
	parts := make([]string, 0, len(networks)+1)
	for _, n := range networks {
		parts = append(parts, n+"="+a.Choices[n].String())
	}
	parts = append(parts, "*="+a.Default.String())
	return "{" + strings.Join(parts, " ") + "}"
}

// Ref builds a RefArg.
func Ref(key string) Arg { return RefArg{Key: key} }

// Token builds a TokenArg.
func Token(role TokenRole) Arg { return TokenArg{Role: role} }

// Lit builds a LitArg.
func Lit(v any) Arg { return LitArg{Value: v} }

// Uint builds a uint256 literal.
func Uint(v int64) Arg { return LitArg{Value: big.NewInt(v)} }

// ByNetwork builds a NetworkArg.
func ByNetwork(choices map[string]Arg, def Arg) Arg {
	return NetworkArg{Choices: choices, Default: def}
}

// Unit describes one deployment step: what it reads, how it deploys, what it records.
type Unit struct {
	Name        string
	Artifact    string
	Mode        DeployMode
	Args        []Arg
	Initializer string
	Tags        []string
	OnlyOn      []string
	SkipOn      []string
}

// ArtifactName returns the contract artifact deployed by the unit.
func (u Unit) ArtifactName() string {
	if u.Artifact != "" {
		return u.Artifact
	}
	return u.Name
}

// InitializerName returns the initializer called through a new proxy.
func (u Unit) InitializerName() string {
	if u.Initializer != "" {
		return u.Initializer
	}
	return DefaultInitializer
}

// AppliesTo reports whether the unit runs on a network.
func (u Unit) AppliesTo(network string) bool {
	if len(u.OnlyOn) > 0 && !slices.Contains(u.OnlyOn, network) {
		return false
	}
	return !slices.Contains(u.SkipOn, network)
}

// Inputs returns the distinct registry keys the unit reads on a network.
func (u Unit) Inputs(network string) []string {
	var keys []string
	for _, arg := range u.Args {
		for _, key := range arg.Keys(network) {
			if !slices.Contains(keys, key) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// Outputs returns the registry keys the unit writes.
func (u Unit) Outputs() []string {
	return []string{u.Name}
}

// HasTag reports whether the unit carries a tag.
func (u Unit) HasTag(tag string) bool {
	return slices.Contains(u.Tags, tag)
}

// ResolveArgs resolves every argument, collecting all missing keys into one error.
func (u Unit) ResolveArgs(env ArgEnv) ([]any, error) {
	values := make([]any, 0, len(u.Args))
	var missing []MissingKey
	for _, arg := range u.Args {
		v, err := arg.Resolve(env)
		if err != nil {
			if mde, ok := err.(*MissingDependencyError); ok {
				for _, m := range mde.Missing {
					missing = append(missing, MissingKey{Consumer: u.Name, Key: m.Key})
				}
				continue
			}
			return nil, err
		}
		values = append(values, v)
	}
	if len(missing) > 0 {
		return nil, &MissingDependencyError{Network: env.Network, Missing: missing}
	}
	return values, nil
}

// UnitResult is the outcome of running one unit.
type UnitResult struct {
	Unit           string         `json:"unit"`
	Mode           DeployMode     `json:"mode"`
	State          UnitState      `json:"state"`
	Address        common.Address `json:"address,omitempty"`
	Implementation common.Address `json:"implementation,omitempty"`
	TxHashes       []common.Hash  `json:"txHashes,omitempty"`
	Upgraded       bool           `json:"upgraded,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	Error          string         `json:"error,omitempty"`
}
