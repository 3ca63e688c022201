package domain

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Network names known to the harness.
const (
	NetworkHardhat      = "hardhat"
	NetworkLocalhost    = "localhost"
	NetworkFuji         = "fuji"
	NetworkFujiInternal = "fujiInternal"
	NetworkAvaxTest     = "avaxTest"
	NetworkAvax         = "avax"
	NetworkAvaxNew      = "avaxNew"
	NetworkArb          = "arb"
	NetworkArbGoerli    = "arb_goerli"
	NetworkSepolia      = "sepolia"
)

// ProductionNetwork is the only network whose protocol tokens are fixed constants.
const ProductionNetwork = NetworkAvax

// Normalize maps the in-process development network to "localhost" and passes
// every other name through unchanged.
func Normalize(raw string) string {
	if raw == "" || raw == NetworkHardhat {
		return NetworkLocalhost
	}
	return raw
}

// IsProduction reports whether the canonical network name is the production network.
func IsProduction(network string) bool {
	return network == ProductionNetwork
}

// SignerKind selects where a network's deployer key comes from.
type SignerKind string

const (
	SignerMnemonic    SignerKind = "mnemonic"
	SignerPrivateKey  SignerKind = "private-key"
	SignerDevMnemonic SignerKind = "dev-mnemonic"
)

// DevMnemonic is the public mnemonic local development nodes fund by default.
const DevMnemonic = "test test test test test test test test test test test junk"

// SignerSpec tells the chain adapter how to build the deployer key.
type SignerSpec struct {
	Kind SignerKind `toml:"kind" json:"kind"`
	Env  string     `toml:"env" json:"env,omitempty"`
	// Index is the HD account index for mnemonic signers.
	Index uint32 `toml:"index" json:"index,omitempty"`
}

// NetworkSpec is the static description of a target network.
type NetworkSpec struct {
	Name        string        `toml:"-" json:"name"`
	ChainID     uint64        `toml:"chain_id" json:"chainId"`
	RPCURL      string        `toml:"url" json:"rpcUrl,omitempty"`
	RPCURLEnv   string        `toml:"url_env" json:"rpcUrlEnv,omitempty"`
	Signer      SignerSpec    `toml:"signer" json:"signer"`
	Timeout     time.Duration `toml:"-" json:"timeout,omitempty"`
	Production  bool          `toml:"production" json:"production"`
	ExplorerURL string        `toml:"explorer_url" json:"explorerUrl,omitempty"`
	LinkToken   string        `toml:"link_token" json:"linkToken,omitempty"`
}

// RequiredEnv lists the environment variables the network reads.
func (s NetworkSpec) RequiredEnv() []string {
	var vars []string
	if s.RPCURL == "" && s.RPCURLEnv != "" {
		vars = append(vars, s.RPCURLEnv)
	}
	if s.Signer.Kind != SignerDevMnemonic && s.Signer.Env != "" {
		vars = append(vars, s.Signer.Env)
	}
	return vars
}

// CheckEnv fails with ErrMissingEnv naming the first required variable that
// lookup reports unset or empty.
func (s NetworkSpec) CheckEnv(lookup func(string) (string, bool)) error {
	for _, name := range s.RequiredEnv() {
		if v, ok := lookup(name); !ok || v == "" {
			return fmt.Errorf("%w: %s (required by network %s)", ErrMissingEnv, name, s.Name)
		}
	}
	return nil
}

// DefaultNetworks returns the built-in network table.
func DefaultNetworks() map[string]NetworkSpec {
	fujiSigner := SignerSpec{Kind: SignerMnemonic, Env: "PHRASE_FUJI"}
	avaxSigner := SignerSpec{Kind: SignerMnemonic, Env: "PHRASE_AVAX"}
	keySigner := SignerSpec{Kind: SignerPrivateKey, Env: "PRIVATE_KEY"}

	networks := map[string]NetworkSpec{
		NetworkLocalhost: {
			ChainID:   31337,
			RPCURL:    "http://127.0.0.1:8545",
			Signer:    SignerSpec{Kind: SignerDevMnemonic},
			LinkToken: "0x0b9d5D9136855f6FEc3c0993feE6E9CE8a297846",
		},
		NetworkFuji: {
			ChainID:     43113,
			RPCURLEnv:   "FUJI_URL",
			Signer:      fujiSigner,
			Timeout:     60 * time.Second,
			ExplorerURL: "https://testnet.snowtrace.io",
			LinkToken:   "0x0b9d5D9136855f6FEc3c0993feE6E9CE8a297846",
		},
		NetworkFujiInternal: {
			ChainID:     43113,
			RPCURLEnv:   "FUJI_URL",
			Signer:      fujiSigner,
			Timeout:     60 * time.Second,
			ExplorerURL: "https://testnet.snowtrace.io",
		},
		NetworkAvaxTest: {
			ChainID:     43114,
			RPCURLEnv:   "AVAX_URL",
			Signer:      fujiSigner,
			ExplorerURL: "https://snowtrace.io",
		},
		NetworkAvax: {
			ChainID:     43114,
			RPCURLEnv:   "AVAX_URL",
			Signer:      avaxSigner,
			Production:  true,
			ExplorerURL: "https://snowtrace.io",
			LinkToken:   "0x5947BB275c521040051D82396192181b413227A3",
		},
		NetworkAvaxNew: {
			ChainID:     43114,
			RPCURLEnv:   "AVAX_URL",
			Signer:      avaxSigner,
			ExplorerURL: "https://snowtrace.io",
		},
		NetworkArb: {
			ChainID:     42161,
			RPCURLEnv:   "ARB_URL",
			Signer:      avaxSigner,
			ExplorerURL: "https://arbiscan.io",
		},
		NetworkArbGoerli: {
			ChainID:     421613,
			RPCURLEnv:   "ARB_GOERLI_URL",
			Signer:      keySigner,
			ExplorerURL: "https://goerli.arbiscan.io",
		},
		NetworkSepolia: {
			ChainID:     11155111,
			RPCURLEnv:   "SEPOLIA_URL",
			Signer:      keySigner,
			ExplorerURL: "https://sepolia.etherscan.io",
		},
	}
	for name, spec := range networks {
		spec.Name = name
		networks[name] = spec
	}
	return networks
}

// TokenRole identifies one of the three external protocol tokens.
type TokenRole string

const (
	RoleGovernance   TokenRole = "governance"
	RoleVoteEscrowed TokenRole = "vote-escrowed"
	RoleSettlement   TokenRole = "settlement"
)

// TokenRoles lists the roles in resolution order.
var TokenRoles = []TokenRole{RoleGovernance, RoleVoteEscrowed, RoleSettlement}

// ExternalTokens are the governance, vote-escrowed governance and settlement tokens of a network.
type ExternalTokens struct {
	Governance   common.Address `json:"governance"`
	VoteEscrowed common.Address `json:"voteEscrowed"`
	Settlement   common.Address `json:"settlement"`
}

// ByRole returns the token address for a role.
func (t ExternalTokens) ByRole(role TokenRole) common.Address {
	switch role {
	case RoleGovernance:
		return t.Governance
	case RoleVoteEscrowed:
		return t.VoteEscrowed
	default:
		return t.Settlement
	}
}

// MockTokenKeys maps each role to the AddressBook key of its test-network mock.
var MockTokenKeys = map[TokenRole]string{
	RoleGovernance:   ContractMockDEG,
	RoleVoteEscrowed: ContractMockVeDEG,
	RoleSettlement:   ContractMockShield,
}

// ProductionTokenKeys maps each role to the AddressBook key of the production token.
var ProductionTokenKeys = map[TokenRole]string{
	RoleGovernance:   ContractDegisToken,
	RoleVoteEscrowed: ContractVoteEscrowedDegis,
	RoleSettlement:   ContractShield,
}

// TokenKeys returns the AddressBook keys the external tokens of a network are read from.
func TokenKeys(network string) map[TokenRole]string {
	if IsProduction(network) {
		return ProductionTokenKeys
	}
	return MockTokenKeys
}

// set assigns the token of a role.
func (t *ExternalTokens) set(role TokenRole, addr common.Address) {
	switch role {
	case RoleGovernance:
		t.Governance = addr
	case RoleVoteEscrowed:
		t.VoteEscrowed = addr
	default:
		t.Settlement = addr
	}
}
