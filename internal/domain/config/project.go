package config

// ProjectConfig is the raw protect.toml structure.
type ProjectConfig struct {
	RegistryDir   string                     `toml:"registry_dir"`
	Artifacts     []string                   `toml:"artifacts"`
	WiringGraph   string                     `toml:"wiring_graph"`
	Proxy         ProxyConfig                `toml:"proxy"`
	MainnetTokens MainnetTokensConfig        `toml:"mainnet_tokens"`
	Networks      map[string]NetworkOverride `toml:"networks"`
}

// ProxyConfig names the artifacts used for proxied units.
type ProxyConfig struct {
	ProxyArtifact string `toml:"proxy_artifact"`
	AdminArtifact string `toml:"admin_artifact"`
}

// MainnetTokensConfig pins production tokens. An empty field is read from the
// production network's address book.
type MainnetTokensConfig struct {
	Governance   string `toml:"governance"`
	VoteEscrowed string `toml:"vote_escrowed"`
	Settlement   string `toml:"settlement"`
}

// NetworkOverride adjusts a built-in network or declares a new one.
// Zero fields keep the built-in value.
type NetworkOverride struct {
	ChainID     uint64 `toml:"chain_id"`
	URL         string `toml:"url"`
	URLEnv      string `toml:"url_env"`
	SignerKind  string `toml:"signer"`
	SignerEnv   string `toml:"signer_env"`
	SignerIndex uint32 `toml:"signer_index"`
	Timeout     string `toml:"timeout"`
	Production  *bool  `toml:"production"`
	ExplorerURL string `toml:"explorer_url"`
	LinkToken   string `toml:"link_token"`
}
