package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestProvider_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Provider(SetupViper(dir))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, DefaultRegistryDir), cfg.RegistryDir)
	assert.Equal(t, []string{DefaultArtifactRoot}, cfg.ArtifactRoots)
	assert.Equal(t, DefaultProxyArtifact, cfg.ProxyArtifact)
	assert.Equal(t, DefaultProxyAdminArtifact, cfg.ProxyAdminArtifact)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, domain.ExternalTokens{}, cfg.MainnetTokens, "nothing is pinned by default")
	assert.Nil(t, cfg.Project)

	require.NotNil(t, cfg.Network)
	assert.Equal(t, domain.NetworkLocalhost, cfg.Network.Name)
	assert.Equal(t, uint64(31337), cfg.Network.ChainID)
}

func TestProvider_NormalizesHardhat(t *testing.T) {
	dir := t.TempDir()
	v := SetupViper(dir)
	v.Set("network", "hardhat")

	cfg, err := Provider(v)
	require.NoError(t, err)
	assert.Equal(t, domain.NetworkLocalhost, cfg.NetworkName())
}

func TestProvider_UnknownNetwork(t *testing.T) {
	v := SetupViper(t.TempDir())
	v.Set("network", "mainnet")

	_, err := Provider(v)
	assert.ErrorIs(t, err, domain.ErrUnknownNetwork)
}

func TestProvider_MissingEnv(t *testing.T) {
	t.Setenv("FUJI_URL", "")
	v := SetupViper(t.TempDir())
	v.Set("network", domain.NetworkFuji)

	_, err := Provider(v)
	require.ErrorIs(t, err, domain.ErrMissingEnv)
	assert.Contains(t, err.Error(), "FUJI_URL")
}

func TestProvider_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FUJI_URL", "")
	t.Setenv("PHRASE_FUJI", "")
	os.Unsetenv("FUJI_URL")
	os.Unsetenv("PHRASE_FUJI")

	writeFile(t, dir, ".env", "FUJI_URL=https://from-dotenv\nPHRASE_FUJI=one two three\n")
	writeFile(t, dir, ".env.local", "FUJI_URL=https://from-local\n")

	v := SetupViper(dir)
	v.Set("network", domain.NetworkFuji)

	cfg, err := Provider(v)
	require.NoError(t, err)
	assert.Equal(t, domain.NetworkFuji, cfg.NetworkName())
	assert.Equal(t, "https://from-local", os.Getenv("FUJI_URL"))
	assert.Equal(t, "one two three", os.Getenv("PHRASE_FUJI"))
}

func TestProvider_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ProjectFile, `
registry_dir = "deployments"
artifacts = ["artifacts", "node_modules/@openzeppelin/contracts/build"]
wiring_graph = "wiring.yaml"

[proxy]
proxy_artifact = "ERC1967Proxy"

[mainnet_tokens]
settlement = "0x0000000000000000000000000000000000000006"

[networks.localhost]
timeout = "90s"

[networks.devnet]
chain_id = 1337
url = "http://10.0.0.2:8545"
signer = "dev-mnemonic"
`)

	cfg, err := Provider(SetupViper(dir))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "deployments"), cfg.RegistryDir)
	assert.Equal(t, []string{"artifacts", "node_modules/@openzeppelin/contracts/build"}, cfg.ArtifactRoots)
	assert.Equal(t, "wiring.yaml", cfg.WiringGraphPath)
	assert.Equal(t, "ERC1967Proxy", cfg.ProxyArtifact)
	assert.Equal(t, DefaultProxyAdminArtifact, cfg.ProxyAdminArtifact)
	assert.Equal(t, common.HexToAddress("0x06"), cfg.MainnetTokens.Settlement)
	assert.Equal(t, common.Address{}, cfg.MainnetTokens.Governance)
	require.NotNil(t, cfg.Project)

	assert.Equal(t, 90*time.Second, cfg.Network.Timeout)
	devnet, ok := cfg.Networks["devnet"]
	require.True(t, ok)
	assert.Equal(t, "devnet", devnet.Name)
	assert.Equal(t, uint64(1337), devnet.ChainID)
}

func TestProvider_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ProjectFile, `registry_dir = "deployments"`)
	t.Setenv("PROTECT_REGISTRY_DIR", "/tmp/elsewhere")

	cfg, err := Provider(SetupViper(dir))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere", cfg.RegistryDir)
}

func TestLoadProjectConfig_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ProjectFile, `registry = "typo"`)

	_, err := LoadProjectConfig(dir)
	assert.ErrorContains(t, err, "unknown keys")
}

func TestApplyNetworkOverrides(t *testing.T) {
	yes := true

	tests := []struct {
		name      string
		overrides map[string]config.NetworkOverride
		check     func(t *testing.T, networks map[string]domain.NetworkSpec)
		wantErr   string
	}{
		{
			name: "url replaces env var",
			overrides: map[string]config.NetworkOverride{
				domain.NetworkFuji: {URL: "https://fuji.local"},
			},
			check: func(t *testing.T, networks map[string]domain.NetworkSpec) {
				fuji := networks[domain.NetworkFuji]
				assert.Equal(t, "https://fuji.local", fuji.RPCURL)
				assert.Empty(t, fuji.RPCURLEnv)
				assert.Equal(t, uint64(43113), fuji.ChainID)
			},
		},
		{
			name: "production flag",
			overrides: map[string]config.NetworkOverride{
				domain.NetworkAvaxNew: {Production: &yes},
			},
			check: func(t *testing.T, networks map[string]domain.NetworkSpec) {
				assert.True(t, networks[domain.NetworkAvaxNew].Production)
			},
		},
		{
			name: "signer switch",
			overrides: map[string]config.NetworkOverride{
				domain.NetworkSepolia: {SignerKind: "mnemonic", SignerEnv: "PHRASE_SEPOLIA", SignerIndex: 2},
			},
			check: func(t *testing.T, networks map[string]domain.NetworkSpec) {
				signer := networks[domain.NetworkSepolia].Signer
				assert.Equal(t, domain.SignerMnemonic, signer.Kind)
				assert.Equal(t, "PHRASE_SEPOLIA", signer.Env)
				assert.Equal(t, uint32(2), signer.Index)
			},
		},
		{
			name:      "unknown signer",
			overrides: map[string]config.NetworkOverride{domain.NetworkFuji: {SignerKind: "ledger"}},
			wantErr:   "unknown signer",
		},
		{
			name:      "invalid timeout",
			overrides: map[string]config.NetworkOverride{domain.NetworkFuji: {Timeout: "soon"}},
			wantErr:   "invalid timeout",
		},
		{
			name:      "new network without url",
			overrides: map[string]config.NetworkOverride{"devnet": {ChainID: 1, SignerKind: "dev-mnemonic"}},
			wantErr:   "url or url_env is required",
		},
		{
			name:      "new network without signer",
			overrides: map[string]config.NetworkOverride{"devnet": {ChainID: 1, URL: "http://x"}},
			wantErr:   "signer is required",
		},
		{
			name:      "key signer without env",
			overrides: map[string]config.NetworkOverride{"devnet": {URL: "http://x", SignerKind: "private-key"}},
			wantErr:   "signer_env is required",
		},
		{
			name:      "invalid link token",
			overrides: map[string]config.NetworkOverride{domain.NetworkFuji: {LinkToken: "0x12"}},
			wantErr:   "invalid address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			networks := domain.DefaultNetworks()
			err := ApplyNetworkOverrides(networks, tt.overrides)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, networks)
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "hardhat.config.ts", "export default {}")
	nested := filepath.Join(root, "scripts", "deploy")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	got, err := FindProjectRoot()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err = filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
