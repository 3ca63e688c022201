package artifacts

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hardhatVault = `{
  "contractName": "Vault",
  "sourceName": "contracts/Vault.sol",
  "abi": [{"type":"constructor","inputs":[{"name":"pool","type":"address"}]}],
  "bytecode": "0x6080604052"
}`
	foundryToken = `{
  "abi": [{"type":"function","name":"mint","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}],
  "bytecode": {"object": "6080604052"}
}`
	interfaceArtifact = `{"contractName": "IPool", "abi": [], "bytecode": "0x"}`
	linkedArtifact    = `{"contractName": "Linked", "abi": [], "bytecode": "0x6080__$abc$__"}`
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "contracts", "Vault.sol", "Vault.json"), hardhatVault)
	writeFile(t, filepath.Join(root, "contracts", "Vault.sol", "Vault.dbg.json"), `{"buildInfo": "x"}`)
	writeFile(t, filepath.Join(root, "contracts", "Token.sol", "Token.json"), foundryToken)
	writeFile(t, filepath.Join(root, "contracts", "IPool.sol", "IPool.json"), interfaceArtifact)
	writeFile(t, filepath.Join(root, "contracts", "Linked.sol", "Linked.json"), linkedArtifact)
	writeFile(t, filepath.Join(root, "build-info", "abc.json"), `{}`)
	return NewRepository([]string{root, filepath.Join(root, "missing")}, slog.New(slog.NewTextHandler(io.Discard, nil))), root
}

func TestRepository_Get(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	vault, err := repo.Get(ctx, "Vault")
	require.NoError(t, err)
	assert.Equal(t, "Vault", vault.Name)
	assert.Equal(t, "contracts/Vault.sol", vault.SourcePath)
	assert.Len(t, vault.ABI.Constructor.Inputs, 1)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, vault.Bytecode)

	again, err := repo.Get(ctx, "Vault")
	require.NoError(t, err)
	assert.Same(t, vault, again, "parsed artifacts are cached")

	token, err := repo.Get(ctx, "Token")
	require.NoError(t, err)
	assert.Equal(t, "Token", token.Name, "name falls back to the file name")
	assert.Contains(t, token.ABI.Methods, "mint")
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, token.Bytecode)
}

func TestRepository_GetErrors(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "Nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Get(ctx, "IPool")
	assert.ErrorContains(t, err, "empty bytecode")

	_, err = repo.Get(ctx, "Linked")
	assert.ErrorContains(t, err, "unlinked libraries")

	_, err = repo.Get(ctx, "Vault.dbg")
	assert.ErrorIs(t, err, domain.ErrNotFound, "debug files are not indexed")

}

func TestRepository_Ambiguous(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(a, "Vault.json"), hardhatVault)
	writeFile(t, filepath.Join(b, "Vault.json"), hardhatVault)
	repo := NewRepository([]string{a, b}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := repo.Get(context.Background(), "Vault")
	assert.ErrorContains(t, err, "ambiguous")
}

func TestRepository_Names(t *testing.T) {
	repo, _ := newTestRepository(t)

	names, err := repo.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"IPool", "Linked", "Token", "Vault"}, names)
}

func TestProvideRepository_RelativeRoots(t *testing.T) {
	cfg := &config.RuntimeConfig{
		ProjectRoot:   "/project",
		ArtifactRoots: []string{"artifacts", "/abs/out"},
	}
	repo := ProvideRepository(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, []string{filepath.Join("/project", "artifacts"), "/abs/out"}, repo.roots)
}
