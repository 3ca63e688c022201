package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/patrickmn/go-cache"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/shieldworks/protect/internal/usecase"
)

// Repository finds compiled contracts under the configured artifact roots.
// Roots are walked once on first use; parsed artifacts are cached.
type Repository struct {
	roots []string
	log   *slog.Logger

	once     sync.Once
	indexErr error
	// paths maps contract name to every artifact file that declares it.
	paths map[string][]string
	cache *cache.Cache
}

// NewRepository creates a repository over roots.
func NewRepository(roots []string, log *slog.Logger) *Repository {
	return &Repository{
		roots: roots,
		log:   log,
		paths: make(map[string][]string),
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// ProvideRepository creates the repository for the configured artifact roots.
func ProvideRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	roots := make([]string, 0, len(cfg.ArtifactRoots))
	for _, root := range cfg.ArtifactRoots {
		if !filepath.IsAbs(root) {
			root = filepath.Join(cfg.ProjectRoot, root)
		}
		roots = append(roots, root)
	}
	return NewRepository(roots, log)
}

// Get returns the artifact for a contract name.
func (r *Repository) Get(ctx context.Context, name string) (*domain.Artifact, error) {
	if cached, ok := r.cache.Get(name); ok {
		return cached.(*domain.Artifact), nil
	}
	if err := r.index(); err != nil {
		return nil, err
	}

	paths := r.paths[name]
	switch len(paths) {
	case 0:
		return nil, fmt.Errorf("artifact %s: %w", name, domain.ErrNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("artifact %s is ambiguous, found in: %s", name, strings.Join(paths, ", "))
	}

	artifact, err := readArtifact(paths[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	artifact.Name = name
	r.cache.Set(name, artifact, cache.NoExpiration)
	return artifact, nil
}

// Names lists every indexed contract name.
func (r *Repository) Names(ctx context.Context) ([]string, error) {
	if err := r.index(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(r.paths))
	for name := range r.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Repository) index() error {
	r.once.Do(func() {
		for _, root := range r.roots {
			if _, err := os.Stat(root); os.IsNotExist(err) {
				r.log.Debug("artifact root does not exist", "root", root)
				continue
			}
			err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					// Hardhat keeps solc inputs here, not contracts
					if d.Name() == "build-info" {
						return filepath.SkipDir
					}
					return nil
				}
				if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
					return nil
				}
				name := strings.TrimSuffix(d.Name(), ".json")
				r.paths[name] = append(r.paths[name], path)
				return nil
			})
			if err != nil {
				r.indexErr = fmt.Errorf("failed to index artifacts in %s: %w", root, err)
				return
			}
		}
		r.log.Debug("artifacts indexed", "roots", len(r.roots), "contracts", len(r.paths))
	})
	return r.indexErr
}

// hardhatArtifact is the subset of a compiled artifact file we need. Bytecode is
// either a hex string (Hardhat) or an object with a hex "object" field (Foundry).
type hardhatArtifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

func readArtifact(path string) (*domain.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if len(raw.ABI) == 0 {
		return nil, fmt.Errorf("artifact has no abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("invalid abi: %w", err)
	}

	code, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, err
	}

	return &domain.Artifact{
		Name:       raw.ContractName,
		SourcePath: raw.SourceName,
		ABI:        parsed,
		Bytecode:   code,
	}, nil
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("artifact has no bytecode")
		}
		hex = obj.Object
	}
	if hex == "" || hex == "0x" {
		return nil, fmt.Errorf("artifact has empty bytecode (abstract contract or interface)")
	}
	if !strings.HasPrefix(hex, "0x") {
		hex = "0x" + hex
	}
	if strings.Contains(hex, "__") {
		return nil, fmt.Errorf("artifact bytecode has unlinked libraries")
	}
	code, err := hexutil.Decode(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	return code, nil
}

var _ usecase.ArtifactRepository = (*Repository)(nil)
