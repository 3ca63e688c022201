package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
)

// ProjectFile is the project configuration file at the project root.
const ProjectFile = "protect.toml"

// LoadProjectConfig decodes protect.toml. A project without one returns nil.
func LoadProjectConfig(projectRoot string) (*config.ProjectConfig, error) {
	path := filepath.Join(projectRoot, ProjectFile)
	var cfg config.ProjectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", ProjectFile, undecoded)
	}
	return &cfg, nil
}

// ApplyNetworkOverrides merges protect.toml network entries into the built-in
// table. Zero fields keep the built-in value; unknown names declare new networks.
func ApplyNetworkOverrides(networks map[string]domain.NetworkSpec, overrides map[string]config.NetworkOverride) error {
	for name, o := range overrides {
		spec, known := networks[name]
		spec.Name = name

		if o.ChainID != 0 {
			spec.ChainID = o.ChainID
		}
		if o.URL != "" {
			spec.RPCURL = o.URL
			spec.RPCURLEnv = ""
		}
		if o.URLEnv != "" {
			spec.RPCURLEnv = o.URLEnv
			spec.RPCURL = ""
		}
		if o.SignerKind != "" {
			kind := domain.SignerKind(o.SignerKind)
			switch kind {
			case domain.SignerMnemonic, domain.SignerPrivateKey, domain.SignerDevMnemonic:
			default:
				return fmt.Errorf("network %s: unknown signer %q", name, o.SignerKind)
			}
			spec.Signer.Kind = kind
		}
		if o.SignerEnv != "" {
			spec.Signer.Env = o.SignerEnv
		}
		if o.SignerIndex != 0 {
			spec.Signer.Index = o.SignerIndex
		}
		if o.Timeout != "" {
			d, err := time.ParseDuration(o.Timeout)
			if err != nil {
				return fmt.Errorf("network %s: invalid timeout: %w", name, err)
			}
			spec.Timeout = d
		}
		if o.Production != nil {
			spec.Production = *o.Production
		}
		if o.ExplorerURL != "" {
			spec.ExplorerURL = o.ExplorerURL
		}
		if o.LinkToken != "" {
			if !common.IsHexAddress(o.LinkToken) {
				return fmt.Errorf("network %s: %w: link_token %q", name, domain.ErrInvalidAddress, o.LinkToken)
			}
			spec.LinkToken = o.LinkToken
		}

		if !known {
			if spec.RPCURL == "" && spec.RPCURLEnv == "" {
				return fmt.Errorf("network %s: url or url_env is required", name)
			}
			if spec.Signer.Kind == "" {
				return fmt.Errorf("network %s: signer is required", name)
			}
		}
		if spec.Signer.Kind != domain.SignerDevMnemonic && spec.Signer.Env == "" {
			return fmt.Errorf("network %s: signer_env is required for %s signers", name, spec.Signer.Kind)
		}
		networks[name] = spec
	}
	return nil
}

func applyMainnetTokens(base domain.ExternalTokens, o config.MainnetTokensConfig) (domain.ExternalTokens, error) {
	set := func(field, value string, dst *common.Address) error {
		if value == "" {
			return nil
		}
		if !common.IsHexAddress(value) {
			return fmt.Errorf("mainnet_tokens.%s: %w: %q", field, domain.ErrInvalidAddress, value)
		}
		*dst = common.HexToAddress(value)
		return nil
	}
	if err := set("governance", o.Governance, &base.Governance); err != nil {
		return base, err
	}
	if err := set("vote_escrowed", o.VoteEscrowed, &base.VoteEscrowed); err != nil {
		return base, err
	}
	if err := set("settlement", o.Settlement, &base.Settlement); err != nil {
		return base, err
	}
	return base, nil
}
