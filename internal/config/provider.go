package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/spf13/viper"
)

// Defaults for settings not given by flag, environment or protect.toml.
const (
	DefaultRegistryDir        = "info"
	DefaultArtifactRoot       = "artifacts"
	DefaultProxyArtifact      = "TransparentUpgradeableProxy"
	DefaultProxyAdminArtifact = "ProxyAdmin"
	DefaultTimeout            = 30 * time.Minute
)

// projectMarkers identify a project root, in lookup order.
var projectMarkers = []string{ProjectFile, "hardhat.config.ts", "hardhat.config.js"}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	if err := LoadDotEnv(projectRoot); err != nil {
		return nil, err
	}

	project, err := LoadProjectConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	networks := domain.DefaultNetworks()
	var mainnet domain.ExternalTokens
	if project != nil {
		if err := ApplyNetworkOverrides(networks, project.Networks); err != nil {
			return nil, err
		}
		if mainnet, err = applyMainnetTokens(mainnet, project.MainnetTokens); err != nil {
			return nil, err
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:        projectRoot,
		RegistryDir:        resolvePath(projectRoot, v.GetString("registry_dir")),
		Networks:           networks,
		Debug:              v.GetBool("debug"),
		NonInteractive:     v.GetBool("non_interactive"),
		JSON:               v.GetBool("json"),
		Timeout:            v.GetDuration("timeout"),
		ArtifactRoots:      v.GetStringSlice("artifacts"),
		ProxyArtifact:      v.GetString("proxy.proxy_artifact"),
		ProxyAdminArtifact: v.GetString("proxy.admin_artifact"),
		WiringGraphPath:    v.GetString("wiring_graph"),
		MainnetTokens:      mainnet,
		Project:            project,
	}

	name := domain.Normalize(v.GetString("network"))
	spec, ok := networks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownNetwork, name)
	}
	if err := spec.CheckEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Network = &spec

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find protect.toml or a
// Hardhat config file
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("not in a protocol project (protect.toml or hardhat.config.* not found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string) *viper.Viper {
	v := viper.New()

	// protect.toml doubles as viper's config file for scalar settings
	v.SetConfigName("protect")
	v.SetConfigType("toml")
	v.AddConfigPath(projectRoot)

	// Set up environment variables
	v.SetEnvPrefix("PROTECT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("project_root", projectRoot)
	v.SetDefault("network", "")
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("json", false)
	v.SetDefault("registry_dir", DefaultRegistryDir)
	v.SetDefault("artifacts", []string{DefaultArtifactRoot})
	v.SetDefault("proxy.proxy_artifact", DefaultProxyArtifact)
	v.SetDefault("proxy.admin_artifact", DefaultProxyAdminArtifact)
	v.SetDefault("wiring_graph", "")

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	return v
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
