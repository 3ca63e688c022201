package config

import (
	"path/filepath"
	"time"

	"github.com/shieldworks/protect/internal/domain"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	RegistryDir string

	// Network is the selected network, nil when none was requested.
	Network  *domain.NetworkSpec
	Networks map[string]domain.NetworkSpec

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration

	// Deployment settings
	ArtifactRoots      []string
	ProxyArtifact      string
	ProxyAdminArtifact string
	WiringGraphPath    string
	// MainnetTokens holds the production tokens pinned in protect.toml; zero fields are unpinned.
	MainnetTokens      domain.ExternalTokens

	// Project is the decoded protect.toml, nil when the project has none.
	Project *ProjectConfig
}

// NetworkName returns the selected canonical network name, or "" if none is selected.
func (c *RuntimeConfig) NetworkName() string {
	if c.Network == nil {
		return ""
	}
	return c.Network.Name
}

// RunsDir is where deploy run state files live.
func (c *RuntimeConfig) RunsDir() string {
	return filepath.Join(c.RegistryDir, ".runs")
}
