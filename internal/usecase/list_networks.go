package usecase

import (
	"context"
	"os"
	"sort"

	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus `json:"networks"`
	Current  string          `json:"current"`
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Spec     domain.NetworkSpec `json:"spec"`
	Recorded int                `json:"recorded"`
	Error    error              `json:"-"`
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	cfg   *config.RuntimeConfig
	store RegistryStore
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(cfg *config.RuntimeConfig, store RegistryStore) *ListNetworks {
	return &ListNetworks{
		cfg:   cfg,
		store: store,
	}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	book, err := addressBookOrEmpty(uc.store)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(uc.cfg.Networks))
	for name := range uc.cfg.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	// Check each network's environment
	networks := make([]NetworkStatus, 0, len(names))
	for _, name := range names {
		spec := uc.cfg.Networks[name]
		status := NetworkStatus{
			Spec:     spec,
			Recorded: len(book.Names(name)),
			Error:    spec.CheckEnv(os.LookupEnv),
		}
		networks = append(networks, status)
	}

	return &ListNetworksResult{
		Networks: networks,
		Current:  domain.Normalize(uc.cfg.NetworkName()),
	}, nil
}
