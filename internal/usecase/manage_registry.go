package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
)

// ShowRegistry reads registry documents for display.
type ShowRegistry struct {
	store RegistryStore
}

// NewShowRegistry creates a new ShowRegistry use case
func NewShowRegistry(store RegistryStore) *ShowRegistry {
	return &ShowRegistry{store: store}
}

// ShowRegistryParams contains parameters for showing the registry
type ShowRegistryParams struct {
	Kind domain.RecordKind
	// Network limits the output to one network; empty shows every network.
	Network string
}

// ShowRegistryResult holds the requested document, filtered to the network when set
type ShowRegistryResult struct {
	Kind     domain.RecordKind `json:"kind"`
	Network  string            `json:"network,omitempty"`
	Document any               `json:"document"`
}

// Run loads the document.
func (uc *ShowRegistry) Run(ctx context.Context, params ShowRegistryParams) (*ShowRegistryResult, error) {
	doc, err := uc.store.Load(params.Kind)
	if err != nil {
		return nil, err
	}
	result := &ShowRegistryResult{Kind: params.Kind, Document: doc}
	if params.Network == "" {
		return result, nil
	}

	network := domain.Normalize(params.Network)
	result.Network = network
	switch d := doc.(type) {
	case domain.AddressBook:
		result.Document = domain.AddressBook{network: d[network]}
	case domain.RecordSet[domain.ProposalRecord]:
		result.Document = domain.RecordSet[domain.ProposalRecord]{network: d[network]}
	case domain.RecordSet[domain.ReportRecord]:
		result.Document = domain.RecordSet[domain.ReportRecord]{network: d[network]}
	case domain.RecordSet[domain.PriorityPoolRecord]:
		result.Document = domain.RecordSet[domain.PriorityPoolRecord]{network: d[network]}
	case domain.RecordSet[domain.ILMRecord]:
		result.Document = domain.RecordSet[domain.ILMRecord]{network: d[network]}
	}
	return result, nil
}

// InitRegistry bootstraps empty registry documents.
type InitRegistry struct {
	store RegistryStore
	log   *slog.Logger
}

// NewInitRegistry creates a new InitRegistry use case
func NewInitRegistry(store RegistryStore, log *slog.Logger) *InitRegistry {
	return &InitRegistry{store: store, log: log}
}

// InitRegistryParams contains parameters for initializing the registry
type InitRegistryParams struct {
	Kinds []domain.RecordKind
	Force bool
}

// InitRegistryResult lists the files written and the ones left untouched
type InitRegistryResult struct {
	Written []string `json:"written"`
	Kept    []string `json:"kept"`
}

// Run writes empty documents; existing ones are kept unless forced.
func (uc *InitRegistry) Run(ctx context.Context, params InitRegistryParams) (*InitRegistryResult, error) {
	kinds := params.Kinds
	if len(kinds) == 0 {
		kinds = domain.RecordKinds
	}

	result := &InitRegistryResult{}
	for _, kind := range kinds {
		path := filepath.Join(uc.store.Dir(), kind.FileName())
		if _, err := uc.store.Load(kind); err == nil && !params.Force {
			result.Kept = append(result.Kept, path)
			continue
		}
		result.Written = append(result.Written, path)
	}

	if err := uc.store.Init(ctx, params.Force, kinds...); err != nil {
		return nil, fmt.Errorf("failed to initialize registry: %w", err)
	}
	uc.log.Debug("registry initialized", "dir", uc.store.Dir(), "written", len(result.Written))
	return result, nil
}

// SetRegistryEntry records or removes one address by hand.
type SetRegistryEntry struct {
	store     RegistryStore
	confirmer Confirmer
	cfg       *config.RuntimeConfig
}

// NewSetRegistryEntry creates a new SetRegistryEntry use case
func NewSetRegistryEntry(store RegistryStore, confirmer Confirmer, cfg *config.RuntimeConfig) *SetRegistryEntry {
	return &SetRegistryEntry{store: store, confirmer: confirmer, cfg: cfg}
}

// SetRegistryEntryParams contains parameters for a manual registry edit
type SetRegistryEntryParams struct {
	Kind    domain.RecordKind
	Network string
	Name    string
	Address string
	Delete  bool
}

// SetRegistryEntryResult reports the previous and new value
type SetRegistryEntryResult struct {
	Network  string          `json:"network"`
	Name     string          `json:"name"`
	Previous *common.Address `json:"previous,omitempty"`
	Current  *common.Address `json:"current,omitempty"`
}

// Run applies the edit to an address document and flushes it.
func (uc *SetRegistryEntry) Run(ctx context.Context, params SetRegistryEntryParams) (*SetRegistryEntryResult, error) {
	if !slices.Contains([]domain.RecordKind{domain.KindAddresses, domain.KindImplementations}, params.Kind) {
		return nil, fmt.Errorf("only %s and %s can be edited by hand", domain.KindAddresses, domain.KindImplementations)
	}
	if params.Name == "" {
		return nil, fmt.Errorf("contract name is required")
	}

	var book domain.AddressBook
	var err error
	if params.Kind == domain.KindAddresses {
		book, err = addressBookOrEmpty(uc.store)
	} else {
		book, err = implementationBookOrEmpty(uc.store)
	}
	if err != nil {
		return nil, err
	}

	network := domain.Normalize(params.Network)
	result := &SetRegistryEntryResult{Network: network, Name: params.Name}
	if prev, ok := book.Lookup(network, params.Name); ok {
		result.Previous = &prev
	}

	if params.Delete {
		if result.Previous == nil {
			return nil, fmt.Errorf("%s is not recorded on %s: %w", params.Name, network, domain.ErrNotFound)
		}
		if err := confirmProduction(ctx, uc.confirmer, uc.cfg, "Remove "+params.Name); err != nil {
			return nil, err
		}
		book.Delete(network, params.Name)
	} else {
		if !common.IsHexAddress(params.Address) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, params.Address)
		}
		if err := confirmProduction(ctx, uc.confirmer, uc.cfg, "Record "+params.Name); err != nil {
			return nil, err
		}
		addr := common.HexToAddress(params.Address)
		book.Set(network, params.Name, addr)
		result.Current = &addr
	}

	if err := uc.store.Save(params.Kind, book); err != nil {
		return nil, err
	}
	if err := uc.store.Flush(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// WatchRegistry reports changes to registry documents as they happen.
type WatchRegistry struct {
	store   RegistryStore
	watcher RegistryWatcher
	log     *slog.Logger
}

// NewWatchRegistry creates a new WatchRegistry use case
func NewWatchRegistry(store RegistryStore, watcher RegistryWatcher, log *slog.Logger) *WatchRegistry {
	return &WatchRegistry{store: store, watcher: watcher, log: log}
}

// RegistryChange is one observed change of a registry document
type RegistryChange struct {
	Kind domain.RecordKind `json:"kind"`
	File string            `json:"file"`
}

// Run blocks until ctx is done, calling onChange for every changed registry document.
// Files that aren't registry documents are ignored.
func (uc *WatchRegistry) Run(ctx context.Context, onChange func(RegistryChange)) error {
	byFile := make(map[string]domain.RecordKind, len(domain.RecordKinds))
	for _, kind := range domain.RecordKinds {
		byFile[kind.FileName()] = kind
	}

	err := uc.watcher.Watch(ctx, uc.store.Dir(), func(file string) {
		kind, ok := byFile[filepath.Base(file)]
		if !ok {
			return
		}
		uc.log.Debug("registry document changed", "kind", kind, "file", file)
		onChange(RegistryChange{Kind: kind, File: file})
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to watch registry: %w", err)
	}
	return nil
}
