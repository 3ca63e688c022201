package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
)

// ResolveExternalTokens returns the governance, vote-escrowed and settlement
// tokens of a network.
type ResolveExternalTokens struct {
	store  RegistryStore
	pinned domain.ExternalTokens
}

// NewResolveExternalTokens creates a new token resolver
func NewResolveExternalTokens(store RegistryStore, cfg *config.RuntimeConfig) *ResolveExternalTokens {
	return &ResolveExternalTokens{
		store:  store,
		pinned: cfg.MainnetTokens,
	}
}

// Run resolves the tokens for network. Tokens pinned in the project file win on
// the production network.
func (r *ResolveExternalTokens) Run(ctx context.Context, network string) (domain.ExternalTokens, error) {
	network = domain.Normalize(network)
	book, err := addressBookOrEmpty(r.store)
	if err != nil {
		return domain.ExternalTokens{}, err
	}
	return domain.ExternalTokensFor(network, book, r.pinned)
}

// addressBookOrEmpty treats an uninitialized address book as empty.
func addressBookOrEmpty(store RegistryStore) (domain.AddressBook, error) {
	book, err := store.AddressBook()
	if errors.Is(err, domain.ErrNotFound) {
		return domain.AddressBook{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load address book: %w", err)
	}
	return book, nil
}

// implementationBookOrEmpty treats an uninitialized implementation book as empty.
func implementationBookOrEmpty(store RegistryStore) (domain.AddressBook, error) {
	book, err := store.ImplementationBook()
	if errors.Is(err, domain.ErrNotFound) {
		return domain.AddressBook{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load implementation book: %w", err)
	}
	return book, nil
}

// recordsOrEmpty loads a record document, treating an uninitialized one as empty.
func recordsOrEmpty[T domain.Record](load func() (domain.RecordSet[T], error)) (domain.RecordSet[T], error) {
	set, err := load()
	if errors.Is(err, domain.ErrNotFound) {
		return domain.RecordSet[T]{}, nil
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}
