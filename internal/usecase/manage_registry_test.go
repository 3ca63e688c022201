package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowRegistry_FiltersNetwork(t *testing.T) {
	store := newMemStore().
		set("localhost", "TokenA", addr(1)).
		set("fuji", "TokenA", addr(2))
	show := NewShowRegistry(store)

	all, err := show.Run(context.Background(), ShowRegistryParams{Kind: domain.KindAddresses})
	require.NoError(t, err)
	assert.Len(t, all.Document.(domain.AddressBook).Networks(), 2)

	// hardhat is an alias of localhost
	one, err := show.Run(context.Background(), ShowRegistryParams{Kind: domain.KindAddresses, Network: "hardhat"})
	require.NoError(t, err)
	assert.Equal(t, "localhost", one.Network)
	book := one.Document.(domain.AddressBook)
	assert.Equal(t, []string{"localhost"}, book.Networks())

	_, err = show.Run(context.Background(), ShowRegistryParams{Kind: domain.KindILM})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInitRegistry_KeepsExisting(t *testing.T) {
	store := newMemStore().set("localhost", "TokenA", addr(1))
	uc := NewInitRegistry(store, discardLogger())

	res, err := uc.Run(context.Background(), InitRegistryParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("info", domain.KindAddresses.FileName())}, res.Kept)
	assert.Len(t, res.Written, len(domain.RecordKinds)-1)

	book := store.book(t)
	_, ok := book.Lookup("localhost", "TokenA")
	assert.True(t, ok, "existing document survives init")

	res, err = uc.Run(context.Background(), InitRegistryParams{Kinds: []domain.RecordKind{domain.KindAddresses}, Force: true})
	require.NoError(t, err)
	assert.Len(t, res.Written, 1)
	assert.Empty(t, store.book(t).Names("localhost"))
}

func TestSetRegistryEntry(t *testing.T) {
	tests := []struct {
		name    string
		params  SetRegistryEntryParams
		wantErr string
		check   func(t *testing.T, store *memStore, res *SetRegistryEntryResult)
	}{
		{
			name: "set new address",
			params: SetRegistryEntryParams{
				Kind: domain.KindAddresses, Network: "localhost", Name: "Vault",
				Address: "0x00000000000000000000000000000000000000aa",
			},
			check: func(t *testing.T, store *memStore, res *SetRegistryEntryResult) {
				assert.Nil(t, res.Previous)
				require.NotNil(t, res.Current)
				got, ok := store.book(t).Lookup("localhost", "Vault")
				require.True(t, ok)
				assert.Equal(t, common.HexToAddress("0xaa"), got)
			},
		},
		{
			name: "overwrite reports previous",
			params: SetRegistryEntryParams{
				Kind: domain.KindAddresses, Network: "localhost", Name: "TokenA",
				Address: "0x00000000000000000000000000000000000000bb",
			},
			check: func(t *testing.T, store *memStore, res *SetRegistryEntryResult) {
				require.NotNil(t, res.Previous)
				assert.Equal(t, addr(1), *res.Previous)
			},
		},
		{
			name:   "delete",
			params: SetRegistryEntryParams{Kind: domain.KindAddresses, Network: "localhost", Name: "TokenA", Delete: true},
			check: func(t *testing.T, store *memStore, res *SetRegistryEntryResult) {
				_, ok := store.book(t).Lookup("localhost", "TokenA")
				assert.False(t, ok)
			},
		},
		{
			name: "implementation book",
			params: SetRegistryEntryParams{
				Kind: domain.KindImplementations, Network: "localhost", Name: "PoolX",
				Address: "0x00000000000000000000000000000000000000cc",
			},
			check: func(t *testing.T, store *memStore, res *SetRegistryEntryResult) {
				impls, err := store.ImplementationBook()
				require.NoError(t, err)
				_, ok := impls.Lookup("localhost", "PoolX")
				assert.True(t, ok)
			},
		},
		{
			name:    "delete unknown",
			params:  SetRegistryEntryParams{Kind: domain.KindAddresses, Network: "localhost", Name: "Ghost", Delete: true},
			wantErr: "not recorded",
		},
		{
			name:    "bad address",
			params:  SetRegistryEntryParams{Kind: domain.KindAddresses, Network: "localhost", Name: "Vault", Address: "0x12"},
			wantErr: "invalid address",
		},
		{
			name:    "record sets are not editable",
			params:  SetRegistryEntryParams{Kind: domain.KindProposals, Network: "localhost", Name: "1"},
			wantErr: "can be edited by hand",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore().set("localhost", "TokenA", addr(1))
			uc := NewSetRegistryEntry(store, nil, testConfig(t, domain.NetworkLocalhost))

			res, err := uc.Run(context.Background(), tt.params)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Zero(t, store.flushes)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, store.flushes)
			tt.check(t, store, res)
		})
	}
}

func TestSetRegistryEntry_ProductionDeclined(t *testing.T) {
	store := newMemStore().set("avax", "TokenA", addr(1))
	cfg := testConfig(t, domain.NetworkAvax)
	cfg.NonInteractive = false
	uc := NewSetRegistryEntry(store, &fakeConfirmer{answer: false}, cfg)

	_, err := uc.Run(context.Background(), SetRegistryEntryParams{Kind: domain.KindAddresses, Network: "avax", Name: "TokenA", Delete: true})
	assert.ErrorContains(t, err, "cancelled")
	_, ok := store.book(t).Lookup("avax", "TokenA")
	assert.True(t, ok)
}

type fakeWatcher struct {
	files []string
}

func (w fakeWatcher) Watch(_ context.Context, dir string, onChange func(string)) error {
	for _, f := range w.files {
		onChange(filepath.Join(dir, f))
	}
	return nil
}

func TestWatchRegistry_IgnoresForeignFiles(t *testing.T) {
	store := newMemStore()
	watcher := fakeWatcher{files: []string{domain.KindAddresses.FileName(), "notes.txt", domain.KindILM.FileName()}}
	uc := NewWatchRegistry(store, watcher, discardLogger())

	var changes []RegistryChange
	err := uc.Run(context.Background(), func(c RegistryChange) { changes = append(changes, c) })
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, domain.KindAddresses, changes[0].Kind)
	assert.Equal(t, domain.KindILM, changes[1].Kind)
}

func TestListNetworks(t *testing.T) {
	t.Setenv("FUJI_URL", "https://fuji.example")
	t.Setenv("PHRASE_FUJI", "")
	store := newMemStore().set("localhost", "TokenA", addr(1)).set("localhost", "PoolX", addr(2))
	cfg := testConfig(t, domain.NetworkLocalhost)
	uc := NewListNetworks(cfg, store)

	res, err := uc.Run(context.Background(), ListNetworksParams{})
	require.NoError(t, err)
	assert.Equal(t, "localhost", res.Current)
	require.Len(t, res.Networks, len(cfg.Networks))

	byName := make(map[string]NetworkStatus)
	for i, n := range res.Networks {
		if i > 0 {
			assert.Less(t, res.Networks[i-1].Spec.Name, n.Spec.Name, "sorted by name")
		}
		byName[n.Spec.Name] = n
	}
	assert.Equal(t, 2, byName["localhost"].Recorded)
	assert.NoError(t, byName["localhost"].Error)
	assert.ErrorIs(t, byName["fuji"].Error, domain.ErrMissingEnv)
}
