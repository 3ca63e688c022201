package registry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/adapters/registry"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var (
	addrA = common.HexToAddress("0x1111111111111111111111111111111111111111")
	addrB = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func openStore(t *testing.T, dir string) *registry.FileStore {
	t.Helper()
	store := registry.NewFileStore(dir)
	require.NoError(t, store.Open(context.Background()))
	return store
}

func TestFileStore_LoadUninitialized(t *testing.T) {
	store := openStore(t, t.TempDir())

	for _, kind := range domain.RecordKinds {
		_, err := store.Load(kind)
		assert.ErrorIs(t, err, domain.ErrNotFound, string(kind))
	}

	_, err := store.AddressBook()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileStore_Init(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := openStore(t, dir)

	require.NoError(t, store.Init(ctx, false))

	for _, kind := range domain.RecordKinds {
		data, err := os.ReadFile(filepath.Join(dir, kind.FileName()))
		require.NoError(t, err)
		assert.Equal(t, "{}\n", string(data))
	}

	book, err := store.AddressBook()
	require.NoError(t, err)
	assert.Empty(t, book)

	t.Run("keeps existing documents without force", func(t *testing.T) {
		book.Set("localhost", "MockDEG", addrA)
		require.NoError(t, store.Save(domain.KindAddresses, book))
		require.NoError(t, store.Flush(ctx))

		require.NoError(t, store.Init(ctx, false, domain.KindAddresses))
		got, err := store.AddressBook()
		require.NoError(t, err)
		_, ok := got.Lookup("localhost", "MockDEG")
		assert.True(t, ok)
	})

	t.Run("clears with force", func(t *testing.T) {
		require.NoError(t, store.Init(ctx, true, domain.KindAddresses))
		got, err := store.AddressBook()
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := openStore(t, dir)
	require.NoError(t, store.Init(ctx, false))

	book := domain.AddressBook{}
	book.Set("localhost", "MockDEG", addrA)
	book.Set("fuji", "PolicyCenter", addrB)
	require.NoError(t, store.Save(domain.KindAddresses, book))

	pools := domain.RecordSet[domain.PriorityPoolRecord]{}
	pools.Put("localhost", "1", domain.PriorityPoolRecord{
		ID:          "1",
		PoolAddress: addrB.Hex(),
		Name:        "Test",
		Token:       addrA.Hex(),
		Premium:     "400",
	})
	require.NoError(t, store.Save(domain.KindPriorityPools, pools))
	require.NoError(t, store.Close(ctx))

	reopened := openStore(t, dir)
	got, err := reopened.AddressBook()
	require.NoError(t, err)
	addr, ok := got.Lookup("localhost", "MockDEG")
	require.True(t, ok)
	assert.Equal(t, addrA, addr)
	addr, ok = got.Lookup("fuji", "PolicyCenter")
	require.True(t, ok)
	assert.Equal(t, addrB, addr)

	gotPools, err := reopened.PriorityPools()
	require.NoError(t, err)
	rec, ok := gotPools.Get("localhost", "1")
	require.True(t, ok)
	assert.Equal(t, "Test", rec.Name)
	assert.Equal(t, addrB.Hex(), rec.PoolAddress)
}

func TestFileStore_SaveIsFullOverwrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := openStore(t, dir)
	require.NoError(t, store.Init(ctx, false, domain.KindAddresses))

	first := domain.AddressBook{}
	first.Set("localhost", "TokenA", addrA)
	require.NoError(t, store.Save(domain.KindAddresses, first))
	require.NoError(t, store.Flush(ctx))

	// A writer that never loaded TokenA drops it on save.
	second := domain.AddressBook{}
	second.Set("localhost", "PoolX", addrB)
	require.NoError(t, store.Save(domain.KindAddresses, second))
	require.NoError(t, store.Flush(ctx))

	got, err := openStore(t, dir).AddressBook()
	require.NoError(t, err)
	_, ok := got.Lookup("localhost", "TokenA")
	assert.False(t, ok)
	_, ok = got.Lookup("localhost", "PoolX")
	assert.True(t, ok)
}

func TestFileStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, t.TempDir())
	require.NoError(t, store.Init(ctx, false, domain.KindAddresses))

	book, err := store.AddressBook()
	require.NoError(t, err)
	book.Set("localhost", "MockDEG", addrA)

	again, err := store.AddressBook()
	require.NoError(t, err)
	_, ok := again.Lookup("localhost", "MockDEG")
	assert.False(t, ok, "mutating a loaded book must not leak into the store before Save")
}

func TestFileStore_FileFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := openStore(t, dir)
	require.NoError(t, store.Init(ctx, false, domain.KindAddresses))

	addr := common.HexToAddress("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	book := domain.AddressBook{}
	book.Set("localhost", "MockDEG", addr)
	require.NoError(t, store.Save(domain.KindAddresses, book))
	require.NoError(t, store.Flush(ctx))

	data, err := os.ReadFile(filepath.Join(dir, "address.json"))
	require.NoError(t, err)
	expected := "{\n\t\"localhost\": {\n\t\t\"MockDEG\": \"" + addr.Hex() + "\"\n\t}\n}\n"
	assert.Equal(t, expected, string(data))
}

func TestFileStore_SchemaValidation(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		reason  string
	}{
		{
			name:    "null address",
			file:    "address.json",
			content: `{"localhost": {"MockDEG": null}}`,
			reason:  "null",
		},
		{
			name:    "malformed address",
			file:    "address.json",
			content: `{"localhost": {"MockDEG": "0x1234"}}`,
			reason:  "not a hex address",
		},
		{
			name:    "non-string address",
			file:    "implementation.json",
			content: `{"localhost": {"ProtectionPool": 42}}`,
			reason:  "must be a string",
		},
		{
			name:    "network is not an object",
			file:    "address.json",
			content: `{"localhost": []}`,
			reason:  "expected an object",
		},
		{
			name:    "null document",
			file:    "proposals.json",
			content: `null`,
			reason:  "expected an object",
		},
		{
			name:    "bad pool address",
			file:    "PriorityPool.json",
			content: `{"fuji": {"1": {"id": "1", "poolAddress": "nope", "name": "X", "token": "", "premium": "1"}}}`,
			reason:  "poolAddress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0644))

			err := registry.NewFileStore(dir).Open(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrRegistryIO)

			var schemaErr *domain.SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Contains(t, schemaErr.Reason, tt.reason)
		})
	}
}

func TestFileStore_ConcurrentModification(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setup := openStore(t, dir)
	require.NoError(t, setup.Init(ctx, false))

	first := openStore(t, dir)
	second := openStore(t, dir)

	bookA, err := first.AddressBook()
	require.NoError(t, err)
	bookA.Set("localhost", "TokenA", addrA)
	require.NoError(t, first.Save(domain.KindAddresses, bookA))

	bookB, err := second.AddressBook()
	require.NoError(t, err)
	bookB.Set("localhost", "TokenB", addrB)
	require.NoError(t, second.Save(domain.KindAddresses, bookB))

	require.NoError(t, first.Flush(ctx))
	err = second.Flush(ctx)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	got, err := openStore(t, dir).AddressBook()
	require.NoError(t, err)
	_, ok := got.Lookup("localhost", "TokenA")
	assert.True(t, ok, "the first writer's key survives")
}

func TestFileStore_SaveRejectsWrongType(t *testing.T) {
	store := openStore(t, t.TempDir())
	err := store.Save(domain.KindProposals, domain.AddressBook{})
	assert.ErrorIs(t, err, domain.ErrRegistryIO)
}

func TestFileStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, t.TempDir())
	require.NoError(t, store.Close(ctx))

	_, err := store.Load(domain.KindAddresses)
	assert.ErrorIs(t, err, domain.ErrRegistryClosed)
	assert.ErrorIs(t, store.Save(domain.KindAddresses, domain.AddressBook{}), domain.ErrRegistryClosed)
}

func TestFileStore_RoundTripProperty(t *testing.T) {
	networkGen := rapid.SampledFrom([]string{"localhost", "fuji", "avax", "arb"})
	nameGen := rapid.StringMatching(`[A-Z][A-Za-z0-9]{0,12}`)
	addrGen := rapid.Custom(func(t *rapid.T) common.Address {
		return common.BytesToAddress(rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, "addr"))
	})

	rapid.Check(t, func(rt *rapid.T) {
		dir, err := os.MkdirTemp("", "registry-prop")
		if err != nil {
			rt.Fatalf("tempdir: %v", err)
		}
		defer os.RemoveAll(dir)

		ctx := context.Background()
		store := registry.NewFileStore(dir)
		if err := store.Open(ctx); err != nil {
			rt.Fatalf("open: %v", err)
		}

		book := domain.AddressBook{}
		n := rapid.IntRange(0, 20).Draw(rt, "entries")
		for i := 0; i < n; i++ {
			book.Set(networkGen.Draw(rt, "network"), nameGen.Draw(rt, "name"), addrGen.Draw(rt, "address"))
		}
		if err := store.Save(domain.KindAddresses, book); err != nil {
			rt.Fatalf("save: %v", err)
		}
		if err := store.Close(ctx); err != nil {
			rt.Fatalf("close: %v", err)
		}

		reopened := registry.NewFileStore(dir)
		if err := reopened.Open(ctx); err != nil {
			rt.Fatalf("reopen: %v", err)
		}
		got, err := reopened.AddressBook()
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		for _, network := range book.Networks() {
			for _, name := range book.Names(network) {
				want, _ := book.Lookup(network, name)
				have, ok := got.Lookup(network, name)
				if !ok || have != want {
					rt.Fatalf("%s/%s: want %s, got %s (present=%v)", network, name, want.Hex(), have.Hex(), ok)
				}
			}
			if len(got.Names(network)) != len(book.Names(network)) {
				rt.Fatalf("%s: extra keys after round trip", network)
			}
		}
		if !strings.HasSuffix(mustRead(rt, filepath.Join(dir, "address.json")), "\n") {
			rt.Fatalf("missing trailing newline")
		}
	})
}

func mustRead(t *rapid.T, path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
