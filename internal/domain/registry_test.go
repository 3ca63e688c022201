package domain

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAddressBook(t *testing.T) {
	book := AddressBook{}
	a := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	_, ok := book.Lookup("localhost", "PolicyCenter")
	assert.False(t, ok)

	book.Set("localhost", "PolicyCenter", a)
	book.Set("localhost", "Executor", a)
	book.Set("fuji", "Executor", a)

	got, ok := book.Lookup("localhost", "PolicyCenter")
	require.True(t, ok)
	assert.Equal(t, a, got)
	assert.Equal(t, []string{"Executor", "PolicyCenter"}, book.Names("localhost"))
	assert.Equal(t, []string{"fuji", "localhost"}, book.Networks())

	clone := book.Clone()
	clone.Delete("localhost", "Executor")
	_, ok = book.Lookup("localhost", "Executor")
	assert.True(t, ok, "clone is independent")

	// zero address is recorded, not absent
	book.Set("localhost", "Zero", common.Address{})
	_, ok = book.Lookup("localhost", "Zero")
	assert.True(t, ok)
}

func TestDecodeAddressBook(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid", input: `{"localhost":{"Executor":"0x5fbdb2315678afecb367f032d93f642f64180aa3"}}`},
		{name: "empty", input: `{}`},
		{name: "null document", input: `null`, wantErr: "got null"},
		{name: "null address", input: `{"localhost":{"Executor":null}}`, wantErr: "address is null"},
		{name: "number", input: `{"localhost":{"Executor":5}}`, wantErr: "must be a string"},
		{name: "bad hex", input: `{"localhost":{"Executor":"0x12"}}`, wantErr: "not a hex address"},
		{name: "network not an object", input: `{"localhost":[]}`, wantErr: "expected an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := DecodeAddressBook(KindAddresses, []byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.ErrorIs(t, err, ErrRegistryIO)
				var schema *SchemaError
				assert.ErrorAs(t, err, &schema)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, book)
		})
	}
}

func TestAddressBookJSONRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		book := AddressBook{}
		networks := rapid.SliceOfN(rapid.SampledFrom([]string{NetworkLocalhost, NetworkFuji, NetworkAvax}), 0, 3).Draw(t, "networks")
		for _, n := range networks {
			names := rapid.SliceOfN(rapid.StringMatching(`[A-Z][A-Za-z]{0,12}`), 0, 5).Draw(t, "names")
			for _, name := range names {
				raw := rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, "address")
				book.Set(n, name, common.BytesToAddress(raw))
			}
		}

		data, err := json.Marshal(book)
		if err != nil {
			t.Fatal(err)
		}
		back, err := DecodeAddressBook(KindAddresses, data)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range book.Networks() {
			for _, name := range book.Names(n) {
				want, _ := book.Lookup(n, name)
				got, ok := back.Lookup(n, name)
				if !ok || got != want {
					t.Fatalf("%s/%s: got %s, want %s", n, name, got.Hex(), want.Hex())
				}
			}
		}
	})
}

func TestDecodeRecordSet(t *testing.T) {
	set, err := DecodeRecordSet[PriorityPoolRecord](KindPriorityPools, []byte(`{
		"localhost": {"1": {"id": "1", "poolAddress": "0x5fbdb2315678afecb367f032d93f642f64180aa3", "name": "Test"}}
	}`))
	require.NoError(t, err)
	rec, ok := set.Get("localhost", "1")
	require.True(t, ok)
	assert.Equal(t, "Test", rec.Name)

	_, err = DecodeRecordSet[PriorityPoolRecord](KindPriorityPools, []byte(`{"localhost": {"1": {"id": "1", "poolAddress": "nope"}}}`))
	var schema *SchemaError
	require.ErrorAs(t, err, &schema)
	assert.Equal(t, "1", schema.Key)
}

func TestRecordSetIDsNumericOrder(t *testing.T) {
	set := RecordSet[ProposalRecord]{}
	for _, id := range []string{"10", "2", "1"} {
		set.Put("localhost", id, ProposalRecord{ID: id})
	}
	assert.Equal(t, []string{"1", "2", "10"}, set.IDs("localhost"))
}

func TestParseRecordKind(t *testing.T) {
	for _, kind := range RecordKinds {
		got, err := ParseRecordKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, got)
		assert.NotEmpty(t, kind.FileName())
	}
	_, err := ParseRecordKind("bogus")
	assert.Error(t, err)
}
