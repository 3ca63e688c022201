package blockchain

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerKey(t *testing.T) {
	t.Run("dev mnemonic derives the first funded account", func(t *testing.T) {
		key, err := SignerKey(domain.SignerSpec{Kind: domain.SignerDevMnemonic})
		require.NoError(t, err)
		assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", crypto.PubkeyToAddress(key.PublicKey).Hex())
	})

	t.Run("account index selects the derivation path", func(t *testing.T) {
		key, err := SignerKey(domain.SignerSpec{Kind: domain.SignerDevMnemonic, Index: 1})
		require.NoError(t, err)
		assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", crypto.PubkeyToAddress(key.PublicKey).Hex())
	})

	t.Run("mnemonic from environment", func(t *testing.T) {
		t.Setenv("PHRASE_TEST", domain.DevMnemonic)
		key, err := SignerKey(domain.SignerSpec{Kind: domain.SignerMnemonic, Env: "PHRASE_TEST"})
		require.NoError(t, err)
		assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", crypto.PubkeyToAddress(key.PublicKey).Hex())
	})

	t.Run("private key with 0x prefix", func(t *testing.T) {
		t.Setenv("PRIVATE_KEY_TEST", "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
		key, err := SignerKey(domain.SignerSpec{Kind: domain.SignerPrivateKey, Env: "PRIVATE_KEY_TEST"})
		require.NoError(t, err)
		assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", crypto.PubkeyToAddress(key.PublicKey).Hex())
	})

	t.Run("missing variable", func(t *testing.T) {
		t.Setenv("PHRASE_UNSET", "")
		_, err := SignerKey(domain.SignerSpec{Kind: domain.SignerMnemonic, Env: "PHRASE_UNSET"})
		assert.ErrorIs(t, err, domain.ErrMissingEnv)
		assert.Contains(t, err.Error(), "PHRASE_UNSET")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := SignerKey(domain.SignerSpec{Kind: "ledger"})
		assert.Error(t, err)
	})
}

func TestRPCURL(t *testing.T) {
	tests := []struct {
		name    string
		network domain.NetworkSpec
		env     map[string]string
		want    string
		wantErr error
	}{
		{
			name:    "literal url",
			network: domain.NetworkSpec{Name: "localhost", RPCURL: "http://127.0.0.1:8545"},
			want:    "http://127.0.0.1:8545",
		},
		{
			name:    "url from environment",
			network: domain.NetworkSpec{Name: "fuji", RPCURLEnv: "FUJI_URL_TEST"},
			env:     map[string]string{"FUJI_URL_TEST": "https://fuji.example"},
			want:    "https://fuji.example",
		},
		{
			name:    "missing environment",
			network: domain.NetworkSpec{Name: "fuji", RPCURLEnv: "FUJI_URL_TEST"},
			env:     map[string]string{"FUJI_URL_TEST": ""},
			wantErr: domain.ErrMissingEnv,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got, err := RPCURL(&tt.network)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
