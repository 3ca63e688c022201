package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/shieldworks/protect/internal/usecase"
)

const (
	dialAttempts = 3
	dialDelay    = 500 * time.Millisecond
)

// Client implements usecase.ChainClient over a JSON-RPC endpoint with a local key.
// It connects on first use, so commands that never touch the chain never dial.
type Client struct {
	network *domain.NetworkSpec
	log     *slog.Logger

	mu      sync.Mutex
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
}

// NewClient creates a client for the selected network.
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) *Client {
	return &Client{network: cfg.Network, log: log}
}

// ProvideClient creates the client and a cleanup that closes its connection.
func ProvideClient(cfg *config.RuntimeConfig, log *slog.Logger) (*Client, func()) {
	c := NewClient(cfg, log)
	return c, c.Close
}

// Close releases the RPC connection, if one was made.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
}

// Sender returns the signer's address.
func (c *Client) Sender(ctx context.Context) (common.Address, error) {
	if err := c.connect(ctx); err != nil {
		return common.Address{}, err
	}
	return c.from, nil
}

// ChainID returns the chain id reported by the node.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	if err := c.connect(ctx); err != nil {
		return 0, err
	}
	return c.chainID.Uint64(), nil
}

// Deploy creates a contract and waits for it to be mined.
func (c *Client) Deploy(ctx context.Context, artifact *domain.Artifact, args ...any) (*domain.DeployReceipt, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	opts, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	addr, tx, _, err := bind.DeployContract(opts, artifact.ABI, artifact.Bytecode, c.eth, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", artifact.Name, err)
	}
	c.log.Debug("deployment sent", "contract", artifact.Name, "tx", tx.Hash().Hex(), "address", addr.Hex())

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s deployment %s: %w", artifact.Name, tx.Hash().Hex(), err)
	}
	return &domain.DeployReceipt{
		Address:  addr,
		TxHash:   tx.Hash(),
		GasUsed:  receipt.GasUsed,
		Reverted: receipt.Status == types.ReceiptStatusFailed,
	}, nil
}

// Call executes a read-only call against the latest block.
func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{From: c.from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call to %s failed: %w", to.Hex(), err)
	}
	return out, nil
}

// Transact sends a transaction with raw calldata and waits for it to be mined.
func (c *Client) Transact(ctx context.Context, to common.Address, data []byte) (*domain.TxReceipt, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	opts, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(to, abi.ABI{}, c.eth, c.eth, c.eth)
	tx, err := contract.RawTransact(opts, data)
	if err != nil {
		return nil, fmt.Errorf("transaction to %s failed: %w", to.Hex(), err)
	}
	c.log.Debug("transaction sent", "to", to.Hex(), "tx", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", tx.Hash().Hex(), err)
	}
	result := &domain.TxReceipt{
		TxHash:   tx.Hash(),
		GasUsed:  receipt.GasUsed,
		Reverted: receipt.Status == types.ReceiptStatusFailed,
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return result, nil
}

func (c *Client) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.network != nil && c.network.Timeout > 0 {
		return context.WithTimeout(ctx, c.network.Timeout)
	}
	return ctx, func() {}
}

func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eth != nil {
		return nil
	}
	if c.network == nil {
		return fmt.Errorf("no network selected: %w", domain.ErrUnknownNetwork)
	}

	rpcURL, err := RPCURL(c.network)
	if err != nil {
		return err
	}
	key, err := SignerKey(c.network.Signer)
	if err != nil {
		return err
	}

	var (
		client  *ethclient.Client
		chainID *big.Int
	)
	err = retry.Do(
		func() error {
			dialCtx, cancel := c.requestContext(ctx)
			defer cancel()

			cl, err := ethclient.DialContext(dialCtx, rpcURL)
			if err != nil {
				return fmt.Errorf("failed to connect to RPC: %w", err)
			}
			id, err := cl.ChainID(dialCtx)
			if err != nil {
				cl.Close()
				return fmt.Errorf("failed to get chain ID: %w", err)
			}
			// A wrong endpoint won't fix itself
			if c.network.ChainID != 0 && id.Uint64() != c.network.ChainID {
				cl.Close()
				return retry.Unrecoverable(fmt.Errorf("chain ID mismatch on %s: expected %d, got %d",
					c.network.Name, c.network.ChainID, id.Uint64()))
			}
			client, chainID = cl, id
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(dialAttempts),
		retry.Delay(dialDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("retrying RPC connection", "network", c.network.Name, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return err
	}

	c.eth = client
	c.key = key
	c.from = crypto.PubkeyToAddress(key.PublicKey)
	c.chainID = chainID
	c.log.Debug("connected", "network", c.network.Name, "chainId", chainID.Uint64(), "sender", c.from.Hex())
	return nil
}

// RPCURL returns the network's endpoint, reading it from the environment when
// the network names a variable instead of a URL.
func RPCURL(network *domain.NetworkSpec) (string, error) {
	if network.RPCURL != "" {
		return network.RPCURL, nil
	}
	if network.RPCURLEnv == "" {
		return "", fmt.Errorf("network %s has no RPC URL", network.Name)
	}
	url := os.Getenv(network.RPCURLEnv)
	if url == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingEnv, network.RPCURLEnv)
	}
	return url, nil
}

// SignerKey builds the deployer key described by spec.
func SignerKey(spec domain.SignerSpec) (*ecdsa.PrivateKey, error) {
	switch spec.Kind {
	case domain.SignerDevMnemonic:
		return mnemonicKey(domain.DevMnemonic, spec.Index)
	case domain.SignerMnemonic:
		phrase := os.Getenv(spec.Env)
		if phrase == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingEnv, spec.Env)
		}
		return mnemonicKey(phrase, spec.Index)
	case domain.SignerPrivateKey:
		hex := os.Getenv(spec.Env)
		if hex == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingEnv, spec.Env)
		}
		key, err := crypto.HexToECDSA(strings.TrimPrefix(hex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key in %s: %w", spec.Env, err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("unknown signer kind %q", spec.Kind)
	}
}

func mnemonicKey(phrase string, index uint32) (*ecdsa.PrivateKey, error) {
	wallet, err := hdwallet.NewFromMnemonic(phrase)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	path, err := hdwallet.ParseDerivationPath(fmt.Sprintf("m/44'/60'/0'/0/%d", index))
	if err != nil {
		return nil, err
	}
	account, err := wallet.Derive(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account %d: %w", index, err)
	}
	return wallet.PrivateKey(account)
}

var _ usecase.ChainClient = (*Client)(nil)
