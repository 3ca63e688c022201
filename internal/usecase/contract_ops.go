package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/lmittmann/w3"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
)

// ContractOps is the shared plumbing of every operational task: resolve a
// contract from the AddressBook, encode a call, send it and check the receipt.
type ContractOps struct {
	store     RegistryStore
	chain     ChainClient
	artifacts ArtifactRepository
	confirmer Confirmer
	cfg       *config.RuntimeConfig
	log       *slog.Logger
}

// NewContractOps creates the shared task plumbing
func NewContractOps(
	store RegistryStore,
	chain ChainClient,
	artifacts ArtifactRepository,
	confirmer Confirmer,
	cfg *config.RuntimeConfig,
	log *slog.Logger,
) *ContractOps {
	return &ContractOps{
		store:     store,
		chain:     chain,
		artifacts: artifacts,
		confirmer: confirmer,
		cfg:       cfg,
		log:       log,
	}
}

// Network returns the canonical name of the selected network.
func (o *ContractOps) Network() string {
	return domain.Normalize(o.cfg.NetworkName())
}

// Address resolves one recorded contract.
func (o *ContractOps) Address(name string) (common.Address, error) {
	addrs, err := o.Addresses(name)
	if err != nil {
		return common.Address{}, err
	}
	return addrs[name], nil
}

// Addresses resolves several recorded contracts, reporting every missing one together.
func (o *ContractOps) Addresses(names ...string) (map[string]common.Address, error) {
	network := o.Network()
	book, err := addressBookOrEmpty(o.store)
	if err != nil {
		return nil, err
	}

	out := make(map[string]common.Address, len(names))
	var missing []domain.MissingKey
	for _, name := range names {
		addr, ok := book.Lookup(network, name)
		if !ok {
			missing = append(missing, domain.MissingKey{Consumer: "task", Key: name})
			continue
		}
		out[name] = addr
	}
	if len(missing) > 0 {
		return nil, &domain.MissingDependencyError{Network: network, Missing: missing}
	}
	return out, nil
}

// Sender returns the signer address.
func (o *ContractOps) Sender(ctx context.Context) (common.Address, error) {
	return o.chain.Sender(ctx)
}

// Call runs a view function and decodes its returns into the given pointers.
func (o *ContractOps) Call(ctx context.Context, to common.Address, fn *w3.Func, args []any, returns ...any) error {
	input, err := fn.EncodeArgs(args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", fn.Signature, err)
	}
	output, err := o.chain.Call(ctx, to, input)
	if err != nil {
		return fmt.Errorf("call %s on %s failed: %w", fn.Signature, to.Hex(), err)
	}
	if len(returns) == 0 {
		return nil
	}
	if err := fn.DecodeReturns(output, returns...); err != nil {
		return fmt.Errorf("failed to decode %s: %w", fn.Signature, err)
	}
	return nil
}

// Field is one named value of a struct-returning view.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CallView runs a view method through the contract's artifact ABI and flattens the
// returned values, including struct returns, into named fields in ABI order.
func (o *ContractOps) CallView(ctx context.Context, artifact string, to common.Address, method string, args ...any) ([]Field, error) {
	art, err := o.artifacts.Get(ctx, artifact)
	if err != nil {
		return nil, err
	}
	m, ok := art.ABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%s has no method %s", artifact, method)
	}
	input, err := art.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s.%s: %w", artifact, method, err)
	}
	output, err := o.chain.Call(ctx, to, input)
	if err != nil {
		return nil, fmt.Errorf("call %s.%s failed: %w", artifact, method, err)
	}
	values, err := m.Outputs.Unpack(output)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s.%s: %w", artifact, method, err)
	}

	var fields []Field
	for i, out := range m.Outputs {
		name := out.Name
		if name == "" {
			name = fmt.Sprintf("value%d", i)
		}
		if out.Type.T == abi.TupleTy {
			v := reflect.ValueOf(values[i])
			for j, elem := range out.Type.TupleRawNames {
				fields = append(fields, Field{Name: elem, Value: formatValue(v.Field(j).Interface())})
			}
			continue
		}
		fields = append(fields, Field{Name: name, Value: formatValue(values[i])})
	}
	return fields, nil
}

// FieldValue returns the value of a named field.
func FieldValue(fields []Field, name string) (string, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func formatValue(v any) string {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case common.Address:
		return x.Hex()
	case [32]byte:
		return common.Hash(x).Hex()
	case []byte:
		return hexutil.Encode(x)
	case []common.Address:
		parts := make([]string, len(x))
		for i, a := range x {
			parts[i] = a.Hex()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// Send submits a transaction to a named contract and waits for it to be mined.
// A reverted receipt becomes a RemoteRevertError.
func (o *ContractOps) Send(ctx context.Context, contract string, to common.Address, fn *w3.Func, args ...any) (*domain.TxReceipt, error) {
	input, err := fn.EncodeArgs(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", fn.Signature, err)
	}
	return o.SendRaw(ctx, contract, methodName(fn.Signature), to, input)
}

// SendRaw submits pre-encoded calldata.
func (o *ContractOps) SendRaw(ctx context.Context, contract, method string, to common.Address, input []byte) (*domain.TxReceipt, error) {
	receipt, err := o.chain.Transact(ctx, to, input)
	if err != nil {
		return nil, fmt.Errorf("%s.%s failed: %w", contract, method, err)
	}
	if receipt.Reverted {
		return nil, &domain.RemoteRevertError{Contract: contract, Method: method, TxHash: receipt.TxHash}
	}
	o.log.Debug("transaction mined", "contract", contract, "method", method, "tx", receipt.TxHash.Hex(), "network", o.Network())
	return receipt, nil
}

// ConfirmProduction asks before mutating a production network. Non-interactive
// runs and non-production networks pass without a prompt.
func (o *ContractOps) ConfirmProduction(ctx context.Context, action string) error {
	return confirmProduction(ctx, o.confirmer, o.cfg, action)
}

func confirmProduction(ctx context.Context, confirmer Confirmer, cfg *config.RuntimeConfig, action string) error {
	if cfg.NonInteractive || confirmer == nil || cfg.Network == nil || !cfg.Network.Production {
		return nil
	}
	ok, err := confirmer.Confirm(ctx, fmt.Sprintf("%s on production network %s", action, cfg.Network.Name))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s cancelled", action)
	}
	return nil
}

func methodName(signature string) string {
	for i, r := range signature {
		if r == '(' {
			return signature[:i]
		}
	}
	return signature
}
