package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/bindings"
)

// Oracle types stored by the policy center per token.
const (
	OracleChainlink = 0
	OracleDEX       = 1
)

// OracleTypeName returns the display name of an oracle type.
func OracleTypeName(t int64) string {
	if t == OracleChainlink {
		return "ChainLink"
	}
	return "DEX"
}

// ManagePolicy covers the policy center's cover purchase, payout and oracle settings.
type ManagePolicy struct {
	ops *ContractOps
}

// NewManagePolicy creates a new policy center manager
func NewManagePolicy(ops *ContractOps) *ManagePolicy {
	return &ManagePolicy{ops: ops}
}

// PolicyResult is the outcome of a policy center operation
type PolicyResult struct {
	TxHash  common.Hash        `json:"txHash,omitempty"`
	Metrics []Field            `json:"metrics,omitempty"`
	Edge    *domain.EdgeResult `json:"edge,omitempty"`
}

// BuyCoverParams contains the parameters of a cover purchase
type BuyCoverParams struct {
	PoolID     *big.Int
	Amount     string
	Months     *big.Int
	MaxPayment string
}

// BuyCover buys cover on a priority pool.
func (m *ManagePolicy) BuyCover(ctx context.Context, params BuyCoverParams) (*PolicyResult, error) {
	amount, err := ParseAmount(params.Amount, DecimalsSettlement)
	if err != nil {
		return nil, err
	}
	maxPayment, err := ParseAmount(params.MaxPayment, DecimalsGovernance)
	if err != nil {
		return nil, err
	}
	center, err := m.center(ctx, fmt.Sprintf("Buy %s cover on pool %s", params.Amount, params.PoolID))
	if err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractPolicyCenter, center, bindings.FuncBuyCover,
		params.PoolID, amount, params.Months, maxPayment)
	if err != nil {
		return nil, err
	}
	return &PolicyResult{TxHash: receipt.TxHash}, nil
}

// ClaimPayout claims the payout of a cover right token generation and reports the
// settlement balance change.
func (m *ManagePolicy) ClaimPayout(ctx context.Context, poolID *big.Int, crToken common.Address, generation *big.Int) (*PolicyResult, error) {
	settlement, err := m.settlementToken()
	if err != nil {
		return nil, err
	}
	center, err := m.center(ctx, fmt.Sprintf("Claim payout of pool %s", poolID))
	if err != nil {
		return nil, err
	}
	sender, err := m.ops.Sender(ctx)
	if err != nil {
		return nil, err
	}

	var before, after *big.Int
	if err := m.ops.Call(ctx, settlement, bindings.FuncBalanceOf, []any{sender}, &before); err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractPolicyCenter, center, bindings.FuncClaimPayout, poolID, crToken, generation)
	if err != nil {
		return nil, err
	}
	if err := m.ops.Call(ctx, settlement, bindings.FuncBalanceOf, []any{sender}, &after); err != nil {
		return nil, err
	}

	return &PolicyResult{
		TxHash: receipt.TxHash,
		Metrics: []Field{
			{Name: "balanceBefore", Value: FormatAmount(before, DecimalsSettlement)},
			{Name: "balanceAfter", Value: FormatAmount(after, DecimalsSettlement)},
			{Name: "claimed", Value: FormatAmount(new(big.Int).Sub(after, before), DecimalsSettlement)},
		},
	}, nil
}

// CoverRightToken returns the cover right token of a pool, expiry and generation.
func (m *ManagePolicy) CoverRightToken(ctx context.Context, poolID, expiry, generation *big.Int) (common.Address, error) {
	factory, err := m.ops.Address(domain.ContractCoverRightTokenFactory)
	if err != nil {
		return common.Address{}, err
	}
	var token common.Address
	if err := m.ops.Call(ctx, factory, bindings.FuncGetCRTokenAddress, []any{poolID, expiry, generation}, &token); err != nil {
		return common.Address{}, err
	}
	return token, nil
}

// SetOracleType selects the price oracle used for a token.
func (m *ManagePolicy) SetOracleType(ctx context.Context, token common.Address, oracleType int64) (*PolicyResult, error) {
	if oracleType != OracleChainlink && oracleType != OracleDEX {
		return nil, fmt.Errorf("invalid oracle type %d: expected %d (ChainLink) or %d (DEX)", oracleType, OracleChainlink, OracleDEX)
	}
	center, err := m.center(ctx, fmt.Sprintf("Set oracle type of %s", token.Hex()))
	if err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractPolicyCenter, center, bindings.FuncSetOracleType, token, big.NewInt(oracleType))
	if err != nil {
		return nil, err
	}
	return &PolicyResult{TxHash: receipt.TxHash}, nil
}

// OracleType reads the price oracle used for a token.
func (m *ManagePolicy) OracleType(ctx context.Context, token common.Address) (*PolicyResult, error) {
	center, err := m.ops.Address(domain.ContractPolicyCenter)
	if err != nil {
		return nil, err
	}
	var t *big.Int
	if err := m.ops.Call(ctx, center, bindings.FuncOracleType, []any{token}, &t); err != nil {
		return nil, err
	}
	return &PolicyResult{Metrics: []Field{
		{Name: "oracleType", Value: t.String()},
		{Name: "oracle", Value: OracleTypeName(t.Int64())},
	}}, nil
}

// SetExchange points the policy center's exchange for a token at exchange, writing
// only when the current value differs.
func (m *ManagePolicy) SetExchange(ctx context.Context, token, exchange common.Address) (*PolicyResult, error) {
	center, err := m.center(ctx, fmt.Sprintf("Set exchange of %s", token.Hex()))
	if err != nil {
		return nil, err
	}
	res, err := reconcileEdge(ctx, m.ops, EdgeTarget{
		Contract: domain.ContractPolicyCenter,
		Address:  center,
		Getter:   "exchangeByToken(address)",
		Setter:   "setExchangeByToken(address,address)",
		Key:      &token,
		Desired:  exchange,
	}, false)
	res.Edge = domain.WiringEdge{Contract: domain.ContractPolicyCenter, Target: "ExchangeByToken"}
	if err != nil {
		return &PolicyResult{Edge: &res}, err
	}
	return &PolicyResult{TxHash: res.TxHash, Edge: &res}, nil
}

// PriceFeed reads a DEX price feed by token name.
func (m *ManagePolicy) PriceFeed(ctx context.Context, name string) (*PolicyResult, error) {
	getter, err := m.ops.Address(domain.ContractDexPriceGetter)
	if err != nil {
		return nil, err
	}
	fields, err := m.ops.CallView(ctx, domain.ContractDexPriceGetter, getter, "priceFeeds", name)
	if err != nil {
		return nil, err
	}
	return &PolicyResult{Metrics: fields}, nil
}

func (m *ManagePolicy) center(ctx context.Context, action string) (common.Address, error) {
	center, err := m.ops.Address(domain.ContractPolicyCenter)
	if err != nil {
		return common.Address{}, err
	}
	if err := m.ops.ConfirmProduction(ctx, action); err != nil {
		return common.Address{}, err
	}
	return center, nil
}

func (m *ManagePolicy) settlementToken() (common.Address, error) {
	if !domain.IsProduction(m.ops.Network()) {
		return m.ops.Address(domain.ContractMockShield)
	}
	if pinned := m.ops.cfg.MainnetTokens.Settlement; pinned != (common.Address{}) {
		return pinned, nil
	}
	return m.ops.Address(domain.ContractShield)
}
