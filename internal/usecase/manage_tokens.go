package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/bindings"
)

// Fixed amounts of the mock token tasks.
const (
	MintDEGAmount     = "10000"
	MintShieldAmount  = "1000"
	MintUSDCAmount    = "1000000000"
	MintERC20Amount   = "10000"
	ApprovalAmount    = "1000000000"
	mockUSDCDecimals  = DecimalsSettlement
	mockERC20Decimals = DecimalsGovernance
)

// ManageTokens mints and approves the mock tokens of test networks.
type ManageTokens struct {
	ops *ContractOps
}

// NewManageTokens creates a new token manager
func NewManageTokens(ops *ContractOps) *ManageTokens {
	return &ManageTokens{ops: ops}
}

// TokenResult is the outcome of a token operation
type TokenResult struct {
	TxHash  common.Hash    `json:"txHash,omitempty"`
	Token   string         `json:"token"`
	Address common.Address `json:"address"`
	Holder  common.Address `json:"holder"`
	Amount  string         `json:"amount,omitempty"`
	Balance string         `json:"balance,omitempty"`
	Symbol  string         `json:"symbol,omitempty"`
}

// MintDEG mints governance mock tokens to the signer.
func (m *ManageTokens) MintDEG(ctx context.Context) (*TokenResult, error) {
	return m.mintToSender(ctx, domain.ContractMockDEG, bindings.FuncMintDegis, MintDEGAmount, DecimalsGovernance)
}

// MintShield mints settlement mock tokens to the signer.
func (m *ManageTokens) MintShield(ctx context.Context) (*TokenResult, error) {
	return m.mintToSender(ctx, domain.ContractMockShield, bindings.FuncMint, MintShieldAmount, DecimalsSettlement)
}

// MintERC20 mints the generic mock token to the signer.
func (m *ManageTokens) MintERC20(ctx context.Context) (*TokenResult, error) {
	return m.mintToSender(ctx, domain.ContractMockERC20, bindings.FuncMint, MintERC20Amount, mockERC20Decimals)
}

// MintUSDC funds the mock exchange with mock USDC.
func (m *ManageTokens) MintUSDC(ctx context.Context) (*TokenResult, error) {
	addrs, err := m.ops.Addresses(domain.ContractMockUSDC, domain.ContractMockExchange)
	if err != nil {
		return nil, err
	}
	exchange := addrs[domain.ContractMockExchange]
	return m.mint(ctx, domain.ContractMockUSDC, addrs[domain.ContractMockUSDC], bindings.FuncMint, exchange, MintUSDCAmount, mockUSDCDecimals)
}

// ApproveShield lets the policy center spend the signer's settlement tokens.
func (m *ManageTokens) ApproveShield(ctx context.Context) (*TokenResult, error) {
	return m.approvePolicyCenter(ctx, domain.ContractMockShield)
}

// ApproveProLP lets the policy center spend the signer's protection pool LP tokens.
func (m *ManageTokens) ApproveProLP(ctx context.Context) (*TokenResult, error) {
	return m.approvePolicyCenter(ctx, domain.ContractProtectionPool)
}

// ApprovePoolToken whitelists a pool token in the policy center.
func (m *ManageTokens) ApprovePoolToken(ctx context.Context, token common.Address) (*TokenResult, error) {
	center, err := m.ops.Address(domain.ContractPolicyCenter)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, "Approve pool token "+token.Hex()); err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractPolicyCenter, center, bindings.FuncApprovePoolToken, token)
	if err != nil {
		return nil, err
	}
	return &TokenResult{TxHash: receipt.TxHash, Token: token.Hex(), Address: token, Holder: center}, nil
}

// Balance reads a holder's balance of a token given by registry name or address.
// A zero holder means the signer.
func (m *ManageTokens) Balance(ctx context.Context, token string, holder common.Address) (*TokenResult, error) {
	addr, err := m.resolveToken(token)
	if err != nil {
		return nil, err
	}
	if holder == (common.Address{}) {
		if holder, err = m.ops.Sender(ctx); err != nil {
			return nil, err
		}
	}

	var (
		balance  *big.Int
		decimals uint8
		symbol   string
	)
	if err := m.ops.Call(ctx, addr, bindings.FuncBalanceOf, []any{holder}, &balance); err != nil {
		return nil, err
	}
	if err := m.ops.Call(ctx, addr, bindings.FuncDecimals, nil, &decimals); err != nil {
		return nil, err
	}
	if err := m.ops.Call(ctx, addr, bindings.FuncSymbol, nil, &symbol); err != nil {
		return nil, err
	}
	return &TokenResult{
		Token:   token,
		Address: addr,
		Holder:  holder,
		Balance: FormatAmount(balance, decimals),
		Symbol:  symbol,
	}, nil
}

func (m *ManageTokens) resolveToken(token string) (common.Address, error) {
	if common.IsHexAddress(token) {
		return common.HexToAddress(token), nil
	}
	return m.ops.Address(token)
}

func (m *ManageTokens) mintToSender(ctx context.Context, name string, fn *w3.Func, amount string, decimals uint8) (*TokenResult, error) {
	token, err := m.ops.Address(name)
	if err != nil {
		return nil, err
	}
	sender, err := m.ops.Sender(ctx)
	if err != nil {
		return nil, err
	}
	return m.mint(ctx, name, token, fn, sender, amount, decimals)
}

func (m *ManageTokens) mint(ctx context.Context, name string, token common.Address, fn *w3.Func, to common.Address, amount string, decimals uint8) (*TokenResult, error) {
	value, err := ParseAmount(amount, decimals)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("Mint %s %s", amount, name)); err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, name, token, fn, to, value)
	if err != nil {
		return nil, err
	}

	var balance *big.Int
	if err := m.ops.Call(ctx, token, bindings.FuncBalanceOf, []any{to}, &balance); err != nil {
		return nil, err
	}
	return &TokenResult{
		TxHash:  receipt.TxHash,
		Token:   name,
		Address: token,
		Holder:  to,
		Amount:  amount,
		Balance: FormatAmount(balance, decimals),
	}, nil
}

func (m *ManageTokens) approvePolicyCenter(ctx context.Context, name string) (*TokenResult, error) {
	addrs, err := m.ops.Addresses(name, domain.ContractPolicyCenter)
	if err != nil {
		return nil, err
	}
	value, err := ParseAmount(ApprovalAmount, DecimalsSettlement)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("Approve %s for the policy center", name)); err != nil {
		return nil, err
	}
	center := addrs[domain.ContractPolicyCenter]
	receipt, err := m.ops.Send(ctx, name, addrs[name], bindings.FuncApprove, center, value)
	if err != nil {
		return nil, err
	}
	return &TokenResult{TxHash: receipt.TxHash, Token: name, Address: addrs[name], Holder: center, Amount: ApprovalAmount}, nil
}
