package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/bindings"
)

// DefaultFarmingWeight is the weight of a token added to a farming pool (1 with 12 decimals).
var DefaultFarmingWeight = new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)

// ManageFarming administers the weighted farming pool.
type ManageFarming struct {
	ops *ContractOps
}

// NewManageFarming creates a new farming manager
func NewManageFarming(ops *ContractOps) *ManageFarming {
	return &ManageFarming{ops: ops}
}

// FarmingResult is the outcome of a farming operation
type FarmingResult struct {
	TxHash  common.Hash `json:"txHash,omitempty"`
	PoolID  string      `json:"poolId,omitempty"`
	Metrics []Field     `json:"metrics,omitempty"`
}

// AddPool creates a farming pool paying rewardToken.
func (m *ManageFarming) AddPool(ctx context.Context, rewardToken common.Address) (*FarmingResult, error) {
	farming, err := m.farming(ctx, "Add farming pool")
	if err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractWeightedFarmingPool, farming, bindings.FuncAddPool, rewardToken)
	if err != nil {
		return nil, err
	}
	var counter *big.Int
	if err := m.ops.Call(ctx, farming, bindings.FuncFarmingCounter, nil, &counter); err != nil {
		return nil, err
	}
	return &FarmingResult{TxHash: receipt.TxHash, PoolID: counter.String()}, nil
}

// AddToken adds an LP token with a weight to a farming pool. A nil weight uses DefaultFarmingWeight.
func (m *ManageFarming) AddToken(ctx context.Context, id *big.Int, token common.Address, weight *big.Int) (*FarmingResult, error) {
	if weight == nil {
		weight = DefaultFarmingWeight
	}
	farming, err := m.farming(ctx, fmt.Sprintf("Add token to farming pool %s", id))
	if err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractWeightedFarmingPool, farming, bindings.FuncAddToken, id, token, weight)
	if err != nil {
		return nil, err
	}
	return &FarmingResult{TxHash: receipt.TxHash, PoolID: id.String()}, nil
}

// UpdatePool accrues rewards of a farming pool.
func (m *ManageFarming) UpdatePool(ctx context.Context, id *big.Int) (*FarmingResult, error) {
	farming, err := m.farming(ctx, fmt.Sprintf("Update farming pool %s", id))
	if err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractWeightedFarmingPool, farming, bindings.FuncUpdatePool, id)
	if err != nil {
		return nil, err
	}
	return &FarmingResult{TxHash: receipt.TxHash, PoolID: id.String()}, nil
}

// SetSpeed sets the reward speed of a farming pool for each (year, month) pair.
func (m *ManageFarming) SetSpeed(ctx context.Context, id, speed *big.Int, years, months []*big.Int) (*FarmingResult, error) {
	if len(years) == 0 || len(years) != len(months) {
		return nil, fmt.Errorf("years and months must be non-empty and of equal length (got %d and %d)", len(years), len(months))
	}
	farming, err := m.farming(ctx, fmt.Sprintf("Set reward speed of farming pool %s", id))
	if err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractWeightedFarmingPool, farming, bindings.FuncUpdateRewardSpeed, id, speed, years, months)
	if err != nil {
		return nil, err
	}
	return &FarmingResult{TxHash: receipt.TxHash, PoolID: id.String()}, nil
}

// Harvest claims the signer's rewards from a farming pool.
func (m *ManageFarming) Harvest(ctx context.Context, id *big.Int) (*FarmingResult, error) {
	farming, err := m.farming(ctx, fmt.Sprintf("Harvest farming pool %s", id))
	if err != nil {
		return nil, err
	}
	sender, err := m.ops.Sender(ctx)
	if err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractWeightedFarmingPool, farming, bindings.FuncHarvest, id, sender)
	if err != nil {
		return nil, err
	}
	return &FarmingResult{TxHash: receipt.TxHash, PoolID: id.String()}, nil
}

// Pending reports a user's pending reward and LP amounts in a farming pool.
// A zero user means the signer.
func (m *ManageFarming) Pending(ctx context.Context, id *big.Int, user common.Address) (*FarmingResult, error) {
	farming, err := m.ops.Address(domain.ContractWeightedFarmingPool)
	if err != nil {
		return nil, err
	}
	if user == (common.Address{}) {
		if user, err = m.ops.Sender(ctx); err != nil {
			return nil, err
		}
	}

	var pending *big.Int
	if err := m.ops.Call(ctx, farming, bindings.FuncPendingReward, []any{id, user}, &pending); err != nil {
		return nil, err
	}
	var amounts []*big.Int
	if err := m.ops.Call(ctx, farming, bindings.FuncGetUserLPAmount, []any{id, user}, &amounts); err != nil {
		return nil, err
	}

	metrics := []Field{{Name: "pendingReward", Value: FormatAmount(pending, DecimalsGovernance)}}
	for i, amount := range amounts {
		metrics = append(metrics, Field{Name: fmt.Sprintf("lpAmount[%d]", i), Value: amount.String()})
	}
	return &FarmingResult{PoolID: id.String(), Metrics: metrics}, nil
}

// MintReward mints a recorded mock token to the farming pool so it can pay rewards.
func (m *ManageFarming) MintReward(ctx context.Context, tokenName, amount string) (*FarmingResult, error) {
	value, err := ParseAmount(amount, DecimalsGovernance)
	if err != nil {
		return nil, err
	}
	addrs, err := m.ops.Addresses(domain.ContractWeightedFarmingPool, tokenName)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("Mint %s %s to the farming pool", amount, tokenName)); err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, tokenName, addrs[tokenName], bindings.FuncMint, addrs[domain.ContractWeightedFarmingPool], value)
	if err != nil {
		return nil, err
	}
	return &FarmingResult{TxHash: receipt.TxHash}, nil
}

func (m *ManageFarming) farming(ctx context.Context, action string) (common.Address, error) {
	farming, err := m.ops.Address(domain.ContractWeightedFarmingPool)
	if err != nil {
		return common.Address{}, err
	}
	if err := m.ops.ConfirmProduction(ctx, action); err != nil {
		return common.Address{}, err
	}
	return farming, nil
}
