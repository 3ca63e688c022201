package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/bindings"
)

// ManagePools operates priority pools: deployment through the factory, liquidity
// through the policy center, and pool metrics.
type ManagePools struct {
	ops    *ContractOps
	store  RegistryStore
	tokens *ResolveExternalTokens
}

// NewManagePools creates a new pool manager
func NewManagePools(ops *ContractOps, store RegistryStore, tokens *ResolveExternalTokens) *ManagePools {
	return &ManagePools{ops: ops, store: store, tokens: tokens}
}

// PoolInfo is a priority pool as the factory reports it.
type PoolInfo struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Address  common.Address `json:"address"`
	Token    common.Address `json:"token"`
	Capacity string         `json:"capacity"`
	Premium  string         `json:"premium"`
}

// Record converts the pool into its local list entry.
func (p PoolInfo) Record() domain.PriorityPoolRecord {
	return domain.PriorityPoolRecord{
		ID:          p.ID,
		PoolAddress: p.Address.Hex(),
		Name:        p.Name,
		Token:       p.Token.Hex(),
		Premium:     p.Premium,
	}
}

// PoolResult is the outcome of a pool operation
type PoolResult struct {
	TxHashes []common.Hash `json:"txHashes,omitempty"`
	Pool     *PoolInfo     `json:"pool,omitempty"`
	Approved bool          `json:"approved,omitempty"`
	Metrics  []Field       `json:"metrics,omitempty"`
}

// PoolList is the on-chain pool list next to the local cache
type PoolList struct {
	OnChain []common.Address            `json:"onChain"`
	Local   []domain.PriorityPoolRecord `json:"local"`
}

// DeployPoolParams contains the parameters of a new priority pool
type DeployPoolParams struct {
	Name     string
	Token    common.Address
	Capacity *big.Int
	Premium  *big.Int
}

// Deploy creates a priority pool through the factory and records it.
func (m *ManagePools) Deploy(ctx context.Context, params DeployPoolParams) (*PoolResult, error) {
	factory, err := m.ops.Address(domain.ContractPriorityPoolFactory)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, "Deploy priority pool "+params.Name); err != nil {
		return nil, err
	}

	receipt, err := m.ops.Send(ctx, domain.ContractPriorityPoolFactory, factory, bindings.FuncDeployPool,
		params.Name, params.Token, params.Capacity, params.Premium)
	if err != nil {
		return nil, err
	}

	var counter *big.Int
	if err := m.ops.Call(ctx, factory, bindings.FuncPoolCounter, nil, &counter); err != nil {
		return nil, err
	}
	info, err := m.poolInfo(ctx, factory, counter)
	if err != nil {
		return nil, err
	}

	pools, err := recordsOrEmpty(m.store.PriorityPools)
	if err != nil {
		return nil, err
	}
	pools.Put(m.ops.Network(), info.ID, info.Record())
	if err := m.savePools(ctx, pools); err != nil {
		return nil, err
	}
	return &PoolResult{TxHashes: []common.Hash{receipt.TxHash}, Pool: info}, nil
}

// ProvideLiquidity deposits settlement tokens into the protection pool through the
// policy center, approving the policy center first when the allowance is short.
func (m *ManagePools) ProvideLiquidity(ctx context.Context, amount string) (*PoolResult, error) {
	value, err := ParseAmount(amount, DecimalsSettlement)
	if err != nil {
		return nil, err
	}
	center, err := m.ops.Address(domain.ContractPolicyCenter)
	if err != nil {
		return nil, err
	}
	tokens, err := m.tokens.Run(ctx, m.ops.Network())
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("Provide %s liquidity", amount)); err != nil {
		return nil, err
	}

	result := &PoolResult{}
	sender, err := m.ops.Sender(ctx)
	if err != nil {
		return nil, err
	}
	var allowance *big.Int
	if err := m.ops.Call(ctx, tokens.Settlement, bindings.FuncAllowance, []any{sender, center}, &allowance); err != nil {
		return nil, err
	}
	if allowance.Cmp(value) < 0 {
		receipt, err := m.ops.Send(ctx, "SettlementToken", tokens.Settlement, bindings.FuncApprove, center, value)
		if err != nil {
			return nil, err
		}
		result.Approved = true
		result.TxHashes = append(result.TxHashes, receipt.TxHash)
	}

	receipt, err := m.ops.Send(ctx, domain.ContractPolicyCenter, center, bindings.FuncProvideLiquidity, value)
	if err != nil {
		return nil, err
	}
	result.TxHashes = append(result.TxHashes, receipt.TxHash)
	return result, nil
}

// Stake stakes protection pool liquidity into a priority pool.
func (m *ManagePools) Stake(ctx context.Context, id *big.Int, amount string) (*PoolResult, error) {
	value, err := ParseAmount(amount, DecimalsSettlement)
	if err != nil {
		return nil, err
	}
	center, err := m.ops.Address(domain.ContractPolicyCenter)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("Stake %s in pool %s", amount, id)); err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractPolicyCenter, center, bindings.FuncStakeLiquidity, id, value)
	if err != nil {
		return nil, err
	}
	return &PoolResult{TxHashes: []common.Hash{receipt.TxHash}}, nil
}

// Unstake withdraws liquidity of one LP token generation from a priority pool.
func (m *ManagePools) Unstake(ctx context.Context, id, generation *big.Int, amount string) (*PoolResult, error) {
	value, err := ParseAmount(amount, DecimalsSettlement)
	if err != nil {
		return nil, err
	}
	addrs, err := m.ops.Addresses(domain.ContractPolicyCenter, domain.ContractPriorityPoolFactory)
	if err != nil {
		return nil, err
	}
	info, err := m.poolInfo(ctx, addrs[domain.ContractPriorityPoolFactory], id)
	if err != nil {
		return nil, err
	}

	var lpToken common.Address
	if err := m.ops.Call(ctx, info.Address, bindings.FuncLPTokenAddress, []any{generation}, &lpToken); err != nil {
		return nil, err
	}
	var priceIndex *big.Int
	if err := m.ops.Call(ctx, info.Address, bindings.FuncPriceIndex, []any{lpToken}, &priceIndex); err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, fmt.Sprintf("Unstake %s from pool %s", amount, id)); err != nil {
		return nil, err
	}

	receipt, err := m.ops.Send(ctx, domain.ContractPolicyCenter, addrs[domain.ContractPolicyCenter],
		bindings.FuncUnstakeLiquidity, id, lpToken, value)
	if err != nil {
		return nil, err
	}
	return &PoolResult{
		TxHashes: []common.Hash{receipt.TxHash},
		Pool:     info,
		Metrics: []Field{
			{Name: "lpToken", Value: lpToken.Hex()},
			{Name: "priceIndex", Value: priceIndex.String()},
		},
	}, nil
}

// List returns the factory's pool addresses and the local pool list.
func (m *ManagePools) List(ctx context.Context) (*PoolList, error) {
	factory, err := m.ops.Address(domain.ContractPriorityPoolFactory)
	if err != nil {
		return nil, err
	}
	var onChain []common.Address
	if err := m.ops.Call(ctx, factory, bindings.FuncGetPoolAddressList, nil, &onChain); err != nil {
		return nil, err
	}

	pools, err := recordsOrEmpty(m.store.PriorityPools)
	if err != nil {
		return nil, err
	}
	list := &PoolList{OnChain: onChain}
	network := m.ops.Network()
	for _, id := range pools.IDs(network) {
		record, _ := pools.Get(network, id)
		list.Local = append(list.Local, record)
	}
	return list, nil
}

// Info reads one pool from the factory.
func (m *ManagePools) Info(ctx context.Context, id *big.Int) (*PoolResult, error) {
	factory, err := m.ops.Address(domain.ContractPriorityPoolFactory)
	if err != nil {
		return nil, err
	}
	info, err := m.poolInfo(ctx, factory, id)
	if err != nil {
		return nil, err
	}
	return &PoolResult{Pool: info}, nil
}

// ActiveCovered reports the pool's covered amounts next to the protection pool totals.
func (m *ManagePools) ActiveCovered(ctx context.Context, id *big.Int) (*PoolResult, error) {
	addrs, err := m.ops.Addresses(domain.ContractPriorityPoolFactory, domain.ContractProtectionPool)
	if err != nil {
		return nil, err
	}
	info, err := m.poolInfo(ctx, addrs[domain.ContractPriorityPoolFactory], id)
	if err != nil {
		return nil, err
	}

	var activeCovered, coverIndex, totalCovered, totalActive *big.Int
	if err := m.ops.Call(ctx, info.Address, bindings.FuncActiveCovered, nil, &activeCovered); err != nil {
		return nil, err
	}
	if err := m.ops.Call(ctx, info.Address, bindings.FuncCoverIndex, nil, &coverIndex); err != nil {
		return nil, err
	}
	protection := addrs[domain.ContractProtectionPool]
	if err := m.ops.Call(ctx, protection, bindings.FuncGetTotalCovered, nil, &totalCovered); err != nil {
		return nil, err
	}
	if err := m.ops.Call(ctx, protection, bindings.FuncGetTotalActiveCovered, nil, &totalActive); err != nil {
		return nil, err
	}

	return &PoolResult{
		Pool: info,
		Metrics: []Field{
			{Name: "activeCovered", Value: FormatAmount(activeCovered, DecimalsSettlement)},
			{Name: "coverIndex", Value: coverIndex.String()},
			{Name: "totalCovered", Value: FormatAmount(totalCovered, DecimalsSettlement)},
			{Name: "totalActiveCovered", Value: FormatAmount(totalActive, DecimalsSettlement)},
		},
	}, nil
}

// DynamicPremium reports the pool's dynamic premium ratio for a cover amount.
func (m *ManagePools) DynamicPremium(ctx context.Context, id *big.Int, amount string) (*PoolResult, error) {
	value, err := ParseAmount(amount, DecimalsSettlement)
	if err != nil {
		return nil, err
	}
	addrs, err := m.ops.Addresses(domain.ContractPriorityPoolFactory, domain.ContractProtectionPool)
	if err != nil {
		return nil, err
	}
	factory := addrs[domain.ContractPriorityPoolFactory]
	info, err := m.poolInfo(ctx, factory, id)
	if err != nil {
		return nil, err
	}

	var ratio, minAsset, dynamicCounter, stakedSupply *big.Int
	if err := m.ops.Call(ctx, info.Address, bindings.FuncDynamicPremiumRatio, []any{value}, &ratio); err != nil {
		return nil, err
	}
	if err := m.ops.Call(ctx, info.Address, bindings.FuncMinAssetRequirement, nil, &minAsset); err != nil {
		return nil, err
	}
	if err := m.ops.Call(ctx, factory, bindings.FuncDynamicPoolCounter, nil, &dynamicCounter); err != nil {
		return nil, err
	}
	if err := m.ops.Call(ctx, addrs[domain.ContractProtectionPool], bindings.FuncStakedSupply, nil, &stakedSupply); err != nil {
		return nil, err
	}

	return &PoolResult{
		Pool: info,
		Metrics: []Field{
			{Name: "dynamicPremiumRatio", Value: ratio.String()},
			{Name: "minAssetRequirement", Value: minAsset.String()},
			{Name: "dynamicPoolCounter", Value: dynamicCounter.String()},
			{Name: "stakedSupply", Value: stakedSupply.String()},
		},
	}, nil
}

// CoverPrice quotes a cover of amount for a number of months.
func (m *ManagePools) CoverPrice(ctx context.Context, id *big.Int, amount string, months *big.Int) (*PoolResult, error) {
	value, err := ParseAmount(amount, DecimalsSettlement)
	if err != nil {
		return nil, err
	}
	factory, err := m.ops.Address(domain.ContractPriorityPoolFactory)
	if err != nil {
		return nil, err
	}
	info, err := m.poolInfo(ctx, factory, id)
	if err != nil {
		return nil, err
	}

	var ratio, price, length *big.Int
	if err := m.ops.Call(ctx, info.Address, bindings.FuncDynamicPremiumRatio, []any{value}, &ratio); err != nil {
		return nil, err
	}
	if err := m.ops.Call(ctx, info.Address, bindings.FuncCoverPrice, []any{value, months}, &price, &length); err != nil {
		return nil, err
	}

	return &PoolResult{
		Pool: info,
		Metrics: []Field{
			{Name: "dynamicPremiumRatio", Value: ratio.String()},
			{Name: "price", Value: FormatAmount(price, DecimalsSettlement)},
			{Name: "lengthSeconds", Value: length.String()},
		},
	}, nil
}

// UpdateIndexCut refreshes the protection pool's cover index cut.
func (m *ManagePools) UpdateIndexCut(ctx context.Context) (*PoolResult, error) {
	protection, err := m.ops.Address(domain.ContractProtectionPool)
	if err != nil {
		return nil, err
	}
	if err := m.ops.ConfirmProduction(ctx, "Update index cut"); err != nil {
		return nil, err
	}
	receipt, err := m.ops.Send(ctx, domain.ContractProtectionPool, protection, bindings.FuncUpdateIndexCut)
	if err != nil {
		return nil, err
	}
	return &PoolResult{TxHashes: []common.Hash{receipt.TxHash}}, nil
}

// Sync rebuilds the local pool list of the network from the factory.
func (m *ManagePools) Sync(ctx context.Context) (*PoolList, error) {
	factory, err := m.ops.Address(domain.ContractPriorityPoolFactory)
	if err != nil {
		return nil, err
	}
	var counter *big.Int
	if err := m.ops.Call(ctx, factory, bindings.FuncPoolCounter, nil, &counter); err != nil {
		return nil, err
	}
	if !counter.IsInt64() {
		return nil, fmt.Errorf("pool counter %s is out of range", counter)
	}

	pools, err := recordsOrEmpty(m.store.PriorityPools)
	if err != nil {
		return nil, err
	}
	network := m.ops.Network()
	delete(pools, network)

	list := &PoolList{}
	for i := int64(1); i <= counter.Int64(); i++ {
		info, err := m.poolInfo(ctx, factory, big.NewInt(i))
		if err != nil {
			return nil, err
		}
		pools.Put(network, info.ID, info.Record())
		list.OnChain = append(list.OnChain, info.Address)
		list.Local = append(list.Local, info.Record())
	}
	if err := m.savePools(ctx, pools); err != nil {
		return nil, err
	}
	return list, nil
}

func (m *ManagePools) poolInfo(ctx context.Context, factory common.Address, id *big.Int) (*PoolInfo, error) {
	var (
		name     string
		pool     common.Address
		token    common.Address
		capacity *big.Int
		premium  *big.Int
	)
	if err := m.ops.Call(ctx, factory, bindings.FuncPools, []any{id}, &name, &pool, &token, &capacity, &premium); err != nil {
		return nil, err
	}
	if pool == (common.Address{}) {
		return nil, fmt.Errorf("priority pool %s: %w", id, domain.ErrNotFound)
	}
	return &PoolInfo{
		ID:       id.String(),
		Name:     name,
		Address:  pool,
		Token:    token,
		Capacity: capacity.String(),
		Premium:  premium.String(),
	}, nil
}

func (m *ManagePools) savePools(ctx context.Context, pools domain.RecordSet[domain.PriorityPoolRecord]) error {
	if err := m.store.Save(domain.KindPriorityPools, pools); err != nil {
		return err
	}
	return m.store.Flush(ctx)
}
