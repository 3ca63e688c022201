package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shieldworks/protect/internal/domain"
)

// Parameters of the test priority pool created by local preparation.
const (
	TestPoolName     = "Test"
	TestPoolCapacity = 4000
	TestPoolPremium  = 400
)

// PrepareLocal brings a freshly deployed test network to a usable state: funded
// mocks, reconciled wiring and one priority pool.
type PrepareLocal struct {
	tokens   *ManageTokens
	wiring   *ReconcileWiring
	pools    *ManagePools
	ops      *ContractOps
	progress ProgressSink
}

// NewPrepareLocal creates a new local preparation use case
func NewPrepareLocal(
	tokens *ManageTokens,
	wiring *ReconcileWiring,
	pools *ManagePools,
	ops *ContractOps,
	progress ProgressSink,
) *PrepareLocal {
	if progress == nil {
		progress = NopProgress{}
	}
	return &PrepareLocal{
		tokens:   tokens,
		wiring:   wiring,
		pools:    pools,
		ops:      ops,
		progress: progress,
	}
}

// PrepareResult is the outcome of local preparation
type PrepareResult struct {
	Minted []*TokenResult `json:"minted"`
	Wiring *WiringReport  `json:"wiring"`
	Pool   *PoolResult    `json:"pool,omitempty"`
}

// Run executes each preparation step in order and stops at the first failure.
func (p *PrepareLocal) Run(ctx context.Context) (*PrepareResult, error) {
	network := p.ops.Network()
	if domain.IsProduction(network) {
		return nil, fmt.Errorf("local preparation cannot run on production network %s", network)
	}

	result := &PrepareResult{}
	steps := []struct {
		name string
		run  func() error
	}{
		{"mint-usdc", func() error { return p.mint(ctx, &result.Minted, p.tokens.MintUSDC) }},
		{"wire", func() error {
			report, err := p.wiring.Execute(ctx, WiringParams{})
			result.Wiring = report
			return err
		}},
		{"mint-shield", func() error { return p.mint(ctx, &result.Minted, p.tokens.MintShield) }},
		{"mint-erc20", func() error { return p.mint(ctx, &result.Minted, p.tokens.MintERC20) }},
		{"deploy-pool", func() error {
			token, err := p.ops.Address(domain.ContractMockERC20)
			if err != nil {
				return err
			}
			pool, err := p.pools.Deploy(ctx, DeployPoolParams{
				Name:     TestPoolName,
				Token:    token,
				Capacity: big.NewInt(TestPoolCapacity),
				Premium:  big.NewInt(TestPoolPremium),
			})
			result.Pool = pool
			return err
		}},
	}

	for i, step := range steps {
		p.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "prepare_step",
			Current: i + 1,
			Total:   len(steps),
			Message: step.name,
			Spinner: true,
		})
		if err := step.run(); err != nil {
			return result, fmt.Errorf("%s failed: %w", step.name, err)
		}
	}
	return result, nil
}

func (p *PrepareLocal) mint(ctx context.Context, into *[]*TokenResult, mint func(context.Context) (*TokenResult, error)) error {
	res, err := mint(ctx)
	if err != nil {
		return err
	}
	*into = append(*into, res)
	return nil
}
