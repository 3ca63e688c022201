package cli

import (
	"context"
	"math/big"

	"github.com/shieldworks/protect/internal/app"
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewPoolCmd creates the priority and protection pool command group
func NewPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Priority pools and protection pool liquidity",
	}

	show := (*render.OpsRenderer).RenderPool
	showList := (*render.OpsRenderer).RenderPoolList

	cmd.AddCommand(opCmd("deploy <name> <token> <capacity> <premium>", "Deploy a priority pool through the factory", 4,
		func(cmd *cobra.Command, args []string) error {
			token, err := parseAddress("token", args[1])
			if err != nil {
				return err
			}
			capacity, err := parseID("capacity", args[2])
			if err != nil {
				return err
			}
			premium, err := parseID("premium", args[3])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PoolResult, error) {
				return a.Pools.Deploy(ctx, usecase.DeployPoolParams{
					Name:     args[0],
					Token:    token,
					Capacity: capacity,
					Premium:  premium,
				})
			}, show)
		}))

	cmd.AddCommand(opCmd("provide-liquidity <amount>", "Deposit settlement tokens into the protection pool", 1,
		func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PoolResult, error) {
				return a.Pools.ProvideLiquidity(ctx, args[0])
			}, show)
		}))

	cmd.AddCommand(opCmd("stake <id> <amount>", "Stake protection pool LP tokens in a priority pool", 2,
		func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PoolResult, error) {
				return a.Pools.Stake(ctx, id, args[1])
			}, show)
		}))

	cmd.AddCommand(opCmd("unstake <id> <generation> <amount>", "Unstake priority pool LP tokens", 3,
		func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			generation, err := parseID("generation", args[1])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PoolResult, error) {
				return a.Pools.Unstake(ctx, id, generation, args[2])
			}, show)
		}))

	cmd.AddCommand(opCmd("dynamic-premium <id> <amount>", "Compare the dynamic premium ratio before and after a purchase", 2,
		func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PoolResult, error) {
				return a.Pools.DynamicPremium(ctx, id, args[1])
			}, show)
		}))

	cmd.AddCommand(opCmd("cover-price <id> <amount> <months>", "Quote the price of cover", 3,
		func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			months, err := parseID("months", args[2])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PoolResult, error) {
				return a.Pools.CoverPrice(ctx, id, args[1], months)
			}, show)
		}))

	cmd.AddCommand(opCmd("update-index-cut", "Update the protection pool index cut", 0,
		func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PoolResult, error) {
				return a.Pools.UpdateIndexCut(ctx)
			}, show)
		}))

	cmd.AddCommand(opCmd("list", "List on-chain priority pools next to the local list", 0,
		func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PoolList, error) {
				return a.Pools.List(ctx)
			}, showList)
		}))

	cmd.AddCommand(opCmd("sync", "Rebuild the local pool list from the factory", 0,
		func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PoolList, error) {
				return a.Pools.Sync(ctx)
			}, showList)
		}))

	type view func(*usecase.ManagePools, context.Context, *big.Int) (*usecase.PoolResult, error)
	for _, c := range []struct {
		use, short string
		run        view
	}{
		{"info", "Read a priority pool", (*usecase.ManagePools).Info},
		{"active-covered", "Show the active covered amount of a pool", (*usecase.ManagePools).ActiveCovered},
	} {
		run := c.run
		cmd.AddCommand(idCmd(c.use, c.short, func(ctx context.Context, a *app.App, id *big.Int) (*usecase.PoolResult, error) {
			return run(a.Pools, ctx, id)
		}, show))
	}

	return cmd
}
