package cli

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/app"
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewFarmingCmd creates the weighted farming pool command group
func NewFarmingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farming",
		Short: "Weighted farming pool administration",
	}

	show := (*render.OpsRenderer).RenderFarming

	cmd.AddCommand(opCmd("add-pool <reward-token>", "Create a farming pool", 1,
		func(cmd *cobra.Command, args []string) error {
			token, err := parseAddress("reward token", args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.FarmingResult, error) {
				return a.Farming.AddPool(ctx, token)
			}, show)
		}))

	cmd.AddCommand(opCmd("add-token <id> <token> <weight>", "Add a weighted LP token to a farming pool", 3,
		func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			token, err := parseAddress("token", args[1])
			if err != nil {
				return err
			}
			weight, err := parseID("weight", args[2])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.FarmingResult, error) {
				return a.Farming.AddToken(ctx, id, token, weight)
			}, show)
		}))

	var years, months []string
	speedCmd := opCmd("set-speed <id> <speed>", "Set the reward speed for the given months", 2,
		func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			speed, err := parseID("speed", args[1])
			if err != nil {
				return err
			}
			ys, err := parseIDs("year", years)
			if err != nil {
				return err
			}
			ms, err := parseIDs("month", months)
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.FarmingResult, error) {
				return a.Farming.SetSpeed(ctx, id, speed, ys, ms)
			}, show)
		})
	speedCmd.Flags().StringSliceVar(&years, "years", nil, "Years of each period (e.g. 2023,2023)")
	speedCmd.Flags().StringSliceVar(&months, "months", nil, "Months of each period (e.g. 1,2)")
	cmd.AddCommand(speedCmd)

	var user string
	pendingCmd := opCmd("pending <id>", "Show pending rewards and LP amounts of a user", 1,
		func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			var holder common.Address
			if user != "" {
				if holder, err = parseAddress("user", user); err != nil {
					return err
				}
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.FarmingResult, error) {
				return a.Farming.Pending(ctx, id, holder)
			}, show)
		})
	pendingCmd.Flags().StringVar(&user, "user", "", "User address (default: signer)")
	cmd.AddCommand(pendingCmd)

	cmd.AddCommand(opCmd("mint-reward <token> <amount>", "Mint a recorded mock token to the farming pool", 2,
		func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.FarmingResult, error) {
				return a.Farming.MintReward(ctx, args[0], args[1])
			}, show)
		}))

	type step func(*usecase.ManageFarming, context.Context, *big.Int) (*usecase.FarmingResult, error)
	for _, c := range []struct {
		use, short string
		run        step
	}{
		{"update-pool", "Update a farming pool's accounting", (*usecase.ManageFarming).UpdatePool},
		{"harvest", "Harvest the signer's rewards", (*usecase.ManageFarming).Harvest},
	} {
		run := c.run
		cmd.AddCommand(idCmd(c.use, c.short, func(ctx context.Context, a *app.App, id *big.Int) (*usecase.FarmingResult, error) {
			return run(a.Farming, ctx, id)
		}, show))
	}

	return cmd
}
