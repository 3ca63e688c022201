package cli

import (
	"context"
	"fmt"

	"github.com/shieldworks/protect/internal/app"
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewPolicyCmd creates the policy center command group
func NewPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Cover purchases, payouts and price oracles",
	}

	show := (*render.OpsRenderer).RenderPolicy

	cmd.AddCommand(opCmd("buy-cover <pool-id> <amount> <months> <max-payment>", "Buy cover on a priority pool", 4,
		func(cmd *cobra.Command, args []string) error {
			poolID, err := parseID("pool id", args[0])
			if err != nil {
				return err
			}
			months, err := parseID("months", args[2])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PolicyResult, error) {
				return a.Policy.BuyCover(ctx, usecase.BuyCoverParams{
					PoolID:     poolID,
					Amount:     args[1],
					Months:     months,
					MaxPayment: args[3],
				})
			}, show)
		}))

	cmd.AddCommand(opCmd("claim-payout <pool-id> <expiry> <generation>", "Claim the payout of a cover right token", 3,
		func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("argument", args)
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PolicyResult, error) {
				crToken, err := a.Policy.CoverRightToken(ctx, ids[0], ids[1], ids[2])
				if err != nil {
					return nil, err
				}
				return a.Policy.ClaimPayout(ctx, ids[0], crToken, ids[2])
			}, show)
		}))

	cmd.AddCommand(opCmd("crtoken <pool-id> <expiry> <generation>", "Look up a cover right token", 3,
		func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("argument", args)
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PolicyResult, error) {
				token, err := a.Policy.CoverRightToken(ctx, ids[0], ids[1], ids[2])
				if err != nil {
					return nil, err
				}
				return &usecase.PolicyResult{Metrics: []usecase.Field{{Name: "crToken", Value: token.Hex()}}}, nil
			}, show)
		}))

	cmd.AddCommand(opCmd("set-exchange <token> <exchange>", "Point the policy center's exchange for a token", 2,
		func(cmd *cobra.Command, args []string) error {
			token, err := parseAddress("token", args[0])
			if err != nil {
				return err
			}
			exchange, err := parseAddress("exchange", args[1])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PolicyResult, error) {
				return a.Policy.SetExchange(ctx, token, exchange)
			}, show)
		}))

	cmd.AddCommand(opCmd("price-feed <name>", "Read a DEX price feed by token name", 1,
		func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PolicyResult, error) {
				return a.Policy.PriceFeed(ctx, args[0])
			}, show)
		}))

	cmd.AddCommand(newOracleCmd(show))

	return cmd
}

func newOracleCmd(show func(*render.OpsRenderer, *usecase.PolicyResult) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Price oracle type per token",
	}

	cmd.AddCommand(opCmd("get <token>", "Show the oracle type used for a token", 1,
		func(cmd *cobra.Command, args []string) error {
			token, err := parseAddress("token", args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PolicyResult, error) {
				return a.Policy.OracleType(ctx, token)
			}, show)
		}))

	cmd.AddCommand(opCmd("set <token> <chainlink|dex>", "Select the oracle used for a token", 2,
		func(cmd *cobra.Command, args []string) error {
			token, err := parseAddress("token", args[0])
			if err != nil {
				return err
			}
			var oracleType int64
			switch args[1] {
			case "chainlink", "0":
				oracleType = usecase.OracleChainlink
			case "dex", "1":
				oracleType = usecase.OracleDEX
			default:
				return fmt.Errorf("invalid oracle type %q: expected chainlink or dex", args[1])
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.PolicyResult, error) {
				return a.Policy.SetOracleType(ctx, token, oracleType)
			}, show)
		}))

	return cmd
}
