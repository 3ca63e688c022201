package cli

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/app"
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewTokenCmd creates the mock token command group
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint, approve and inspect protocol tokens",
	}

	show := (*render.OpsRenderer).RenderToken

	type task func(*usecase.ManageTokens, context.Context) (*usecase.TokenResult, error)
	fixed := func(use, short string, run task) *cobra.Command {
		return opCmd(use, short, 0, func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.TokenResult, error) {
				return run(a.Tokens, ctx)
			}, show)
		})
	}

	mint := &cobra.Command{Use: "mint", Short: "Mint mock tokens"}
	mint.AddCommand(
		fixed("deg", "Mint "+usecase.MintDEGAmount+" MockDEG to the signer", (*usecase.ManageTokens).MintDEG),
		fixed("shield", "Mint "+usecase.MintShieldAmount+" MockShield to the signer", (*usecase.ManageTokens).MintShield),
		fixed("erc20", "Mint "+usecase.MintERC20Amount+" MockERC20 to the signer", (*usecase.ManageTokens).MintERC20),
		fixed("usdc", "Mint "+usecase.MintUSDCAmount+" MockUSDC to the mock exchange", (*usecase.ManageTokens).MintUSDC),
	)
	cmd.AddCommand(mint)

	approve := &cobra.Command{Use: "approve", Short: "Approve the policy center"}
	approve.AddCommand(
		fixed("shield", "Let the policy center spend the signer's MockShield", (*usecase.ManageTokens).ApproveShield),
		fixed("pro-lp", "Let the policy center spend the signer's protection pool LP tokens", (*usecase.ManageTokens).ApproveProLP),
		opCmd("pool-token <token>", "Whitelist a pool token in the policy center", 1, func(cmd *cobra.Command, args []string) error {
			token, err := parseAddress("token", args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.TokenResult, error) {
				return a.Tokens.ApprovePoolToken(ctx, token)
			}, show)
		}),
	)
	cmd.AddCommand(approve)

	var holder string
	balance := opCmd("balance <token>", "Show a balance of a token given by registry name or address", 1,
		func(cmd *cobra.Command, args []string) error {
			var h common.Address
			if holder != "" {
				var err error
				if h, err = parseAddress("holder", holder); err != nil {
					return err
				}
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.TokenResult, error) {
				return a.Tokens.Balance(ctx, args[0], h)
			}, show)
		})
	balance.Flags().StringVar(&holder, "holder", "", "Holder address (default: signer)")
	cmd.AddCommand(balance)

	return cmd
}
