package cli

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shieldworks/protect/internal/app"
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// runOp runs one operational task and renders its result.
func runOp[T any](
	cmd *cobra.Command,
	op func(ctx context.Context, a *app.App) (T, error),
	show func(r *render.OpsRenderer, result T) error,
) error {
	a, err := getApp(cmd)
	if err != nil {
		return err
	}
	result, err := op(cmd.Context(), a)
	if err != nil {
		return err
	}
	return output(cmd, a, result, func() error {
		return show(render.NewOpsRenderer(cmd.OutOrStdout(), useColor()), result)
	})
}

// opCmd builds a leaf command whose positional arguments are all required.
func opCmd(use, short string, nargs int, run func(cmd *cobra.Command, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE:  run,
	}
}

func parseID(name, s string) (*big.Int, error) {
	v, err := usecase.ParseUint(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func parseIDs(name string, values []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, s := range values {
		v, err := parseID(name, s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid %s: %w: %q", name, domain.ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// idCmd builds a command that takes a single numeric id.
func idCmd[T any](use, short string, op func(ctx context.Context, a *app.App, id *big.Int) (T, error), show func(*render.OpsRenderer, T) error) *cobra.Command {
	return opCmd(use+" <id>", short, 1, func(cmd *cobra.Command, args []string) error {
		id, err := parseID("id", args[0])
		if err != nil {
			return err
		}
		return runOp(cmd, func(ctx context.Context, a *app.App) (T, error) {
			return op(ctx, a, id)
		}, show)
	})
}
