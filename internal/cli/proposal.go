package cli

import (
	"context"
	"math/big"

	"github.com/shieldworks/protect/internal/app"
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewProposalCmd creates the onboard proposal command group
func NewProposalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Onboard proposal lifecycle",
	}

	show := (*render.OpsRenderer).RenderProposal

	cmd.AddCommand(opCmd("propose <name> <token> <capacity> <premium>", "Propose a new priority pool", 4,
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
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.ProposalResult, error) {
				return a.Proposals.Propose(ctx, usecase.ProposeParams{
					Name:     args[0],
					Token:    token,
					Capacity: capacity,
					Premium:  premium,
				})
			}, show)
		}))

	type step func(*usecase.ManageProposals, context.Context, *big.Int) (*usecase.ProposalResult, error)
	for _, c := range []struct {
		use, short string
		run        step
	}{
		{"start-voting", "Open voting on a proposal", (*usecase.ManageProposals).StartVoting},
		{"settle", "Settle a proposal's vote", (*usecase.ManageProposals).Settle},
		{"close", "Close a proposal", (*usecase.ManageProposals).Close},
		{"execute", "Execute a passed proposal", (*usecase.ManageProposals).Execute},
		{"get", "Read a proposal from the chain", (*usecase.ManageProposals).Get},
	} {
		run := c.run
		cmd.AddCommand(idCmd(c.use, c.short, func(ctx context.Context, a *app.App, id *big.Int) (*usecase.ProposalResult, error) {
			return run(a.Proposals, ctx, id)
		}, show))
	}

	return cmd
}
