package cli

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shieldworks/protect/internal/app"
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewReportCmd creates the incident report command group
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Incident report lifecycle",
	}

	show := (*render.OpsRenderer).RenderReport

	cmd.AddCommand(opCmd("new <pool-id> <payout>", "File an incident report against a pool", 2,
		func(cmd *cobra.Command, args []string) error {
			poolID, err := parseID("pool id", args[0])
			if err != nil {
				return err
			}
			payout, err := parseID("payout", args[1])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.ReportResult, error) {
				return a.Reports.Report(ctx, poolID, payout)
			}, show)
		}))

	cmd.AddCommand(opCmd("vote <id> <for|against> <amount>", "Vote on a report with vote-escrowed tokens", 3,
		func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			var choice int64
			switch args[1] {
			case "for", "1":
				choice = usecase.VoteFor
			case "against", "2":
				choice = usecase.VoteAgainst
			default:
				return fmt.Errorf("invalid vote choice %q: expected for or against", args[1])
			}
			amount, err := usecase.ParseAmount(args[2], usecase.DecimalsGovernance)
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.ReportResult, error) {
				return a.Reports.Vote(ctx, id, choice, amount)
			}, show)
		}))

	cmd.AddCommand(opCmd("set-quorum <ratio>", "Set the quorum ratio of report votes", 1,
		func(cmd *cobra.Command, args []string) error {
			ratio, err := parseID("ratio", args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.ReportResult, error) {
				return a.Reports.SetQuorum(ctx, ratio)
			}, show)
		}))

	cmd.AddCommand(opCmd("reported <pool-id>", "Check whether a pool is currently reported", 1,
		func(cmd *cobra.Command, args []string) error {
			poolID, err := parseID("pool id", args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, func(ctx context.Context, a *app.App) (*usecase.ReportResult, error) {
				return a.Reports.Reported(ctx, poolID)
			}, show)
		}))

	type step func(*usecase.ManageReports, context.Context, *big.Int) (*usecase.ReportResult, error)
	for _, c := range []struct {
		use, short string
		run        step
	}{
		{"start-voting", "Open voting on a report", (*usecase.ManageReports).StartVoting},
		{"settle", "Settle a report's vote", (*usecase.ManageReports).Settle},
		{"close", "Close a report", (*usecase.ManageReports).Close},
		{"unpause", "Unpause the pools paused by a report", (*usecase.ManageReports).Unpause},
		{"execute", "Execute a passed report", (*usecase.ManageReports).Execute},
		{"get", "Read a report from the chain", (*usecase.ManageReports).Get},
	} {
		run := c.run
		cmd.AddCommand(idCmd(c.use, c.short, func(ctx context.Context, a *app.App, id *big.Int) (*usecase.ReportResult, error) {
			return run(a.Reports, ctx, id)
		}, show))
	}

	return cmd
}
