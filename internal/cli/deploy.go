package cli

import (
	"errors"
	"fmt"

	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewDeployCmd creates the deploy command group
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy protocol contracts in dependency order",
		Long: `Deploy the protocol contracts of the selected network.

Units already recorded in the registry are skipped, so a run can be repeated
safely. Selections accept unit names and tags; dependencies of a selected unit
must already be recorded or be part of the same run.`,
	}

	cmd.AddCommand(newDeployRunCmd())
	cmd.AddCommand(newDeployPlanCmd())
	cmd.AddCommand(newDeployUnitsCmd())
	cmd.AddCommand(newDeployStatusCmd())

	return cmd
}

func newDeployRunCmd() *cobra.Command {
	var params usecase.DeployParams

	cmd := &cobra.Command{
		Use:   "run [unit|tag...]",
		Short: "Run the deployment",
		Example: `  protect deploy run -n localhost
  protect deploy run PolicyCenter --upgrade PolicyCenter -n goerli
  protect deploy run --resume -n goerli`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params.Select = append(params.Select, args...)
			result, runErr := app.DeploySequence.Execute(cmd.Context(), params)
			if result == nil {
				return runErr
			}

			if err := output(cmd, app, result, func() error {
				return render.NewDeployRenderer(cmd.OutOrStdout(), useColor()).RenderResult(result, runErr)
			}); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringSliceVar(&params.Select, "select", nil, "Units or tags to deploy (default: all)")
	cmd.Flags().StringSliceVar(&params.Redeploy, "redeploy", nil, "Units to deploy again even when recorded")
	cmd.Flags().StringSliceVar(&params.Upgrade, "upgrade", nil, "Proxied units to upgrade behind their existing proxy")
	cmd.Flags().BoolVar(&params.DryRun, "dry-run", false, "Plan and pre-flight without sending transactions")
	cmd.Flags().BoolVar(&params.Resume, "resume", false, "Resume the last failed run on this network")

	return cmd
}

func newDeployPlanCmd() *cobra.Command {
	var params usecase.PlanParams

	cmd := &cobra.Command{
		Use:   "plan [unit|tag...]",
		Short: "Show the ordered deployment plan without touching the chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params.Network = app.Config.NetworkName()
			params.Select = append(params.Select, args...)
			plan, err := app.PlanDeployment.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return output(cmd, app, plan, func() error {
				return render.NewDeployRenderer(cmd.OutOrStdout(), useColor()).RenderPlan(plan)
			})
		},
	}

	cmd.Flags().StringSliceVar(&params.Select, "select", nil, "Units or tags to plan (default: all)")
	cmd.Flags().StringSliceVar(&params.Redeploy, "redeploy", nil, "Units to deploy again even when recorded")
	cmd.Flags().StringSliceVar(&params.Upgrade, "upgrade", nil, "Proxied units to upgrade")

	return cmd
}

func newDeployUnitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List the deploy units that apply to the network",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			catalog := app.PlanDeployment.Catalog()
			return output(cmd, app, catalog, func() error {
				return render.NewDeployRenderer(cmd.OutOrStdout(), useColor()).RenderUnits(catalog, app.Config.NetworkName())
			})
		},
	}
}

func newDeployStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the last deployment run on the network",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			state, err := app.DeploySequence.LoadState(app.Config.NetworkName())
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No deployment run recorded on", app.Config.NetworkName())
				return nil
			}
			if err != nil {
				return err
			}

			return output(cmd, app, state, func() error {
				return render.NewDeployRenderer(cmd.OutOrStdout(), useColor()).RenderRunState(state)
			})
		},
	}
}
