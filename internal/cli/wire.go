package cli

import (
	"fmt"

	"github.com/shieldworks/protect/internal/adapters/wiring"
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewWireCmd creates the wire command group
func NewWireCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wire",
		Short: "Reconcile cross-contract references",
		Long: `Read every cross-contract reference of the wiring graph and set the ones
that differ from the registry. References already in sync cost no transaction,
so wiring can be run any number of times.`,
	}

	cmd.AddCommand(newWireRunCmd("sync", "Send the setters for every drifted reference", false))
	cmd.AddCommand(newWireRunCmd("plan", "Report drift without sending transactions", true))
	cmd.AddCommand(newWireGraphCmd())

	return cmd
}

func newWireRunCmd(use, short string, planOnly bool) *cobra.Command {
	var contracts []string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			report, runErr := app.ReconcileWiring.Execute(cmd.Context(), usecase.WiringParams{
				PlanOnly:  planOnly,
				Contracts: contracts,
			})
			if report == nil {
				return runErr
			}

			if err := output(cmd, app, report, func() error {
				return render.NewWiringRenderer(cmd.OutOrStdout(), useColor()).RenderReport(report, runErr)
			}); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringSliceVar(&contracts, "contracts", nil, "Only reconcile references owned by these contracts")

	return cmd
}

func newWireGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the effective wiring graph as YAML",
		Long: `Print the wiring graph in the format read from the wiring_graph file.
Redirect the output to start a custom graph from the built-in one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			graph, err := app.ReconcileWiring.Graph(cmd.Context())
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return render.PrintJSON(cmd.OutOrStdout(), graph)
			}

			data, err := wiring.EncodeGraph(graph)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
