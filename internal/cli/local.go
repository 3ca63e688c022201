package cli

import (
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/spf13/cobra"
)

// NewLocalCmd creates the local network command group
func NewLocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Local test network helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "prepare",
		Short: "Fund mocks, wire contracts and create a test pool",
		Long: `Bring a freshly deployed test network to a usable state: mint mock USDC to
the mock exchange, reconcile wiring, mint the mock tokens to the signer and
deploy a test priority pool. Refuses to run on production networks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, runErr := app.PrepareLocal.Run(cmd.Context())
			if result == nil {
				return runErr
			}
			if err := output(cmd, app, result, func() error {
				return render.NewOpsRenderer(cmd.OutOrStdout(), useColor()).RenderPrepare(result, runErr)
			}); err != nil {
				return err
			}
			return runErr
		},
	})

	return cmd
}
