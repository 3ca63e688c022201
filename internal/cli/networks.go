package cli

import (
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List configured networks",
		Long: `List every known network with its chain id, RPC source and signer.

Networks come from the built-in defaults and the [networks] section of protect.toml.
A network whose required environment variables are missing is marked as unusable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{})
			if err != nil {
				return err
			}

			return output(cmd, app, result, func() error {
				return render.NewNetworksRenderer(cmd.OutOrStdout(), useColor()).RenderNetworksList(result)
			})
		},
	}

	return cmd
}
