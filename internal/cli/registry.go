package cli

import (
	"fmt"
	"strings"

	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/spf13/cobra"
)

// NewRegistryCmd creates the registry command group
func NewRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and edit the address registry",
	}

	cmd.AddCommand(newRegistryShowCmd())
	cmd.AddCommand(newRegistryInitCmd())
	cmd.AddCommand(newRegistrySetCmd())
	cmd.AddCommand(newRegistryWatchCmd())

	return cmd
}

func kindNames() string {
	names := make([]string, len(domain.RecordKinds))
	for i, k := range domain.RecordKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func newRegistryShowCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show [kind]",
		Short: "Show a registry document (default: addresses)",
		Long:  "Show a registry document. Kinds: " + kindNames() + ".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			kind := domain.KindAddresses
			if len(args) == 1 {
				if kind, err = domain.ParseRecordKind(args[0]); err != nil {
					return err
				}
			}

			params := usecase.ShowRegistryParams{Kind: kind}
			if !all {
				params.Network = app.Config.NetworkName()
			}
			result, err := app.ShowRegistry.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return output(cmd, app, result, func() error {
				return render.NewRegistryRenderer(cmd.OutOrStdout(), useColor()).RenderShow(result)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Show every network instead of the selected one")

	return cmd
}

func newRegistryInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [kind...]",
		Short: "Create empty registry documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.InitRegistryParams{Force: force}
			for _, arg := range args {
				kind, err := domain.ParseRecordKind(arg)
				if err != nil {
					return err
				}
				params.Kinds = append(params.Kinds, kind)
			}

			result, err := app.InitRegistry.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return output(cmd, app, result, func() error {
				return render.NewRegistryRenderer(cmd.OutOrStdout(), useColor()).RenderInit(result)
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing documents")

	return cmd
}

func newRegistrySetCmd() *cobra.Command {
	var (
		implementation bool
		remove         bool
	)

	cmd := &cobra.Command{
		Use:   "set <contract> [address]",
		Short: "Record or remove a contract address by hand",
		Example: `  protect registry set MockUSDC 0x5FbDB2315678afecb367f032d93F642f64180aa3 -n localhost
  protect registry set PolicyCenter --implementation 0x... -n goerli
  protect registry set OldPool --delete -n goerli`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.SetRegistryEntryParams{
				Kind:    domain.KindAddresses,
				Network: app.Config.NetworkName(),
				Name:    args[0],
				Delete:  remove,
			}
			if implementation {
				params.Kind = domain.KindImplementations
			}
			switch {
			case remove && len(args) == 2:
				return fmt.Errorf("--delete takes no address")
			case !remove && len(args) < 2:
				return fmt.Errorf("address is required")
			case !remove:
				params.Address = args[1]
			}

			result, err := app.SetRegistryEntry.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return output(cmd, app, result, func() error {
				return render.NewRegistryRenderer(cmd.OutOrStdout(), useColor()).RenderSet(result)
			})
		},
	}

	cmd.Flags().BoolVar(&implementation, "implementation", false, "Edit the implementation document instead of addresses")
	cmd.Flags().BoolVar(&remove, "delete", false, "Remove the entry")

	return cmd
}

func newRegistryWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print registry document changes as they happen",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			renderer := render.NewRegistryRenderer(cmd.OutOrStdout(), useColor())
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", app.Store.Dir())
			return app.WatchRegistry.Run(cmd.Context(), func(change usecase.RegistryChange) {
				if app.Config.JSON {
					_ = render.PrintJSON(cmd.OutOrStdout(), change)
					return
				}
				renderer.RenderChange(change)
			})
		},
	}
}
