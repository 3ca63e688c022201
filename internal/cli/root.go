package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/shieldworks/protect/internal/app"
	"github.com/shieldworks/protect/internal/cli/render"
	"github.com/shieldworks/protect/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// commands that run without a project or an app
var standalone = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
}

// lifecycle holds what a command run acquired and releases it once, in reverse order.
type lifecycle struct {
	mu      sync.Mutex
	closers []func() error
}

func (l *lifecycle) onRelease(fn func() error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closers = append(l.closers, fn)
}

func (l *lifecycle) release() error {
	l.mu.Lock()
	closers := l.closers
	l.closers = nil
	l.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	return errors.Join(errs...)
}

// Execute runs the command line. The app is released even when the command fails.
func Execute() error {
	rootCmd, lc := newRootCmd()
	return execute(rootCmd, lc)
}

func execute(rootCmd *cobra.Command, lc *lifecycle) error {
	err := rootCmd.Execute()
	return errors.Join(err, lc.release())
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd, _ := newRootCmd()
	return rootCmd
}

func newRootCmd() (*cobra.Command, *lifecycle) {
	lc := &lifecycle{}

	rootCmd := &cobra.Command{
		Use:   "protect",
		Short: "Deployment and operations harness for the protection protocol",
		Long: `Protect deploys the protection protocol contracts in dependency order,
keeps a per-network address registry, reconciles cross-contract wiring and
runs the day-to-day protocol tasks against any configured network.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if standalone[cmd.Name()] {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				// networks and registry init are useful before a project exists
				if cmd.Name() != "networks" && cmd.Name() != "init" {
					return err
				}
				projectRoot = "."
			}

			v := config.SetupViper(projectRoot)
			bindGlobalFlags(v, cmd)

			appInstance, appCleanup, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			lc.onRelease(func() error {
				appCleanup()
				return nil
			})

			if err := appInstance.Store.Open(cmd.Context()); err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				lc.onRelease(func() error {
					cancel()
					return nil
				})
			}
			// flush with a fresh context so a timed-out or failed run still persists what it recorded
			lc.onRelease(func() error {
				return appInstance.Store.Close(context.Background())
			})
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return lc.release()
		},
	}

	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., localhost, goerli, mainnet)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Abort the command after this long (default from config)")
	rootCmd.PersistentFlags().String("registry-dir", "", "Directory holding the registry documents")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "operations",
		Title: "Protocol Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, cmd := range []*cobra.Command{
		NewDeployCmd(),
		NewWireCmd(),
		NewLocalCmd(),
	} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewProposalCmd(),
		NewReportCmd(),
		NewPoolCmd(),
		NewFarmingCmd(),
		NewTokenCmd(),
		NewPolicyCmd(),
	} {
		cmd.GroupID = "operations"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewRegistryCmd(),
		NewNetworksCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd, lc
}

// globalFlagKeys maps global flags to their viper keys
var globalFlagKeys = map[string]string{
	"network":         "network",
	"debug":           "debug",
	"non-interactive": "non_interactive",
	"json":            "json",
	"timeout":         "timeout",
	"registry-dir":    "registry_dir",
}

// bindGlobalFlags binds command flags to viper
func bindGlobalFlags(v *viper.Viper, cmd *cobra.Command) {
	// Visit only walks flags that have been changed
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := globalFlagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// output prints result as JSON when --json is set, otherwise through the renderer.
func output(cmd *cobra.Command, a *app.App, result any, human func() error) error {
	if a.Config.JSON {
		return render.PrintJSON(cmd.OutOrStdout(), result)
	}
	return human()
}

func useColor() bool {
	return !color.NoColor
}
