package cli

import (
	"fmt"

	"github.com/shieldworks/protect/internal/config"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of protect",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "protect version %s (%s, %s)\n", config.Version, config.Commit, config.Date)
		},
	}
}
