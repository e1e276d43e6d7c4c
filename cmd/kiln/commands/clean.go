package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [name/version]",
		Short: "Clean the package cache, exported sources and tool caches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packages, _ := cmd.Flags().GetBool("packages")
			sources, _ := cmd.Flags().GetBool("sources")
			tools, _ := cmd.Flags().GetBool("tools")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.CleanOptions{
				Packages: packages || all,
				Sources:  sources || all,
				Tools:    tools || all,
			}
			if len(args) > 0 {
				opts = app.CleanOptions{Reference: args[0]}
			}
			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("packages", "p", false, "Clean installed packages")
	cmd.Flags().Bool("sources", false, "Clean exported sources")
	cmd.Flags().BoolP("tools", "t", false, "Clean tool resolution and environment caches")
	cmd.Flags().BoolP("all", "a", false, "Clean all caches (packages, sources and tools)")

	return cmd
}
