package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [path]",
		Short: "Export, build and package the recipe, then run its test package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := recipeDir(args)
			if err != nil {
				return err
			}
			run, err := canRun(cmd)
			if err != nil {
				return err
			}
			noTest, _ := cmd.Flags().GetBool("no-test")

			_, err = c.app.Create(cmd.Context(), dir, app.CreateOptions{
				BuildOptions: buildOptions(cmd),
				CanRun:       run,
				NoTest:       noTest,
			})
			return err
		},
	}
	addBuildFlags(cmd)
	addCanRunFlag(cmd)
	cmd.Flags().Bool("no-test", false, "Skip the test package")
	return cmd
}

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Build the recipe in place without packaging it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := recipeDir(args)
			if err != nil {
				return err
			}
			_, err = c.app.Build(cmd.Context(), dir, buildOptions(cmd))
			return err
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func (c *CLI) newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [path]",
		Short: "Build and run the test package against a cached package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := recipeDir(args)
			if err != nil {
				return err
			}
			run, err := canRun(cmd)
			if err != nil {
				return err
			}
			ref, _ := cmd.Flags().GetString("reference")
			settings, _ := cmd.Flags().GetStringArray("settings")
			options, _ := cmd.Flags().GetStringArray("options")

			return c.app.Test(cmd.Context(), dir, app.TestOptions{
				Reference: ref,
				Settings:  settings,
				Options:   options,
				CanRun:    run,
			})
		},
	}
	cmd.Flags().StringArrayP("settings", "s", nil, "Override a setting (os, arch, compiler, build_type) as key=value")
	cmd.Flags().StringArrayP("options", "o", nil, "Select the tested binary by option (shared, fPIC) as name=true|false")
	cmd.Flags().StringP("reference", "r", "", "Tested package as name/version (default: resolved from git)")
	addCanRunFlag(cmd)
	return cmd
}

func (c *CLI) newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Print the effective attributes of the recipe",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := recipeDir(args)
			if err != nil {
				return err
			}
			return c.app.Inspect(cmd.Context(), dir, buildOptions(cmd), cmd.OutOrStdout())
		},
	}
	addBuildFlags(cmd)
	return cmd
}
