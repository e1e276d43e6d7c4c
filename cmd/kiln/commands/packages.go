package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
)

func (c *CLI) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <name/version> <prefix>",
		Short: "Register an existing install prefix as a package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			packageType, _ := cmd.Flags().GetString("type")
			libs, _ := cmd.Flags().GetStringSlice("lib")
			description, _ := cmd.Flags().GetString("description")

			_, err := c.app.Import(cmd.Context(), app.ImportOptions{
				Reference:   args[0],
				Prefix:      args[1],
				PackageType: packageType,
				Description: description,
				Libs:        libs,
			})
			return err
		},
	}
	cmd.Flags().String("type", domain.PackageTypeLibrary, "Package type: library or header-library")
	cmd.Flags().StringSlice("lib", nil, "Library name exposed by the package (repeatable)")
	cmd.Flags().String("description", "", "Package description")
	return cmd
}

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [name]",
		Short: "List packages in the local cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return c.app.List(cmd.Context(), name, cmd.OutOrStdout())
		},
	}
}

func (c *CLI) newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <name/version>",
		Short: "Push a cached package to an OCI registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _ := cmd.Flags().GetStringArray("settings")
			options, _ := cmd.Flags().GetStringArray("options")
			registry, _ := cmd.Flags().GetString("registry")
			repository, _ := cmd.Flags().GetString("repository")
			plainHTTP, _ := cmd.Flags().GetBool("plain-http")
			insecure, _ := cmd.Flags().GetBool("insecure")

			res, err := c.app.Upload(cmd.Context(), args[0], app.UploadOptions{
				Settings: settings,
				Options:  options,
				Target: domain.UploadTarget{
					Registry:   registry,
					Repository: repository,
					PlainHTTP:  plainHTTP,
					Insecure:   insecure,
				},
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s\n", res.Reference, res.Digest)
			return err
		},
	}
	cmd.Flags().StringArrayP("settings", "s", nil, "Override a setting (os, arch, compiler, build_type) as key=value")
	cmd.Flags().StringArrayP("options", "o", nil, "Select the binary by option (shared, fPIC) as name=true|false")
	cmd.Flags().String("registry", "", "Registry host, e.g. ghcr.io")
	cmd.Flags().String("repository", "", "Repository path (default: package name)")
	cmd.Flags().Bool("plain-http", false, "Use HTTP instead of HTTPS")
	cmd.Flags().Bool("insecure", false, "Skip TLS certificate verification")
	_ = cmd.MarkFlagRequired("registry")
	return cmd
}
