// Package commands implements the CLI commands for kiln.
package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Create(ctx context.Context, dir string, opts app.CreateOptions) (*domain.PackageRecord, error)
	Build(ctx context.Context, dir string, opts app.BuildOptions) (*pipeline.LibraryResult, error)
	Test(ctx context.Context, dir string, opts app.TestOptions) error
	Inspect(ctx context.Context, dir string, opts app.BuildOptions, w io.Writer) error
	Import(ctx context.Context, opts app.ImportOptions) (*domain.PackageRecord, error)
	List(ctx context.Context, name string, w io.Writer) error
	Upload(ctx context.Context, reference string, opts app.UploadOptions) (*domain.UploadResult, error)
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "Build, test and package CMake libraries from kiln.yaml recipes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newCreateCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newTestCmd())
	rootCmd.AddCommand(c.newInspectCmd())
	rootCmd.AddCommand(c.newImportCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newUploadCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("settings", "s", nil, "Override a setting (os, arch, compiler, build_type) as key=value")
	cmd.Flags().StringArrayP("options", "o", nil, "Override a recipe option (shared, fPIC) as name=true|false")
}

func addCanRunFlag(cmd *cobra.Command) {
	cmd.Flags().String("can-run", "auto", "Whether the host can run the test binary: auto, true or false")
}

func buildOptions(cmd *cobra.Command) app.BuildOptions {
	settings, _ := cmd.Flags().GetStringArray("settings")
	options, _ := cmd.Flags().GetStringArray("options")
	return app.BuildOptions{Settings: settings, Options: options}
}

func canRun(cmd *cobra.Command) (*bool, error) {
	v, _ := cmd.Flags().GetString("can-run")
	return domain.ParseCanRun(v)
}

// recipeDir returns the absolute folder named by the optional path argument.
func recipeDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "resolve recipe folder"), "path", dir)
	}
	return abs, nil
}
