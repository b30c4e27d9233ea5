// Package commands implements the command line interface of pyrun.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/pyrun/internal/app"
	"go.trai.ch/pyrun/internal/build"
	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for pyrun.
type CLI struct {
	app          Application
	rootCmd      *cobra.Command
	logFormatter func(json bool)
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, name string, args []string, opts app.RunOptions) error
	ListTargets(ctx context.Context, opts app.RunOptions) ([]string, error)
}

// Option configures a CLI.
type Option func(*CLI)

// WithLogFormatter sets the function called with the --log-format choice.
func WithLogFormatter(fn func(json bool)) Option {
	return func(c *CLI) {
		c.logFormatter = fn
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	c := &CLI{app: a}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd := &cobra.Command{
		Use:   "pyrun [flags] [VAR=value...] [target] [args...]",
		Short: "Run the build targets of a Python project",
		Long: "pyrun runs the named target of the project build description after its dependencies.\n" +
			"Without a target it lists the available targets. Arguments after the target are\n" +
			"passed to its commands as positional parameters.",
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           build.Version,
		RunE:              c.runRoot,
		ValidArgsFunction: c.completeTargets,
	}
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.Flags()
	flags.StringP("config", "c", "", "Path to the build description (default: discovered from the directory)")
	flags.StringP("directory", "C", "", "Run as if pyrun was started in this directory")
	flags.BoolP("dry-run", "n", false, "Print the commands without running them")
	flags.BoolP("silent", "s", false, "Do not echo commands before running them")
	flags.String("log-format", "pretty", "Log format: pretty or json")
	flags.String("progress", "auto", "Progress output: auto, linear or none")

	c.rootCmd = rootCmd
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

func (c *CLI) runRoot(cmd *cobra.Command, args []string) error {
	if err := c.applyLogFormat(cmd); err != nil {
		return err
	}

	opts := runOptions(cmd)
	overrides, rest := splitOverrides(args)
	opts.Overrides = overrides

	var name string
	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}
	return c.app.Run(cmd.Context(), name, rest, opts)
}

func (c *CLI) applyLogFormat(cmd *cobra.Command) error {
	format, _ := cmd.Flags().GetString("log-format")
	var json bool
	switch format {
	case "pretty":
	case "json":
		json = true
	default:
		return zerr.With(zerr.Wrap(domain.ErrInvalidLogFormat, "invalid flag"), "format", format)
	}
	if c.logFormatter != nil {
		c.logFormatter(json)
	}
	return nil
}

func (c *CLI) completeTargets(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if _, rest := splitOverrides(args); len(rest) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	names, err := c.app.ListTargets(cmd.Context(), runOptions(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func runOptions(cmd *cobra.Command) app.RunOptions {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	dir, _ := flags.GetString("directory")
	dryRun, _ := flags.GetBool("dry-run")
	silent, _ := flags.GetBool("silent")
	progress, _ := flags.GetString("progress")

	return app.RunOptions{
		Dir:        dir,
		ConfigPath: configPath,
		DryRun:     dryRun,
		Silent:     silent,
		Progress:   progress,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	}
}

// splitOverrides takes the leading VAR=value arguments off args.
func splitOverrides(args []string) (map[string]string, []string) {
	var overrides map[string]string
	for len(args) > 0 {
		key, value, ok := strings.Cut(args[0], "=")
		if !ok || !domain.IsValidVariableName(key) {
			break
		}
		if overrides == nil {
			overrides = make(map[string]string)
		}
		overrides[key] = value
		args = args[1:]
	}
	return overrides, args
}
