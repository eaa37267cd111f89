package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/specialistvlad/f2eflow/internal/app"
	"github.com/specialistvlad/f2eflow/internal/dag"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Execute runs the f2e command line with args. Errors are *ExitError values
// carrying the process exit code.
func Execute(ctx context.Context, args []string, outW io.Writer) error {
	root := NewRootCmd(outW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything cobra rejects before a command runs is a usage error.
	return usageError(err)
}

// NewRootCmd creates the f2e command tree.
func NewRootCmd(outW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "f2e",
		Short: "f2e builds, serves and packages a front-end project",
		Long: `f2e compiles styles, scripts and Jade pages from src/ into dist/,
serves dist/ with live reload while watching for changes, minifies the output
and archives it into a dated zip bundle.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd, outW, "default")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(outW)
	cmd.SetErr(outW)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.PersistentFlags().String("root", ".", "Project root directory.")
	cmd.PersistentFlags().String("config", "", "Settings file. Default: f2e.hcl, f2e.yaml or package.json in the root.")
	cmd.PersistentFlags().String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	cmd.PersistentFlags().String("log-format", "text", "Log output format. Options: 'text' or 'json'.")

	for _, t := range []struct{ name, short string }{
		{"default", "Build styles, scripts and pages into dist/"},
		{"minify", "Minify styles, images and scripts in dist/"},
		{"archive", "Zip dist/ into archive/{project}_{YYYYMMDD}.zip"},
	} {
		cmd.AddCommand(newTaskCmd(outW, t.name, t.short))
	}
	cmd.AddCommand(newWatchCmd(outW))
	cmd.AddCommand(newServeCmd(outW))
	cmd.AddCommand(newRunCmd(outW))
	cmd.AddCommand(newTasksCmd(outW))
	cmd.AddCommand(newVersionCmd(outW))
	return cmd
}

func newTaskCmd(outW io.Writer, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd, outW, name)
		},
	}
}

func newWatchCmd(outW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build, serve dist/ with live reload and rebuild on change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd, outW, "watch")
		},
	}
	cmd.Flags().Int("port", 0, "Server port. Overrides the settings.")
	return cmd
}

func newServeCmd(outW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dist/ with single-page-app fallback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, outW)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Serve(cmd.Context()); err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			return nil
		},
	}
	cmd.Flags().Int("port", 0, "Server port. Overrides the settings.")
	return cmd
}

func newRunCmd(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run TASK...",
		Short: "Run declared tasks by name, in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd, outW, args...)
		},
	}
}

func newTasksCmd(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List declared tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, outW)
			if err != nil {
				return err
			}
			defer a.Close()
			printTasks(cmd.OutOrStdout(), a.Tasks())
			return nil
		},
	}
}

func newVersionCmd(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(outW, "f2e %s\n", Version)
		},
	}
}

func printTasks(w io.Writer, tasks []dag.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, t := range tasks {
		deps := ""
		if len(t.Deps) > 0 {
			deps = fmt.Sprintf("%s%v", t.Mode, t.Deps)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.Description, deps)
	}
	tw.Flush()
}

// newApp builds the application from the command's flags. Configuration
// problems are usage errors.
func newApp(cmd *cobra.Command, outW io.Writer) (*app.App, error) {
	root, _ := cmd.Flags().GetString("root")
	cfgPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")
	port := 0
	if cmd.Flags().Lookup("port") != nil {
		port, _ = cmd.Flags().GetInt("port")
	}

	cfg, err := app.NewConfig(app.Config{
		Root:       root,
		ConfigPath: cfgPath,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Port:       port,
		NodeEnv:    os.Getenv("NODE_ENV"),
	})
	if err != nil {
		return nil, usageError(err)
	}
	a, err := app.NewApp(outW, cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return a, nil
}

func runTasks(cmd *cobra.Command, outW io.Writer, names ...string) error {
	a, err := newApp(cmd, outW)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Run(cmd.Context(), names...); err != nil {
		if errors.Is(err, dag.ErrUnknownTask) {
			return usageError(err)
		}
		return &ExitError{Code: 1, Message: err.Error()}
	}
	return nil
}
