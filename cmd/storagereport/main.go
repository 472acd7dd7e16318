package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

// usageError marks bad invocations, which exit with exitUsage instead of
// exitRuntime.
type usageError struct {
	err   error
	usage string
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	if os.Getenv("STORAGEREPORT_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCommand(stdin, stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if ue.usage != "" {
			fmt.Fprint(stderr, ue.usage)
		}
		return exitUsage
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitRuntime
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts reportOptions

	root := &cobra.Command{
		Use:   "storagereport",
		Short: "Summarize storage usage by user and by storage node.",
		Long: "storagereport reads DATACENTER HOST CATEGORY SUBJECT COUNT records from standard input,\n" +
			"totals them per user and per storage node, resolves user identifiers to logins and\n" +
			"prints a two-section report.",
		Args:          noArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.topSet = cmd.Flags().Changed("top")
			opts.gaugesSet = cmd.Flags().Changed("gauges")
			if opts.topSet && opts.top <= 0 {
				return usageError{err: fmt.Errorf("--top must be positive, got %d", opts.top), usage: cmd.UsageString()}
			}
			return runReport(cmd.Context(), opts, stdin, stdout, stderr)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError{err: err, usage: c.UsageString()}
	})

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a JSON or YAML config file")
	addReportFlags(root.Flags(), &opts)
	root.AddCommand(newVersionCommand())
	root.AddCommand(newConfigCommand(&opts.configPath))
	return root
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError{err: fmt.Errorf("unexpected argument %q for %q", args[0], cmd.CommandPath()), usage: cmd.UsageString()}
	}
	return nil
}

func addReportFlags(fs *pflag.FlagSet, opts *reportOptions) {
	fs.BoolVarP(&opts.noResolve, "no-resolve", "n", false, "do not resolve user identifiers to logins")
	fs.IntVar(&opts.top, "top", 0, "number of users to list (default from config, 30)")
	fs.BoolVar(&opts.gauges, "gauges", false, "append a usage gauge to each node row")
}
