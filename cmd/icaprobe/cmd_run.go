package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/icaprobe/decomposition"
	"github.com/YuminosukeSato/icaprobe/fetch"
	"github.com/YuminosukeSato/icaprobe/pkg/errors"
	"github.com/YuminosukeSato/icaprobe/pkg/log"
	"github.com/YuminosukeSato/icaprobe/probe"
)

// Exit codes.
const (
	exitGood       = 0
	exitNotOptimal = 1
	exitError      = 2
)

// tokenEnv supplies the credential token when --token is not given.
const tokenEnv = "ICAPROBE_TOKEN"

type runOptions struct {
	input         string
	token         string
	maxComponents int
	seed          int64
	maxIter       int
	tol           float64
	plotDir       string
	logLevel      string
}

// execute runs the CLI and returns the process exit code. Failures before
// the run (flags, log level, unreadable input) still print an outcome.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := exitError
	root := newRootCmd(stdin, stdout, stderr, &code)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		if errors.KindOf(err) == errors.KindUnknown {
			err = errors.NewConfigurationError(probe.ReasonInvalidInput, "%v", err)
		}
		_ = writeOutcome(stdout, probe.FailureOutcome(err))
		return exitError
	}
	return code
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer, code *int) *cobra.Command {
	root := &cobra.Command{
		Use:           "icaprobe",
		Short:         "Dataset independence evaluation gate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newRunCmd(code))
	return root
}

func newRunCmd(code *int) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch a dataset artifact, decompose it with FastICA and score the components",
		Long: `Reads the probe input (YAML or JSON with "config" and "credential" sections),
fetches the dataset artifact, runs the evaluation and prints the outcome JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := runProbe(cmd, opts)
			if err != nil {
				return err
			}
			*code = c
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "probe input file, - for stdin")
	f.StringVar(&opts.token, "token", "", "credential token (default $"+tokenEnv+", then credential.token)")
	f.IntVar(&opts.maxComponents, "max-components", probe.DefaultMaxComponents, "maximum number of independent components")
	f.Int64Var(&opts.seed, "seed", 0, "FastICA random seed, negative for a time-based seed")
	f.IntVar(&opts.maxIter, "max-iter", decomposition.DefaultMaxIter, "FastICA iteration cap")
	f.Float64Var(&opts.tol, "tol", decomposition.DefaultTol, "FastICA convergence tolerance")
	f.StringVar(&opts.plotDir, "plot-dir", "", "write component histograms to this directory")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runProbe(cmd *cobra.Command, opts *runOptions) (int, error) {
	if err := log.SetupLogger(opts.logLevel, cmd.ErrOrStderr()); err != nil {
		return exitError, errors.NewConfigurationError(probe.ReasonInvalidConfig,
			"Invalid log level '%s'.", opts.logLevel)
	}

	raw, err := readInput(cmd.InOrStdin(), opts.input)
	if err != nil {
		return exitError, errors.NewConfigurationError(probe.ReasonInvalidInput,
			"Probe input cannot be read: %v", err)
	}

	token := opts.token
	if token == "" {
		token = os.Getenv(tokenEnv)
	}

	p := probe.New(fetch.NewRouter(),
		probe.WithLogger(log.GetLoggerWithName("probe")),
		probe.WithMaxComponents(opts.maxComponents),
		probe.WithSeed(opts.seed),
		probe.WithMaxIter(opts.maxIter),
		probe.WithTol(opts.tol),
		probe.WithPlotDir(opts.plotDir),
		probe.WithToken(token),
	)
	out := p.Run(cmd.Context(), raw)

	if err := writeOutcome(cmd.OutOrStdout(), out); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return exitError, nil
	}
	return exitCode(out), nil
}

func writeOutcome(w io.Writer, out *probe.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func exitCode(out *probe.Outcome) int {
	switch out.IntegerResult {
	case probe.ResultTrue:
		return exitGood
	case probe.ResultFalse:
		return exitNotOptimal
	default:
		return exitError
	}
}
