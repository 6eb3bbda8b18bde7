package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Morrolan/testr/internal/config"
	"github.com/Morrolan/testr/internal/dashboard"
	"github.com/Morrolan/testr/internal/errors"
	"github.com/Morrolan/testr/internal/tui/run"
)

const (
	defaultLogFile = ".testr.log"
	stateRoot      = "."

	msgReusing = "Reusing saved filters/paths from the last run."
	msgNoSaved = "No saved filters found; running with provided/default values."
)

// errReported is returned by commands that already told the user what went
// wrong; main exits non-zero without printing it again.
var errReported = errors.New("reported")

var (
	runDashboard = func(cfg config.RunConfig, log logrus.FieldLogger) error {
		return run.Run(dashboard.Options{Config: cfg, Log: log})
	}
	stdoutIsTerminal = func() bool {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	keyword    string
	markers    string
	extra      []string
	useLast    bool
	saveLast   bool
	forgetLast bool
	logFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "testr [targets...]",
		Short: "Live dashboard for go test",
		Long: "testr runs go test in the background and shows progress, grouped failures\n" +
			"and their output in a terminal dashboard. Targets are package patterns or\n" +
			"node ids such as ./pkg::TestName.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, save, err := resolveConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			return launch(cmd, opts, cfg, save)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.keyword, "keyword", "k", "", "only run tests matching this -run expression")
	flags.StringVarP(&opts.markers, "markers", "m", "", "build tags to pass as -tags")
	flags.StringArrayVar(&opts.extra, "extra", nil, "additional raw go test flags, split with shell quoting (repeatable)")
	flags.BoolVar(&opts.useLast, "use-last", false, "reuse the most recently saved targets/filters and ignore the provided ones")
	flags.BoolVar(&opts.saveLast, "save-last", true, "save the current targets/filters for reuse")
	flags.BoolVar(&opts.forgetLast, "forget-last", false, "clear saved targets/filters before running and do not save this run")
	flags.StringVar(&opts.logFile, "log-file", defaultLogFile, "file that receives the dashboard log")
	flags.StringVar(&opts.logLevel, "log-level", logrus.InfoLevel.String(), "log level (panic, fatal, error, warn, info, debug, trace)")

	cmd.AddCommand(newTUICmd(opts))
	return cmd
}

// resolveConfig applies the last-run flags to the command line and reports
// whether the result should be saved.
func resolveConfig(cmd *cobra.Command, opts *options, args []string) (config.RunConfig, bool, error) {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	save := opts.saveLast

	if opts.forgetLast {
		if err := config.ForgetLastRun(stateRoot); err != nil {
			fmt.Fprintf(errOut, "Warning: failed to clear last run config: %v\n", err)
		}
		save = false
	}

	extra, err := config.ParseExtra(opts.extra)
	if err != nil {
		return config.RunConfig{}, false, err
	}
	cfg := config.New(args, opts.keyword, opts.markers, extra)

	if opts.useLast {
		saved, err := config.LoadLastRun(stateRoot)
		if err != nil {
			fmt.Fprintf(errOut, "Warning: failed to read last run config: %v\n", err)
			saved = nil
		}
		if saved != nil {
			cfg = config.New(saved.Paths, saved.Keyword, saved.Markers, saved.Extra)
			fmt.Fprintln(out, msgReusing)
		} else {
			fmt.Fprintln(out, msgNoSaved)
		}
	}
	return cfg, save, nil
}

// launch saves cfg when asked and hands the terminal to the dashboard.
func launch(cmd *cobra.Command, opts *options, cfg config.RunConfig, save bool) error {
	if !stdoutIsTerminal() {
		return errors.New("testr needs an interactive terminal; run it directly rather than through a pipe or redirect")
	}

	log, closer, err := setupLogger(opts.logFile, opts.logLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	if save {
		if err := config.SaveLastRun(stateRoot, cfg); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to save last run config: %v\n", err)
			log.WithError(err).Warn("saving last run failed")
		}
	}

	log.WithFields(logrus.Fields{
		"paths":   cfg.Paths,
		"keyword": cfg.Keyword,
		"markers": cfg.Markers,
		"extra":   cfg.Extra,
	}).Info("launching dashboard")

	if err := runDashboard(cfg, log); err != nil {
		log.Error(errors.PrintErrorWithStackTrace(err))
		return err
	}
	return nil
}

// setupLogger sends logs to path, since the dashboard owns the terminal.
func setupLogger(path, level string) (*logrus.Logger, io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log := logrus.New()
	log.SetOutput(f)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return log, f, nil
}
