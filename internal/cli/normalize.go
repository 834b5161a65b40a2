package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/typetrace/internal/config"
	"github.com/roach88/typetrace/internal/pipeline"
	"github.com/roach88/typetrace/internal/report"
	"github.com/roach88/typetrace/internal/store"
)

var _ pipeline.Index = (*store.RunIndex)(nil)

func runNormalize(opts *RootOptions, cmd *cobra.Command, input, output string) error {
	cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
	if err != nil {
		rep := report.NewConsole(cmd.OutOrStdout(), newLogger(cmd.ErrOrStderr(), false), false)
		message := "failed to read configuration"
		if config.IsConfigError(err) {
			message = "invalid configuration"
		}
		return abortRun(rep, commandError(message, err))
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	applyColor(cfg.Color)
	rep := report.NewConsole(cmd.OutOrStdout(), logger, cfg.Verbose)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOpts := pipeline.Options{
		Input:    input,
		Output:   output,
		Mode:     cfg.Mode(),
		Reporter: rep,
		Now:      opts.Now,
	}

	if cfg.Index != "" {
		logger.Debug("opening index", "path", cfg.Index)
		st, err := store.Open(cfg.Index)
		if err != nil {
			return abortRun(rep, commandError("failed to open index", err))
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing index", "error", closeErr)
			}
		}()
		idx := st.NewRunIndex(opts.RunIDs)
		runOpts.Index = idx
		defer func() {
			if id := idx.RunID(); id != "" {
				logger.Info("run indexed", "run", id, "index", cfg.Index)
			}
		}()
	}

	logger.Debug("run starting", "input", input, "output", output, "mode", runOpts.Mode)
	if _, err := pipeline.Run(ctx, runOpts); err != nil {
		// The reporter has already printed "Error: <message>".
		failure := runFailure("run failed", err)
		failure.Reported = true
		return failure
	}
	return nil
}

// abortRun reports a run that failed before the pipeline started, so the
// console still shows the start and summary lines.
func abortRun(rep report.Reporter, failure *ExitError) error {
	rep.Start()
	rep.Finish(report.Summary{}, failure)
	failure.Reported = true
	return failure
}

// newLogger builds the diagnostic logger: text on stderr, debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

func applyColor(mode string) {
	switch mode {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	}
}
