package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"ai-permit-planner-be/internal/bootstrap"
	"ai-permit-planner-be/internal/config"
	"ai-permit-planner-be/internal/pkg/logger"
	"ai-permit-planner-be/pkg/pipeline"
	"ai-permit-planner-be/pkg/stage"
	"ai-permit-planner-be/pkg/stream"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type runOptions struct {
	offline bool
	reduced bool
	sse     bool
	pace    time.Duration
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run <request>",
		Short: "Run the pipeline for a request and print the discussion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, strings.Join(args, " "), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use the deterministic offline executor instead of a model")
	cmd.Flags().BoolVar(&opts.reduced, "reduced", false, "Use the reduced single-stage pipeline")
	cmd.Flags().BoolVar(&opts.sse, "sse", false, "Print raw Server-Sent Events frames instead of a transcript")
	cmd.Flags().DurationVar(&opts.pace, "pace", 300*time.Millisecond, "Pause between stages of the offline executor")
	return cmd
}

func runPipeline(cmd *cobra.Command, request string, opts runOptions) error {
	color.NoColor = color.NoColor || noColor

	cfg := config.Load()
	catalog, err := stage.Default()
	if err != nil {
		return err
	}

	var executor pipeline.Executor
	if opts.offline {
		executor = pipeline.NewOfflineExecutor(catalog, opts.pace)
	} else {
		executor, err = bootstrap.NewExecutor(cfg, catalog)
		if err != nil {
			return err
		}
	}

	reduced := opts.reduced || cfg.Pipeline.Reduced
	runner := pipeline.NewRunner(executor, catalog,
		pipeline.WithReducedMode(func() bool { return reduced }),
		pipeline.WithLogger(logger.NewZapLogger(cfg.App.LogFilePath, false)),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	items := runner.Run(ctx, pipeline.RunRequest{Text: request})

	if opts.sse {
		sw := stream.NewWriter(out)
		for item := range items {
			if err := sw.WriteItem(item); err != nil {
				return err
			}
		}
		return nil
	}

	r := newRenderer(out, catalog, verbose)
	for item := range items {
		if err := r.Render(item); err != nil {
			return err
		}
	}
	if !r.Completed() {
		return fmt.Errorf("run ended without a result")
	}
	return nil
}
