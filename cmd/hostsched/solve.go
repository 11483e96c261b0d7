package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/offlinemark/scheduler/pkg/roster"
	"github.com/offlinemark/scheduler/pkg/scheduler"
)

type solveOptions struct {
	output          string
	workers         int
	engine          string
	verify          bool
	metricsTextfile string
}

func newSolveCmd(logger *log.Logger) *cobra.Command {
	var o solveOptions
	cmd := &cobra.Command{
		Use:   "solve ROSTER...",
		Short: "Solve one or more roster files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return o.run(ctx, cmd, logger, args)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", roster.FormatText, "output format: text, json or yaml")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "rosters solved in parallel (default: number of CPUs)")
	cmd.Flags().StringVar(&o.engine, "engine", "", "override the engine of every roster: gini or gophersat")
	cmd.Flags().BoolVar(&o.verify, "verify", false, "re-check every schedule against its roster")
	cmd.Flags().StringVar(&o.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after solving")
	return cmd
}

func (o *solveOptions) run(ctx context.Context, cmd *cobra.Command, logger *log.Logger, paths []string) error {
	switch o.output {
	case roster.FormatText, roster.FormatJSON, roster.FormatYAML:
	default:
		return errors.Wrapf(roster.ErrUnknownFormat, "%q", o.output)
	}

	rs, err := roster.LoadAll(ctx, paths)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	schedOpts := []scheduler.Option{
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(scheduler.NewPrometheusMetrics(reg, "")),
	}
	if o.engine != "" {
		schedOpts = append(schedOpts, scheduler.WithBackend(o.engine))
	}
	solveOpts := []roster.SolveOption{
		roster.WithLogger(logger),
		roster.WithSchedulerOptions(schedOpts...),
	}
	if o.verify {
		solveOpts = append(solveOpts, roster.WithVerify())
	}

	results := roster.SolveAll(ctx, rs, o.workers, solveOpts...)
	if err := roster.Write(cmd.OutOrStdout(), o.output, results...); err != nil {
		return err
	}

	if o.metricsTextfile != "" {
		if err := prometheus.WriteToTextfile(o.metricsTextfile, reg); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}

	for _, res := range results {
		if res.Err != nil {
			return errors.Wrapf(res.Err, "roster %s", res.Roster)
		}
	}
	for _, res := range results {
		if !res.OK {
			return errNoSchedule
		}
	}
	return nil
}
