package main

import (
	"github.com/spf13/cobra"

	"github.com/user/site-crawler/internal/app"
	"github.com/user/site-crawler/internal/usecase"
	"github.com/user/site-crawler/pkg/metrics"
)

func workerCommand() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "serve-worker",
		Short: "Run queued crawl jobs without serving the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadDeps()
			if err != nil {
				return err
			}
			defer log.Sync()
			if cmd.Flags().Changed("workers") {
				cfg.JobWorkers = workers
			}

			metrics.Init()

			ctx := cmd.Context()
			services, err := app.NewServices(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer services.Close()

			pool := usecase.NewWorkerPool(services.Runner, cfg.JobWorkers, cfg.QueuePollInterval(), log)
			pool.Start(ctx)
			<-ctx.Done()
			log.Info("shutting down workers...")
			pool.Stop()
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 2, "number of jobs run at once (default JOB_WORKERS)")
	return cmd
}
