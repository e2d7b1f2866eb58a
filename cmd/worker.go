package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/queue"
)

const defaultWorkers = 3

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume matching tasks from the queue",
	Run: func(cmd *cobra.Command, _ []string) {
		workers, _ := cmd.Flags().GetInt("workers")
		work(workers)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().IntP("workers", "w", defaultWorkers, "number of concurrent matching workers")
}

func work(workers int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := mustLogger()
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config.Queue.URL == "" {
		logger.Fatal("queue url is required", zap.String("hint", "set queue.url or RABBITMQ_URL"))
	}

	a, err := newApplication(ctx, config, logger)
	if err != nil {
		logger.Fatal("building application", zap.Error(err))
	}
	defer a.close()

	consumer := queue.NewConsumer(config.Queue, workers, a.svc.HandleTask, logger)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker pool stopped", zap.Error(err))
		return
	}

	logger.Info("worker pool stopped")
}
