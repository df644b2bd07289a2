package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cli"
	"budgetbook/internal/core"
	gsheet "budgetbook/internal/sheets/google"
	"budgetbook/internal/worker"
)

const resubscribeDelay = 5 * time.Second

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting budgetbook-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sheetsClient, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, map[core.Kind]string{
		core.KindIncome:  cfg.SheetsIncomeTab,
		core.KindExpense: cfg.SheetsExpenseTab,
		core.KindGoal:    cfg.SheetsGoalTab,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 0)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(sheetsClient)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			err := amqpClient.ConsumeRecordCreated(gctx, mirror.HandleRecordCreated)
			if gctx.Err() != nil {
				return nil
			}
			logger.Error("Message consumption stopped, resubscribing", "error", err, "retry_in", resubscribeDelay)
			select {
			case <-gctx.Done():
				return nil
			case <-time.After(resubscribeDelay):
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, draining worker")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
