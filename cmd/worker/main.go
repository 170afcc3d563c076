package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"neurovault/application/commands"
	"neurovault/application/ports"
	"neurovault/infrastructure/config"
	"neurovault/infrastructure/di"
	pkgerrors "neurovault/pkg/errors"
)

var container *di.Container

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if cfg.IsLambda {
		lambda.Start(handleScheduledEvent)
		return
	}

	runTickerLoop(ctx, cfg)
}

// handleScheduledEvent runs one cycle per EventBridge schedule trigger
func handleScheduledEvent(ctx context.Context, event events.CloudWatchEvent) error {
	report, err := runCycle(ctx, "eventbridge-schedule")
	if err != nil {
		return err
	}
	if report != nil {
		container.Logger.Info("Scheduled cycle completed",
			zap.String("cycleID", report.CycleID),
			zap.String("source", event.Source),
		)
	}
	return nil
}

// runTickerLoop runs cycles on a fixed interval until interrupted
func runTickerLoop(ctx context.Context, cfg *config.Config) {
	container.Logger.Info("Starting maintenance worker",
		zap.Duration("interval", cfg.CycleInterval),
	)

	ticker := time.NewTicker(cfg.CycleInterval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if _, err := runCycle(ctx, "ticker"); err != nil {
				container.Logger.Error("Cycle failed", zap.Error(err))
			}
		case <-sigChan:
			container.Logger.Info("Shutting down maintenance worker")
			return
		}
	}
}

// runCycle triggers one maintenance cycle. Losing the lease to another
// worker is expected with redundant schedulers and is not an error.
func runCycle(ctx context.Context, triggeredBy string) (*ports.CycleReport, error) {
	result, err := container.CommandBus.Send(ctx, commands.RunMaintenanceCommand{
		TriggeredBy: triggeredBy,
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrCycleInProgress) || errors.Is(err, pkgerrors.ErrLockNotAcquired) {
			container.Logger.Info("Cycle already running elsewhere, skipping")
			return nil, nil
		}
		return nil, err
	}

	report, _ := result.(*ports.CycleReport)
	return report, nil
}
