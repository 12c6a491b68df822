package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/voyago/voyago/internal/adapters/nats"
	"github.com/voyago/voyago/internal/adapters/postgres"
	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/pkg/config"
	"github.com/voyago/voyago/internal/pkg/logging"
	"github.com/voyago/voyago/internal/pkg/metrics"
)

// The archiver drains plan-assignment events from JetStream into
// Postgres, giving users a durable history that outlives sessions.
func main() {
	cfg, err := config.Load("voyago-archiver")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The publisher side owns stream creation; connect it first so the
	// streams exist before subscribing.
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	repo := postgres.NewAssignmentRepo(db)

	err = sub.SubscribeAssignments(ctx, func(ctx context.Context, a *domain.PlanAssignment) error {
		if err := repo.Insert(ctx, a); err != nil {
			slog.Error("archive assignment", "user", a.UserID, "place", a.PlaceID, "error", err)
			return err
		}
		metrics.AssignmentsArchived.Inc()
		slog.Info("assignment archived", "user", a.UserID, "place", a.PlaceID, "date", a.DateKey)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe assignments: %v", err)
	}

	err = sub.SubscribeSyncFailures(ctx, func(ctx context.Context, a *domain.PlanAssignment) error {
		// Sync failures are recorded too; local and remote plans are
		// known to diverge for these rows.
		if err := repo.Insert(ctx, a); err != nil {
			return err
		}
		slog.Warn("plan sync divergence recorded", "user", a.UserID, "place", a.PlaceID, "date", a.DateKey)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe sync failures: %v", err)
	}

	slog.Info("archiver running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("archiver stopping")
}
