package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"txdash/internal/amqp"
	"txdash/internal/core"
	"txdash/internal/services"
	"txdash/internal/store"
)

// SeedRunner performs one seed run.
type SeedRunner interface {
	Run(ctx context.Context, req services.SeedRequest) (core.SeedResult, error)
}

// SeedWorker turns queued seed requests into seed runs.
type SeedWorker struct {
	seeder  SeedRunner
	counter store.Counter
}

func NewSeedWorker(seeder SeedRunner, counter store.Counter) *SeedWorker {
	return &SeedWorker{
		seeder:  seeder,
		counter: counter,
	}
}

// HandleSeedRequest runs the seed a message asks for. Upstream failures are
// reported through the completion event and acknowledged; retrying a broken
// dataset would not fix it. Any other failure is returned so the message is
// requeued.
func (w *SeedWorker) HandleSeedRequest(ctx context.Context, msg *amqp.SeedRequestMessage) error {
	slog.InfoContext(ctx, "Processing seed request",
		"request_id", msg.RequestID,
		"source", msg.Source,
		"requested_at", msg.Timestamp)

	result, err := w.seeder.Run(ctx, services.SeedRequest{ID: msg.RequestID, Source: msg.Source})
	if err != nil {
		if errors.Is(err, core.ErrUpstreamFetch) {
			slog.WarnContext(ctx, "Seed request dropped, dataset unavailable",
				"request_id", msg.RequestID,
				"error", err)
			return nil
		}
		return fmt.Errorf("seed request %s: %w", msg.RequestID, err)
	}

	slog.InfoContext(ctx, "Seed request processed",
		"request_id", msg.RequestID,
		"count", result.Count)
	return nil
}

// StartupSeedCheck seeds the store when it is empty, so a fresh worker
// deployment does not wait for the first request.
func (w *SeedWorker) StartupSeedCheck(ctx context.Context) error {
	if w.counter == nil {
		return nil
	}

	count, err := w.counter.Count(ctx)
	if err != nil {
		return fmt.Errorf("count transactions for startup check: %w", err)
	}

	if count > 0 {
		slog.InfoContext(ctx, "Store already seeded", "count", count)
		return nil
	}

	slog.InfoContext(ctx, "Store is empty on startup, seeding from default source")
	result, err := w.seeder.Run(ctx, services.SeedRequest{ID: "startup"})
	if err != nil {
		return fmt.Errorf("startup seed: %w", err)
	}

	slog.InfoContext(ctx, "Startup seed completed", "count", result.Count)
	return nil
}
