package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"txdash/internal/amqp"
	"txdash/internal/core"
	"txdash/internal/dataset"
	applog "txdash/internal/log"
	"txdash/internal/store"
)

// SeedEventPublisher announces finished seed runs.
type SeedEventPublisher interface {
	PublishSeedCompleted(ctx context.Context, msg *amqp.SeedCompletedMessage) error
}

// SeedRequest identifies one seed run. Empty fields fall back to the
// seeder's defaults.
type SeedRequest struct {
	ID     string
	Source string
}

// Seeder replaces the store's contents with the dataset found at a source
// URL or local file path.
type Seeder struct {
	store   store.TransactionSeeder
	source  string
	client  *http.Client
	events  SeedEventPublisher
	maxSize int64
}

const defaultMaxDatasetSize = 64 << 20

func NewSeeder(seeder store.TransactionSeeder, source string, timeout time.Duration) *Seeder {
	return &Seeder{
		store:   seeder,
		source:  source,
		client:  &http.Client{Timeout: timeout},
		maxSize: defaultMaxDatasetSize,
	}
}

// WithEvents sets the publisher notified after each seed run.
func (s *Seeder) WithEvents(events SeedEventPublisher) *Seeder {
	s.events = events
	return s
}

// Source returns the default dataset location.
func (s *Seeder) Source() string { return s.source }

// Seed loads the default source.
func (s *Seeder) Seed(ctx context.Context) (core.SeedResult, error) {
	return s.Run(ctx, SeedRequest{})
}

func (s *Seeder) Run(ctx context.Context, req SeedRequest) (core.SeedResult, error) {
	source := req.Source
	if source == "" {
		source = s.source
	}

	logs := applog.NewStructuredLogger(applog.FromContext(ctx))

	result, err := s.load(ctx, source)
	s.publish(ctx, req.ID, source, result, err)
	if err != nil {
		fields := applog.NewFields().
			WithSeed(source, 0).
			WithRequestID(req.ID)
		logs.LogError(ctx, "Seed failed", err, applog.ComponentSeed, applog.OpSeed, fields)
		return core.SeedResult{}, err
	}

	logs.LogSeedCompleted(ctx, source, result.Count, req.ID)
	return result, nil
}

func (s *Seeder) load(ctx context.Context, source string) (core.SeedResult, error) {
	body, err := s.open(ctx, source)
	if err != nil {
		return core.SeedResult{}, err
	}
	defer body.Close()

	txs, err := dataset.Decode(io.LimitReader(body, s.maxSize))
	if err != nil {
		return core.SeedResult{}, fmt.Errorf("%w: %v", core.ErrUpstreamFetch, err)
	}

	n, err := s.store.ReplaceAll(ctx, txs)
	if err != nil {
		return core.SeedResult{}, fmt.Errorf("replace transactions: %w", err)
	}

	return core.SeedResult{Count: n, Source: source}, nil
}

func (s *Seeder) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: no seed source configured", core.ErrUpstreamFetch)
	}

	if path, ok := strings.CutPrefix(source, "file://"); ok || !strings.Contains(source, "://") {
		if !ok {
			path = source
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrUpstreamFetch, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", core.ErrUpstreamFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", core.ErrUpstreamFetch, source, resp.Status)
	}
	return resp.Body, nil
}

func (s *Seeder) publish(ctx context.Context, requestID, source string, result core.SeedResult, seedErr error) {
	if s.events == nil {
		return
	}

	msg := &amqp.SeedCompletedMessage{
		RequestID: requestID,
		Source:    source,
		Count:     result.Count,
		Timestamp: time.Now(),
	}
	if seedErr != nil {
		msg.Error = seedErr.Error()
	}

	if err := s.events.PublishSeedCompleted(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish seed completed event",
			"request_id", requestID,
			"error", err)
	}
}
