package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"txdash/internal/amqp"
	"txdash/internal/core"
	"txdash/internal/services"
	"txdash/internal/store"
)

type fakeSeeder struct {
	calls []services.SeedRequest
	err   error
}

func (f *fakeSeeder) Run(_ context.Context, req services.SeedRequest) (core.SeedResult, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return core.SeedResult{}, f.err
	}
	return core.SeedResult{Count: 60, Source: req.Source}, nil
}

type fakeCounter struct {
	n   int64
	err error
}

func (f fakeCounter) Count(context.Context) (int64, error) { return f.n, f.err }

func TestSeedWorker_HandleSeedRequest(t *testing.T) {
	tests := []struct {
		name    string
		seedErr error
		wantErr bool
	}{
		{"success", nil, false},
		{"upstream failure is acknowledged", fmt.Errorf("%w: 503", core.ErrUpstreamFetch), false},
		{"store failure is retried", errors.New("database is locked"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeder := &fakeSeeder{err: tt.seedErr}
			w := NewSeedWorker(seeder, nil)

			msg := &amqp.SeedRequestMessage{RequestID: "r-1", Source: "https://example.test/data.json"}
			err := w.HandleSeedRequest(context.Background(), msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleSeedRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(seeder.calls) != 1 {
				t.Fatalf("seeder called %d times, want 1", len(seeder.calls))
			}
			if got := seeder.calls[0]; got.ID != msg.RequestID || got.Source != msg.Source {
				t.Errorf("seed request = %+v", got)
			}
		})
	}
}

func TestSeedWorker_StartupSeedCheck(t *testing.T) {
	tests := []struct {
		name      string
		counter   store.Counter
		wantCalls int
		wantErr   bool
	}{
		{"empty store is seeded", fakeCounter{n: 0}, 1, false},
		{"seeded store is left alone", fakeCounter{n: 60}, 0, false},
		{"count failure", fakeCounter{err: errors.New("no such table")}, 0, true},
		{"no counter", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeder := &fakeSeeder{}
			w := NewSeedWorker(seeder, tt.counter)

			err := w.StartupSeedCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("StartupSeedCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(seeder.calls) != tt.wantCalls {
				t.Errorf("seeder called %d times, want %d", len(seeder.calls), tt.wantCalls)
			}
		})
	}
}
