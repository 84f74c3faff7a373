package backend

import (
	"context"
	"errors"
	"fmt"

	"txdash/internal/amqp"
	applog "txdash/internal/log"
	"txdash/internal/storage"
	"txdash/internal/store"
	"txdash/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st      store.Store
		closeSt func() error
		err     error
	)
	switch config.Type {
	case SQLiteBackend:
		st, closeSt, err = f.createSQLiteStore(config)
	case MemoryBackend:
		st, err = f.createMemoryStore(config)
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	messaging := f.createMessaging(config)

	cleanup := func() error {
		var errs []error
		if messaging != nil {
			errs = append(errs, messaging.Close())
		}
		if closeSt != nil {
			errs = append(errs, closeSt())
		}
		return errors.Join(errs...)
	}

	return &BackendResult{
		Store:     st,
		Messaging: messaging,
		Cleanup:   cleanup,
	}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (store.Store, func() error, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, repo.Close, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) (store.Store, error) {
	if config.DataFile == "" {
		f.logger.Info("Initialized memory backend", "records", 0)
		return memory.New(), nil
	}

	st, err := memory.NewFromFile(config.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}
	f.logger.Info("Initialized memory backend", "data_file", config.DataFile, "records", st.Len())
	return st, nil
}

// createMessaging connects to the broker when configured. A broker that is
// down disables messaging instead of failing startup.
func (f *DefaultFactory) createMessaging(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without messaging", applog.FieldError, err.Error())
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
