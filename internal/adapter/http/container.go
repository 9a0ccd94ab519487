package http

import (
	"context"
	"fmt"

	"hypertodo/internal/adapter/database/memory"
	"hypertodo/internal/adapter/database/postgres"
	pgrepository "hypertodo/internal/adapter/database/postgres/repository"
	redisstore "hypertodo/internal/adapter/database/redis"
	"hypertodo/internal/adapter/database/sqlite"
	"hypertodo/internal/adapter/database/sqlite/repository"
	"hypertodo/internal/adapter/http/handler"
	"hypertodo/internal/core/port"
	"hypertodo/internal/core/service"
	"hypertodo/pkg/config"

	goredis "github.com/redis/go-redis/v9"
)

type TodoContainer struct {
	TodoRepo    port.TodoRepository
	TodoService port.TodoService

	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler

	close func()
}

// OpenTodoRepository opens the store named by DATABASE_URL and migrates it.
func OpenTodoRepository(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry) (port.TodoRepository, func(), error) {
	dbConfig, err := cfg.Database()

	if err != nil {
		return nil, nil, err
	}

	switch dbConfig.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, postgres.Options{URL: dbConfig.DSN, MaxOpenConns: cfg.DBMaxOpenConns})

		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}

		return pgrepository.NewTodoRepository(db, probe), db.Close, nil
	default:
		db, err := sqlite.NewDB(ctx, sqlite.Options{
			DSN:          dbConfig.DSN,
			MaxOpenConns: cfg.DBMaxOpenConns,
			MaxIdleConns: cfg.DBMaxIdleConns,
			SQLLogLevel:  cfg.SQLLogLevel,
		})

		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}

		return repository.NewTodoRepository(db, probe), func() { db.Close() }, nil
	}
}

func NewTodoContainer(ctx context.Context, cfg *config.AppConfig, logger *config.Logger, probe port.Telemetry) (*TodoContainer, error) {
	todoRepo, closeDB, err := OpenTodoRepository(ctx, cfg, probe)

	if err != nil {
		return nil, err
	}

	todoSvc := service.NewTodoService(todoRepo, probe)

	return &TodoContainer{
		TodoRepo:      todoRepo,
		TodoService:   todoSvc,
		TodoHandler:   handler.NewTodoHandler(todoSvc, logger),
		HealthHandler: handler.NewHealthHandler(todoRepo),
		close:         closeDB,
	}, nil
}

func (c *TodoContainer) Close() {
	if c.close != nil {
		c.close()
	}
}

type CounterContainer struct {
	CounterService port.CounterService

	CounterHandler *handler.CounterHandler
	HealthHandler  *handler.HealthHandler

	close func()
}

func NewCounterContainer(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry) (*CounterContainer, error) {
	var (
		store  port.CounterStore
		pinger handler.Pinger
		closer func()
	)

	switch cfg.CounterBackend {
	case config.CounterRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL)

		if err != nil {
			return nil, err
		}

		store, err = redisstore.NewCounter(ctx, client, redisstore.DefaultCounterKey)

		if err != nil {
			client.Close()
			return nil, err
		}

		pinger = redisPinger{client}
		closer = func() { client.Close() }
	default:
		store = memory.NewCounter()
	}

	counterSvc := service.NewCounterService(store, probe)

	return &CounterContainer{
		CounterService: counterSvc,
		CounterHandler: handler.NewCounterHandler(counterSvc),
		HealthHandler:  handler.NewHealthHandler(pinger),
		close:          closer,
	}, nil
}

func (c *CounterContainer) Close() {
	if c.close != nil {
		c.close()
	}
}

type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
