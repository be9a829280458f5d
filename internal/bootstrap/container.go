package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-permit-planner-be/internal/config"
	"ai-permit-planner-be/internal/controller"
	"ai-permit-planner-be/internal/pkg/logger"
	"ai-permit-planner-be/internal/repository/contract"
	"ai-permit-planner-be/internal/repository/implementation"
	"ai-permit-planner-be/internal/repository/memory"
	"ai-permit-planner-be/internal/service"
	"ai-permit-planner-be/pkg/llm"
	"ai-permit-planner-be/pkg/llm/factory"
	pktNats "ai-permit-planner-be/pkg/nats"
	"ai-permit-planner-be/pkg/pipeline"
	"ai-permit-planner-be/pkg/stage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProviderOffline selects the deterministic executor that needs no model.
const ProviderOffline = "offline"

type Container struct {
	// Controllers
	PipelineController controller.IPipelineController
	HealthController   controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires the application. db may be nil unless the run store
// backend is "postgres".
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.RunLogFilePath)
	c := &Container{Logger: sysLogger}

	catalog, err := stage.Default()
	if err != nil {
		return nil, fmt.Errorf("load stage catalog: %w", err)
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Executor
	executor, err := NewExecutor(cfg, catalog)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Using pipeline executor: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	runRepo, err := newRunRepository(db, cfg, c)
	if err != nil {
		return nil, err
	}
	sessionRepo := memory.NewSessionRepository()

	var events service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, time.Duration(cfg.Store.RunTTLHours)*time.Hour)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		events = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// 5. Pipeline
	reduced := cfg.Pipeline.Reduced
	runner := pipeline.NewRunner(executor, catalog,
		pipeline.WithReducedMode(func() bool { return reduced }),
		pipeline.WithLogger(sysLogger),
		pipeline.WithSessionRegistry(sessionRepo),
		pipeline.WithObserver(service.NewRunObserver(auditLogger, sysLogger, events)),
	)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Pipeline.PersistTopic, pubSub)
	pipelineService := service.NewPipelineService(runner, runRepo, publisherService, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Pipeline.PersistTopic, runRepo, sysLogger)

	// 7. Controllers
	pipelineName := stage.PipelineFull
	if reduced {
		pipelineName = stage.PipelineReduced
	}
	c.PipelineController = controller.NewPipelineController(pipelineService, sysLogger)
	c.HealthController = controller.NewHealthController(sessionRepo, pipelineName)

	return c, nil
}

// NewExecutor picks the executor for the configured provider.
func NewExecutor(cfg *config.Config, catalog *stage.Catalog) (pipeline.Executor, error) {
	if cfg.Ai.LLMProvider == ProviderOffline {
		pace := time.Duration(cfg.Pipeline.OfflinePaceMs) * time.Millisecond
		return pipeline.NewOfflineExecutor(catalog, pace), nil
	}

	provider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.BaseURL(),
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	return pipeline.NewLLMExecutor(provider, catalog, llm.WithMaxTokens(1024)), nil
}

func newRunRepository(db *gorm.DB, cfg *config.Config, c *Container) (contract.RunRepository, error) {
	ttl := time.Duration(cfg.Store.RunTTLHours) * time.Hour

	switch cfg.Store.Backend {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("run store %q needs a database connection", cfg.Store.Backend)
		}
		return implementation.NewRunRepository(db), nil
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { rdb.Close() })
		return implementation.NewRedisRunRepository(rdb, ttl), nil
	case "memory":
		return memory.NewRunRepository(ttl), nil
	default:
		return nil, fmt.Errorf("unsupported run store: %s", cfg.Store.Backend)
	}
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}
