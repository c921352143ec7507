package bootstrap

import (
	"context"
	"log"
	"time"

	"knowledge-retrieval-be/internal/config"
	"knowledge-retrieval-be/internal/controller"
	"knowledge-retrieval-be/internal/pkg/logger"
	"knowledge-retrieval-be/internal/repository/unitofwork"
	"knowledge-retrieval-be/internal/service"
	"knowledge-retrieval-be/pkg/embedding"
	"knowledge-retrieval-be/pkg/embedding/jina"
	"knowledge-retrieval-be/pkg/events"
	"knowledge-retrieval-be/pkg/llm"
	"knowledge-retrieval-be/pkg/llm/factory"
	"knowledge-retrieval-be/pkg/retrieval"
	"knowledge-retrieval-be/pkg/retrieval/engine"
	"knowledge-retrieval-be/pkg/retrieval/fusion"
	"knowledge-retrieval-be/pkg/retrieval/metadata"
	"knowledge-retrieval-be/pkg/retrieval/policy"
	"knowledge-retrieval-be/pkg/retrieval/ratelimit"
	"knowledge-retrieval-be/pkg/retrieval/strategy"

	pktNats "knowledge-retrieval-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RetrievalController controller.IRetrievalController

	// Background Services (Exposed for main.go to run)
	AuditConsumerService service.IAuditConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Every instance mirrors its quota rejections to the bus; the durable
	// consumer pulls them back into one consolidated operator log.
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else if err := natsSub.Subscribe(
		pktNats.SubjectFor(events.EventTypeRateLimitExceeded),
		"rate-limit-mirror",
		service.RateLimitMirrorHandler(sysLogger),
	); err != nil {
		log.Printf("[WARN] Failed to subscribe to rate limit events: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 4. Model Access
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "jina":
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	case "gemini":
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.Gemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	default:
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	modelManager := factory.NewCatalogModelManager([]factory.CatalogEntry{
		{
			Provider: cfg.Ai.LLMProvider,
			Model:    cfg.Ai.LLMModel,
			Status:   factory.ModelStatusActive,
			Features: []llm.ModelFeature{llm.FeatureToolCall},
			BaseURL:  cfg.Ai.LLMBaseURL,
			APIKey:   cfg.Ai.LLMAPIKey,
		},
	})
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Retrieval Pipeline
	sharedUow := uowFactory.NewUnitOfWork(context.Background())

	externalClient := engine.NewHTTPExternalClient(30 * time.Second)
	reranker := jina.NewJinaReranker(cfg.Keys.Jina)
	retrievalEngine := engine.NewPgVectorEngine(sharedUow, embeddingProvider, externalClient, reranker, sysLogger)

	extractor := metadata.NewExtractor(sysLogger)
	resolver := metadata.NewResolver(modelManager, extractor, sysLogger)
	executor := strategy.NewExecutor(retrievalEngine, modelManager, sysLogger)
	ranker := fusion.NewRanker(sysLogger)

	publisherService := service.NewPublisherService(cfg.Keys.RateLimitTopic, pubSub)
	auditSink := service.NewAuditSink(publisherService)
	auditConsumerService := service.NewAuditConsumerService(
		pubSub,
		cfg.Keys.RateLimitTopic,
		uowFactory,
		natsPub,
	)

	counter := ratelimit.NewRedisWindowedCounter(rdb)
	limiter := ratelimit.NewLimiter(counter, auditSink, sysLogger)
	policyService := policy.NewService(policy.StaticSource{
		Policy: ratelimit.Policy{
			Enabled:          cfg.RateLimit.Enabled,
			Limit:            int64(cfg.RateLimit.RequestsPerMin),
			SubscriptionPlan: cfg.RateLimit.SubscriptionPlan,
		},
	}, time.Duration(cfg.RateLimit.PolicyCacheTTL)*time.Second)

	orchestrator := retrieval.NewOrchestrator(
		sharedUow,
		policyService,
		limiter,
		resolver,
		executor,
		ranker,
		sysLogger,
	)

	retrievalService := service.NewRetrievalService(orchestrator)

	// 6. Controllers
	return &Container{
		RetrievalController:  controller.NewRetrievalController(retrievalService),
		AuditConsumerService: auditConsumerService,
		Logger:               sysLogger,
	}
}
