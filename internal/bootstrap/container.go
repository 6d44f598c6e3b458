package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"haskify-be/internal/config"
	"haskify-be/internal/constant"
	"haskify-be/internal/controller"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/pkg/mailer"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/repository/inmemory"
	"haskify-be/internal/repository/memory"
	"haskify-be/internal/repository/rediscache"
	"haskify-be/internal/repository/unitofwork"
	"haskify-be/internal/service"
	"haskify-be/internal/websocket"
	"haskify-be/pkg/embedding"
	"haskify-be/pkg/embedding/openai"
	"haskify-be/pkg/events"
	"haskify-be/pkg/extract"
	"haskify-be/pkg/llm/factory"
	pktNats "haskify-be/pkg/nats"
	"haskify-be/pkg/rag/quizdedup"
	"haskify-be/pkg/rag/retriever"
	"haskify-be/pkg/runner"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController    controller.ISessionController
	MaterialController   controller.IMaterialController
	AdminController      controller.IAdminController
	TutorController      controller.ITutorController
	QuizController       controller.IQuizController
	TranscriptController controller.ITranscriptController
	RunnerController     controller.IRunnerController
	ContactController    controller.IContactController
	HealthController     controller.HealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	SweeperService  service.ISweeperService
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every service. A nil db runs the in-memory store, which
// is meant for local development only.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		sysLogger.Warn("BOOTSTRAP", "No database configured, using the in-memory store", nil)
		uowFactory = inmemory.NewRepositoryFactory(inmemory.NewStore())
	}

	if cfg.Keys.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	issuer := serverutils.NewSessionTokenIssuer(cfg.Keys.JWTSecret)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Infrastructure
	// Redis
	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	candidate := redis.NewClient(opt)
	if err := candidate.Ping(ctx).Err(); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Redis unavailable", map[string]interface{}{"error": err.Error()})
		candidate.Close()
	} else {
		rdb = candidate
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	// NATS
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "NATS unavailable, study events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// Quiz hash store
	memoryHashes := memory.NewQuizHashRepository(cfg.Quiz.Retention, cfg.Quiz.SweepInterval)
	var hashStore quizdedup.HashStore = memoryHashes
	if cfg.Quiz.HashStore == "redis" {
		if rdb == nil {
			return nil, fmt.Errorf("QUIZ_HASH_STORE=redis but Redis is unavailable")
		}
		hashStore = rediscache.NewQuizHashRepository(rdb, cfg.Quiz.Retention)
	}
	chunkCache := memory.NewChunkCacheRepository(cfg.RAG.ChunkCacheTTL, cfg.RAG.ChunkCacheTTL/2)

	// 4. Model providers
	embeddingProvider, err := newEmbeddingProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
	})

	llmProvider, err := factory.NewLLMProvider(ctx, cfg.Ai.LLMProvider, cfg.Ai.LLMModel, llmBaseURL(cfg), llmAPIKey(cfg))
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	var strategy retriever.Strategy = retriever.Lexical{}
	vectorMode := cfg.RAG.Mode == "vector"
	if vectorMode {
		strategy = retriever.NewVector(embeddingProvider, cfg.RAG.MinSimilarity)
	}
	ragRetriever := retriever.New(strategy)

	dedupCfg := quizdedup.DefaultConfig(cfg.Quiz.Topics)
	dedupCfg.MaxAttempts = cfg.Quiz.MaxAttempts
	deduplicator := quizdedup.New(hashStore, dedupCfg)

	uploadDir := filepath.Join(os.TempDir(), "haskify-uploads")
	extractor := extract.NewService(extract.NewPDFExtractor(uploadDir))

	codeRunner := runner.New(runner.Config{
		Interpreter:    cfg.Runner.Interpreter,
		Timeout:        cfg.Runner.Timeout,
		MaxCodeBytes:   cfg.Runner.MaxCodeBytes,
		MaxOutputBytes: cfg.Runner.MaxOutputBytes,
	})

	contactMailer := mailer.NewContactMailer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.SMTP.ContactTo,
	)

	// WebSocket Hub
	c.WebSocketHub = websocket.NewHub(rdb, sysLogger)

	// 5. Services
	publisherService := service.NewPublisherService(constant.TopicTutorTurns, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, constant.TopicTutorTurns, uowFactory, sysLogger)

	sessionService := service.NewSessionService(uowFactory, issuer, hashStore, chunkCache, eventPublisher, sysLogger, cfg.App.SessionTTL)
	materialService, err := service.NewMaterialService(uowFactory, extractor, embeddingProvider, chunkCache, eventPublisher, sysLogger, service.MaterialConfig{
		MaxUploadBytes:    cfg.App.MaxUploadBytes,
		MaterialTTL:       cfg.App.MaterialTTL,
		ChunkSize:         cfg.RAG.ChunkSize,
		ChunkOverlap:      cfg.RAG.ChunkOverlap,
		CodeChunkSize:     cfg.RAG.CodeChunkSize,
		CodeOverlap:       cfg.RAG.CodeOverlap,
		CodeMinLines:      cfg.RAG.CodeMinLines,
		EmbedChunks:       vectorMode,
		EmbeddingMaxChars: cfg.Ai.EmbeddingMaxChars,
	})
	if err != nil {
		return nil, fmt.Errorf("init material service: %w", err)
	}
	tutorService := service.NewTutorService(uowFactory, materialService, ragRetriever, llmProvider, publisherService, sysLogger, service.TutorConfig{
		TopK:         cfg.RAG.TopK,
		Temperature:  cfg.Ai.TutorTemperature,
		HistoryItems: cfg.Quiz.HistoryItems,
	})
	quizService := service.NewQuizService(uowFactory, materialService, ragRetriever, llmProvider, deduplicator, eventPublisher, sysLogger, service.QuizConfig{
		Model:        cfg.Ai.QuizModel,
		TopK:         cfg.RAG.TopK,
		HistoryTurns: cfg.Quiz.HistoryTurns,
		HistoryItems: cfg.Quiz.HistoryItems,
	})
	transcriptService := service.NewTranscriptService(uowFactory)
	runnerService := service.NewRunnerService(codeRunner, sysLogger)
	contactService := service.NewContactService(contactMailer, sysLogger)

	sweepables := []service.Sweepable{chunkCache, memoryHashes}
	c.SweeperService = service.NewSweeperService(materialService, sessionService, cfg.App.SweepInterval, sysLogger, sweepables...)

	// 6. Controllers
	c.SessionController = controller.NewSessionController(sessionService, issuer, c.WebSocketHub)
	c.MaterialController = controller.NewMaterialController(materialService, sessionService, issuer, sysLogger)
	c.AdminController = controller.NewAdminController(materialService, cfg.Keys.AdminKey, sysLogger)
	c.TutorController = controller.NewTutorController(tutorService, sessionService, issuer, c.WebSocketHub, sysLogger)
	c.QuizController = controller.NewQuizController(quizService, sessionService, issuer, sysLogger)
	c.TranscriptController = controller.NewTranscriptController(transcriptService, sysLogger)
	c.RunnerController = controller.NewRunnerController(runnerService, cfg.Runner.RateLimitMax, cfg.Runner.RateLimitWin)
	c.ContactController = controller.NewContactController(contactService)

	return c, nil
}

// Close releases broker and cache connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}

func newEmbeddingProvider(ctx context.Context, cfg *config.Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingMaxChars), nil
	case "openai":
		return openai.NewProvider(cfg.Ai.OpenAIBaseURL, cfg.Keys.OpenRouter, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingMaxChars), nil
	case "gemini":
		return embedding.NewGeminiProvider(ctx, cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimension, cfg.Ai.EmbeddingMaxChars)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.OpenAIBaseURL
}

func llmAPIKey(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "gemini" {
		return cfg.Keys.GoogleGemini
	}
	return cfg.Keys.OpenRouter
}
