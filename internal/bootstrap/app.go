package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"debate-arena/internal/detector"
	"debate-arena/internal/domain"
	httpHandler "debate-arena/internal/handler/http"
	wsHandler "debate-arena/internal/handler/websocket"
	"debate-arena/internal/hub"
	mongoarchive "debate-arena/internal/infra/archive/mongo"
	gormpersistence "debate-arena/internal/infra/persistence/gorm"
	"debate-arena/internal/infra/persistence/memory"
	"debate-arena/internal/infra/setup"
	redisstate "debate-arena/internal/infra/state/redis"
	"debate-arena/internal/middleware"
	"debate-arena/internal/oracle"
	"debate-arena/internal/repository"
	"debate-arena/internal/service"
	"debate-arena/internal/worker"
)

// App holds every long-lived component of the process.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	MongoClient *mongo.Client
	AsynqClient *asynq.Client
	AsynqServer *worker.WorkerServer
	Scheduler   *worker.Scheduler
	Hub         *hub.Hub
	HttpServer  *http.Server
}

type repositories struct {
	rooms       repository.RoomRepository
	stances     repository.StanceRepository
	messages    repository.MessageRepository
	evaluations repository.EvaluationRepository
	results     repository.ResultRepository
}

// NewApp loads configuration and wires every component.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}
	log := newLogger(cfg)
	app := &App{Config: cfg, Log: log}
	ctx := context.Background()

	// Infrastructure.
	repos, err := app.initStorage()
	if err != nil {
		return nil, err
	}

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	app.RedisClient = redisClient
	strikeRepo := redisstate.NewRedisStrikeRepository(redisClient, cfg.KeyPrefix)

	redisClientOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	app.AsynqClient = asynq.NewClient(redisClientOpt)

	var archive repository.ResultArchive
	if cfg.ArchiveEnabled() {
		mongoClient, db, err := setup.InitMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to init MongoDB: %w", err)
		}
		app.MongoClient = mongoClient
		mongoArchive := mongoarchive.NewMongoResultArchive(db)
		if err := mongoArchive.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure archive indexes: %w", err)
		}
		archive = mongoArchive
	} else {
		log.Info("MONGODB_URI not set, result archive disabled")
	}

	scorer, err := newScorer(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("Infrastructure initialized successfully")

	// Services.
	hubInstance := hub.NewHub()
	app.Hub = hubInstance

	var archiver service.ResultArchiver
	if archive != nil {
		archiver = worker.NewArchiver(app.AsynqClient)
	}
	registry := service.NewRoomRegistry(repos.rooms, repos.evaluations, repos.results)
	lifecycle := service.NewLifecycleService(registry, repos.rooms, repos.evaluations, repos.results, hubInstance, archiver)
	stances := service.NewStanceService(registry, repos.stances, hubInstance)
	arguments := service.NewArgumentService(registry, repos.stances, repos.evaluations, strikeRepo,
		detector.NewHeuristic(cfg.AISendThreshold), scorer, hubInstance, lifecycle, cfg.CollaboratorTimeout)
	messages := service.NewMessageService(registry, repos.messages, hubInstance, cfg.ModeratorIDs)
	standings := service.NewStandingsService(registry, hubInstance)
	hubInstance.SetDispatcher(wsHandler.NewDispatcher(hubInstance, messages))
	log.Info("Services initialized")

	// Workers.
	var archiveHandler *worker.ResultArchiveHandler
	if archive != nil {
		archiveHandler = worker.NewResultArchiveHandler(lifecycle, archive)
	}
	app.AsynqServer = worker.NewWorkerServer(redisClientOpt, archiveHandler, worker.NewStandingsAuditHandler(hubInstance, standings), log)
	app.Scheduler, err = worker.NewScheduler(redisClientOpt, cfg.StandingsAuditSchedule, log)
	if err != nil {
		return nil, fmt.Errorf("failed to register standings audit: %w", err)
	}

	// Router.
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.AllowedOrigin))

	httpHandler.RegisterRoutes(router, httpHandler.Handlers{
		Stance:    httpHandler.NewStanceHandler(stances),
		Argument:  httpHandler.NewArgumentHandler(arguments, detector.NewHeuristic(cfg.AIQueryThreshold), cfg.CollaboratorTimeout),
		Debate:    httpHandler.NewDebateHandler(lifecycle, standings),
		Message:   httpHandler.NewMessageHandler(messages),
		WebSocket: wsHandler.NewWebSocketHandler(hubInstance, cfg.AllowedOrigin).HandleConnection,
	},
		middleware.Auth(cfg.JWTSecret),
		middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow),
		middleware.RequireModerator(messages.IsModerator),
	)

	app.HttpServer = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("Application assembled successfully")
	return app, nil
}

func newLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	// Services log through the package-level logger.
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
	log.Infof("Logger initialized (Level: %s)", level)
	return log
}

func (a *App) initStorage() (*repositories, error) {
	cfg := a.Config
	if cfg.StorageDriver == StorageMemory {
		store := memory.NewStore()
		for _, id := range cfg.MemoryRoomIDs {
			store.PutRoom(domain.Room{ID: id, Topic: id, IsActive: true})
		}
		a.Log.WithField("rooms", len(cfg.MemoryRoomIDs)).Warn("Using in-memory storage, nothing survives a restart")
		return &repositories{
			rooms:       store.RoomRepository(),
			stances:     store.StanceRepository(),
			messages:    store.MessageRepository(),
			evaluations: store.EvaluationRepository(),
			results:     store.ResultRepository(),
		}, nil
	}

	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	a.DB = db
	return &repositories{
		rooms:       gormpersistence.NewGormRoomRepository(db),
		stances:     gormpersistence.NewGormStanceRepository(db),
		messages:    gormpersistence.NewGormMessageRepository(db),
		evaluations: gormpersistence.NewGormEvaluationRepository(db),
		results:     gormpersistence.NewGormResultRepository(db),
	}, nil
}

func newScorer(ctx context.Context, cfg *Config, log *logrus.Logger) (oracle.Scorer, error) {
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, scoring with the local rubric")
		return oracle.NewRubricScorer(), nil
	}
	scorer, err := oracle.NewGeminiScorer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to init scoring oracle: %w", err)
	}
	return scorer, nil
}

// Start launches the hub, workers and HTTP server in the background.
func (a *App) Start() {
	go a.Hub.Run()
	a.Log.Info("Hub routine started")

	go a.AsynqServer.Start()
	if err := a.Scheduler.Start(); err != nil {
		a.Log.Errorf("Failed to start scheduler: %v", err)
	}

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown stops accepting work first, then closes the stores.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	}
	a.Hub.Stop()

	a.Scheduler.Shutdown()
	a.AsynqServer.Shutdown()
	if err := a.AsynqClient.Close(); err != nil {
		a.Log.Errorf("Error closing Asynq client: %v", err)
	}

	if a.MongoClient != nil {
		if err := a.MongoClient.Disconnect(ctx); err != nil {
			a.Log.Errorf("Error disconnecting MongoDB: %v", err)
		}
	}
	if err := a.RedisClient.Close(); err != nil {
		a.Log.Errorf("Error closing Redis connection: %v", err)
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Log.Errorf("Error closing database connection: %v", err)
			}
		}
	}
	a.Log.Info("Application shutdown complete.")
}
