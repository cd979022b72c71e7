package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"interviewprep/internal/cache"
	"interviewprep/internal/config"
	"interviewprep/internal/repository"
	"interviewprep/internal/scheduler"
	"interviewprep/internal/service"
	"interviewprep/internal/transport/rest"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx := context.Background()
	cfg := config.Load()
	aiConfig := config.DefaultAIConfig()
	learningConfig := config.DefaultLearningConfig()

	if aiConfig.IsEnabled() {
		log.Infow("AI evaluation enabled", "evalModel", aiConfig.Models.Eval, "generateModel", aiConfig.Models.Generate)
	} else {
		log.Warnw("GEMINI_API_KEY not set, free-text answers use basic comparison")
	}

	// Repositories: MongoDB when configured, in-memory otherwise
	var (
		questionRepo    repository.QuestionRepo
		repetitionRepo  repository.RepetitionRepo
		performanceRepo repository.PerformanceRepo
		masteryRepo     repository.MasteryRepo
		progressRepo    repository.ProgressRepo
		sessionRepo     repository.SessionRepo
	)
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalw("mongo connect failed", "error", err)
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatalw("mongo ping failed", "error", err)
		}
		log.Infow("connected to MongoDB", "database", cfg.MongoDB)

		db := mongoClient.Database(cfg.MongoDB)
		questionRepo = repository.NewQuestionRepo(db)
		repetitionRepo = repository.NewRepetitionRepo(db)
		performanceRepo = repository.NewPerformanceRepo(db)
		masteryRepo = repository.NewMasteryRepo(db)
		progressRepo = repository.NewProgressRepo(db)
		sessionRepo = repository.NewSessionRepo(db)
	} else {
		log.Warnw("MONGO_URI not set, using in-memory storage")
		questionRepo = repository.NewMemoryQuestionRepo()
		repetitionRepo = repository.NewMemoryRepetitionRepo()
		performanceRepo = repository.NewMemoryPerformanceRepo()
		masteryRepo = repository.NewMemoryMasteryRepo()
		progressRepo = repository.NewMemoryProgressRepo()
		sessionRepo = repository.NewMemorySessionRepo()
	}

	// Momentum cache: Redis when configured, in-memory otherwise
	var momentumCache cache.MomentumCache
	if cfg.RedisURI != "" {
		redisAddr := strings.TrimPrefix(cfg.RedisURI, "redis://")
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatalw("redis ping failed", "error", err)
		}
		log.Infow("connected to Redis", "addr", redisAddr)
		momentumCache = cache.NewMomentumCache(rdb)
	} else {
		log.Warnw("REDIS_URI not set, using in-memory momentum cache")
		momentumCache = cache.NewMemoryMomentumCache()
	}

	// Initialize services
	evaluator := service.NewEvaluatorService(aiConfig, log)
	content := service.NewFSContentSource(cfg.ContentDir)
	bankSvc := service.NewBankService(questionRepo, evaluator, content, log)
	repetitionSvc := service.NewSpacedRepetitionService(repetitionRepo, log)
	masterySvc := service.NewMasteryService(performanceRepo, masteryRepo, learningConfig, log)
	momentumSvc := service.NewMomentumService(momentumCache, log)
	progressSvc := service.NewProgressService(progressRepo, learningConfig, log)
	selectionSvc := service.NewSelectionService(bankSvc, repetitionSvc, masterySvc, momentumSvc, log)
	sessionSvc := service.NewQuizSessionService(
		sessionRepo, selectionSvc, evaluator, repetitionSvc, masterySvc,
		momentumSvc, progressSvc, learningConfig, log)

	// Background jobs
	sched := scheduler.New(progressSvc, bankSvc, log)
	sched.Start()
	defer sched.Stop()

	// Create router with container
	container := &rest.Container{
		SessionService:    sessionSvc,
		MomentumService:   momentumSvc,
		MasteryService:    masterySvc,
		RepetitionService: repetitionSvc,
		ProgressService:   progressSvc,
		BankService:       bankSvc,
		Scheduler:         sched,
		CORS:              cfg.CORS,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen failed", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("forced shutdown", "error", err)
	}

	log.Infow("server exited")
}
