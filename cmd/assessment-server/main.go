// cmd/assessment-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"clinovia-inference/internal/analytics"
	"clinovia-inference/internal/api"
	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/cache"
	"clinovia-inference/internal/clinical/alzheimer"
	"clinovia-inference/internal/clinical/cardiology"
	"clinovia-inference/internal/common/config"
	"clinovia-inference/internal/common/database"
	"clinovia-inference/internal/common/logger"
	"clinovia-inference/internal/common/observability"
	"clinovia-inference/internal/model"
	"clinovia-inference/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assessment server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	repo := assessment.NewPostgresRepository(pg)

	// --- Init result cache ---
	var resultCache cache.ResultCache
	switch cfg.ResultCache.Backend {
	case "redis":
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		resultCache = cache.NewRedisCache(redisClient.Client,
			time.Duration(cfg.ResultCache.TTL)*time.Second)
		zapLog.Info("Redis result cache connected successfully")
	default:
		resultCache, err = cache.NewMemoryCache(cfg.ResultCache.Capacity)
		if err != nil {
			zapLog.Fatal("memory cache init failed", zap.Error(err))
		}
		zapLog.Info("In-memory result cache initialized",
			zap.Int("capacity", cfg.ResultCache.Capacity))
	}

	// --- Init model store and loader ---
	var store model.Store
	if cfg.ModelStore.Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.ModelStore.Region))
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		store = model.NewS3Store(s3.NewFromConfig(awsCfg),
			cfg.ModelStore.Bucket, cfg.ModelStore.StagingDir, log)
		zapLog.Info("Model store: S3", zap.String("bucket", cfg.ModelStore.Bucket))
	} else {
		store = model.NewLocalStore(cfg.ModelStore.Root)
		zapLog.Info("Model store: local disk", zap.String("root", cfg.ModelStore.Root))
	}

	loader, err := model.NewLoader(store, cfg.ModelStore.MaxCached, log)
	if err != nil {
		zapLog.Fatal("model loader init failed", zap.Error(err))
	}

	// --- Assemble the runner ---
	runnerOpts := []assessment.RunnerOption{
		assessment.WithResultCache(resultCache),
		assessment.WithObservability(obs),
	}

	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		runnerOpts = append(runnerOpts, assessment.WithUsageIndexer(
			analytics.NewUsageIndexer(esClient.Client, cfg.Analytics.UsageIndex, log)))
	}

	runner := assessment.NewRunner(repo, log, runnerOpts...)

	// --- Register the assessment catalog ---
	catalog := assessment.NewRegistry()

	defs := cardiology.Definitions()
	defs = append(defs, alzheimer.Definitions(loader, log)...)

	fileReg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		if os.IsNotExist(err) {
			zapLog.Warn("registry file not found, all assessments enabled without schemas",
				zap.String("path", cfg.Registry.Path))
			fileReg = nil
		} else {
			zapLog.Fatal("registry file load failed", zap.Error(err))
		}
	}

	registered := 0
	for _, def := range defs {
		if fileReg != nil {
			if !fileReg.Enabled(def.Name) {
				zapLog.Info("assessment disabled", zap.String("name", def.Name))
				continue
			}
			if entry, ok := fileReg.Lookup(def.Name); ok && entry.InputSchema != nil {
				def.InputSchema = entry.InputSchema
			}
		}
		if err := catalog.Register(def); err != nil {
			zapLog.Fatal("assessment registration failed",
				zap.String("name", def.Name), zap.Error(err))
		}
		registered++
	}
	zapLog.Info("Assessment catalog registered", zap.Int("count", registered))

	// --- HTTP server with graceful shutdown ---
	server := api.NewServer(nil, catalog, runner, repo, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.RequestTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.RequestTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Assessment server stopped")
}
