package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	resultcache "github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/cache"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/model"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/model/onnx"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/preprocess"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/repository/postgres"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/storage"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/cache"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/config"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/database"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/metrics"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/registry"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/usecase"
)

// App holds the wired analysis service and the resources it owns
type App struct {
	Registry *registry.Registry
	Analysis usecase.AnalysisUsecase
	DB       *gorm.DB
	Redis    *redis.Client
	Metrics  *prometheus.Registry

	log *zap.Logger
}

// New loads the model registry and wires the analysis usecase.
// Database and Redis are optional: connection failures are logged and the
// service continues without history or caching. A registry that cannot be
// built is fatal.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{log: log, Metrics: prometheus.NewRegistry()}
	a.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.Metrics)

	labels := cfg.Labels.Vocabulary()
	reg, err := registry.New(ctx, registry.Options{
		Specs:  cfg.Models,
		Labels: labels,
		Quorum: cfg.Agreement,
		Loader: model.NewLoader(model.LoaderConfig{
			NumClasses:        labels.Len(),
			SharedLibraryPath: cfg.ONNX.SharedLibraryPath,
			RemoteTimeout:     cfg.Inference.ModelTimeout,
		}),
		Preprocess: preprocess.ForMode,
		Logger:     log,
	})
	if err != nil {
		_ = onnx.DestroyEnvironment()
		return nil, fmt.Errorf("failed to build model registry: %w", err)
	}
	a.Registry = reg

	stageCfg := usecase.InferenceConfig{
		Workers:      cfg.Inference.Workers,
		ModelTimeout: cfg.Inference.ModelTimeout,
		Loader:       preprocess.Load,
		Metrics:      m,
		Logger:       log,
	}
	if cfg.Inference.Explain {
		attributor := service.NewAttributor(cfg.Attribution)
		stageCfg.Explainer = attributor
		stageCfg.ExplainOpts = attributor.Defaults()
	}

	deps := usecase.Dependencies{
		Registry: reg,
		Stage:    usecase.NewInferenceStage(stageCfg),
		Decode:   preprocess.NewDecoder(cfg.Server.MaxImagePixels).Decode,
		Metrics:  m,
		Logger:   log,
	}

	if cfg.Storage.Enabled {
		deps.Storage = storage.NewWriter(cfg.Storage.OutputDir)
	}

	if cfg.Database.Enabled {
		if db, err := openDatabase(&cfg.Database); err != nil {
			log.Warn("Failed to connect to database, continuing without history", zap.Error(err))
		} else {
			log.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
			a.DB = db
			deps.Repo = postgres.NewAnalysisRepository(db)
		}
	}

	if cfg.Redis.Enabled {
		if client, err := cache.NewRedisClient(ctx, &cfg.Redis); err != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
		} else {
			log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
			a.Redis = client
			deps.Cache = resultcache.NewResultCache(client, cfg.Redis.TTL)
		}
	}

	a.Analysis = usecase.NewAnalysisUsecase(deps)
	return a, nil
}

func openDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// Close releases models, connections and the ONNX environment
func (a *App) Close() error {
	var errs []error
	if a.Registry != nil {
		errs = append(errs, a.Registry.Close())
	}
	if a.DB != nil {
		errs = append(errs, database.Close(a.DB))
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, onnx.DestroyEnvironment())
	return errors.Join(errs...)
}
