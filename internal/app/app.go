package app

import (
	"fmt"
	"net/http"

	"danceanalyzer/internal/config"
	"danceanalyzer/internal/logger"
	"danceanalyzer/internal/repository/sqlite"
	"danceanalyzer/internal/routes"
	"danceanalyzer/internal/services"
	"danceanalyzer/internal/services/pose"
	"danceanalyzer/internal/services/storage"
	"danceanalyzer/internal/services/video"
	"danceanalyzer/internal/services/websocket"

	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	log        *zap.Logger
	db         *sqlite.DB
	store      *storage.Store
	hubService *websocket.HubService
	manager    *services.Manager
}

func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	store, err := storage.NewStore(cfg, log)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	repo := sqlite.NewJobRepository(db)

	estimators := make([]*pose.Estimator, 0, cfg.ProcessingWorkers)
	for i := 0; i < cfg.ProcessingWorkers; i++ {
		estimators = append(estimators, pose.NewEstimator(cfg, log)) // each worker loads its own net
	}

	processor := video.NewProcessor(cfg, log)
	hub := websocket.NewHubService(log)

	manager := services.NewManager(estimators, processor, store, repo, hub, log)

	return &App{
		config:     cfg,
		log:        log,
		db:         db,
		store:      store,
		hubService: hub,
		manager:    manager,
	}, nil
}

func (a *App) Run() error {
	defer a.log.Sync()
	defer a.db.Close()
	defer a.manager.Close()

	// Start background services
	go a.hubService.Run()
	go a.store.Run(a.config.SweepIntervalSec)

	// Setup routes
	router := routes.SetupRoutes(a.manager, a.config, a.log)

	fmt.Printf("🚀 Dance Skeleton Analyzer\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("📁 Uploads: %s\n", a.store.UploadDir())
	fmt.Printf("📁 Processed: %s\n", a.store.ProcessedDir())
	fmt.Printf("🤖 Pose model: %s\n", a.config.ModelPath)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), router)
}
