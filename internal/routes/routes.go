package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"danceanalyzer/internal/config"
	"danceanalyzer/internal/handlers"
	"danceanalyzer/internal/middleware"
	"danceanalyzer/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(staticDir, path+".html")

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers HTTP routes, static file serving, API endpoints,
// and wraps the mux with the request logging middleware.
func SetupRoutes(manager *services.Manager, cfg *config.Config, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files and processed outputs
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	mux.Handle("/processed/", http.StripPrefix("/processed/", http.FileServer(http.Dir(cfg.ProcessedDir))))

	// API endpoints
	mux.HandleFunc("/api/process", handlers.ProcessVideoHandler(manager, cfg, logger))
	mux.HandleFunc("/api/health", handlers.HealthHandler(manager, logger))
	mux.HandleFunc("/api/progress", handlers.ProgressWebsocketHandler(manager, logger))
	mux.HandleFunc("/api/outputs", handlers.ListOutputsHandler(manager, cfg, logger))
	mux.HandleFunc("/api/outputs/view", handlers.ViewOutputHandler(manager))
	mux.HandleFunc("/api/outputs/delete", handlers.DeleteOutputHandler(manager, logger))
	mux.HandleFunc("/api/jobs", handlers.GetJobsHandler(manager, logger))
	mux.HandleFunc("/api/jobs/stats", handlers.GetJobStatsHandler(manager, logger))

	// Debug and observability
	mux.HandleFunc("/debug/files", handlers.DebugFilesHandler(manager, logger))
	mux.Handle("/metrics", promhttp.Handler())

	// Automatic HTML handler mapping for example: /index -> /static/index.html
	mux.HandleFunc("/", dynamicHTMLHandler(cfg.StaticDir))

	// Apply middleware
	return middleware.RequestLogger(logger)(mux)
}
