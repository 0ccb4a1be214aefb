package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"danceanalyzer/internal/config"
	"danceanalyzer/internal/dto"
	"danceanalyzer/internal/services"

	"go.uber.org/zap"
)

// ListOutputsHandler returns a paginated listing of the processed directory.
func ListOutputsHandler(manager *services.Manager, cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageString := r.URL.Query().Get("page")
		limitString := r.URL.Query().Get("limit")

		page, err := strconv.Atoi(pageString)
		if page <= 0 || err != nil {
			page = 1
		}
		limit, err := strconv.Atoi(limitString)
		if limit <= 0 || err != nil {
			limit = 10
		}

		store := manager.GetStore()
		files, totalSize, err := store.List(store.ProcessedDir())
		if err != nil {
			http.Error(w, "Unable to read processed directory", http.StatusInternalServerError)
			return
		}

		start := (page - 1) * limit
		end := start + limit
		if start > len(files) {
			start = len(files)
		}
		if end > len(files) {
			end = len(files)
		}

		data := dto.OutputsData{
			Outputs:     files[start:end],
			Size:        totalSize,
			MaxSize:     cfg.MaxProcessedSizeGB << 30,
			Length:      len(files),
			TotalPages:  (len(files) + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("error encoding JSON response", zap.Error(err))
		}
	}
}

// ViewOutputHandler serves a single processed output file.
func ViewOutputHandler(manager *services.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := r.URL.Query().Get("file")
		if file == "" {
			http.Error(w, "Missing file parameter", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, manager.GetStore().ProcessedFile(file))
	}
}

// DeleteOutputHandler removes a processed output and its job record.
func DeleteOutputHandler(manager *services.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete && r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		file := r.URL.Query().Get("file")
		if file == "" {
			http.Error(w, "Missing file parameter", http.StatusBadRequest)
			return
		}

		store := manager.GetStore()
		store.Remove(store.ProcessedFile(file))

		if err := manager.GetRepo().DeleteByOutputName(file); err != nil {
			logger.Error("failed to delete job record", zap.String("file", file), zap.Error(err))
		}

		w.Write([]byte("OK"))
	}
}
