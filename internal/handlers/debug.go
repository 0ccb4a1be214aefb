package handlers

import (
	"encoding/json"
	"net/http"

	"danceanalyzer/internal/dto"
	"danceanalyzer/internal/services"

	"go.uber.org/zap"
)

// DebugFilesHandler lists the contents of the upload and processed
// directories. Meant for troubleshooting, not for the UI.
func DebugFilesHandler(manager *services.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := manager.GetStore()

		uploads, _, err := store.List(store.UploadDir())
		if err != nil {
			http.Error(w, "Unable to read upload directory", http.StatusInternalServerError)
			return
		}
		processed, _, err := store.List(store.ProcessedDir())
		if err != nil {
			http.Error(w, "Unable to read processed directory", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(dto.DebugFiles{Uploads: uploads, Processed: processed}); err != nil {
			logger.Error("error encoding JSON response", zap.Error(err))
		}
	}
}
