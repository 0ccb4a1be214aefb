package handlers

import (
	"encoding/json"
	"net/http"

	"danceanalyzer/internal/dto"
	"danceanalyzer/internal/services"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// HealthHandler reports service status and pose model availability.
func HealthHandler(manager *services.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := dto.HealthData{
			Status:        "healthy",
			ModelLoaded:   manager.ModelReady(),
			OpenCVVersion: gocv.OpenCVVersion(),
			Viewers:       manager.GetHub().GetClientCount(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("error encoding JSON response", zap.Error(err))
		}
	}
}
