package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"danceanalyzer/internal/models"
	"danceanalyzer/internal/services"

	"go.uber.org/zap"
)

// GetJobsHandler lists job history records, newest first.
func GetJobsHandler(manager *services.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := &models.JobFilter{
			Status: models.JobStatus(r.URL.Query().Get("status")),
		}

		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
			filter.Limit = limit
		} else {
			filter.Limit = 50
		}
		if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
			filter.Offset = offset
		}

		jobs, err := manager.GetRepo().GetAll(filter)
		if err != nil {
			logger.Error("failed to query jobs", zap.Error(err))
			http.Error(w, "Unable to read job history", http.StatusInternalServerError)
			return
		}
		if jobs == nil {
			jobs = []models.Job{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(jobs); err != nil {
			logger.Error("error encoding JSON response", zap.Error(err))
		}
	}
}

// GetJobStatsHandler returns aggregate statistics over all jobs.
func GetJobStatsHandler(manager *services.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := manager.GetRepo().Stats()
		if err != nil {
			logger.Error("failed to query job stats", zap.Error(err))
			http.Error(w, "Unable to read job stats", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			logger.Error("error encoding JSON response", zap.Error(err))
		}
	}
}
