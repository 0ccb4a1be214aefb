package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"danceanalyzer/internal/config"
	"danceanalyzer/internal/dto"
	"danceanalyzer/internal/services"

	"go.uber.org/zap"
)

// ProcessVideoHandler accepts a multipart video upload, processes it
// synchronously into a side-by-side comparison and returns the output path
// with summary statistics.
func ProcessVideoHandler(manager *services.Manager, cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSizeMB<<20)

		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Missing video file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "video/") {
			http.Error(w, "File must be a video", http.StatusBadRequest)
			return
		}

		logger.Info("upload received",
			zap.String("filename", header.Filename),
			zap.Int64("size", header.Size),
			zap.String("content_type", contentType))

		job, result, err := manager.ProcessUpload(file, header.Filename)
		if err != nil {
			logger.Error("processing failed", zap.String("filename", header.Filename), zap.Error(err))
			http.Error(w, "Processing failed", http.StatusInternalServerError)
			return
		}

		resp := dto.ProcessResponse{
			ID:         job.ID,
			OutputPath: "processed/" + job.OutputName,
			Info: dto.VideoInfo{
				Frames:          result.Frames,
				ProcessedFrames: result.ProcessedFrames,
				FPS:             result.FPS,
				Width:           result.Width,
				Height:          result.Height,
				Size:            result.OutputSize,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("error encoding JSON response", zap.Error(err))
		}
	}
}
