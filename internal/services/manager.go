package services

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"danceanalyzer/internal/dto"
	"danceanalyzer/internal/metrics"
	"danceanalyzer/internal/models"
	"danceanalyzer/internal/repository/sqlite"
	"danceanalyzer/internal/services/pose"
	"danceanalyzer/internal/services/storage"
	"danceanalyzer/internal/services/video"
	"danceanalyzer/internal/services/websocket"

	"go.uber.org/zap"
)

// Manager wires the upload flow together: save the file, run the transform
// with a pooled pose estimator, persist the job record and broadcast progress.
type Manager struct {
	estimators []*pose.Estimator
	pool       chan *pose.Estimator
	processor  *video.Processor
	store      *storage.Store
	repo       *sqlite.JobRepository
	hub        *websocket.HubService
	logger     *zap.Logger
}

func NewManager(estimators []*pose.Estimator, processor *video.Processor, store *storage.Store,
	repo *sqlite.JobRepository, hub *websocket.HubService, logger *zap.Logger) *Manager {

	pool := make(chan *pose.Estimator, len(estimators))
	for _, est := range estimators {
		pool <- est
	}

	manager := &Manager{
		estimators: estimators,
		pool:       pool,
		processor:  processor,
		store:      store,
		repo:       repo,
		hub:        hub,
		logger:     logger,
	}

	manager.logger.Info("manager started", zap.Int("estimators", len(estimators)))
	return manager
}

// ProcessUpload runs the whole pipeline for one uploaded video and blocks
// until the output is fully encoded. The uploaded temp file is always
// removed, and a partial output is removed on failure.
func (m *Manager) ProcessUpload(file io.Reader, originalName string) (*models.Job, *video.Result, error) {
	job := models.NewJob(originalName)
	log := m.logger.With(zap.String("job_id", job.ID), zap.String("source", originalName))

	inputPath, err := m.store.SaveUpload(file, job.ID, originalName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save upload: %w", err)
	}
	defer m.store.Remove(inputPath)

	if err := m.repo.Insert(job); err != nil {
		log.Error("failed to insert job record", zap.Error(err))
	}

	// one estimator per concurrent upload, nets are not concurrency-safe
	estimator := <-m.pool
	defer func() { m.pool <- estimator }()

	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	job.MarkProcessing()
	m.updateJob(job, log)

	outputPath := m.store.OutputPath(job.ID)
	start := time.Now()

	result, err := m.processor.Process(estimator, inputPath, outputPath, func(frame, total int) {
		m.broadcastProgress(job.ID, frame, total, false)
	})
	if err != nil {
		m.store.Remove(outputPath)
		job.MarkFailed(err.Error())
		m.updateJob(job, log)
		metrics.VideosProcessedTotal.WithLabelValues("failed").Inc()
		return nil, nil, err
	}

	job.MarkCompleted(filepath.Base(outputPath), result.Frames, result.ProcessedFrames,
		result.FPS, result.Width, result.Height, result.OutputSize)
	m.updateJob(job, log)

	metrics.VideosProcessedTotal.WithLabelValues("completed").Inc()
	metrics.ProcessingDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())

	m.broadcastProgress(job.ID, result.Frames, result.Frames, true)

	log.Info("video processed",
		zap.Int("frames", result.Frames),
		zap.Int("processed_frames", result.ProcessedFrames),
		zap.Float64("fps", result.FPS),
		zap.Int64("output_size", result.OutputSize),
		zap.Duration("took", time.Since(start)))

	return job, result, nil
}

// ModelReady reports whether at least one pooled estimator has a loaded network.
func (m *Manager) ModelReady() bool {
	for _, est := range m.estimators {
		if est.Ready() {
			return true
		}
	}
	return false
}

func (m *Manager) GetHub() *websocket.HubService {
	return m.hub
}

func (m *Manager) GetStore() *storage.Store {
	return m.store
}

func (m *Manager) GetRepo() *sqlite.JobRepository {
	return m.repo
}

// Close releases the pooled estimators.
func (m *Manager) Close() {
	for _, est := range m.estimators {
		est.Close()
	}
}

func (m *Manager) updateJob(job *models.Job, log *zap.Logger) {
	if err := m.repo.Update(job); err != nil {
		log.Error("failed to update job record", zap.Error(err))
	}
}

func (m *Manager) broadcastProgress(jobID string, frame, total int, done bool) {
	update := dto.ProgressUpdate{JobID: jobID, Frame: frame, TotalFrames: total, Done: done}
	if total > 0 {
		update.Percent = float64(frame) / float64(total) * 100
	}

	msg, err := json.Marshal(update)
	if err != nil {
		return
	}
	m.hub.Broadcast(msg)
}
