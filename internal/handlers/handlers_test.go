package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"danceanalyzer/internal/config"
	"danceanalyzer/internal/dto"
	"danceanalyzer/internal/models"
	"danceanalyzer/internal/repository/sqlite"
	"danceanalyzer/internal/services"
	"danceanalyzer/internal/services/pose"
	"danceanalyzer/internal/services/storage"
	"danceanalyzer/internal/services/video"
	"danceanalyzer/internal/services/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestManager(t *testing.T) (*services.Manager, *config.Config) {
	t.Helper()

	tempDir := t.TempDir()
	cfg := &config.Config{
		ModelPath:          filepath.Join(tempDir, "missing.pb"),
		UploadDir:          filepath.Join(tempDir, "uploads"),
		ProcessedDir:       filepath.Join(tempDir, "processed"),
		DBPath:             filepath.Join(tempDir, "jobs.db"),
		MaxUploadSizeMB:    10,
		MaxDimension:       1280,
		MinConfidence:      0.5,
		ProcessingWorkers:  1,
		ProgressInterval:   30,
		MaxProcessedSizeGB: 4,
	}

	log := zap.NewNop()

	store, err := storage.NewStore(cfg, log)
	require.NoError(t, err)

	db, err := sqlite.New(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	estimators := []*pose.Estimator{pose.NewEstimator(cfg, log)}
	processor := video.NewProcessor(cfg, log)
	hub := websocket.NewHubService(log)

	manager := services.NewManager(estimators, processor, store, sqlite.NewJobRepository(db), hub, log)
	t.Cleanup(manager.Close)

	return manager, cfg
}

func multipartBody(t *testing.T, fieldName, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestHealthHandler(t *testing.T) {
	manager, _ := setupTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	HealthHandler(manager, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var data dto.HealthData
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&data))
	assert.Equal(t, "healthy", data.Status)
	assert.False(t, data.ModelLoaded) // no model file in the test setup
	assert.NotEmpty(t, data.OpenCVVersion)
}

func TestProcessVideoHandlerMethodNotAllowed(t *testing.T) {
	manager, cfg := setupTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/api/process", nil)
	rec := httptest.NewRecorder()

	ProcessVideoHandler(manager, cfg, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestProcessVideoHandlerMissingFile(t *testing.T) {
	manager, cfg := setupTestManager(t)

	req := httptest.NewRequest(http.MethodPost, "/api/process", nil)
	rec := httptest.NewRecorder()

	ProcessVideoHandler(manager, cfg, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessVideoHandlerRejectsNonVideo(t *testing.T) {
	manager, cfg := setupTestManager(t)

	body, contentType := multipartBody(t, "file", "notes.txt", "text/plain", []byte("not a video"))
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	ProcessVideoHandler(manager, cfg, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessVideoHandlerInvalidVideo(t *testing.T) {
	manager, cfg := setupTestManager(t)

	// video content type but garbage bytes, decoding must fail with a 500
	body, contentType := multipartBody(t, "file", "fake.mp4", "video/mp4", []byte("garbage"))
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	ProcessVideoHandler(manager, cfg, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// the temp upload must not be left behind
	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListOutputsHandlerPagination(t *testing.T) {
	manager, cfg := setupTestManager(t)

	for _, name := range []string{"a_sidebyside.mp4", "b_sidebyside.mp4", "c_sidebyside.mp4"} {
		path := filepath.Join(manager.GetStore().ProcessedDir(), name)
		require.NoError(t, os.WriteFile(path, []byte("xx"), 0644))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/outputs?page=1&limit=2", nil)
	rec := httptest.NewRecorder()

	ListOutputsHandler(manager, cfg, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var data dto.OutputsData
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&data))
	assert.Len(t, data.Outputs, 2)
	assert.Equal(t, 3, data.Length)
	assert.Equal(t, 2, data.TotalPages)
	assert.Equal(t, int64(6), data.Size)
}

func TestDeleteOutputHandler(t *testing.T) {
	manager, _ := setupTestManager(t)

	path := filepath.Join(manager.GetStore().ProcessedDir(), "gone_sidebyside.mp4")
	require.NoError(t, os.WriteFile(path, []byte("xx"), 0644))

	req := httptest.NewRequest(http.MethodDelete, "/api/outputs/delete?file=gone_sidebyside.mp4", nil)
	rec := httptest.NewRecorder()

	DeleteOutputHandler(manager, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDebugFilesHandler(t *testing.T) {
	manager, _ := setupTestManager(t)

	store := manager.GetStore()
	require.NoError(t, os.WriteFile(filepath.Join(store.UploadDir(), "x_temp.mp4"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.ProcessedDir(), "x_sidebyside.mp4"), []byte("x"), 0644))

	req := httptest.NewRequest(http.MethodGet, "/debug/files", nil)
	rec := httptest.NewRecorder()

	DebugFilesHandler(manager, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var data dto.DebugFiles
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&data))
	assert.Len(t, data.Uploads, 1)
	assert.Len(t, data.Processed, 1)
}

func TestGetJobsHandler(t *testing.T) {
	manager, _ := setupTestManager(t)

	job := models.NewJob("dance.mp4")
	require.NoError(t, manager.GetRepo().Insert(job))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()

	GetJobsHandler(manager, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var jobs []models.Job
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
}

func TestGetJobStatsHandler(t *testing.T) {
	manager, _ := setupTestManager(t)

	job := models.NewJob("dance.mp4")
	require.NoError(t, manager.GetRepo().Insert(job))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/stats", nil)
	rec := httptest.NewRecorder()

	GetJobStatsHandler(manager, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats models.JobStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 1, stats.TotalJobs)
}
