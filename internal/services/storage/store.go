package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"danceanalyzer/internal/config"

	"go.uber.org/zap"
)

// FileInfo describes one file in the upload or processed directory.
type FileInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Store owns the two ephemeral directories: uploads/ for temporary input
// files and processed/ for the side-by-side outputs.
type Store struct {
	uploadDir         string
	processedDir      string
	maxProcessedBytes int64
	logger            *zap.Logger
}

func NewStore(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.MkdirAll(cfg.ProcessedDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create processed directory: %w", err)
	}

	return &Store{
		uploadDir:         cfg.UploadDir,
		processedDir:      cfg.ProcessedDir,
		maxProcessedBytes: cfg.MaxProcessedSizeGB << 30,
		logger:            logger,
	}, nil
}

func (s *Store) UploadDir() string    { return s.uploadDir }
func (s *Store) ProcessedDir() string { return s.processedDir }

// SaveUpload writes the uploaded stream to a temp file in the upload
// directory, keeping the original extension.
func (s *Store) SaveUpload(r io.Reader, jobID, originalName string) (string, error) {
	name := fmt.Sprintf("%s_temp%s", jobID, filepath.Ext(originalName))
	path := filepath.Join(s.uploadDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	return path, nil
}

// OutputPath returns the processed output path for a job.
func (s *Store) OutputPath(jobID string) string {
	return filepath.Join(s.processedDir, fmt.Sprintf("%s_sidebyside.mp4", jobID))
}

// ProcessedFile resolves a bare filename inside the processed directory.
// The name is flattened with filepath.Base so callers cannot escape it.
func (s *Store) ProcessedFile(name string) string {
	return filepath.Join(s.processedDir, filepath.Base(name))
}

// Remove deletes a file, logging instead of failing when it is already gone.
func (s *Store) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove file", zap.String("path", path), zap.Error(err))
	}
}

// List returns the files in dir (newest first) and their total size.
func (s *Store) List(dir string) ([]FileInfo, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	var totalSize int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
		totalSize += info.Size()
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ModTime.After(files[j].ModTime) })

	return files, totalSize, nil
}

// Run periodically sweeps the processed directory so it stays under the
// configured size cap. Meant to run in its own goroutine.
func (s *Store) Run(intervalSec int) {
	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for {
		<-ticker.C
		s.sweep()
	}
}

// sweep removes the oldest processed outputs until the directory fits the cap.
func (s *Store) sweep() {
	if s.maxProcessedBytes <= 0 {
		return
	}

	files, totalSize, err := s.List(s.processedDir)
	if err != nil {
		s.logger.Error("sweep failed to list processed directory", zap.Error(err))
		return
	}

	removed := 0
	for i := len(files) - 1; i >= 0 && totalSize > s.maxProcessedBytes; i-- {
		oldest := files[i]
		s.Remove(filepath.Join(s.processedDir, oldest.Name))
		totalSize -= oldest.Size
		removed++
	}

	if removed > 0 {
		s.logger.Info("swept old processed outputs",
			zap.Int("removed", removed), zap.Int64("dir_size", totalSize))
	}
}
