package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"danceanalyzer/internal/config"

	"go.uber.org/zap"
)

func setupTestStore(t *testing.T, maxProcessedGB int64) (*Store, string) {
	t.Helper()

	tempDir := t.TempDir()
	cfg := &config.Config{
		UploadDir:          filepath.Join(tempDir, "uploads"),
		ProcessedDir:       filepath.Join(tempDir, "processed"),
		MaxProcessedSizeGB: maxProcessedGB,
	}

	store, err := NewStore(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	return store, tempDir
}

func TestNewStoreCreatesDirectories(t *testing.T) {
	store, _ := setupTestStore(t, 4)

	for _, dir := range []string{store.UploadDir(), store.ProcessedDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("Expected directory %s to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("Expected %s to be a directory", dir)
		}
	}
}

func TestSaveUpload(t *testing.T) {
	store, _ := setupTestStore(t, 4)

	content := []byte("fake video data")
	path, err := store.SaveUpload(bytes.NewReader(content), "abc12345", "my dance.mp4")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}

	if !strings.HasSuffix(path, "abc12345_temp.mp4") {
		t.Errorf("Unexpected upload path: %s", path)
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved upload: %v", err)
	}
	if !bytes.Equal(saved, content) {
		t.Error("Saved upload content does not match input")
	}
}

func TestOutputPath(t *testing.T) {
	store, _ := setupTestStore(t, 4)

	path := store.OutputPath("abc12345")
	if filepath.Base(path) != "abc12345_sidebyside.mp4" {
		t.Errorf("Unexpected output path: %s", path)
	}
	if filepath.Dir(path) != store.ProcessedDir() {
		t.Errorf("Output path not in processed dir: %s", path)
	}
}

func TestProcessedFileFlattensPath(t *testing.T) {
	store, _ := setupTestStore(t, 4)

	path := store.ProcessedFile("../../etc/passwd")
	if filepath.Dir(path) != store.ProcessedDir() {
		t.Errorf("Expected path inside processed dir, got %s", path)
	}
	if filepath.Base(path) != "passwd" {
		t.Errorf("Expected flattened name, got %s", path)
	}
}

func TestList(t *testing.T) {
	store, _ := setupTestStore(t, 4)

	for _, name := range []string{"a_sidebyside.mp4", "b_sidebyside.mp4"} {
		if err := os.WriteFile(filepath.Join(store.ProcessedDir(), name), []byte("xxxx"), 0644); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
	}

	files, totalSize, err := store.List(store.ProcessedDir())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 files, got %d", len(files))
	}
	if totalSize != 8 {
		t.Errorf("Expected total size 8, got %d", totalSize)
	}
}

func TestSweepRemovesOldestFirst(t *testing.T) {
	store, _ := setupTestStore(t, 4)
	// shrink the cap so two small files overflow it
	store.maxProcessedBytes = 6

	oldPath := filepath.Join(store.ProcessedDir(), "old_sidebyside.mp4")
	newPath := filepath.Join(store.ProcessedDir(), "new_sidebyside.mp4")

	if err := os.WriteFile(oldPath, []byte("xxxx"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if err := os.WriteFile(newPath, []byte("yyyy"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("Failed to set file times: %v", err)
	}

	store.sweep()

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("Expected oldest file to be swept")
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("Expected newest file to survive sweep: %v", err)
	}
}

func TestSweepDisabledWithoutCap(t *testing.T) {
	store, _ := setupTestStore(t, 0)

	path := filepath.Join(store.ProcessedDir(), "keep_sidebyside.mp4")
	if err := os.WriteFile(path, []byte("xxxx"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	store.sweep()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected file to survive sweep with no cap: %v", err)
	}
}
