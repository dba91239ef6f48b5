package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"carrental-backend/internal/logger"
)

// MockStorageService stores documents on the local filesystem and serves
// them through the API's download route. For development without Firebase.
type MockStorageService struct {
	baseURL      string // Server URL (e.g., "http://localhost:8080")
	documentsDir string
}

func NewMockStorageService(baseURL, uploadsDir string) (*MockStorageService, error) {
	documentsDir := filepath.Join(uploadsDir, "documents")
	if err := os.MkdirAll(documentsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}

	return &MockStorageService{
		baseURL:      strings.TrimRight(baseURL, "/"),
		documentsDir: documentsDir,
	}, nil
}

func (m *MockStorageService) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	fullPath, err := m.localPath(key)
	if err != nil {
		return "", err
	}
	if err := m.saveFile(fullPath, bytes.NewReader(data)); err != nil {
		return "", err
	}
	logger.Debug("Stored document in mock storage", "key", key, "size", len(data), "contentType", contentType)

	return fmt.Sprintf("%s/api/v1/download/%s?key=%s", m.baseURL, encodeKey(key), url.QueryEscape(key)), nil
}

func (m *MockStorageService) Delete(ctx context.Context, key string) error {
	fullPath, err := m.localPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (m *MockStorageService) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := m.localPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (m *MockStorageService) saveFile(fullPath string, reader io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// localPath maps key below documentsDir, refusing keys that escape it.
func (m *MockStorageService) localPath(key string) (string, error) {
	fullPath := filepath.Join(m.documentsDir, filepath.FromSlash(key))
	if !strings.HasPrefix(fullPath, m.documentsDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return fullPath, nil
}

// encodeKey creates a URL-safe hash of the key
func encodeKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
