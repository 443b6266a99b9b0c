package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"expensetracker/config"
)

// StoredObject identifies a stored receipt image.
type StoredObject struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// ReceiptStorage is the external object-storage boundary. The service only
// ever persists the returned reference, never the image bytes.
type ReceiptStorage interface {
	Store(owner, filename, contentType string, body io.Reader) (StoredObject, error)
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// LocalReceiptStorage stores receipts on the local filesystem under
// receipts/<owner>/<timestamp>-<name> and serves them from a public base
// URL.
type LocalReceiptStorage struct {
	cfg *config.StorageConfig
}

// NewLocalReceiptStorage creates a filesystem-backed receipt store.
func NewLocalReceiptStorage(cfg *config.StorageConfig) *LocalReceiptStorage {
	return &LocalReceiptStorage{cfg: cfg}
}

// Store writes the image and returns its reference. The caller validates
// type and size before calling.
func (s *LocalReceiptStorage) Store(owner, filename, contentType string, body io.Reader) (StoredObject, error) {
	sanitized := unsafeFilenameChars.ReplaceAllString(filepath.Base(filename), "_")
	key := fmt.Sprintf("receipts/%s/%d-%s", owner, time.Now().UnixMilli(), sanitized)

	path := filepath.Join(s.cfg.ReceiptDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return StoredObject{}, fmt.Errorf("create receipt directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return StoredObject{}, fmt.Errorf("create receipt file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		// Drop the partial file so a failed upload leaves nothing behind.
		os.Remove(path)
		return StoredObject{}, fmt.Errorf("write receipt file: %w", err)
	}

	return StoredObject{
		URL: strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + key,
		Key: key,
	}, nil
}
