package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore persists uploaded documents and returns where they were written.
type FileStore interface {
	Save(purpose, originalName string, data []byte) (string, error)
	Remove(path string) error
}

// LocalFileStore writes files under root/<purpose>/ with uuid names.
type LocalFileStore struct {
	root string
}

func NewLocalFileStore(root string) *LocalFileStore {
	if root == "" {
		root = "./uploads"
	}
	return &LocalFileStore{root: root}
}

func (s *LocalFileStore) Save(purpose, originalName string, data []byte) (string, error) {
	dir := filepath.Join(s.root, purpose)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(dir, uuid.NewString()+ext)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return path, nil
}

func (s *LocalFileStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
