package storage

import (
	"io"
	"os"
	"path/filepath"
)

type FileStorage interface {
	Save(path string, data io.Reader) error
	Get(path string) (io.ReadCloser, error)
	Delete(path string) error
	Exists(path string) bool
}

type fileStorage struct {
	basePath string
}

func NewFileStorage(basePath string) FileStorage {
	return &fileStorage{basePath: basePath}
}

// Save пишет во временный файл и подменяет атомарно, читатель статуса
// никогда не видит недописанные данные
func (s *fileStorage) Save(path string, data io.Reader) error {
	fullPath := filepath.Join(s.basePath, path)

	// Создаем директорию если нужно
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".tmp-*")
	if err != nil {
		return err
	}

	if _, err = io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), fullPath)
}

func (s *fileStorage) Get(path string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, path)
	return os.Open(fullPath)
}

func (s *fileStorage) Delete(path string) error {
	fullPath := filepath.Join(s.basePath, path)
	return os.Remove(fullPath)
}

func (s *fileStorage) Exists(path string) bool {
	fullPath := filepath.Join(s.basePath, path)
	_, err := os.Stat(fullPath)
	return !os.IsNotExist(err)
}