package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore хранит аудиофайлы в локальной директории как {dir}/{key}.{ext}.
// Наличие файла - единственный признак попадания в кэш, содержимое не проверяется.
type FileStore struct {
	Dir string
	Ext string
}

// NewFileStore создает хранилище аудио
func NewFileStore(dir, ext string) *FileStore {
	if dir == "" {
		dir = "docs/audio"
	}
	if ext == "" {
		ext = "mp3"
	}
	return &FileStore{Dir: dir, Ext: ext}
}

// EnsureDir создает директорию хранилища, если её нет
func (s *FileStore) EnsureDir() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания директории аудио: %w", err)
	}
	return nil
}

// Filename возвращает имя файла для ключа
func (s *FileStore) Filename(key string) string {
	return key + "." + s.Ext
}

// Path возвращает путь к файлу для ключа
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.Dir, s.Filename(key))
}

// Exists проверяет наличие аудиофайла для ключа
func (s *FileStore) Exists(key string) (bool, error) {
	_, err := os.Stat(s.Path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("ошибка проверки файла %s: %w", s.Path(key), err)
}

// Save атомарно записывает аудио для ключа и возвращает путь к файлу
func (s *FileStore) Save(key string, data []byte) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}
	path := s.Path(key)
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("ошибка записи аудио %s: %w", path, err)
	}
	return path, nil
}

// writeFileAtomic пишет во временный файл в той же директории и переименовывает его,
// так что прерванная запись не оставляет частичный файл под итоговым именем.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if syncErr := tmp.Sync(); err == nil {
		err = syncErr
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0o644)
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
