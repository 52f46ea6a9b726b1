// Package dedup хранит идентификаторы уже обработанных вакансий между запусками.
//
// Хранилище рассчитано на одного писателя: вызывающий код сериализует Add и
// Persist. Читатели из других процессов всегда видят целый файл, потому что
// запись идет через временный файл и rename.
package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store описывает множество обработанных вакансий.
type Store interface {
	Contains(id string) bool
	// Add идемпотентен: повторное добавление ничего не меняет.
	Add(id string)
	// Persist сбрасывает все множество в постоянное хранилище.
	Persist() error
	Len() int
	// IDs возвращает идентификаторы в отсортированном виде.
	IDs() []string
}

// FileStore держит множество в памяти и пишет его JSON-массивом на диск.
type FileStore struct {
	path string
	ids  map[string]struct{}
}

var _ Store = (*FileStore)(nil)

// OpenFile загружает множество из path. Отсутствующий файл дает пустое множество.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		ids:  make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read processed jobs %q: %w", path, err)
	}

	if len(data) == 0 {
		return s, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode processed jobs %q: %w", path, err)
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}

	return s, nil
}

func (s *FileStore) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *FileStore) Add(id string) {
	s.ids[id] = struct{}{}
}

func (s *FileStore) Len() int {
	return len(s.ids)
}

// IDs возвращает отсортированную копию множества.
func (s *FileStore) IDs() []string {
	return sortedIDs(s.ids)
}

func (s *FileStore) Persist() error {
	data, err := json.MarshalIndent(s.IDs(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode processed jobs: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create processed jobs directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp processed jobs file: %w", err)
	}
	tmpName := tmp.Name()

	// CreateTemp создает файл с правами 0600
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod processed jobs: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write processed jobs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close processed jobs: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace processed jobs %q: %w", s.path, err)
	}

	return nil
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
