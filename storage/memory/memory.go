// Package memory is an in-process storage backend. Objects live until the
// process exits.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return New(cfg.PublicURL), nil
	})
}

type object struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// Storage is a map-backed storage.Storage safe for concurrent use.
type Storage struct {
	mu        sync.RWMutex
	objects   map[string]*object
	publicURL string
}

var _ storage.Storage = (*Storage)(nil)

// New creates an empty store. URLs are publicURL/key, or mem://key when
// publicURL is empty.
func New(publicURL string) *Storage {
	return &Storage{objects: make(map[string]*object), publicURL: publicURL}
}

func (s *Storage) Upload(_ context.Context, path string, reader io.Reader, contentType string) error {
	key, err := storage.CleanKey(path)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("storage: read upload data: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = &object{data: data, contentType: contentType, modTime: time.Now()}
	return nil
}

func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	key, err := storage.CleanKey(path)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, storage.NotFound(path)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *Storage) Delete(_ context.Context, path string) error {
	key, err := storage.CleanKey(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	key, err := storage.CleanKey(path)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *Storage) URL(_ context.Context, path string) (string, error) {
	key, err := storage.CleanKey(path)
	if err != nil {
		return "", err
	}
	if s.publicURL == "" {
		return "mem://" + key, nil
	}
	return storage.JoinURL(s.publicURL, key), nil
}

func (s *Storage) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []storage.FileInfo{}
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, storage.FileInfo{
				Path:         key,
				Size:         int64(len(obj.data)),
				LastModified: obj.modTime,
				ContentType:  obj.contentType,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// ContentType returns the content type recorded at upload, or "".
func (s *Storage) ContentType(path string) string {
	key, err := storage.CleanKey(path)
	if err != nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if obj, ok := s.objects[key]; ok {
		return obj.contentType
	}
	return ""
}
