// Package storage is the object storage behind generated artifacts such as
// merged TTS audio.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/kbukum/paiflow/errors"
)

// FileInfo contains metadata about a stored object.
type FileInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ContentType  string    `json:"contentType,omitempty"`
}

// Storage defines the object storage operations.
type Storage interface {
	// Upload writes data from reader to the given path.
	Upload(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Download returns a reader for the object at the given path. The caller
	// closes it. A missing object is a NOT_FOUND AppError.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at the given path.
	// Returns nil if the object does not exist.
	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)

	// URL returns the address clients use to fetch the object.
	URL(ctx context.Context, path string) (string, error)

	// List returns metadata for all objects whose path starts with prefix.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// Put uploads data and returns the object's URL.
func Put(ctx context.Context, s Storage, key string, data []byte, contentType string) (string, error) {
	if err := s.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", err
	}
	return s.URL(ctx, key)
}

// CleanKey normalizes an object key and rejects keys that escape the root.
func CleanKey(key string) (string, error) {
	k := strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(key, "\\", "/")), "/")
	if k == "" || k == "." {
		return "", errors.InvalidInput("path", fmt.Sprintf("invalid object key %q", key))
	}
	return k, nil
}

// JoinURL appends key to a public base URL.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// NotFound is the error backends return for a missing object.
func NotFound(key string) error {
	return errors.NotFound("object", key)
}
