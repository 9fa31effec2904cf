package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/storage"
)

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New("http://localhost:8080/files")

	url, err := storage.Put(ctx, s, "/audio/a.wav", []byte("RIFF"), "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/audio/a.wav", url)
	assert.Equal(t, "audio/wav", s.ContentType("audio/a.wav"))

	ok, err := s.Exists(ctx, "audio/a.wav")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Download(ctx, "audio/a.wav")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "RIFF", string(data))

	require.NoError(t, s.Upload(ctx, "text/b.txt", strings.NewReader("b"), ""))
	files, err := s.List(ctx, "audio/")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(4), files[0].Size)

	require.NoError(t, s.Delete(ctx, "audio/a.wav"))
	require.NoError(t, s.Delete(ctx, "audio/a.wav"))
	_, err = s.Download(ctx, "audio/a.wav")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
}

func TestStorage_URLWithoutPublicBase(t *testing.T) {
	url, err := New("").URL(context.Background(), "a.wav")
	require.NoError(t, err)
	assert.Equal(t, "mem://a.wav", url)
}

func TestStorage_RegisteredFactory(t *testing.T) {
	s, err := storage.New(storage.Config{Provider: storage.ProviderMemory}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Storage{}, s)
	assert.Contains(t, storage.Providers(), storage.ProviderMemory)
}
