package local

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/ecoleta/internal/imagestore"
)

func TestStoreSaveAndOpen(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	imageData := []byte("fake jpeg data")

	key, err := store.Save(ctx, "mercado.jpg", "image/jpeg", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}-mercado\.jpg$`), key)

	reader, mimeType, err := store.Open(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "image/jpeg", mimeType)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, imageData, data)
}

func TestStoreSaveUniqueKeys(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.Save(ctx, "a.png", "image/png", bytes.NewReader([]byte("1")))
	require.NoError(t, err)
	second, err := store.Save(ctx, "a.png", "image/png", bytes.NewReader([]byte("2")))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestStoreDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, "ponto.png", "image/png", bytes.NewReader([]byte("test data")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))

	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))

	_, _, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, imagestore.ErrNotFound)
}

func TestStoreNotFound(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Open(context.Background(), "nonexistent.jpg")
	assert.ErrorIs(t, err, imagestore.ErrNotFound)

	err = store.Delete(context.Background(), "nonexistent.jpg")
	assert.ErrorIs(t, err, imagestore.ErrNotFound)
}

func TestStorePathTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = store.Open(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, imagestore.ErrNotFound)

	assert.Error(t, store.Delete(ctx, "../outside.jpg"))
}

func TestStoreOpenSVGIcon(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "lampadas.svg"), []byte("<svg/>"), 0644))

	reader, mimeType, err := store.Open(context.Background(), "lampadas.svg")
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "image/svg+xml", mimeType)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		mimeType string
		want     string
	}{
		{name: "plain", input: "photo.png", mimeType: "image/png", want: "photo.png"},
		{name: "spaces and accents", input: "Ponto de Coleta São.jpg", mimeType: "image/jpeg", want: "Ponto-de-Coleta-S-o.jpg"},
		{name: "directory components", input: "../../etc/passwd", mimeType: "image/jpeg", want: "passwd.jpg"},
		{name: "windows path", input: `C:\Users\ana\foto.webp`, mimeType: "image/webp", want: "foto.webp"},
		{name: "missing extension", input: "upload", mimeType: "image/gif", want: "upload.gif"},
		{name: "empty", input: "", mimeType: "image/png", want: "image.png"},
		{name: "hidden file", input: ".png", mimeType: "image/png", want: "png.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.input, tt.mimeType))
		})
	}
}
