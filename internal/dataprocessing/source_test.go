package dataprocessing

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesSource(t *testing.T) {
	src := BytesSource{Filename: "upload.xlsx", Data: []byte("content")}
	assert.Equal(t, "upload.xlsx", src.Name())

	fp, err := src.Fingerprint()
	require.NoError(t, err)
	assert.Len(t, fp, 64)

	same, err := BytesSource{Filename: "renamed.xlsx", Data: []byte("content")}.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp, same)

	rc, err := src.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	_, err = BytesSource{Filename: "empty.xlsx"}.Fingerprint()
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	_, err = BytesSource{Filename: "empty.xlsx"}.Open()
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stress.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	src := FileSource{Path: path}
	assert.Equal(t, "stress.xlsx", src.Name())

	first, err := src.Fingerprint()
	require.NoError(t, err)
	again, err := src.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// a rewrite changes size and modification time
	require.NoError(t, os.WriteFile(path, []byte("version 2"), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	changed, err := src.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)

	rc, err := src.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "version 2", string(data))

	t.Run("missing file", func(t *testing.T) {
		_, err := FileSource{Path: filepath.Join(dir, "missing.xlsx")}.Fingerprint()
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		_, err = FileSource{Path: filepath.Join(dir, "missing.xlsx")}.Open()
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := FileSource{Path: dir}.Fingerprint()
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})
}
