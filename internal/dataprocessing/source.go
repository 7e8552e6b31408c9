package dataprocessing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Source is a workbook input: a fixed path on disk or uploaded bytes.
// The fingerprint identifies the content for caching.
type Source interface {
	Name() string
	Fingerprint() (string, error)
	Open() (io.ReadCloser, error)
}

// FileSource reads a workbook from disk.
// Its fingerprint changes whenever the file's size or modification time does.
type FileSource struct {
	Path string
}

// Name returns the file's base name
func (s FileSource) Name() string {
	return filepath.Base(s.Path)
}

// Fingerprint hashes path, size and modification time
func (s FileSource) Fingerprint() (string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, s.Path)
	}

	abs, err := filepath.Abs(s.Path)
	if err != nil {
		abs = s.Path
	}

	h := sha256.New()
	h.Write([]byte(abs))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(info.Size(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Open opens the file for reading
func (s FileSource) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return f, nil
}

// BytesSource is an in-memory workbook, typically an upload
type BytesSource struct {
	Filename string
	Data     []byte
}

// Name returns the upload's file name
func (s BytesSource) Name() string {
	return s.Filename
}

// Fingerprint hashes the content
func (s BytesSource) Fingerprint() (string, error) {
	if len(s.Data) == 0 {
		return "", fmt.Errorf("%w: empty workbook", ErrSourceUnavailable)
	}
	sum := sha256.Sum256(s.Data)
	return hex.EncodeToString(sum[:]), nil
}

// Open returns a reader over the content
func (s BytesSource) Open() (io.ReadCloser, error) {
	if len(s.Data) == 0 {
		return nil, fmt.Errorf("%w: empty workbook", ErrSourceUnavailable)
	}
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}
