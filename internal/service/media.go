package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Media upload errors.
var (
	ErrFileTooLarge    = errors.New("file exceeds the allowed size")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// saveUpload writes an uploaded file to dir under a generated name, keeping
// the original extension. The stored name never derives from user input.
func saveUpload(fh *multipart.FileHeader, dir string) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path = filepath.Join(dir, uuid.New().String()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer func() {
		dst.Close()
		if err != nil {
			os.Remove(path)
		}
	}()

	if _, err = io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// removeFiles deletes stored files best-effort; a missing file is not an
// error since the row is already gone.
func removeFiles(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = os.Remove(p)
	}
}
