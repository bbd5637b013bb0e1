package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"github.com/dmitrijs2005/totpvault/internal/filex"
)

const filePerm = 0o600

// FileBlob stores a blob in a single file on local disk.
type FileBlob struct {
	path string
}

// NewFileBlob returns a blob backed by path. The parent directory is created
// on first write.
func NewFileBlob(path string) *FileBlob {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &FileBlob{path: path}
}

func (b *FileBlob) Location() string { return "file:" + b.path }

func (b *FileBlob) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(b.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", b.path, err)
}

func (b *FileBlob) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	return data, nil
}

func (b *FileBlob) Write(ctx context.Context, data []byte) error {
	return filex.WriteFileAtomic(b.path, data, filePerm)
}

func (b *FileBlob) Create(ctx context.Context, data []byte) error {
	err := filex.CreateFileExclusive(b.path, data, filePerm)
	if errors.Is(err, os.ErrExist) {
		return ErrAlreadyExists
	}
	return err
}
