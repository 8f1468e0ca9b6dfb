package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileEngine writes objects to the local filesystem, one directory per
// bucket. Used in development and tests where no object store is running.
type FileEngine struct {
	root string
}

func NewFileEngine(root string) *FileEngine {
	return &FileEngine{root: root}
}

func (e *FileEngine) Identifier() string {
	return "file"
}

func (e *FileEngine) Open() error {
	return os.MkdirAll(e.root, 0o755)
}

func (e *FileEngine) Close() error {
	return nil
}

func (e *FileEngine) UploadFile(ctx context.Context, file *File) error {
	src, err := os.Open(file.Filepath())
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", file.Filepath())
	}
	defer src.Close()

	target := filepath.Join(e.root, file.Bucket(), filepath.FromSlash(file.Key()))
	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create %s", filepath.Dir(target))
	}

	dst, err := os.Create(target)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", target)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "unable to copy to %s", target)
	}
	return dst.Sync()
}
