package storage

import (
	"context"
	"errors"
	"io"
)

var ErrFileNotFound = errors.New("stored file not found")

// FileStorage abstracts the document file store. The registry only needs to
// save an uploaded file, check a path, and delete it when a document is removed.
type FileStorage interface {
	Save(ctx context.Context, fileName string, content io.Reader) (path string, err error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
}
