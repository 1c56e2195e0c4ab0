package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/google/uuid"
)

// RefPrefix - все ссылки лежат под этим префиксом, на старте api он вычищается
const RefPrefix = "refs/"

type ObjectStorage interface {
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

// Objects - ссылки хранятся объектами в minio, учёт живых ссылок локальный
type Objects struct {
	storage ObjectStorage
	mu      sync.RWMutex
	keys    map[string]string
}

func NewObjects(storage ObjectStorage) *Objects {
	return &Objects{storage: storage, keys: make(map[string]string)}
}

func (o *Objects) Create(ctx context.Context, file *model.ImageFile) (string, error) {
	if file == nil {
		return "", model.ErrEmptySource
	}

	ref := uuid.NewString()
	key := RefPrefix + ref + model.FileExt(file.ContentType)

	if err := o.storage.Put(ctx, key, file.Size(), file.ContentType, bytes.NewReader(file.Data)); err != nil {
		return "", err
	}

	o.mu.Lock()
	o.keys[ref] = key
	o.mu.Unlock()

	return ref, nil
}

func (o *Objects) Revoke(ctx context.Context, ref string) error {
	o.mu.Lock()
	key, ok := o.keys[ref]
	delete(o.keys, ref)
	o.mu.Unlock()

	if !ok {
		return nil
	}
	return o.storage.Delete(ctx, key)
}

func (o *Objects) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	o.mu.RLock()
	key, ok := o.keys[ref]
	o.mu.RUnlock()

	if !ok {
		return nil, "", model.ErrRefNotFound
	}
	return o.storage.Get(ctx, key)
}

func (o *Objects) Live() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.keys)
}
