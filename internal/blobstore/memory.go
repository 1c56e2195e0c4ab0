// Package blobstore provides local image references for the workspace previews
package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/google/uuid"
)

// Memory - ссылки живут в памяти процесса до Revoke
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]*model.ImageFile
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]*model.ImageFile)}
}

func (m *Memory) Create(ctx context.Context, file *model.ImageFile) (string, error) {
	if file == nil {
		return "", model.ErrEmptySource
	}

	ref := uuid.NewString()

	m.mu.Lock()
	m.blobs[ref] = file
	m.mu.Unlock()

	return ref, nil
}

// Revoke - неизвестная ссылка не ошибка
func (m *Memory) Revoke(ctx context.Context, ref string) error {
	m.mu.Lock()
	delete(m.blobs, ref)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	file, ok := m.blobs[ref]
	m.mu.RUnlock()

	if !ok {
		return nil, "", model.ErrRefNotFound
	}
	return io.NopCloser(bytes.NewReader(file.Data)), file.ContentType, nil
}

// Live - число неосвобождённых ссылок
func (m *Memory) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
