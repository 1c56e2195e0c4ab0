package main

import (
	"context"
	"io"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
)

// HistoryAPIService - всё, что api-процессу нужно от истории: запись из воркспейсов, HTTP-выдача и оживление задач
type HistoryAPIService interface {
	Record(ctx context.Context, data *model.RunData) error
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Run, error)
	LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error)
	LoadThumbnail(ctx context.Context, id string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, id string) error
	ReviveOrphans(ctx context.Context, limit int)
}
