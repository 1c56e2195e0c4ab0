package main

import (
	"context"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
)

// HistoryWorkerService - часть истории, которой пользуется воркер превьюшек
type HistoryWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveThumbnail(ctx context.Context, run *model.Run) error
	Get(ctx context.Context, id string) (*model.Run, error)
}
