package workspace

import (
	"context"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
)

// UI - всё, что контроллер умеет делать с представлением
type UI interface {
	SetActiveMode(mode model.Mode)
	SetModeLabel(label string)
	SetLoading(loading bool)
	ShowPlaceholder()
	ShowPreview(originalRef, resultRef string)
	SetActions(resetEnabled, downloadEnabled bool)
	SetDragOver(active bool)
	OpenFilePicker()
	ClearFileInput()
	TriggerDownload(ref, filename string)
	ScrollToWorkspace()
	Alert(msg string)
}

// Remover - удалённый API удаления фона
type Remover interface {
	Remove(ctx context.Context, endpoint string, file *model.ImageFile) (*model.ImageFile, error)
}

// RefStore - локальные ссылки на картинки, выдаются и освобождаются явно
type RefStore interface {
	Create(ctx context.Context, file *model.ImageFile) (string, error)
	Revoke(ctx context.Context, ref string) error
}

// Recorder - журнал успешных обработок, может отсутствовать
type Recorder interface {
	Record(ctx context.Context, data *model.RunData) error
}
