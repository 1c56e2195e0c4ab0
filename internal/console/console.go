// Package console provides UI-adapter for terminal runs: every view change goes to the log
package console

import (
	"sync"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/wb-go/wbf/zlog"
)

type UI struct {
	mu        sync.Mutex
	logger    zlog.Zerolog
	mode      model.Mode
	loading   bool
	alerts    []string
	downloads []model.Download
}

func New(logger zlog.Zerolog) *UI {
	return &UI{logger: logger}
}

func (u *UI) SetActiveMode(mode model.Mode) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.mode = mode
}

func (u *UI) SetModeLabel(label string) {
	u.logger.Info().Str("label", label).Msg("Mode selected")
}

func (u *UI) SetLoading(loading bool) {
	u.mu.Lock()
	u.loading = loading
	u.mu.Unlock()

	if loading {
		u.logger.Info().Msg("Removing background...")
	}
}

func (u *UI) ShowPlaceholder() {
	u.logger.Debug().Msg("Preview cleared")
}

func (u *UI) ShowPreview(originalRef, resultRef string) {
	u.logger.Info().Str("original", originalRef).Str("result", resultRef).Msg("Preview ready")
}

func (u *UI) SetActions(resetEnabled, downloadEnabled bool) {
	u.logger.Debug().Bool("reset", resetEnabled).Bool("download", downloadEnabled).Msg("Actions updated")
}

func (u *UI) SetDragOver(active bool) {}

func (u *UI) OpenFilePicker() {}

func (u *UI) ClearFileInput() {}

func (u *UI) TriggerDownload(ref, filename string) {
	u.mu.Lock()
	u.downloads = append(u.downloads, model.Download{Ref: ref, Filename: filename})
	u.mu.Unlock()

	u.logger.Info().Str("filename", filename).Msg("Download triggered")
}

func (u *UI) ScrollToWorkspace() {}

func (u *UI) Alert(msg string) {
	if msg == "" {
		msg = model.MsgSomethingWrong
	}

	u.mu.Lock()
	u.alerts = append(u.alerts, msg)
	u.mu.Unlock()

	u.logger.Error().Msg(msg)
}

// Alerts - все сообщения, показанные пользователю за прогон
func (u *UI) Alerts() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.alerts...)
}

// LastDownload - false если скачивание не запускалось
func (u *UI) LastDownload() (model.Download, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.downloads) == 0 {
		return model.Download{}, false
	}
	return u.downloads[len(u.downloads)-1], true
}

func (u *UI) Mode() model.Mode {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.mode
}

func (u *UI) Loading() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.loading
}
