// Package webui provides UI-adapter which keeps the workspace view as JSON-snapshot for browsers
package webui

import (
	"sync"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
)

const BlobsPath = "/blobs/"

type DownloadLink struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Snapshot - то, что браузер рисует на странице
type Snapshot struct {
	Mode            model.Mode    `json:"mode"`
	ModeLabel       string        `json:"mode_label"`
	Loading         bool          `json:"loading"`
	ShowPlaceholder bool          `json:"show_placeholder"`
	OriginalSrc     string        `json:"original_src"`
	ResultSrc       string        `json:"result_src"`
	ResetEnabled    bool          `json:"reset_enabled"`
	DownloadEnabled bool          `json:"download_enabled"`
	DragOver        bool          `json:"drag_over"`
	OpenFilePicker  bool          `json:"open_file_picker,omitempty"`
	ClearFileInput  bool          `json:"clear_file_input,omitempty"`
	ScrollTo        string        `json:"scroll_to,omitempty"`
	Download        *DownloadLink `json:"download,omitempty"`
	Alerts          []string      `json:"alerts,omitempty"`
}

type View struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewView() *View {
	return &View{snap: Snapshot{ShowPlaceholder: true}}
}

func (v *View) SetActiveMode(mode model.Mode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.Mode = mode
}

func (v *View) SetModeLabel(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.ModeLabel = label
}

func (v *View) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.Loading = loading
}

func (v *View) ShowPlaceholder() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.ShowPlaceholder = true
	v.snap.OriginalSrc = ""
	v.snap.ResultSrc = ""
}

func (v *View) ShowPreview(originalRef, resultRef string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.ShowPlaceholder = false
	v.snap.OriginalSrc = BlobsPath + originalRef
	v.snap.ResultSrc = BlobsPath + resultRef
}

func (v *View) SetActions(resetEnabled, downloadEnabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.ResetEnabled = resetEnabled
	v.snap.DownloadEnabled = downloadEnabled
}

func (v *View) SetDragOver(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.DragOver = active
}

func (v *View) OpenFilePicker() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.OpenFilePicker = true
}

func (v *View) ClearFileInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.ClearFileInput = true
}

func (v *View) TriggerDownload(ref, filename string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.Download = &DownloadLink{URL: BlobsPath + ref, Filename: filename}
}

func (v *View) ScrollToWorkspace() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.ScrollTo = model.ScrollTargetWorkspace
}

func (v *View) Alert(msg string) {
	if msg == "" {
		msg = model.MsgSomethingWrong
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap.Alerts = append(v.snap.Alerts, msg)
}

// Snapshot - копия состояния; drain сбрасывает одноразовые эффекты после отдачи клиенту
func (v *View) Snapshot(drain bool) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	res := v.snap
	if len(v.snap.Alerts) > 0 {
		res.Alerts = append([]string(nil), v.snap.Alerts...)
	}
	if v.snap.Download != nil {
		d := *v.snap.Download
		res.Download = &d
	}

	if drain {
		v.snap.Alerts = nil
		v.snap.OpenFilePicker = false
		v.snap.ClearFileInput = false
		v.snap.ScrollTo = ""
		v.snap.Download = nil
	}

	return res
}
