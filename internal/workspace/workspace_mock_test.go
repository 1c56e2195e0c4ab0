package workspace

import (
	"context"
	"sync"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
)

// FAKE UI - запоминает последнее состояние представления

type fakeUI struct {
	mu              sync.Mutex
	activeMode      model.Mode
	label           string
	loading         bool
	loadingHistory  []bool
	placeholder     bool
	originalRef     string
	resultRef       string
	resetEnabled    bool
	downloadEnabled bool
	dragOver        bool
	pickerOpened    int
	inputCleared    int
	downloads       []model.Download
	scrolls         int
	alerts          []string
}

func (f *fakeUI) SetActiveMode(mode model.Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activeMode = mode
}

func (f *fakeUI) SetModeLabel(label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.label = label
}

func (f *fakeUI) SetLoading(loading bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = loading
	f.loadingHistory = append(f.loadingHistory, loading)
}

func (f *fakeUI) ShowPlaceholder() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placeholder = true
	f.originalRef = ""
	f.resultRef = ""
}

func (f *fakeUI) ShowPreview(originalRef, resultRef string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placeholder = false
	f.originalRef = originalRef
	f.resultRef = resultRef
}

func (f *fakeUI) SetActions(resetEnabled, downloadEnabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetEnabled = resetEnabled
	f.downloadEnabled = downloadEnabled
}

func (f *fakeUI) SetDragOver(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dragOver = active
}

func (f *fakeUI) OpenFilePicker() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pickerOpened++
}

func (f *fakeUI) ClearFileInput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputCleared++
}

func (f *fakeUI) TriggerDownload(ref, filename string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, model.Download{Ref: ref, Filename: filename})
}

func (f *fakeUI) ScrollToWorkspace() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolls++
}

func (f *fakeUI) Alert(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, msg)
}

// MOCK REMOVER

type mockRemover struct {
	mu       sync.Mutex
	calls    int
	removeFn func(ctx context.Context, endpoint string, file *model.ImageFile) (*model.ImageFile, error)
}

func (m *mockRemover) Remove(ctx context.Context, endpoint string, file *model.ImageFile) (*model.ImageFile, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.removeFn(ctx, endpoint, file)
}

func (m *mockRemover) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MOCK REFSTORE

type mockRefs struct {
	createFn func(ctx context.Context, file *model.ImageFile) (string, error)
	revokeFn func(ctx context.Context, ref string) error
}

func (m *mockRefs) Create(ctx context.Context, file *model.ImageFile) (string, error) {
	return m.createFn(ctx, file)
}

func (m *mockRefs) Revoke(ctx context.Context, ref string) error {
	return m.revokeFn(ctx, ref)
}

// MOCK RECORDER

type mockRecorder struct {
	recordFn func(ctx context.Context, data *model.RunData) error
}

func (m *mockRecorder) Record(ctx context.Context, data *model.RunData) error {
	return m.recordFn(ctx, data)
}
