// Package workspace provides headless controller of the background-removal workspace
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/UnendingLoop/DeSilhouette/internal/mwlogger"
)

// на запись истории после ответа пользователю
const recordTimeout = time.Minute

type Controller struct {
	mu        sync.Mutex
	records   sync.WaitGroup
	closed    bool
	sessionID string
	ui        UI
	remover   Remover
	refs      RefStore
	recorder  Recorder
	endpoints map[model.Mode]string
	state     model.UIState
}

// NewController - recorder может быть nil, тогда история не пишется
func NewController(sessionID string, ui UI, rm Remover, refs RefStore, endpoints map[model.Mode]string, rec Recorder) *Controller {
	if endpoints == nil {
		endpoints = map[model.Mode]string{}
	}
	return &Controller{
		sessionID: sessionID,
		ui:        ui,
		remover:   rm,
		refs:      refs,
		recorder:  rec,
		endpoints: endpoints,
	}
}

func (c *Controller) SessionID() string {
	return c.sessionID
}

// Init - стартовое состояние: originalQuality, пустое превью, без загрузки
func (c *Controller) Init(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyMode(model.ModeOriginalQuality)
	c.resetLocked(ctx)
	c.setProcessing(false)
}

func (c *Controller) SetMode(mode model.Mode) error {
	if !model.ModesMap[mode] {
		return model.ErrIncorrectMode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyMode(mode)
	return nil
}

func (c *Controller) ResetState(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked(ctx)
}

// ProcessImage - один цикл отправки в API. Мьютекс на время запроса не держится
func (c *Controller) ProcessImage(ctx context.Context, file *model.ImageFile) error {
	return c.process(ctx, file, nil)
}

func (c *Controller) HandleUploadClick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsProcessing {
		return
	}
	c.ui.OpenFilePicker()
}

// HandleFileChange - во время обработки новый файл не принимается
func (c *Controller) HandleFileChange(ctx context.Context, file *model.ImageFile) error {
	if file == nil {
		return nil
	}

	return c.process(ctx, file, func() {
		c.state.File = file
	})
}

func (c *Controller) HandleDragOver() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ui.SetDragOver(true)
}

func (c *Controller) HandleDragLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ui.SetDragOver(false)
}

func (c *Controller) HandleDrop(ctx context.Context, file *model.ImageFile) error {
	c.mu.Lock()
	c.ui.SetDragOver(false)

	if c.state.IsProcessing || file == nil {
		c.mu.Unlock()
		return nil
	}

	if !file.IsImage() {
		c.ui.Alert(model.MsgNotImage)
		c.mu.Unlock()
		return model.ErrNotImage
	}

	c.mu.Unlock()

	err := c.process(ctx, file, func() {
		c.state.File = file
		c.ui.ClearFileInput()
	})
	if errors.Is(err, model.ErrBusy) {
		return nil
	}
	return err
}

func (c *Controller) HandleReset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsProcessing {
		return
	}
	c.resetLocked(ctx)
}

// HandleDownload - false если результата ещё нет
func (c *Controller) HandleDownload() (model.Download, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.ResultImageRef == "" {
		return model.Download{}, false
	}

	d := model.Download{
		Ref:      c.state.ResultImageRef,
		Filename: c.state.Mode.DownloadName(),
	}
	c.ui.TriggerDownload(d.Ref, d.Filename)
	return d, true
}

func (c *Controller) ScrollToWorkspace() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ui.ScrollToWorkspace()
}

// State - копия текущего состояния
func (c *Controller) State() model.UIState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Controller) IsProcessing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.IsProcessing
}

// Close - освобождает ссылки при закрытии сессии. Незавершённый цикл ссылок уже не создаст
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.state.File = nil
	c.releaseRefs(ctx)
}

// Wait - ждёт фоновую запись истории, нужен перед остановкой хранилища и очереди
func (c *Controller) Wait() {
	c.records.Wait()
}

// ---------------------

// process - accept выполняется под тем же локом, что и проверка занятости
func (c *Controller) process(ctx context.Context, file *model.ImageFile, accept func()) error {
	endpoint, mode, err := c.begin(file, accept)
	if err != nil {
		return err
	}

	result, rmErr := c.remover.Remove(ctx, endpoint, file)

	if err := c.finish(ctx, file, result, rmErr); err != nil {
		return err
	}

	c.record(ctx, &model.RunData{
		SessionID: c.sessionID,
		Mode:      mode,
		Original:  file,
		Result:    result,
	})
	return nil
}

func (c *Controller) begin(file *model.ImageFile, accept func()) (string, model.Mode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", "", model.ErrSessionNotFound
	}
	if c.state.IsProcessing {
		return "", "", model.ErrBusy
	}
	if accept != nil {
		accept()
	}

	if file == nil {
		c.ui.Alert(model.MsgSelectImage)
		return "", "", model.ErrNoFile
	}

	endpoint := c.endpoints[c.state.Mode]
	if endpoint == "" {
		c.ui.Alert(model.MsgEndpointMissing)
		return "", "", model.ErrEndpointNotConfigured
	}

	c.setProcessing(true)
	return endpoint, c.state.Mode, nil
}

func (c *Controller) finish(ctx context.Context, file, result *model.ImageFile, rmErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.setProcessing(false)

	logger := mwlogger.LoggerFromContext(ctx)

	// сессию закрыли пока ждали API
	if c.closed {
		logger.Info().Str("session_id", c.sessionID).Msg("Session closed during processing, result dropped")
		return fmt.Errorf("%w: closed during processing", model.ErrSessionNotFound)
	}

	if rmErr != nil {
		logger.Error().Err(rmErr).Str("session_id", c.sessionID).Str("mode", string(c.state.Mode)).Msg("Failed to remove background")
		c.ui.Alert(model.MsgProcessFailed)
		return fmt.Errorf("%w: %w", model.ErrProcessFailed, rmErr)
	}

	c.releaseRefs(ctx)

	origRef, err := c.refs.Create(ctx, file)
	if err != nil {
		return c.failRefs(ctx, err)
	}

	resRef, err := c.refs.Create(ctx, result)
	if err != nil {
		if rErr := c.refs.Revoke(ctx, origRef); rErr != nil {
			logger.Error().Err(rErr).Str("ref", origRef).Msg("Failed to revoke image reference")
		}
		return c.failRefs(ctx, err)
	}

	c.state.OriginalImageRef = origRef
	c.state.ResultImageRef = resRef

	c.ui.ShowPreview(origRef, resRef)
	c.ui.SetActions(true, true)
	return nil
}

// failRefs - старые ссылки уже освобождены, показывать нечего
func (c *Controller) failRefs(ctx context.Context, err error) error {
	logger := mwlogger.LoggerFromContext(ctx)
	logger.Error().Err(err).Str("session_id", c.sessionID).Msg("Failed to create image reference")

	c.ui.ShowPlaceholder()
	c.ui.SetActions(false, false)
	c.ui.Alert(model.MsgProcessFailed)
	return fmt.Errorf("%w: %w", model.ErrProcessFailed, err)
}

// record - в фоне, ответ пользователю не ждёт хранилище и очередь
func (c *Controller) record(ctx context.Context, data *model.RunData) {
	if c.recorder == nil {
		return
	}

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	c.records.Add(1)
	go func() {
		defer c.records.Done()
		defer cancel()

		if err := c.recorder.Record(recCtx, data); err != nil {
			logger := mwlogger.LoggerFromContext(recCtx)
			logger.Error().Err(err).Str("session_id", c.sessionID).Msg("Failed to record run in history")
		}
	}()
}

func (c *Controller) applyMode(mode model.Mode) {
	c.state.Mode = mode
	c.ui.SetActiveMode(mode)
	c.ui.SetModeLabel(mode.Label())
}

func (c *Controller) setProcessing(processing bool) {
	c.state.IsProcessing = processing
	c.ui.SetLoading(processing)
}

func (c *Controller) resetLocked(ctx context.Context) {
	c.state.File = nil
	c.releaseRefs(ctx)

	c.ui.ShowPlaceholder()
	c.ui.SetActions(false, false)
}

func (c *Controller) releaseRefs(ctx context.Context) {
	logger := mwlogger.LoggerFromContext(ctx)
	for _, ref := range []*string{&c.state.OriginalImageRef, &c.state.ResultImageRef} {
		if *ref == "" {
			continue
		}
		if err := c.refs.Revoke(ctx, *ref); err != nil {
			logger.Error().Err(err).Str("ref", *ref).Msg("Failed to revoke image reference")
		}
		*ref = ""
	}
}
