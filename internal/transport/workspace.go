package transport

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/UnendingLoop/DeSilhouette/internal/session"
	"github.com/UnendingLoop/DeSilhouette/internal/webui"
	"github.com/wb-go/wbf/ginext"
)

// запас на заголовки multipart поверх лимита самого файла
const multipartOverhead = 1 << 20

type WorkspaceHandler struct {
	sessions  *session.Registry
	blobs     BlobOpener
	maxUpload int64
}

// BlobOpener - чтение живой ссылки на картинку
type BlobOpener interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
}

type workspaceResponse struct {
	SessionID string         `json:"session_id,omitempty"`
	View      webui.Snapshot `json:"view"`
	Error     string         `json:"error,omitempty"`
}

type modeRequest struct {
	Mode string `form:"mode" json:"mode" binding:"required"`
}

func NewWorkspaceHandler(sessions *session.Registry, blobs BlobOpener, maxUpload int64) *WorkspaceHandler {
	return &WorkspaceHandler{sessions: sessions, blobs: blobs, maxUpload: maxUpload}
}

func (h WorkspaceHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h WorkspaceHandler) CreateSession(ctx *ginext.Context) {
	s := h.sessions.Create(ctx.Request.Context())
	ctx.JSON(201, workspaceResponse{SessionID: s.ID, View: s.View.Snapshot(true)})
}

func (h WorkspaceHandler) GetSession(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}
	h.respond(ctx, s, nil)
}

func (h WorkspaceHandler) CloseSession(ctx *ginext.Context) {
	if err := h.sessions.Close(ctx.Request.Context(), ctx.Param("id")); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	ctx.Status(204)
}

func (h WorkspaceHandler) SetMode(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	var req modeRequest
	if err := ctx.ShouldBind(&req); err != nil {
		h.respond(ctx, s, model.ErrIncorrectMode)
		return
	}

	h.respond(ctx, s, s.Ctrl.SetMode(model.Mode(req.Mode)))
}

func (h WorkspaceHandler) UploadClick(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}
	s.Ctrl.HandleUploadClick()
	h.respond(ctx, s, nil)
}

// FileChange - файл из input; запрос без файла ничего не меняет
func (h WorkspaceHandler) FileChange(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	file, err := h.readUpload(ctx)
	if err != nil {
		h.respond(ctx, s, err)
		return
	}

	h.respond(ctx, s, s.Ctrl.HandleFileChange(ctx.Request.Context(), file))
}

func (h WorkspaceHandler) Drop(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	file, err := h.readUpload(ctx)
	if err != nil {
		s.Ctrl.HandleDragLeave()
		h.respond(ctx, s, err)
		return
	}

	h.respond(ctx, s, s.Ctrl.HandleDrop(ctx.Request.Context(), file))
}

func (h WorkspaceHandler) DragOver(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}
	s.Ctrl.HandleDragOver()
	h.respond(ctx, s, nil)
}

func (h WorkspaceHandler) DragLeave(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}
	s.Ctrl.HandleDragLeave()
	h.respond(ctx, s, nil)
}

// Process - повторная отправка текущего файла, например после смены режима
func (h WorkspaceHandler) Process(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}
	h.respond(ctx, s, s.Ctrl.ProcessImage(ctx.Request.Context(), s.Ctrl.State().File))
}

func (h WorkspaceHandler) Reset(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}
	s.Ctrl.HandleReset(ctx.Request.Context())
	h.respond(ctx, s, nil)
}

func (h WorkspaceHandler) Scroll(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}
	s.Ctrl.ScrollToWorkspace()
	h.respond(ctx, s, nil)
}

func (h WorkspaceHandler) Download(ctx *ginext.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	d, ok := s.Ctrl.HandleDownload()
	if !ok {
		h.respond(ctx, s, model.ErrNoResult)
		return
	}

	res, cType, err := h.blobs.Open(ctx.Request.Context(), d.Ref)
	if err != nil {
		h.respond(ctx, s, err)
		return
	}
	streamFile(ctx, res, cType, d.Filename)
}

func (h WorkspaceHandler) Blob(ctx *ginext.Context) {
	res, cType, err := h.blobs.Open(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	streamFile(ctx, res, cType, "")
}

// ---------------------

func (h WorkspaceHandler) session(ctx *ginext.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(ctx.Param("id"))
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return nil, false
	}
	return s, true
}

func (h WorkspaceHandler) respond(ctx *ginext.Context, s *session.Session, err error) {
	resp := workspaceResponse{View: s.View.Snapshot(true)}
	code := 200
	if err != nil {
		resp.Error = err.Error()
		code = errorCodeDefiner(err)
	}
	ctx.JSON(code, resp)
}

// readUpload - nil без ошибки если файла в запросе нет
func (h WorkspaceHandler) readUpload(ctx *ginext.Context) (*model.ImageFile, error) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, h.maxUpload+multipartOverhead)

	header, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, nil
		case errors.As(err, &tooLarge):
			return nil, model.ErrFileTooLarge
		default:
			return nil, model.ErrIncorrectQuery
		}
	}
	if header.Size > h.maxUpload {
		return nil, model.ErrFileTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, model.ErrIncorrectQuery
	}
	defer closeFileFlow(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, model.ErrIncorrectQuery
	}

	cType := header.Header.Get("Content-Type")
	if cType == "" {
		cType = http.DetectContentType(data)
	}

	return &model.ImageFile{Name: header.Filename, ContentType: cType, Data: data}, nil
}
