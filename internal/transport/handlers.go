// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"
	"log"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type HistoryHandler struct {
	service HistoryService
}

type HistoryService interface {
	Delete(ctx context.Context, id string) error                                 // удалить как в базе, так и в minio
	LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error)    // прям скачать результат
	LoadThumbnail(ctx context.Context, id string) (io.ReadCloser, string, error) // превьюшка, если готова
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Run, error)    // получить список
}

func NewHistoryHandler(svc HistoryService) *HistoryHandler {
	return &HistoryHandler{
		service: svc,
	}
}

func (h HistoryHandler) GetAllRuns(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.service.GetList(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h HistoryHandler) LoadResult(ctx *ginext.Context) {
	id := ctx.Param("id")

	res, cType, err := h.service.LoadResult(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	streamFile(ctx, res, cType, "")
}

func (h HistoryHandler) LoadThumbnail(ctx *ginext.Context) {
	id := ctx.Param("id")

	res, cType, err := h.service.LoadThumbnail(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	streamFile(ctx, res, cType, "")
}

func (h HistoryHandler) Delete(ctx *ginext.Context) {
	id := ctx.Param("id")
	if err := h.service.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.Status(204)
}

// streamFile - пустой filename отдаёт файл inline
func streamFile(ctx *ginext.Context, res io.ReadCloser, cType, filename string) {
	defer closeFileFlow(res)

	ctx.Writer.Header().Set("Content-Type", cType)
	if filename != "" {
		ctx.Writer.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	ctx.Writer.WriteHeader(200)
	if n, err := io.Copy(ctx.Writer, res); err != nil {
		log.Printf("Failed to write response at byte %d for path %q: %v", n, ctx.Request.URL.Path, err)
	}
}
