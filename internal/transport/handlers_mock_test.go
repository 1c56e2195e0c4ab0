package transport

import (
	"context"
	"io"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/gin-gonic/gin"
)

type mockHistoryService struct {
	deleteFn        func(ctx context.Context, id string) error
	loadResultFn    func(ctx context.Context, id string) (io.ReadCloser, string, error)
	loadThumbnailFn func(ctx context.Context, id string) (io.ReadCloser, string, error)
	getListFn       func(ctx context.Context, req *model.ListRequest) ([]model.Run, error)
}

func (m *mockHistoryService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockHistoryService) LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return m.loadResultFn(ctx, id)
}

func (m *mockHistoryService) LoadThumbnail(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return m.loadThumbnailFn(ctx, id)
}

func (m *mockHistoryService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
	return m.getListFn(ctx, req)
}

//----------------------------------

type mockRemover struct {
	removeFn func(ctx context.Context, endpoint string, file *model.ImageFile) (*model.ImageFile, error)
}

func (m *mockRemover) Remove(ctx context.Context, endpoint string, file *model.ImageFile) (*model.ImageFile, error) {
	return m.removeFn(ctx, endpoint, file)
}

func init() {
	gin.SetMode(gin.TestMode)
}
