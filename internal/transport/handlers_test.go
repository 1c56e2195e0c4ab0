package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func TestHistoryHandler_GetAllRuns(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		mock       *mockHistoryService
		wantStatus int
	}{
		{
			name:  "success",
			query: "?page=1&limit=10&sort=uid&order=ascend",
			mock: &mockHistoryService{
				getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
					require.Equal(t, 10, req.Limit)
					require.Equal(t, model.ByUUID, req.Sort)
					return []model.Run{{UID: uuid.New()}}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "bad query",
			query:      "?page=abc",
			mock:       &mockHistoryService{},
			wantStatus: 400,
		},
		{
			name:  "service error",
			query: "",
			mock: &mockHistoryService{
				getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
					return nil, model.ErrCommon500
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewHistoryHandler(tt.mock)

			r.GET("/history", func(c *gin.Context) {
				h.GetAllRuns((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/history"+tt.query, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHistoryHandler_LoadResult(t *testing.T) {
	tests := []struct {
		name       string
		mock       *mockHistoryService
		wantStatus int
		wantBody   string
	}{
		{
			name: "success",
			mock: &mockHistoryService{
				loadResultFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
					require.Equal(t, "123", id)
					return io.NopCloser(bytes.NewReader([]byte("ok"))), model.PNG, nil
				},
			},
			wantStatus: 200,
			wantBody:   "ok",
		},
		{
			name: "incorrect id",
			mock: &mockHistoryService{
				loadResultFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
					return nil, "", model.ErrIncorrectID
				},
			},
			wantStatus: 400,
		},
		{
			name: "not found",
			mock: &mockHistoryService{
				loadResultFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
					return nil, "", model.ErrRunNotFound
				},
			},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewHistoryHandler(tt.mock)

			r.GET("/history/:id/result", func(c *gin.Context) {
				h.LoadResult((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/history/123/result", nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				require.Equal(t, tt.wantBody, w.Body.String())
				require.Equal(t, model.PNG, w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestHistoryHandler_LoadThumbnail(t *testing.T) {
	tests := []struct {
		name       string
		mock       *mockHistoryService
		wantStatus int
	}{
		{
			name: "success",
			mock: &mockHistoryService{
				loadThumbnailFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
					return io.NopCloser(bytes.NewReader([]byte("thumb"))), model.PNG, nil
				},
			},
			wantStatus: 200,
		},
		{
			name: "not ready",
			mock: &mockHistoryService{
				loadThumbnailFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
					return nil, "", model.ErrResultNotReady
				},
			},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewHistoryHandler(tt.mock)

			r.GET("/history/:id/thumbnail", func(c *gin.Context) {
				h.LoadThumbnail((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/history/123/thumbnail", nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHistoryHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		mock       *mockHistoryService
		wantStatus int
	}{
		{
			name: "success",
			mock: &mockHistoryService{
				deleteFn: func(ctx context.Context, id string) error {
					return nil
				},
			},
			wantStatus: 204,
		},
		{
			name: "not found",
			mock: &mockHistoryService{
				deleteFn: func(ctx context.Context, id string) error {
					return model.ErrRunNotFound
				},
			},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewHistoryHandler(tt.mock)

			r.DELETE("/history/:id", func(c *gin.Context) {
				h.Delete((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodDelete, "/history/123", nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestErrorCodeDefiner(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrNoFile, 400},
		{model.ErrIncorrectMode, 400},
		{model.ErrNotImage, 415},
		{model.ErrBusy, 409},
		{model.ErrProcessFailed, 502},
		{model.ErrEndpointNotConfigured, 503},
		{model.ErrSessionNotFound, 404},
		{model.ErrNoResult, 404},
		{model.ErrFileTooLarge, 413},
		{model.ErrCommon500, 500},
		{io.EOF, 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, errorCodeDefiner(tt.err))
		})
	}
}
