package transport

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500):
		return 500
	case errors.Is(err, model.ErrProcessFailed):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrEndpointNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, model.ErrNotImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, model.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrRunNotFound),
		errors.Is(err, model.ErrResultNotReady),
		errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrRefNotFound),
		errors.Is(err, model.ErrNoResult):
		return 404
	case errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrIncorrectID),
		errors.Is(err, model.ErrIncorrectMode),
		errors.Is(err, model.ErrNoFile),
		errors.Is(err, model.ErrEmptySource),
		errors.Is(err, model.ErrUnsupportedFormat):
		return 400
	default:
		return 500
	}
}

func closeFileFlow(res io.Closer) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}
