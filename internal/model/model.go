// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	Mode   string
	Status string
)

const (
	ModePrecision       Mode = "precision"
	ModeOriginalQuality Mode = "originalQuality"
)

var ModesMap = map[Mode]bool{
	ModePrecision:       true,
	ModeOriginalQuality: true,
}

// Label - подпись режима над превью
func (m Mode) Label() string {
	if m == ModePrecision {
		return "Precision Mode"
	}
	return "Original Quality Mode"
}

// DownloadName - имя файла при скачивании результата
func (m Mode) DownloadName() string {
	if m == ModePrecision {
		return "desilhouette-precision.png"
	}
	return "desilhouette-original-quality.png"
}

// статусы генерации превьюшки в истории
const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusFailed     Status = "failed"
	StatusDone       Status = "done"
)

var StatusMap = map[Status]bool{
	StatusCreated:    true,
	StatusInProgress: true,
	StatusFailed:     true,
	StatusDone:       true,
}

//---------------------

// ImageFile - выбранный пользователем файл или ответ API
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *ImageFile) IsImage() bool {
	return f != nil && strings.HasPrefix(f.ContentType, "image/")
}

func (f *ImageFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// UIState - состояние воркспейса, одно на контроллер
type UIState struct {
	Mode             Mode
	File             *ImageFile
	OriginalImageRef string
	ResultImageRef   string
	IsProcessing     bool
}

// Download - что и под каким именем отдать пользователю
type Download struct {
	Ref      string
	Filename string
}

//---------------------

// RunData - всё, что нужно истории после успешной обработки
type RunData struct {
	SessionID string
	Mode      Mode
	Original  *ImageFile
	Result    *ImageFile
}

type Run struct {
	UID       uuid.UUID  `json:"uid"`
	SessionID string     `json:"session_id"`
	Mode      Mode       `json:"mode"`
	FileName  string     `json:"file_name"`
	SourceKey string     `json:"-"`
	ResultKey string     `json:"-"`
	ThumbKey  string     `json:"-"`
	Status    Status     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

//-------------------

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByUUID    = "uid"
	ByCreated = "created"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

// ------------------

// сообщения пользователю
const (
	MsgSelectImage     = "Please select an image first."
	MsgEndpointMissing = "API endpoint is not configured."
	MsgProcessFailed   = "Failed to process image. Please try again."
	MsgNotImage        = "Please upload an image file."
	MsgSomethingWrong  = "Something went wrong. Please try again."
)

const ScrollTargetWorkspace = "workspace"

var (
	ErrNoFile                error = errors.New("no image selected")                     // 400
	ErrEndpointNotConfigured error = errors.New("API endpoint is not configured")        // 503
	ErrNotImage              error = errors.New("file is not an image")                  // 415
	ErrProcessFailed         error = errors.New("failed to process image")               // 502
	ErrBusy                  error = errors.New("image is already being processed")      // 409
	ErrNoResult              error = errors.New("no processed image yet")                // 404
	ErrSessionNotFound       error = errors.New("workspace session doesn't exist")       // 404
	ErrRefNotFound           error = errors.New("image reference doesn't exist")         // 404
	ErrIncorrectMode         error = errors.New("mode is not supported")                 // 400
	ErrCommon500             error = errors.New("something went wrong. Try again later") // 500
	ErrIncorrectQuery        error = errors.New("incorrect query parameters")            // 400
	ErrIncorrectID           error = errors.New("incorrect run UUID")                    // 400
	ErrRunNotFound           error = errors.New("specified run UUID doesn't exist")      // 404
	ErrResultNotReady        error = errors.New("requested thumbnail is not ready yet")  // 404
	ErrEmptySource           error = errors.New("empty/incorrect source image provided") // 400
	ErrUnsupportedFormat     error = errors.New("unsupported image format")              // 400
	ErrFileTooLarge          error = errors.New("uploaded file is too large")            // 413
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
	WEBP = "image/webp"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
	WEBP: ".webp",
}

// FileExt - расширение по content-type, по дефолту .png
func FileExt(cType string) string {
	if ext, ok := GetImageFileExt[cType]; ok {
		return ext
	}
	return ".png"
}
