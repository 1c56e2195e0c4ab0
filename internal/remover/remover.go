// Package remover provides HTTP-client for the remote background-removal API
package remover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
)

const (
	formField       = "file"
	defaultFileName = "upload"
	errBodyLimit    = 1024
)

// StatusError - API ответил не 2xx
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.Code)
}

type Client struct {
	http *http.Client
}

// NewClient - timeout <= 0 означает без ограничения по времени
func NewClient(timeout time.Duration) *Client {
	if timeout < 0 {
		timeout = 0
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Remove - один POST на endpoint с картинкой в поле формы "file"
func (c *Client) Remove(ctx context.Context, endpoint string, file *model.ImageFile) (*model.ImageFile, error) {
	if file == nil {
		return nil, errors.New("nil file passed to remover")
	}

	body, contentType, err := buildForm(file)
	if err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	cType := resp.Header.Get("Content-Type")
	if cType == "" {
		cType = model.PNG
	}

	return &model.ImageFile{
		Name:        resultName(file.Name),
		ContentType: cType,
		Data:        data,
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func buildForm(file *model.ImageFile) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	name := file.Name
	if name == "" {
		name = defaultFileName
	}
	cType := file.ContentType
	if cType == "" {
		cType = "application/octet-stream"
	}

	// CreateFormFile всегда ставит octet-stream, а API нужен реальный тип картинки
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, formField, quoteEscaper.Replace(name)))
	h.Set("Content-Type", cType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

func resultName(orig string) string {
	if orig == "" {
		return "result.png"
	}
	if i := strings.LastIndex(orig, "."); i > 0 {
		orig = orig[:i]
	}
	return orig + "-nobg.png"
}
