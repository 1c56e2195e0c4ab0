// Package worker contains methods for worker to init at start, and to build history thumbnails
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"strings"

	"github.com/UnendingLoop/DeSilhouette/internal/imageproc"
	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/UnendingLoop/DeSilhouette/internal/service"
	"github.com/disintegration/imaging"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
)

// NoopPublisher - ЗАГЛУШКА, функциональность настоящего паблишера в очередь не нужна в рамках работы воркера
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, k []byte, v []byte) error {
	return nil
}

type RunWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveThumbnail(ctx context.Context, run *model.Run) error
	Get(ctx context.Context, id string) (*model.Run, error)
}

// Committer - подтверждение обработанного сообщения в очереди
type Committer interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Worker struct {
	storage     service.ObjectStorage
	service     RunWorkerService
	queue       <-chan kafkago.Message
	consumer    Committer
	thumbPrefix string
}

func NewWorkerInstance(strg service.ObjectStorage, svc RunWorkerService, q <-chan kafkago.Message, cons Committer) *Worker {
	return &Worker{storage: strg, service: svc, queue: q, consumer: cons, thumbPrefix: service.ThumbKeyPrefix}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			id := string(msg.Key)
			if err := w.initProcessor(ctx, id); err != nil && !errors.Is(err, model.ErrRunNotFound) {
				log.Printf("Task %s failed: %v", id, err)
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) initProcessor(ctx context.Context, id string) error {
	// считать из базы задачу
	run, err := w.service.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("worker failed to fetch run %q from DB: %w", id, err)
	}

	// проверить статус: done и failed повторно не обрабатываются
	switch run.Status {
	case model.StatusDone, model.StatusFailed:
		return nil
	}

	// на всякий случай проверить поле с превьюшкой
	if strings.HasPrefix(run.ThumbKey, w.thumbPrefix) {
		if err := w.service.UpdateStatus(ctx, id, model.StatusDone); err != nil {
			return fmt.Errorf("failed to update status of already-done run in DB: %w", err)
		}
		return nil
	}

	// обновить статус
	if err := w.service.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		return fmt.Errorf("failed to update status of run %q to `in_progress` in DB: %w", id, err)
	}

	// строим превьюшку
	if pErr := w.processTask(ctx, run); pErr != nil {
		if uErr := w.service.UpdateStatus(ctx, id, model.StatusFailed); uErr != nil {
			return fmt.Errorf("failed to set status of run %q to `failed` in DB: %w \nAFTER\n error while processing run: %w", id, uErr, pErr)
		}
		return fmt.Errorf("failed to process run %q: %w", id, pErr)
	}

	return nil
}

func (w *Worker) processTask(ctx context.Context, run *model.Run) error {
	// достать из storage результат удаления фона
	res, _, err := w.storage.Get(ctx, run.ResultKey)
	if err != nil {
		return fmt.Errorf("worker failed to fetch result-image from storage: %w", err)
	}

	// свалидировать формат
	pRes, err := validateImgFormat(res)
	if err != nil {
		return fmt.Errorf("worker failed to validate result-image format: %w", err)
	}

	thumb, size, err := imageproc.Thumbnailer(pRes, imageproc.ThumbSize)
	if err != nil {
		return fmt.Errorf("worker failed to generate thumbnail: %w", err)
	}

	// положить превьюшку в сторедж
	thumbKey := w.thumbPrefix + run.UID.String() + model.FileExt(model.PNG)
	if err := w.storage.Put(ctx, thumbKey, size, model.PNG, thumb); err != nil {
		return fmt.Errorf("worker failed to put thumbnail to storage: %w", err)
	}

	run.Status = model.StatusDone
	run.ThumbKey = thumbKey

	// обновить запись в БД
	if err := w.service.SaveThumbnail(ctx, run); err != nil {
		return fmt.Errorf("worker failed to save thumbnail to DB: %w", err)
	}
	return nil
}

func validateImgFormat(r io.ReadCloser) (io.Reader, error) {
	if r == nil {
		return nil, errors.New("nil-reader provided")
	}
	defer closeFileFlow(r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	_, f, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	format, err := imaging.FormatFromExtension(f)
	if err != nil {
		return nil, err
	}

	switch format {
	case imaging.PNG, imaging.JPEG, imaging.GIF:
	default:
		return nil, model.ErrUnsupportedFormat
	}

	return bytes.NewReader(data), nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		log.Println("Worker failed to close fileflow:", err)
	}
}
