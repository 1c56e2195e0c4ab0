// Package service provides business-logic of the processing history
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/UnendingLoop/DeSilhouette/internal/mwlogger"
	"github.com/UnendingLoop/DeSilhouette/internal/repository"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

// префиксы ключей объектов истории в хранилище
const (
	SrcKeyPrefix    = "history/src/"
	ResultKeyPrefix = "history/result/"
	ThumbKeyPrefix  = "history/thumb/"
)

type HistoryService struct {
	repo      repository.RunRepo
	publisher TaskPublisher
	storage   ObjectStorage
}

func NewHistoryService(repo repository.RunRepo, pub TaskPublisher, strg ObjectStorage) *HistoryService {
	return &HistoryService{
		repo:      repo,
		publisher: pub,
		storage:   strg,
	}
}

// TaskPublisher - контракт для работы с очередью
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// ObjectStorage - контракт для работы с хранилищем
type ObjectStorage interface {
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (output io.ReadCloser, ctype string, err error)
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

// Стратегия ретрая отправки в очередь
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

// Record - сохраняет исходник и результат успешной обработки и ставит задачу на превьюшку
func (c HistoryService) Record(ctx context.Context, data *model.RunData) error {
	logger := mwlogger.LoggerFromContext(ctx)

	if data == nil || data.Original.Size() == 0 || data.Result.Size() == 0 {
		return model.ErrEmptySource
	}
	if !model.ModesMap[data.Mode] {
		return model.ErrIncorrectMode
	}

	run := &model.Run{
		UID:       uuid.New(),
		SessionID: data.SessionID,
		Mode:      data.Mode,
		FileName:  data.Original.Name,
	}
	run.SourceKey = SrcKeyPrefix + run.UID.String() + model.FileExt(data.Original.ContentType)
	run.ResultKey = ResultKeyPrefix + run.UID.String() + model.FileExt(data.Result.ContentType)

	// кладем в хранилище исходник и результат
	if err := c.putFile(ctx, run.SourceKey, data.Original); err != nil {
		logger.Error().Err(err).Msg("Failed to save src-image in Storage")
		return model.ErrCommon500
	}
	if err := c.putFile(ctx, run.ResultKey, data.Result); err != nil {
		logger.Error().Err(err).Msg("Failed to save result-image in Storage")
		c.cleanup(ctx, run.SourceKey)
		return model.ErrCommon500
	}

	// ставим статус и таймстамп
	run.Status = model.StatusCreated
	now := time.Now().UTC()
	run.CreatedAt = &now

	// шлем в базу
	if err := c.repo.Create(ctx, run); err != nil {
		logger.Error().Err(err).Msg("Failed to create run in DB")
		c.cleanup(ctx, run.SourceKey, run.ResultKey)
		return model.ErrCommon500
	}

	// кладем в очередь задач(в кафку), при неудаче подберёт ReviveOrphans
	if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(run.UID.String()), nil); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish run %q to task-queue", run.UID))
		return model.ErrCommon500
	}
	return nil
}

func (c HistoryService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := c.repo.GetList(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch runs list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c HistoryService) Get(ctx context.Context, id string) (*model.Run, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	return c.fetch(ctx, id)
}

// LoadResult - результат есть у каждой записи, статус превьюшки не важен
func (c HistoryService) LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error) {
	run, err := c.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	return c.load(ctx, run.ResultKey)
}

func (c HistoryService) LoadThumbnail(ctx context.Context, id string) (io.ReadCloser, string, error) {
	run, err := c.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if run.Status != model.StatusDone || run.ThumbKey == "" {
		return nil, "", model.ErrResultNotReady
	}

	return c.load(ctx, run.ThumbKey)
}

func (c HistoryService) Delete(ctx context.Context, id string) error {
	logger := mwlogger.LoggerFromContext(ctx)

	// читаем из базы
	run, err := c.Get(ctx, id)
	if err != nil {
		return err
	}

	// удаляем из базы
	if err := c.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrRunNotFound) {
			return model.ErrRunNotFound // 404
		}
		logger.Error().Err(err).Msg("Failed to delete run from DB")
		return model.ErrCommon500
	}

	// удаляем из хранилища исходник, результат и превьюшку(если она есть)
	keys := []string{run.SourceKey, run.ResultKey}
	if run.ThumbKey != "" {
		keys = append(keys, run.ThumbKey)
	}
	for _, key := range keys {
		if err := c.storage.Delete(ctx, key); err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Failed to delete object from Storage")
			return model.ErrCommon500
		}
	}

	return nil
}

func (c HistoryService) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}
	if !model.StatusMap[newStat] {
		return model.ErrIncorrectQuery
	}

	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.repo.UpdateStatus(ctx, id, newStat); err != nil {
		switch {
		case errors.Is(err, model.ErrRunNotFound):
			return model.ErrRunNotFound // 404
		default:
			logger.Error().Err(err).Msg("Failed to update run status in DB")
			return model.ErrCommon500 // 500
		}
	}

	return nil
}

func (c HistoryService) SaveThumbnail(ctx context.Context, input *model.Run) error {
	logger := mwlogger.LoggerFromContext(ctx)
	t := time.Now().UTC()
	input.UpdatedAt = &t
	if err := c.repo.SaveThumbnail(ctx, input); err != nil {
		switch {
		case errors.Is(err, model.ErrRunNotFound):
			return model.ErrRunNotFound // 404
		default:
			logger.Error().Err(err).Msg("Failed to save thumbnail in DB")
			return model.ErrCommon500 // 500
		}
	}

	return nil
}

// ReviveOrphans - повторно публикует зависшие задачи на превьюшки
func (c HistoryService) ReviveOrphans(ctx context.Context, limit int) {
	logger := mwlogger.LoggerFromContext(ctx)

	orphans, err := c.repo.FetchOrphans(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load orphans from DB")
		return
	}

	for _, v := range orphans {
		if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(v), nil); err != nil {
			logger.Error().Err(err).Msg("Failed to publish orphan to queue")
		}
	}
}

// ---------------------

func (c HistoryService) fetch(ctx context.Context, id string) (*model.Run, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	res, err := c.repo.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRunNotFound):
			return nil, model.ErrRunNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch run %q from DB", id))
			return nil, model.ErrCommon500
		}
	}
	return res, nil
}

func (c HistoryService) load(ctx context.Context, key string) (io.ReadCloser, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	data, cType, err := c.storage.Get(ctx, key)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch object %q from Storage", key))
		return nil, "", model.ErrCommon500
	}
	return data, cType, nil
}

func (c HistoryService) putFile(ctx context.Context, key string, file *model.ImageFile) error {
	return c.storage.Put(ctx, key, file.Size(), file.ContentType, bytes.NewReader(file.Data))
}

func (c HistoryService) cleanup(ctx context.Context, keys ...string) {
	logger := mwlogger.LoggerFromContext(ctx)
	for _, key := range keys {
		if err := c.storage.Delete(ctx, key); err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Failed to clean up object in Storage")
		}
	}
}
