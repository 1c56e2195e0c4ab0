// Package runpostgres provides postgres-journal of processed images
package runpostgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

func (p PostgresRepo) Create(ctx context.Context, r *model.Run) error {
	query := `INSERT INTO runs (run_uid, session_id, mode, file_name, source_key, result_key, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := p.DB.Master.ExecContext(ctx, query, r.UID, r.SessionID, r.Mode, r.FileName, r.SourceKey, r.ResultKey, r.Status, r.CreatedAt, r.CreatedAt)
	return err
}

func (p PostgresRepo) Get(ctx context.Context, id string) (*model.Run, error) {
	query := `SELECT run_uid, session_id, mode, file_name, source_key, result_key, thumb_key, status, created_at, updated_at
	FROM runs
	WHERE run_uid = $1`
	var run model.Run

	err := p.DB.Master.QueryRowContext(ctx, query, id).Scan(&run.UID,
		&run.SessionID,
		&run.Mode,
		&run.FileName,
		&run.SourceKey,
		&run.ResultKey,
		&run.ThumbKey,
		&run.Status,
		&run.CreatedAt,
		&run.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrRunNotFound
		default:
			return nil, err // 500
		}
	}
	return &run, nil
}

// GetList - Sort и Order уже провалидированы сервисом
func (p PostgresRepo) GetList(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
	query := fmt.Sprintf(`SELECT run_uid, session_id, mode, file_name, status, created_at, updated_at
	FROM runs
	ORDER BY %s %s
	LIMIT $1
	OFFSET $2`, req.Sort, req.Order)

	offset := (req.Page - 1) * req.Limit

	rows, err := p.DB.Master.QueryContext(ctx, query, req.Limit, offset)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	runs := make([]model.Run, 0, req.Limit)
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.UID,
			&run.SessionID,
			&run.Mode,
			&run.FileName,
			&run.Status,
			&run.CreatedAt,
			&run.UpdatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return runs, nil
}

func (p PostgresRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM runs
	WHERE run_uid = $1`

	res, err := p.DB.Master.ExecContext(ctx, query, id)
	if err != nil {
		return err // 500
	}
	return checkAffected(res)
}

func (p PostgresRepo) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	query := `UPDATE runs SET status = $1, updated_at = now() WHERE run_uid = $2`

	res, err := p.DB.Master.ExecContext(ctx, query, newStat, id)
	if err != nil {
		return err // 500
	}
	return checkAffected(res)
}

func (p PostgresRepo) SaveThumbnail(ctx context.Context, input *model.Run) error {
	query := `UPDATE runs SET status = $1, updated_at = $2, thumb_key = $3 WHERE run_uid = $4`

	res, err := p.DB.Master.ExecContext(ctx, query, input.Status, input.UpdatedAt, input.ThumbKey, input.UID)
	if err != nil {
		return err // 500
	}
	return checkAffected(res)
}

// FetchOrphans - прогоны, зависшие без превьюшки дольше 10 минут
func (p PostgresRepo) FetchOrphans(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT run_uid
	FROM runs
	WHERE status IN ($1, $2)
	AND updated_at < now() - interval '10 minutes'
	LIMIT $3`

	rows, err := p.DB.Master.QueryContext(ctx, query, model.StatusCreated, model.StatusInProgress, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	orphans := make([]string, 0, limit)
	for rows.Next() {
		uid := ""
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		orphans = append(orphans, uid)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return orphans, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrRunNotFound // 404
	}
	return nil
}
