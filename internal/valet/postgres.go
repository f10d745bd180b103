package valet

import (
	"context"
	"database/sql"
	"errors"
)

var _ Store = (*PGStore)(nil)

const jobColumns = `id, coalesce(comments, ''), status, user_id, created_at, updated_at`

type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, job *Job) error {
	_, err := s.db.ExecContext(ctx,
		`insert into valet_jobs(id, comments, status, user_id, created_at, updated_at)
		 values($1,nullif($2,''),$3,$4,$5,$6)`,
		job.ID, job.Comments, job.Status, job.UserID, job.CreatedAt, job.UpdatedAt)
	return err
}

func (s *PGStore) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `select `+jobColumns+` from valet_jobs where id=$1`, id)
	return scanJob(row)
}

func (s *PGStore) List(ctx context.Context, limit, offset int) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+jobColumns+` from valet_jobs order by created_at desc limit $1 offset $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, job *Job) error {
	res, err := s.db.ExecContext(ctx,
		`update valet_jobs set comments=nullif($2,''), status=$3, updated_at=$4 where id=$1`,
		job.ID, job.Comments, job.Status, job.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from valet_jobs where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	err := row.Scan(&job.ID, &job.Comments, &job.Status, &job.UserID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
