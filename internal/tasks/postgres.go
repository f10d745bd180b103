package tasks

import (
	"context"
	"database/sql"
	"errors"
)

var _ Store = (*PGStore)(nil)

const taskColumns = `id, title, coalesce(description, ''), status, priority, deadline,
	created_by, coalesce(car_id, ''), coalesce(workshop_id, ''), coalesce(valet_id, ''),
	created_at, updated_at`

type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, task *Task) error {
	_, err := s.db.ExecContext(ctx,
		`insert into tasks(id, title, description, status, priority, deadline, created_by,
		 car_id, workshop_id, valet_id, created_at, updated_at)
		 values($1,$2,nullif($3,''),$4,$5,$6,$7,nullif($8,''),nullif($9,''),nullif($10,''),$11,$12)`,
		task.ID, task.Title, task.Description, task.Status, task.Priority, task.Deadline,
		task.CreatedBy, task.CarID, task.WorkshopID, task.ValetID, task.CreatedAt, task.UpdatedAt)
	return err
}

func (s *PGStore) Get(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `select `+taskColumns+` from tasks where id=$1`, id)
	return scanTask(row)
}

func (s *PGStore) List(ctx context.Context, limit, offset int) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+taskColumns+` from tasks order by created_at desc limit $1 offset $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, task *Task) error {
	res, err := s.db.ExecContext(ctx,
		`update tasks set title=$2, description=nullif($3,''), status=$4, priority=$5,
		 deadline=$6, updated_at=$7 where id=$1`,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.Deadline, task.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var task Task
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&task.Deadline, &task.CreatedBy, &task.CarID, &task.WorkshopID, &task.ValetID,
		&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
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
