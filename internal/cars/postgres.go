package cars

import (
	"context"
	"database/sql"
	"errors"
)

var _ Store = (*PGStore)(nil)

const carColumns = `id, model, color, reg_number, chassis_number, key_number, status,
	coalesce(buyer_name, ''), handover_date, created_at, updated_at`

type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, car *Car) error {
	_, err := s.db.ExecContext(ctx,
		`insert into cars(id, model, color, reg_number, chassis_number, key_number, status, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		car.ID, car.Model, car.Color, car.RegNumber, car.ChassisNumber, car.KeyNumber,
		car.Status, car.CreatedAt, car.UpdatedAt)
	return err
}

func (s *PGStore) Get(ctx context.Context, id string) (*Car, error) {
	row := s.db.QueryRowContext(ctx, `select `+carColumns+` from cars where id=$1`, id)
	return scanCar(row)
}

func (s *PGStore) GetByRegNumber(ctx context.Context, regNumber string) (*Car, error) {
	row := s.db.QueryRowContext(ctx, `select `+carColumns+` from cars where reg_number=$1`, regNumber)
	return scanCar(row)
}

func (s *PGStore) List(ctx context.Context, limit, offset int) ([]*Car, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+carColumns+` from cars order by created_at desc limit $1 offset $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, car)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, car *Car) error {
	res, err := s.db.ExecContext(ctx,
		`update cars set model=$2, color=$3, key_number=$4, status=$5, buyer_name=nullif($6,''),
		 handover_date=$7, updated_at=$8 where id=$1`,
		car.ID, car.Model, car.Color, car.KeyNumber, car.Status, car.BuyerName,
		car.HandoverDate, car.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from cars where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (*Car, error) {
	var car Car
	err := row.Scan(&car.ID, &car.Model, &car.Color, &car.RegNumber, &car.ChassisNumber,
		&car.KeyNumber, &car.Status, &car.BuyerName, &car.HandoverDate,
		&car.CreatedAt, &car.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &car, nil
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
