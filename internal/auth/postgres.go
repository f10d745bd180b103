package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var _ Store = (*PGStore)(nil)

const identityColumns = `id, first_name, last_name, email, password_hash, enabled,
	coalesce(reset_token, ''), coalesce(reset_token_expiration, 'epoch'::timestamptz),
	created_at, updated_at, coalesce(last_modified_by, '')`

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) FindByID(ctx context.Context, id int64) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+identityColumns+` from users where id=$1`, id)
	return s.scanIdentity(ctx, row)
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+identityColumns+` from users where email=$1`, email)
	return s.scanIdentity(ctx, row)
}

func (s *PGStore) FindByResetToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrIdentityNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`select `+identityColumns+` from users where reset_token=$1`, token)
	return s.scanIdentity(ctx, row)
}

func (s *PGStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from users where email=$1)`, email).Scan(&exists)
	return exists, err
}

func (s *PGStore) Create(ctx context.Context, identity *Identity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`insert into users(first_name, last_name, email, password_hash, enabled)
		 values($1,$2,$3,$4,$5) returning id, created_at, updated_at`,
		identity.FirstName, identity.LastName, identity.Email, identity.PasswordHash, identity.Enabled,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		return err
	}
	for _, role := range identity.Roles {
		if _, err := tx.ExecContext(ctx,
			`insert into user_roles(user_id, role) values($1,$2) on conflict do nothing`,
			identity.ID, role); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PGStore) Update(ctx context.Context, identity *Identity) error {
	res, err := s.db.ExecContext(ctx,
		`update users set first_name=$2, last_name=$3, password_hash=$4, updated_at=now(), last_modified_by=$5
		 where id=$1`,
		identity.ID, identity.FirstName, identity.LastName, identity.PasswordHash, identity.LastModifiedBy,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `delete from user_roles where user_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PGStore) List(ctx context.Context, limit, offset int) ([]*Identity, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+identityColumns+` from users order by id limit $1 offset $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []*Identity
	for rows.Next() {
		identity, err := scanIdentityRow(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, identity := range identities {
		if identity.Roles, err = s.rolesFor(ctx, identity.ID); err != nil {
			return nil, err
		}
	}
	return identities, nil
}

func (s *PGStore) UpdateRoles(ctx context.Context, id int64, roles []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `delete from user_roles where user_id=$1`, id); err != nil {
		return err
	}
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx,
			`insert into user_roles(user_id, role) values($1,$2)`, id, role); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `update users set updated_at=now() where id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PGStore) SetEnabled(ctx context.Context, id int64, enabled bool, modifiedBy string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set enabled=$2, updated_at=now(), last_modified_by=$3 where id=$1`,
		id, enabled, modifiedBy)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`update users set reset_token=$2, reset_token_expiration=$3, updated_at=now() where id=$1`,
		id, token, expiresAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ConsumeResetToken is the single-use enforcement point: the WHERE clause
// re-verifies token presence and expiry in the same statement that replaces
// the password and clears the reset fields, so a raced or repeated consume
// matches zero rows.
func (s *PGStore) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`update users set password_hash=$2, reset_token=null, reset_token_expiration=null, updated_at=now()
		 where reset_token=$1 and reset_token_expiration > $3`,
		token, passwordHash, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidToken
	}
	return nil
}

func (s *PGStore) scanIdentity(ctx context.Context, row *sql.Row) (*Identity, error) {
	identity, err := scanIdentityRow(row)
	if err != nil {
		return nil, err
	}
	if identity.Roles, err = s.rolesFor(ctx, identity.ID); err != nil {
		return nil, err
	}
	return identity, nil
}

func (s *PGStore) rolesFor(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`select role from user_roles where user_id=$1 order by role`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentityRow(row rowScanner) (*Identity, error) {
	var identity Identity
	err := row.Scan(
		&identity.ID, &identity.FirstName, &identity.LastName, &identity.Email,
		&identity.PasswordHash, &identity.Enabled,
		&identity.ResetToken, &identity.ResetTokenExpiry,
		&identity.CreatedAt, &identity.UpdatedAt, &identity.LastModifiedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	if identity.ResetTokenExpiry.Unix() == 0 {
		identity.ResetTokenExpiry = time.Time{}
	}
	return &identity, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
