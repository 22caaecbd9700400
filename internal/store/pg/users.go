package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"ihale.org/internal/user"
)

const pgUniqueViolation = "23505"

// UserStore is the Postgres user.Store.
type UserStore struct {
	db *sql.DB
}

var _ user.Store = (*UserStore)(nil)

const userColumns = `id, name, email, password_hash, user_type, is_admin, is_active, participation_rights, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.UserType,
		&u.IsAdmin, &u.IsActive, &u.ParticipationRights, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, name, email, password_hash, user_type, is_admin, is_active, participation_rights, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.UserType, u.IsAdmin, u.IsActive, u.ParticipationRights, u.CreatedAt, u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return user.ErrEmailTaken
	}
	return err
}

func (s *UserStore) Find(ctx context.Context, id string) (*user.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id))
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email=$1`, email))
}

func (s *UserStore) List(ctx context.Context) ([]*user.User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from users`).Scan(&n)
	return n, err
}

func (s *UserStore) SetActive(ctx context.Context, id string, active bool) (*user.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		update users set is_active=$2, updated_at=now()
		where id=$1
		returning `+userColumns, id, active))
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (s *UserStore) AddParticipationRights(ctx context.Context, id string, amount int) (int, error) {
	var rights int
	err := s.db.QueryRowContext(ctx, `
		update users set participation_rights = participation_rights + $2, updated_at=now()
		where id=$1
		returning participation_rights
	`, id, amount).Scan(&rights)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, user.ErrNotFound
	}
	return rights, err
}
