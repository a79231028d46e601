package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brannigan/finautomata/internal/store"
)

type userRepo struct {
	db *sql.DB
}

func (r *userRepo) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created INTEGER NOT NULL,
		last_logout_time INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (r *userRepo) Create(ctx context.Context, u store.User) (store.User, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return store.User{}, fmt.Errorf("could not generate ID: %w", err)
	}
	now := time.Now()

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created, last_logout_time) VALUES (?, ?, ?, ?, ?)`,
		id.String(), u.Username, u.PasswordHash, now.Unix(), now.Unix(),
	)
	if err != nil {
		return store.User{}, wrapDBError(err)
	}

	return r.GetByID(ctx, id)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (store.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created, last_logout_time FROM users WHERE id = ?`, id.String())
	return scanUser(row.Scan)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (store.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created, last_logout_time FROM users WHERE username = ?`, username)
	return scanUser(row.Scan)
}

func (r *userRepo) Update(ctx context.Context, id uuid.UUID, u store.User) (store.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = ?, password_hash = ?, last_logout_time = ? WHERE id = ?`,
		u.Username, u.PasswordHash, u.LastLogoutTime.Unix(), id.String(),
	)
	if err != nil {
		return store.User{}, wrapDBError(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return store.User{}, wrapDBError(err)
	} else if n == 0 {
		return store.User{}, store.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return wrapDBError(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return wrapDBError(err)
	} else if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *userRepo) Close() error { return nil }

func scanUser(scan func(dest ...any) error) (store.User, error) {
	var u store.User
	var id string
	var created, lastLogout int64

	err := scan(&id, &u.Username, &u.PasswordHash, &created, &lastLogout)
	if err != nil {
		return store.User{}, wrapDBError(err)
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return store.User{}, fmt.Errorf("%w: id: %s", store.ErrDecodingFailure, err)
	}
	u.Created = time.Unix(created, 0)
	u.LastLogoutTime = time.Unix(lastLogout, 0)

	return u, nil
}
