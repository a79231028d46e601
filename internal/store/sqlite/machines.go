package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brannigan/finautomata/internal/automaton"
	"github.com/brannigan/finautomata/internal/store"
)

type machineRepo struct {
	db *sql.DB
}

func (r *machineRepo) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS machines (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		data TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (r *machineRepo) Create(ctx context.Context, m store.Machine) (store.Machine, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return store.Machine{}, fmt.Errorf("could not generate ID: %w", err)
	}
	now := time.Now()

	encoded := base64.StdEncoding.EncodeToString(m.Data.EncodeBinary())

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO machines (id, owner_id, name, kind, data, created, modified) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), m.OwnerID.String(), m.Name, string(m.Kind), encoded, now.Unix(), now.Unix(),
	)
	if err != nil {
		return store.Machine{}, wrapDBError(err)
	}

	return r.GetByID(ctx, id)
}

func (r *machineRepo) GetByID(ctx context.Context, id uuid.UUID) (store.Machine, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, kind, data, created, modified FROM machines WHERE id = ?`, id.String())
	return scanMachine(row.Scan)
}

func (r *machineRepo) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]store.Machine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, kind, data, created, modified FROM machines WHERE owner_id = ? ORDER BY created ASC`,
		ownerID.String())
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []store.Machine
	for rows.Next() {
		m, err := scanMachine(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, m)
	}
	return all, nil
}

func (r *machineRepo) Update(ctx context.Context, id uuid.UUID, m store.Machine) (store.Machine, error) {
	now := time.Now()
	encoded := base64.StdEncoding.EncodeToString(m.Data.EncodeBinary())

	res, err := r.db.ExecContext(ctx,
		`UPDATE machines SET owner_id = ?, name = ?, kind = ?, data = ?, modified = ? WHERE id = ?`,
		m.OwnerID.String(), m.Name, string(m.Kind), encoded, now.Unix(), id.String(),
	)
	if err != nil {
		return store.Machine{}, wrapDBError(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return store.Machine{}, wrapDBError(err)
	} else if n == 0 {
		return store.Machine{}, store.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *machineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM machines WHERE id = ?`, id.String())
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

func (r *machineRepo) Close() error { return nil }

func scanMachine(scan func(dest ...any) error) (store.Machine, error) {
	var m store.Machine
	var id, ownerID, kind, data string
	var created, modified int64

	err := scan(&id, &ownerID, &m.Name, &kind, &data, &created, &modified)
	if err != nil {
		return store.Machine{}, wrapDBError(err)
	}

	if m.ID, err = uuid.Parse(id); err != nil {
		return store.Machine{}, fmt.Errorf("%w: id: %s", store.ErrDecodingFailure, err)
	}
	if m.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return store.Machine{}, fmt.Errorf("%w: owner_id: %s", store.ErrDecodingFailure, err)
	}
	m.Kind = automaton.Kind(kind)
	m.Created = time.Unix(created, 0)
	m.Modified = time.Unix(modified, 0)

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return store.Machine{}, fmt.Errorf("%w: data: %s", store.ErrDecodingFailure, err)
	}
	m.Data, err = automaton.DecodeStructuredBinary(raw)
	if err != nil {
		return store.Machine{}, fmt.Errorf("%w: data: %s", store.ErrDecodingFailure, err)
	}

	return m, nil
}
