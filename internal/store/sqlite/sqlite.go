// Package sqlite is a store.Store backed by a single SQLite database file,
// using modernc.org/sqlite (no cgo) and google/uuid for record identity.
//
// Grounded on server/dao/sqlite/sqlite.go's aggregate store + per-repository
// struct split, and on sessions.go's convention of storing a serialized
// blob (there a rezi-encoded game.State, here a rezi-encoded
// automaton.StructuredAutomaton) base64'd into a TEXT column.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"

	"github.com/brannigan/finautomata/internal/store"
)

type sqliteStore struct {
	db       *sql.DB
	machines *machineRepo
	users    *userRepo
}

// Open creates (or reuses) a SQLite database at path, creates its schema if
// absent, and returns a store.Store backed by it.
func Open(path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapDBError(err)
	}

	s := &sqliteStore{db: db}
	s.machines = &machineRepo{db: db}
	if err := s.machines.init(); err != nil {
		return nil, err
	}
	s.users = &userRepo{db: db}
	if err := s.users.init(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *sqliteStore) Machines() store.MachineRepository { return s.machines }
func (s *sqliteStore) Users() store.UserRepository       { return s.users }
func (s *sqliteStore) Close() error                      { return s.db.Close() }

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 { // SQLITE_CONSTRAINT
			return store.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
