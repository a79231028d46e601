// Package memory is an in-process store.Store backed by plain maps, useful
// for tests and for running automatonserver with no persistence configured.
//
// Grounded on server/dao/inmem's per-resource repository structs (a map
// plus a by-owner index slice, generalized from the teacher's
// by-user-ID-index-of-games pattern down to this domain's single owner
// relationship).
package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/brannigan/finautomata/internal/store"
)

// New returns a store.Store backed entirely by in-memory maps.
func New() store.Store {
	return &memStore{
		machines: newMachineRepo(),
		users:    newUserRepo(),
	}
}

type memStore struct {
	machines *machineRepo
	users    *userRepo
}

func (s *memStore) Machines() store.MachineRepository { return s.machines }
func (s *memStore) Users() store.UserRepository       { return s.users }
func (s *memStore) Close() error                      { return nil }

type machineRepo struct {
	byID      map[uuid.UUID]store.Machine
	byOwnerID map[uuid.UUID][]uuid.UUID
}

func newMachineRepo() *machineRepo {
	return &machineRepo{
		byID:      make(map[uuid.UUID]store.Machine),
		byOwnerID: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *machineRepo) Close() error { return nil }

func (r *machineRepo) Create(ctx context.Context, m store.Machine) (store.Machine, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return store.Machine{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	m.ID = id
	m.Created = now
	m.Modified = now

	r.byID[m.ID] = m
	r.byOwnerID[m.OwnerID] = append(r.byOwnerID[m.OwnerID], m.ID)

	return m, nil
}

func (r *machineRepo) GetByID(ctx context.Context, id uuid.UUID) (store.Machine, error) {
	m, ok := r.byID[id]
	if !ok {
		return store.Machine{}, store.ErrNotFound
	}
	return m, nil
}

func (r *machineRepo) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]store.Machine, error) {
	ids := r.byOwnerID[ownerID]
	all := make([]store.Machine, 0, len(ids))
	for _, id := range ids {
		all = append(all, r.byID[id])
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return all, nil
}

func (r *machineRepo) Update(ctx context.Context, id uuid.UUID, m store.Machine) (store.Machine, error) {
	existing, ok := r.byID[id]
	if !ok {
		return store.Machine{}, store.ErrNotFound
	}

	m.ID = id
	m.Created = existing.Created
	m.Modified = time.Now()

	if m.OwnerID != existing.OwnerID {
		r.removeFromIndex(existing.OwnerID, id)
		r.byOwnerID[m.OwnerID] = append(r.byOwnerID[m.OwnerID], id)
	}

	r.byID[id] = m
	return m, nil
}

func (r *machineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m, ok := r.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	r.removeFromIndex(m.OwnerID, id)
	delete(r.byID, id)
	return nil
}

func (r *machineRepo) removeFromIndex(owner, id uuid.UUID) {
	ids := r.byOwnerID[owner]
	for i, existing := range ids {
		if existing == id {
			r.byOwnerID[owner] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(r.byOwnerID[owner]) == 0 {
		delete(r.byOwnerID, owner)
	}
}

type userRepo struct {
	byID       map[uuid.UUID]store.User
	byUsername map[string]uuid.UUID
}

func newUserRepo() *userRepo {
	return &userRepo{
		byID:       make(map[uuid.UUID]store.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *userRepo) Close() error { return nil }

func (r *userRepo) Create(ctx context.Context, u store.User) (store.User, error) {
	if _, exists := r.byUsername[u.Username]; exists {
		return store.User{}, store.ErrConstraintViolation
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return store.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	u.ID = id
	u.Created = time.Now()

	r.byID[u.ID] = u
	r.byUsername[u.Username] = u.ID

	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (store.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (store.User, error) {
	id, ok := r.byUsername[username]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *userRepo) Update(ctx context.Context, id uuid.UUID, u store.User) (store.User, error) {
	existing, ok := r.byID[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}

	if u.Username != existing.Username {
		if _, exists := r.byUsername[u.Username]; exists {
			return store.User{}, store.ErrConstraintViolation
		}
		delete(r.byUsername, existing.Username)
		r.byUsername[u.Username] = id
	}

	u.ID = id
	u.Created = existing.Created
	r.byID[id] = u
	return u, nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	u, ok := r.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(r.byUsername, u.Username)
	delete(r.byID, id)
	return nil
}
