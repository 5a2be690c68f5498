// Package roster keeps the admin user list in memory and applies status
// and role changes optimistically: the local row changes at once, is
// marked pending, and is confirmed or reverted by the server's answer.
package roster

import (
	"context"
	"errors"
	"sync"

	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/permission"
)

var (
	ErrUnknownUser = errors.New("user not in roster")
	ErrPending     = errors.New("user has a change in flight")
	ErrUnknownRole = errors.New("unknown role")
)

// Backend is the part of the admin API the roster needs.
type Backend interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserActive(ctx context.Context, id uint, active bool) (*models.User, error)
	SetUserRole(ctx context.Context, id uint, roleName string) (*models.User, error)
}

type Entry struct {
	User    models.User
	Pending bool
}

type Roster struct {
	mu      sync.Mutex
	backend Backend
	users   []models.User
	pending map[uint]bool
}

func New(backend Backend) *Roster {
	return &Roster{backend: backend, pending: map[uint]bool{}}
}

// Refresh replaces the list with the server's. Pending changes are dropped.
func (r *Roster) Refresh(ctx context.Context) error {
	users, err := r.backend.ListUsers(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.users = users
	r.pending = map[uint]bool{}
	r.mu.Unlock()
	return nil
}

func (r *Roster) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.users))
	for i, u := range r.users {
		out[i] = Entry{User: u, Pending: r.pending[u.ID]}
	}
	return out
}

func (r *Roster) Get(id uint) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return Entry{}, false
	}
	return Entry{User: r.users[i], Pending: r.pending[id]}, true
}

func (r *Roster) SetActive(ctx context.Context, id uint, active bool) error {
	return r.apply(ctx, id, func(u *models.User) {
		u.Active = active
	}, func(ctx context.Context) (*models.User, error) {
		return r.backend.SetUserActive(ctx, id, active)
	})
}

func (r *Roster) SetRole(ctx context.Context, id uint, roleName string) error {
	if _, ok := permission.ParseRole(roleName); !ok {
		return ErrUnknownRole
	}
	return r.apply(ctx, id, func(u *models.User) {
		// The role ID is only known once the server answers.
		u.Role = &models.Role{Name: roleName}
	}, func(ctx context.Context) (*models.User, error) {
		return r.backend.SetUserRole(ctx, id, roleName)
	})
}

func (r *Roster) apply(ctx context.Context, id uint, mutate func(*models.User), call func(context.Context) (*models.User, error)) error {
	r.mu.Lock()
	i := r.indexLocked(id)
	if i < 0 {
		r.mu.Unlock()
		return ErrUnknownUser
	}
	if r.pending[id] {
		r.mu.Unlock()
		return ErrPending
	}
	previous := r.users[i]
	optimistic := previous
	mutate(&optimistic)
	r.users[i] = optimistic
	r.pending[id] = true
	r.mu.Unlock()

	confirmed, err := call(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
	i = r.indexLocked(id)
	if i < 0 {
		// Refreshed away while in flight.
		return err
	}
	if err != nil {
		r.users[i] = previous
		logger.WithModule("roster").Warnf("⚠️ Reverted change for user %d: %v", id, err)
		return err
	}
	if confirmed != nil {
		r.users[i] = *confirmed
	}
	return nil
}

func (r *Roster) indexLocked(id uint) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}
