package roster_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	users []models.User
	err   error
	// block, when set, holds the mutation until released.
	block chan struct{}
	seen  chan struct{}
}

func (b *fakeBackend) ListUsers(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, len(b.users))
	copy(out, b.users)
	return out, nil
}

func (b *fakeBackend) wait() {
	if b.block != nil {
		b.seen <- struct{}{}
		<-b.block
	}
}

func (b *fakeBackend) SetUserActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	b.wait()
	if b.err != nil {
		return nil, b.err
	}
	for i := range b.users {
		if b.users[i].ID == id {
			b.users[i].Active = active
			u := b.users[i]
			return &u, nil
		}
	}
	return nil, errors.New("not found")
}

func (b *fakeBackend) SetUserRole(ctx context.Context, id uint, roleName string) (*models.User, error) {
	b.wait()
	if b.err != nil {
		return nil, b.err
	}
	for i := range b.users {
		if b.users[i].ID == id {
			b.users[i].RoleID = 9
			b.users[i].Role = &models.Role{ID: 9, Name: roleName}
			u := b.users[i]
			return &u, nil
		}
	}
	return nil, errors.New("not found")
}

func newRoster(t *testing.T, b *fakeBackend) *roster.Roster {
	t.Helper()
	r := roster.New(b)
	require.NoError(t, r.Refresh(context.Background()))
	return r
}

func seedUsers() []models.User {
	return []models.User{
		{ID: 1, Email: "ana@dropux.co", Active: true, RoleID: 2, Role: &models.Role{ID: 2, Name: "admin"}},
		{ID: 2, Email: "luis@dropux.co", Active: true, RoleID: 3, Role: &models.Role{ID: 3, Name: "advisor"}},
	}
}

func TestSetActiveConfirmed(t *testing.T) {
	b := &fakeBackend{users: seedUsers()}
	r := newRoster(t, b)

	require.NoError(t, r.SetActive(context.Background(), 2, false))

	e, ok := r.Get(2)
	require.True(t, ok)
	assert.False(t, e.User.Active)
	assert.False(t, e.Pending)
}

func TestSetActiveReverted(t *testing.T) {
	b := &fakeBackend{users: seedUsers(), err: errors.New("forbidden")}
	r := newRoster(t, b)

	err := r.SetActive(context.Background(), 2, false)
	assert.Error(t, err)

	e, _ := r.Get(2)
	assert.True(t, e.User.Active)
	assert.False(t, e.Pending)
}

func TestSetRole(t *testing.T) {
	t.Run("Confirmed with server data", func(t *testing.T) {
		b := &fakeBackend{users: seedUsers()}
		r := newRoster(t, b)

		require.NoError(t, r.SetRole(context.Background(), 2, "supplier"))
		e, _ := r.Get(2)
		assert.Equal(t, "supplier", e.User.Role.Name)
		assert.Equal(t, uint(9), e.User.RoleID)
	})

	t.Run("Reverted on failure", func(t *testing.T) {
		b := &fakeBackend{users: seedUsers(), err: errors.New("boom")}
		r := newRoster(t, b)

		assert.Error(t, r.SetRole(context.Background(), 2, "supplier"))
		e, _ := r.Get(2)
		assert.Equal(t, "advisor", e.User.Role.Name)
	})

	t.Run("Unknown role is rejected locally", func(t *testing.T) {
		r := newRoster(t, &fakeBackend{users: seedUsers()})
		assert.ErrorIs(t, r.SetRole(context.Background(), 2, "owner"), roster.ErrUnknownRole)
	})
}

func TestPendingWhileInFlight(t *testing.T) {
	b := &fakeBackend{users: seedUsers(), block: make(chan struct{}), seen: make(chan struct{})}
	r := newRoster(t, b)

	done := make(chan error, 1)
	go func() { done <- r.SetActive(context.Background(), 1, false) }()
	<-b.seen

	e, _ := r.Get(1)
	assert.True(t, e.Pending)
	assert.False(t, e.User.Active)

	assert.ErrorIs(t, r.SetActive(context.Background(), 1, true), roster.ErrPending)

	close(b.block)
	require.NoError(t, <-done)

	e, _ = r.Get(1)
	assert.False(t, e.Pending)
	assert.False(t, e.User.Active)
}

func TestUnknownUser(t *testing.T) {
	r := newRoster(t, &fakeBackend{users: seedUsers()})
	assert.ErrorIs(t, r.SetActive(context.Background(), 42, false), roster.ErrUnknownUser)
	assert.Len(t, r.Entries(), 2)
}
