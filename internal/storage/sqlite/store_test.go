package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanchat/messaging-service/internal/domain/model"
	"github.com/fanchat/messaging-service/internal/service"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, role model.Role) *model.User {
	t.Helper()
	id := uuid.New()
	u := &model.User{
		ID:           id,
		Name:         "user-" + id.String()[:8],
		Email:        id.String()[:8] + "@test.local",
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    time.Now().UnixMilli(),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestStore_UserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, s, model.RolePlayer)

	got, err := s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, model.RolePlayer, got.Role)
	assert.False(t, got.Online)

	byEmail, err := s.GetUserByEmail(ctx, created.Email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestStore_UnknownUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = s.GetUserByEmail(ctx, "nobody@test.local")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestStore_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, model.RoleFan)

	dup := &model.User{
		ID:           uuid.New(),
		Name:         "other",
		Email:        u.Email,
		PasswordHash: "hash",
		Role:         model.RolePlayer,
		CreatedAt:    time.Now().UnixMilli(),
	}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), service.ErrEmailExists)
}

func TestStore_SetOnline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, model.RoleFan)

	require.NoError(t, s.SetOnline(ctx, u.ID, true))
	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Online)

	require.NoError(t, s.SetOnline(ctx, u.ID, false))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.Online)

	assert.ErrorIs(t, s.SetOnline(ctx, uuid.New(), true), service.ErrNotFound)
}

func TestStore_AppendAndQueryBetween(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fan := seedUser(t, s, model.RoleFan)
	player := seedUser(t, s, model.RolePlayer)
	bystander := seedUser(t, s, model.RoleFan)

	base := time.Now()
	m1, err := s.Append(ctx, fan.ID, player.ID, "first", base)
	require.NoError(t, err)
	m2, err := s.Append(ctx, player.ID, fan.ID, "second", base.Add(time.Second))
	require.NoError(t, err)
	_, err = s.Append(ctx, bystander.ID, player.ID, "unrelated", base.Add(2*time.Second))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, m1.ID)

	asc, err := s.QueryBetween(ctx, fan.ID, player.ID, service.OrderAsc)
	require.NoError(t, err)
	require.Len(t, asc, 2, "both directions of the pair, nothing else")
	assert.Equal(t, m1.ID, asc[0].ID)
	assert.Equal(t, m2.ID, asc[1].ID)

	// Argument order must not matter.
	swapped, err := s.QueryBetween(ctx, player.ID, fan.ID, service.OrderAsc)
	require.NoError(t, err)
	require.Len(t, swapped, 2)
	assert.Equal(t, m1.ID, swapped[0].ID)

	desc, err := s.QueryBetween(ctx, fan.ID, player.ID, service.OrderDesc)
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, m2.ID, desc[0].ID)
}

func TestStore_QueryBetweenEmpty(t *testing.T) {
	s := newTestStore(t)

	msgs, err := s.QueryBetween(context.Background(), uuid.New(), uuid.New(), service.OrderAsc)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
