package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/rbac"
)

type memoryAuthRepo struct {
	users  map[int64]User
	nextID int64
}

func newMemoryAuthRepo() *memoryAuthRepo {
	return &memoryAuthRepo{users: make(map[int64]User)}
}

func (r *memoryAuthRepo) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return User{}, httpx.ErrValidation
		}
	}
	r.nextID++
	u := User{ID: r.nextID, Name: name, Email: email, PasswordHash: passwordHash, Role: rbac.RoleUser, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.users[u.ID] = u
	return u, nil
}

func (r *memoryAuthRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, httpx.ErrNotFound
}

func (r *memoryAuthRepo) FindByID(ctx context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return u, nil
}

func newTestService() (*Service, *memoryAuthRepo) {
	repo := newMemoryAuthRepo()
	return NewService(repo, NewTokenIssuer("test-secret", time.Hour)), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "s3nhaforte")
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	logged, token, err := svc.Login(ctx, "ana@example.com", "s3nhaforte")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
	require.NotEmpty(t, token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "s3nhaforte")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Outra Ana", "ana@example.com", "outrasenha")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "qualquer")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "s3nhaforte")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ana@example.com", "errada")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestFindPrincipalDefaultsRole(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "s3nhaforte")
	require.NoError(t, err)

	// Simulate a legacy row with a role outside the hierarchy.
	broken := repo.users[user.ID]
	broken.Role = rbac.Role("member")
	repo.users[user.ID] = broken

	principal, err := svc.FindPrincipal(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, rbac.RoleUser, principal.Role)
}
