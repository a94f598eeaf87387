package users

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fauves/fauves-server/internal/credentials"
	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/producers"
	"github.com/fauves/fauves-server/internal/rbac"
)

type memoryProfileRepo struct {
	profiles map[int64]Profile
	emails   map[string]int64
}

func newMemoryProfileRepo() *memoryProfileRepo {
	return &memoryProfileRepo{profiles: map[int64]Profile{}, emails: map[string]int64{}}
}

func (m *memoryProfileRepo) FindProfile(_ context.Context, id int64) (Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: usuário não encontrado", httpx.ErrNotFound)
	}
	return p, nil
}

func (m *memoryProfileRepo) UpdateProfile(_ context.Context, id int64, update ProfileUpdate) (Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: usuário não encontrado", httpx.ErrNotFound)
	}
	if owner, taken := m.emails[update.Email]; taken && owner != id {
		return Profile{}, fmt.Errorf("%w: e-mail já está em uso", httpx.ErrValidation)
	}
	delete(m.emails, p.Email)
	p.Name, p.Email = update.Name, update.Email
	p.Phone, p.CPF, p.BirthDate = update.Phone, update.CPF, update.BirthDate
	p.PostalCode, p.Street, p.District = update.PostalCode, update.Street, update.District
	p.City, p.State, p.Number = update.City, update.State, update.Number
	m.profiles[id] = p
	m.emails[update.Email] = id
	return p, nil
}

type staticProducers map[int64][]producers.CommercialProfile

func (s staticProducers) ListByUser(_ context.Context, userID int64) ([]producers.CommercialProfile, error) {
	return s[userID], nil
}

type staticCredentials map[int64][]credentials.Credential

func (s staticCredentials) ListByUser(_ context.Context, userID int64) ([]credentials.Credential, error) {
	return s[userID], nil
}

func TestProfileAggregatesOwnedRecords(t *testing.T) {
	repo := newMemoryProfileRepo()
	repo.profiles[7] = Profile{ID: 7, Name: "Ana", Email: "ana@example.com", Role: rbac.RoleUser}
	service := NewService(repo,
		staticProducers{7: {{ID: 1, UserID: 7, CompanyName: "Fauves Produções"}}},
		staticCredentials{7: {{ID: "cred-1", UserID: 7}}})

	view, err := service.Profile(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "Ana", view.Name)
	require.Len(t, view.CommercialProfiles, 1)
	require.Len(t, view.Credentials, 1)
}

func TestProfileEmptySetsNotNil(t *testing.T) {
	repo := newMemoryProfileRepo()
	repo.profiles[7] = Profile{ID: 7, Name: "Ana"}
	service := NewService(repo, staticProducers{}, staticCredentials{})

	view, err := service.Profile(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, view.CommercialProfiles)
	require.NotNil(t, view.Credentials)
}

func TestProfileUnknownUser(t *testing.T) {
	service := NewService(newMemoryProfileRepo(), staticProducers{}, staticCredentials{})
	_, err := service.Profile(context.Background(), 99)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestEditProfileNormalizesEmail(t *testing.T) {
	repo := newMemoryProfileRepo()
	repo.profiles[7] = Profile{ID: 7, Name: "Ana", Email: "ana@example.com"}
	repo.emails["ana@example.com"] = 7
	service := NewService(repo, staticProducers{}, staticCredentials{})

	updated, err := service.EditProfile(context.Background(), 7,
		ProfileUpdate{Name: " Ana Souza ", Email: " Ana.Nova@Example.COM "})
	require.NoError(t, err)
	require.Equal(t, "Ana Souza", updated.Name)
	require.Equal(t, "ana.nova@example.com", updated.Email)
}

func TestEditProfileStoresPaymentIdentity(t *testing.T) {
	repo := newMemoryProfileRepo()
	repo.profiles[7] = Profile{ID: 7, Name: "Ana", Email: "ana@example.com"}
	repo.emails["ana@example.com"] = 7
	service := NewService(repo, staticProducers{}, staticCredentials{})

	born := time.Date(1994, time.March, 12, 0, 0, 0, 0, time.UTC)
	updated, err := service.EditProfile(context.Background(), 7, ProfileUpdate{
		Name:       "Ana",
		Email:      "ana@example.com",
		Phone:      "+55 11 91234-5678",
		CPF:        "529.982.247-25",
		BirthDate:  &born,
		PostalCode: "01310-100",
		City:       "São Paulo",
		State:      "SP",
	})
	require.NoError(t, err)
	require.Equal(t, "52998224725", updated.CPF)
	require.Equal(t, "+55 11 91234-5678", updated.Phone)
	require.Equal(t, &born, updated.BirthDate)
	require.Equal(t, "São Paulo", updated.City)
}

func TestEditProfileRejectsBadTaxID(t *testing.T) {
	repo := newMemoryProfileRepo()
	repo.profiles[7] = Profile{ID: 7, Name: "Ana", Email: "ana@example.com"}
	service := NewService(repo, staticProducers{}, staticCredentials{})

	_, err := service.EditProfile(context.Background(), 7,
		ProfileUpdate{Name: "Ana", Email: "ana@example.com", CPF: "123"})
	require.True(t, errors.Is(err, httpx.ErrValidation))
	require.Empty(t, repo.profiles[7].CPF)
}

func TestEditProfileDuplicateEmail(t *testing.T) {
	repo := newMemoryProfileRepo()
	repo.profiles[7] = Profile{ID: 7, Email: "ana@example.com"}
	repo.profiles[8] = Profile{ID: 8, Email: "bob@example.com"}
	repo.emails["ana@example.com"] = 7
	repo.emails["bob@example.com"] = 8
	service := NewService(repo, staticProducers{}, staticCredentials{})

	_, err := service.EditProfile(context.Background(), 7,
		ProfileUpdate{Name: "Ana", Email: "bob@example.com"})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}
