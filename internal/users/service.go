package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/fauves/fauves-server/internal/credentials"
	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/producers"
)

// ProducerSource lists the commercial profiles owned by a user.
type ProducerSource interface {
	ListByUser(ctx context.Context, userID int64) ([]producers.CommercialProfile, error)
}

// CredentialSource lists the credentials currently owned by a user.
type CredentialSource interface {
	ListByUser(ctx context.Context, userID int64) ([]credentials.Credential, error)
}

// ProfileView is the aggregate returned by the profile endpoint.
type ProfileView struct {
	Profile
	CommercialProfiles []producers.CommercialProfile `json:"commercialProfiles"`
	Credentials        []credentials.Credential      `json:"credentials"`
}

// Service handles account profile logic.
type Service struct {
	repo        Repository
	producers   ProducerSource
	credentials CredentialSource
}

// NewService builds Service instance.
func NewService(repo Repository, producerSource ProducerSource, credentialSource CredentialSource) *Service {
	return &Service{repo: repo, producers: producerSource, credentials: credentialSource}
}

// Profile returns the profile of the given user together with their
// commercial profiles and credential set.
func (s *Service) Profile(ctx context.Context, userID int64) (ProfileView, error) {
	profile, err := s.repo.FindProfile(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	commercial, err := s.producers.ListByUser(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	creds, err := s.credentials.ListByUser(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	if commercial == nil {
		commercial = []producers.CommercialProfile{}
	}
	if creds == nil {
		creds = []credentials.Credential{}
	}
	return ProfileView{Profile: profile, CommercialProfiles: commercial, Credentials: creds}, nil
}

// EditProfile updates the mutable profile fields for the given user. The
// tax id is normalized to bare digits because the payment gateway expects
// `cpf`/`cnpj` without punctuation.
func (s *Service) EditProfile(ctx context.Context, userID int64, update ProfileUpdate) (Profile, error) {
	update.Name = strings.TrimSpace(update.Name)
	update.Email = strings.ToLower(strings.TrimSpace(update.Email))
	update.Phone = strings.TrimSpace(update.Phone)
	update.CPF = digitsOnly(update.CPF)
	if update.CPF != "" && len(update.CPF) != 11 && len(update.CPF) != 14 {
		return Profile{}, fmt.Errorf("%w: CPF ou CNPJ inválido", httpx.ErrValidation)
	}
	return s.repo.UpdateProfile(ctx, userID, update)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
