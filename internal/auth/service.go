package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/rbac"
)

// Service wraps registration and login rules.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a new user account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return User{}, fmt.Errorf("%w: nome, email e senha são obrigatórios", httpx.ErrValidation)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return User{}, fmt.Errorf("%w: usuário já existe", httpx.ErrValidation)
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, name, email, string(hash))
}

// Login validates email/password credentials and issues a bearer token.
// An unknown email answers 404 and a wrong password 400, preserving the
// original endpoint behavior.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return User{}, "", fmt.Errorf("%w: usuário não encontrado", httpx.ErrNotFound)
		}
		return User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, "", fmt.Errorf("%w: e-mail ou senha inválidos", httpx.ErrValidation)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// FindPrincipal resolves a user id into the principal the guard attaches
// to admitted requests. The stored global role defaults to "user" at the
// schema level; unknown values degrade to it here as well.
func (s *Service) FindPrincipal(ctx context.Context, id int64) (rbac.Principal, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return rbac.Principal{}, err
	}
	role := user.Role
	if !role.Valid() {
		role = rbac.RoleUser
	}
	return rbac.Principal{ID: user.ID, Name: user.Name, Email: user.Email, Role: role}, nil
}

var _ rbac.PrincipalSource = (*Service)(nil)
