package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

// Accounter handles registration and login for the auth routes. The
// messaging core itself only ever sees the tokens this produces.
type Accounter interface {
	Register(ctx context.Context, name, email, password, role string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AccountService struct {
	directory Directory
	auth      Auther
	now       func() time.Time
}

func NewAccountService(directory Directory, auth Auther) *AccountService {
	return &AccountService{
		directory: directory,
		auth:      auth,
		now:       time.Now,
	}
}

func (s *AccountService) Register(ctx context.Context, name, email, password, role string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", ErrValidation
	}
	r, err := model.ParseRole(role)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         r,
		CreatedAt:    s.now().UnixMilli(),
	}
	if err := s.directory.CreateUser(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.auth.Issue(u.ID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.directory.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.auth.Issue(u.ID, u.Role)
}
