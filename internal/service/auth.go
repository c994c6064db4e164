package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/buyme/internal/account"
	"github.com/Skotchmaster/buyme/internal/models"
	"github.com/Skotchmaster/buyme/internal/repo"
	pkg_hash "github.com/Skotchmaster/buyme/pkg/hash"
	"github.com/Skotchmaster/buyme/pkg/logging"
	"github.com/Skotchmaster/buyme/pkg/tokens"
)

const minPasswordLen = 6

type AuthService struct {
	Store  repo.Store
	Events EventPublisher
	Secret []byte
	TTL    time.Duration
}

// SignUp always creates a customer; staff and admin accounts are granted
// from the admin console.
func (s *AuthService) SignUp(ctx context.Context, email, password, name string) (account.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	email, err := normalizeEmail(email)
	if err != nil {
		return account.User{}, err
	}
	if len(password) < minPasswordLen {
		return account.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return account.User{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return account.User{}, err
	}

	cred := models.Credential{Email: email, PasswordHash: pwHash}
	if err := s.Store.CreateCredential(ctx, &cred); err != nil {
		return account.User{}, err
	}

	user := models.UserDoc{ID: cred.Subject, Name: name, Email: email, Role: string(account.RoleCustomer)}
	if err := s.Store.CreateUser(ctx, &user); err != nil {
		if derr := s.Store.DeleteCredentialBySubject(ctx, cred.Subject); derr != nil {
			l.Error("signup_error", "reason", "orphaned credential", "subject", cred.Subject, "error", derr)
		}
		return account.User{}, err
	}

	publish(ctx, s.Events, TopicUsers, user.ID, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"role":   user.Role,
	})
	return account.DecodeUser(user), nil
}

type Session struct {
	User        account.User
	Token       string
	ExpiresAt   time.Time
	Destination string
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (Session, error) {
	cred, err := s.Store.FindCredential(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !pkg_hash.CheckPassword(cred.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}

	doc, err := s.Store.GetUser(ctx, cred.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Session{}, ErrNoAccess
		}
		return Session{}, err
	}
	user := account.DecodeUser(*doc)
	dest, ok := account.Destination(user.Role)
	if !ok {
		return Session{}, ErrNoAccess
	}

	exp := time.Now().Add(s.TTL)
	token, err := tokens.SignSession(user.ID, string(user.Role), exp, s.Secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{User: user, Token: token, ExpiresAt: exp, Destination: dest}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, subject string) (account.User, error) {
	doc, err := s.Store.GetUser(ctx, subject)
	if err != nil {
		return account.User{}, err
	}
	return account.DecodeUser(*doc), nil
}

// StoredRole reads the role from the users collection, not from the
// session token, so a demotion takes effect on the next request.
func (s *AuthService) StoredRole(ctx context.Context, subject string) (account.Role, error) {
	u, err := s.CurrentUser(ctx, subject)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}
