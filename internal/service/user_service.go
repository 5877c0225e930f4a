package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/yakoovad/team-expenses/internal/auth"
	"github.com/yakoovad/team-expenses/internal/repository"
	"github.com/yakoovad/team-expenses/pkg/logger"
	"go.uber.org/zap"
)

// UserService handles registration and login. The rest of the system never
// sees passwords; it only receives the user id extracted from a verified
// token.
type UserService struct {
	tokens *auth.TokenManager
	hasher *auth.Hasher

	users repository.UserRepository
}

func NewUserService(tokens *auth.TokenManager, hasher *auth.Hasher) *UserService {
	return &UserService{
		tokens: tokens,
		hasher: hasher,
	}
}

func (u *UserService) Register(ctx context.Context, username, password string) (string, *Error) {
	l := logger.FromContext(ctx)

	hash, err := u.hasher.Hash(password)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return "", NewServiceError(ErrorCodeUnspecified, "failed to register")
	}

	user := &repository.User{
		Username:     username,
		PasswordHash: hash,
	}

	err = u.users.Create(ctx, user)
	if errors.Is(err, repository.ErrAlreadyExists) {
		l.Warn("username already exists", zap.String("username", username))
		return "", NewServiceError(ErrorCodeUsernameExists, "username already exists")
	}
	if err != nil {
		l.Error("failed to create user", zap.String("username", username), zap.Error(err))
		return "", NewServiceError(ErrorCodeUnspecified, "failed to register")
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		l.Error("failed to generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		return "", NewServiceError(ErrorCodeUnspecified, "failed to register")
	}

	return token, nil
}

// Login verifies the credentials and issues a token. A missing user and a
// wrong password produce the same error, so login failures do not reveal
// which usernames exist.
func (u *UserService) Login(ctx context.Context, username, password string) (string, *Error) {
	l := logger.FromContext(ctx)

	user, err := u.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", NewServiceError(ErrorCodeInvalidCredentials, "invalid credentials")
	}
	if err != nil {
		l.Error("failed to get user", zap.String("username", username), zap.Error(err))
		return "", NewServiceError(ErrorCodeUnspecified, "failed to login")
	}

	if !u.hasher.Compare(user.PasswordHash, password) {
		return "", NewServiceError(ErrorCodeInvalidCredentials, "invalid credentials")
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		l.Error("failed to generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		return "", NewServiceError(ErrorCodeUnspecified, "failed to login")
	}

	return token, nil
}

func (u *UserService) WithUserRepo(r repository.UserRepository) *UserService {
	u.users = r
	return u
}
