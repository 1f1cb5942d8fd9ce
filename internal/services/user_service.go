package services

import (
	"context"
	"errors"
	"fmt"

	"filesmanager/backend/internal/access"
	"filesmanager/backend/internal/apperrors"
	"filesmanager/backend/internal/auth"
	"filesmanager/backend/internal/logger"
	"filesmanager/backend/internal/models"
	"filesmanager/backend/internal/queue"
	"filesmanager/backend/internal/repositories"
)

// SessionStore issues and revokes session tokens.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, token string) (bool, error)
}

type UserService struct {
	users    repositories.UserRepository
	sessions SessionStore
	jobs     queue.JobSubmitter
}

func NewUserService(users repositories.UserRepository, sessions SessionStore, jobs queue.JobSubmitter) *UserService {
	return &UserService{users: users, sessions: sessions, jobs: jobs}
}

// Register creates a user and queues its welcome job.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, apperrors.InvalidArgument("email", "Missing email")
	}
	if password == "" {
		return nil, apperrors.InvalidArgument("password", "Missing password")
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperrors.ErrConflict
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Email: email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.jobs.Submit(ctx, queue.Users, queue.UserJob{UserID: user.ID.Hex()}); err != nil {
		logger.FromContext(ctx).Error("user job not submitted", "user_id", user.ID.Hex(), "error", err)
	}
	return user, nil
}

// Connect checks credentials and opens a session.
func (s *UserService) Connect(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", apperrors.ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(password, user.Password) {
		return "", apperrors.ErrUnauthenticated
	}

	token, err := s.sessions.Create(ctx, user.ID.Hex())
	if err != nil {
		return "", err
	}
	return token, nil
}

// Disconnect revokes token. Unknown tokens are unauthenticated.
func (s *UserService) Disconnect(ctx context.Context, token string) error {
	ok, err := s.sessions.Delete(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrUnauthenticated
	}
	return nil
}

func (s *UserService) Me(ctx context.Context, p access.Principal) (*models.User, error) {
	if !p.Authenticated() {
		return nil, apperrors.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, p.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
