package services

import (
	"context"
	"fmt"

	"filesmanager/backend/internal/repositories"
)

// Checker reports whether a backing store is reachable.
type Checker interface {
	Alive(ctx context.Context) bool
}

type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

type AppService struct {
	redis Checker
	db    Checker
	users repositories.UserRepository
	files repositories.FileRepository
}

func NewAppService(redis, db Checker, users repositories.UserRepository, files repositories.FileRepository) *AppService {
	return &AppService{redis: redis, db: db, users: users, files: files}
}

func (s *AppService) Status(ctx context.Context) Status {
	return Status{Redis: s.redis.Alive(ctx), DB: s.db.Alive(ctx)}
}

func (s *AppService) Stats(ctx context.Context) (Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	files, err := s.files.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count files: %w", err)
	}
	return Stats{Users: users, Files: files}, nil
}
