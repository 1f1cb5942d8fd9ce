package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"filesmanager/backend/internal/apperrors"
	"filesmanager/backend/internal/logger"
	"filesmanager/backend/internal/queue"
	"filesmanager/backend/internal/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userWorker = "users"

// UserProcessor greets newly registered users.
type UserProcessor struct {
	users repositories.UserRepository
}

func NewUserProcessor(users repositories.UserRepository) *UserProcessor {
	return &UserProcessor{users: users}
}

func (p *UserProcessor) Process(ctx context.Context, job queue.UserJob) error {
	if job.UserID == "" {
		return apperrors.InvalidJob("Missing userId")
	}
	id, err := primitive.ObjectIDFromHex(job.UserID)
	if err != nil {
		return apperrors.NotFound("user", "User not found")
	}
	user, err := p.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("user", "User not found")
	}
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", job.UserID, err)
	}

	logger.WorkerLog(userWorker, "welcome", nil, "user_id", job.UserID, "message", "Welcome "+user.Email+"!")
	return nil
}

func (p *UserProcessor) Handle(ctx context.Context, payload json.RawMessage) error {
	var job queue.UserJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return queue.Permanent(apperrors.InvalidJob("Malformed payload"))
	}
	return permanentIfFinal(p.Process(ctx, job))
}
