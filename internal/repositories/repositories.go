package repositories

import (
	"context"
	"errors"
	"math"

	"filesmanager/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// PageSize is the fixed number of records per listing page.
const PageSize = 20

// MaxPage is the last page whose offset still fits in an int.
const MaxPage = math.MaxInt / PageSize

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

type FileRepository interface {
	Create(ctx context.Context, f *models.File) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.File, error)
	// FindOwned returns the record only when owner owns it.
	FindOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.File, error)
	ListByParent(ctx context.Context, owner primitive.ObjectID, parent models.Parent, page int) ([]models.File, error)
	SetPublic(ctx context.Context, id, owner primitive.ObjectID, public bool) (*models.File, error)
	Count(ctx context.Context) (int64, error)
}
