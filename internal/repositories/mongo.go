package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"filesmanager/backend/internal/database"
	"filesmanager/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opTimeout = 5 * time.Second

type MongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{coll: db.Collection(database.UsersCollection)}
}

// EnsureIndexes creates the unique email index.
func (r *MongoUsers) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

func (r *MongoUsers) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *MongoUsers) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

type MongoFiles struct {
	coll *mongo.Collection
}

func NewMongoFiles(db *mongo.Database) *MongoFiles {
	return &MongoFiles{coll: db.Collection(database.FilesCollection)}
}

// EnsureIndexes creates the owner/parent listing index.
func (r *MongoFiles) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create files listing index: %w", err)
	}
	return nil
}

func (r *MongoFiles) Create(ctx context.Context, f *models.File) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *MongoFiles) FindByID(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoFiles) FindOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.File, error) {
	return r.findOne(ctx, bson.M{"_id": id, "userId": owner})
}

func (r *MongoFiles) findOne(ctx context.Context, filter bson.M) (*models.File, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var f models.File
	if err := r.coll.FindOne(ctx, filter).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return &f, nil
}

func (r *MongoFiles) ListByParent(ctx context.Context, owner primitive.ObjectID, parent models.Parent, page int) ([]models.File, error) {
	if page < 0 {
		page = 0
	}
	if page > MaxPage {
		return []models.File{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"userId": owner, "parentId": parent.FilterValue()}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(page * PageSize)).
		SetLimit(PageSize)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer cursor.Close(ctx)

	files := make([]models.File, 0)
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	return files, nil
}

func (r *MongoFiles) SetPublic(ctx context.Context, id, owner primitive.ObjectID, public bool) (*models.File, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "userId": owner}
	update := bson.M{"$set": bson.M{"isPublic": public}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var f models.File
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update file visibility: %w", err)
	}
	return &f, nil
}

func (r *MongoFiles) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}
