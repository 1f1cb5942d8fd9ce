// Package memrepo holds in-memory repositories with the same semantics as the
// Mongo ones. Tests use them in place of a live metadata store.
package memrepo

import (
	"context"
	"sort"
	"sync"

	"filesmanager/backend/internal/models"
	"filesmanager/backend/internal/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	mu    sync.RWMutex
	byID  map[primitive.ObjectID]models.User
	email map[string]primitive.ObjectID
}

func NewUsers() *Users {
	return &Users{
		byID:  make(map[primitive.ObjectID]models.User),
		email: make(map[string]primitive.ObjectID),
	}
}

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.email[u.Email]; ok {
		return repositories.ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.byID[u.ID] = *u
	r.email[u.Email] = u.ID
	return nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.email[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *Users) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

type Files struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.File
}

func NewFiles() *Files {
	return &Files{byID: make(map[primitive.ObjectID]models.File)}
}

func (r *Files) Create(_ context.Context, f *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	r.byID[f.ID] = copyFile(*f)
	return nil
}

func (r *Files) FindByID(_ context.Context, id primitive.ObjectID) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := copyFile(f)
	return &out, nil
}

func (r *Files) FindOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.File, error) {
	f, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UserID != owner {
		return nil, repositories.ErrNotFound
	}
	return f, nil
}

func (r *Files) ListByParent(_ context.Context, owner primitive.ObjectID, parent models.Parent, page int) ([]models.File, error) {
	if page < 0 {
		page = 0
	}
	if page > repositories.MaxPage {
		return []models.File{}, nil
	}
	r.mu.RLock()
	matched := make([]models.File, 0)
	for _, f := range r.byID {
		if f.UserID == owner && f.ParentID == parent {
			matched = append(matched, copyFile(f))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.Hex() < matched[j].ID.Hex()
	})

	start := page * repositories.PageSize
	if start >= len(matched) {
		return []models.File{}, nil
	}
	end := min(start+repositories.PageSize, len(matched))
	return matched[start:end], nil
}

func (r *Files) SetPublic(_ context.Context, id, owner primitive.ObjectID, public bool) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	if !ok || f.UserID != owner {
		return nil, repositories.ErrNotFound
	}
	f.IsPublic = public
	r.byID[id] = f
	out := copyFile(f)
	return &out, nil
}

func (r *Files) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func copyFile(f models.File) models.File {
	if f.LocalPath != nil {
		p := *f.LocalPath
		f.LocalPath = &p
	}
	return f
}
