package access

import (
	"context"
	"errors"
	"testing"

	"filesmanager/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSessions map[string]string

func (f fakeSessions) UserID(_ context.Context, token string) (string, error) {
	if token == "broken" {
		return "", errors.New("redis down")
	}
	return f[token], nil
}

func TestGate(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	gate := NewGate(fakeSessions{
		"owner-token": owner.Hex(),
		"other-token": other.Hex(),
		"junk-token":  "not-an-id",
	})

	private := &models.File{UserID: owner, IsPublic: false}
	public := &models.File{UserID: owner, IsPublic: true}

	tests := []struct {
		name      string
		token     string
		file      *models.File
		wantRead  bool
		wantWrite bool
	}{
		{"owner private", "owner-token", private, true, true},
		{"owner public", "owner-token", public, true, true},
		{"other private", "other-token", private, false, false},
		{"other public", "other-token", public, true, false},
		{"anonymous private", "", private, false, false},
		{"anonymous public", "", public, true, false},
		{"expired token", "gone", private, false, false},
		{"lookup error", "broken", private, false, false},
		{"malformed session", "junk-token", public, true, false},
	}
	ctx := context.Background()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := gate.Resolve(ctx, tc.token)
			assert.Equal(t, tc.wantRead, p.CanRead(tc.file))
			assert.Equal(t, tc.wantWrite, p.CanWrite(tc.file))
		})
	}
}

func TestAnonymousNeverOwnsZeroOwnerRecords(t *testing.T) {
	f := &models.File{}
	assert.False(t, Anonymous().CanWrite(f))
	assert.False(t, Anonymous().CanRead(f))
}
