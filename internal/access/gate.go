package access

import (
	"context"

	"filesmanager/backend/internal/logger"
	"filesmanager/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionLookup resolves a session token to a user id ("" when unknown).
type SessionLookup interface {
	UserID(ctx context.Context, token string) (string, error)
}

// Principal is the caller behind a request. The zero value is anonymous.
// Callers resolve a token once with Gate.Resolve and then ask the principal
// CanRead or CanWrite for each record.
type Principal struct {
	UserID primitive.ObjectID
}

func Anonymous() Principal { return Principal{} }

func (p Principal) Authenticated() bool { return !p.UserID.IsZero() }

// CanRead allows public records to anyone and private records to their owner.
func (p Principal) CanRead(f *models.File) bool {
	return f.IsPublic || f.OwnedBy(p.UserID)
}

// CanWrite allows the owner only.
func (p Principal) CanWrite(f *models.File) bool {
	return f.OwnedBy(p.UserID)
}

type Gate struct {
	sessions SessionLookup
}

func NewGate(sessions SessionLookup) *Gate {
	return &Gate{sessions: sessions}
}

// Resolve maps token to a principal. Missing, expired or unreadable sessions
// and malformed ids all resolve to anonymous.
func (g *Gate) Resolve(ctx context.Context, token string) Principal {
	if token == "" {
		return Anonymous()
	}
	raw, err := g.sessions.UserID(ctx, token)
	if err != nil {
		logger.FromContext(ctx).Warn("session lookup failed", "error", err)
		return Anonymous()
	}
	if raw == "" {
		return Anonymous()
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		logger.FromContext(ctx).Warn("session holds malformed user id", "value", raw)
		return Anonymous()
	}
	return Principal{UserID: id}
}
