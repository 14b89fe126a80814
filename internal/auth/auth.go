package auth

import (
	"context"
	"time"

	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
)

// DefaultSessionTTL is how long a login session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// UserRepository is the slice of user storage the auth flow needs.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// SessionRepository persists bearer sessions. A nil session with a nil error
// means the token is unknown.
type SessionRepository interface {
	Create(ctx context.Context, session *userDatamodel.Session) error
	GetByToken(ctx context.Context, token string) (*userDatamodel.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TokenIssuer mints and verifies the opaque bearer strings handed to clients.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
	Verify(token string) (userID int64, err error)
}
