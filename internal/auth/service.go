package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*internal.CurrentUser, error)
	GetUser(ctx context.Context, userID int64) (*userDatamodel.User, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo    UserRepository
	sessionRepo SessionRepository
	tokens      TokenIssuer
	hasher      *PasswordHasher
	ttl         time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a new auth service. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewService(userRepo UserRepository, sessionRepo SessionRepository, tokens TokenIssuer, hasher *PasswordHasher, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		hasher:      hasher,
		ttl:         ttl,
		logger:      logger,
		now:         time.Now,
	}
}

// Login validates credentials and opens a new session.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, internal.ErrInvalidCredentials
	}

	ok, needsRehash := s.hasher.Verify(user.Password, dto.Password)
	if !ok {
		return nil, internal.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, internal.ErrUserInactive
	}

	if needsRehash {
		hash, err := s.hasher.Hash(dto.Password)
		if err == nil {
			err = s.userRepo.UpdatePassword(ctx, user.ID, hash)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "failed to upgrade legacy password", "user_id", user.ID, "error", err)
		} else {
			s.logger.InfoContext(ctx, "upgraded legacy password to bcrypt", "user_id", user.ID)
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	now := s.now().UTC()
	session := &userDatamodel.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, internal.NewInternalError("failed to create session", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "session_id", session.ID)

	return &LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      NewUserView(user),
	}, nil
}

// Logout deletes the session behind token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return internal.ErrMissingToken
	}
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return internal.NewInternalError("failed to load session", err)
	}
	if session == nil {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
		return internal.NewInternalError("failed to delete session", err)
	}
	return nil
}

// Authenticate resolves a bearer token to the user it was issued for.
// Expired sessions are removed as a side effect.
func (s *Service) Authenticate(ctx context.Context, token string) (*internal.CurrentUser, error) {
	if token == "" {
		return nil, internal.ErrMissingToken
	}

	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, internal.NewInternalError("failed to load session", err)
	}
	if session == nil || session.UserID != subject {
		return nil, internal.ErrInvalidToken
	}

	if !s.now().Before(session.ExpiresAt) {
		if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, internal.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if user == nil || !user.IsActive {
		_ = s.sessionRepo.DeleteByUserID(ctx, session.UserID)
		return nil, internal.ErrInvalidToken
	}

	return &internal.CurrentUser{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		SessionID: session.ID,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}
	return user, nil
}

// CleanupExpired purges every session whose expiry has passed.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.sessionRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired sessions removed", "count", n)
	}
	return n, nil
}
