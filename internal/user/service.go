package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}

// PasswordHasher is satisfied by auth.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type ServiceAPI interface {
	List(ctx context.Context) ([]UserResponse, error)
	Get(ctx context.Context, id int64) (*UserResponse, error)
	Create(ctx context.Context, actor *internal.CurrentUser, dto CreateUserDTO) (*UserResponse, error)
	Update(ctx context.Context, actor *internal.CurrentUser, id int64, dto UpdateUserDTO) (*UserResponse, error)
	ChangePassword(ctx context.Context, actor *internal.CurrentUser, id int64, dto ChangePasswordDTO) error
	Delete(ctx context.Context, actor *internal.CurrentUser, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToResponse(u))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*UserResponse, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(u)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, actor *internal.CurrentUser, dto CreateUserDTO) (*UserResponse, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRoleGrant(actor, dto.Role); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, dto.Username, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &userDatamodel.User{
		Name:     dto.Name,
		Username: dto.Username,
		Password: hash,
		Role:     dto.Role,
		IsActive: dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	resp := ToResponse(u)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, actor *internal.CurrentUser, id int64, dto UpdateUserDTO) (*UserResponse, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == internal.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return nil, internal.ErrPermissionDenied
	}
	if err := s.checkRoleGrant(actor, dto.Role); err != nil {
		return nil, err
	}
	if dto.Username != u.Username {
		if err := s.ensureUsernameFree(ctx, dto.Username, u.ID); err != nil {
			return nil, err
		}
	}
	if actor != nil && actor.ID == u.ID && dto.IsActive != nil && !*dto.IsActive {
		return nil, internal.NewValidationFieldError("isActive", "you cannot deactivate your own account", internal.ErrCodeValidationFailed)
	}

	u.Name = dto.Name
	u.Username = dto.Username
	u.Role = dto.Role
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, internal.NewInternalError("failed to update user", err)
	}

	resp := ToResponse(u)
	return &resp, nil
}

func (s *Service) ChangePassword(ctx context.Context, actor *internal.CurrentUser, id int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == internal.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return internal.ErrPermissionDenied
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return internal.NewInternalError("failed to update password", err)
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", id)
	return nil
}

func (s *Service) Delete(ctx context.Context, actor *internal.CurrentUser, id int64) error {
	if actor != nil && actor.ID == id {
		return internal.NewValidationError("you cannot delete your own account", internal.ErrCodeValidationFailed)
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == internal.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return internal.ErrPermissionDenied
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete user", err)
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*userDatamodel.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}
	return u, nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, username string, selfID int64) error {
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return internal.NewInternalError("failed to check username", err)
	}
	if existing != nil && existing.ID != selfID {
		return internal.NewConflictError("username already exists", internal.ErrCodeDuplicate)
	}
	return nil
}

// Only super admins may hand out or take away the super admin role.
func (s *Service) checkRoleGrant(actor *internal.CurrentUser, role string) error {
	if role == internal.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return internal.ErrPermissionDenied
	}
	return nil
}
