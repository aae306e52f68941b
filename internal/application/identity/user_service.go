package identity

import (
	"context"

	"github.com/fincore/backend/internal/domain/identity"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultAdminUsername is the user created for every new tenant
const DefaultAdminUsername = "mifos"

// UserService handles app user management
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, logger: logger}
}

// Create creates a new enabled user
func (s *UserService) Create(ctx context.Context, tenantID uuid.UUID, input CreateUserInput) (*UserInfo, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, tenantID, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}

	user, err := identity.NewAppUser(tenantID, input.OfficeID, input.Username, input.Password, input.Permissions)
	if err != nil {
		return nil, err
	}
	user.Firstname = input.Firstname
	user.Lastname = input.Lastname
	user.Email = input.Email
	user.StaffID = input.StaffID

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("App user created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("username", user.Username))
	info := toUserInfo(user)
	return &info, nil
}

// BootstrapAdmin creates the tenant's administrator with ALL_FUNCTIONS
// unless it already exists. It reports whether a user was created.
func (s *UserService) BootstrapAdmin(ctx context.Context, tenantID, headOfficeID uuid.UUID, password string) (bool, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, tenantID, DefaultAdminUsername)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	_, err = s.Create(ctx, tenantID, CreateUserInput{
		Username:    DefaultAdminUsername,
		Password:    password,
		Firstname:   "App",
		Lastname:    "Administrator",
		OfficeID:    headOfficeID,
		Permissions: []string{identity.PermissionAll},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetPermissions replaces a user's permission codes
func (s *UserService) SetPermissions(ctx context.Context, tenantID, userID uuid.UUID, permissions []string) (*UserInfo, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.SetPermissions(permissions); err != nil {
		return nil, err
	}
	user.IncrementVersion()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// Disable stops a user from logging in
func (s *UserService) Disable(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	user.Disable()
	return s.userRepo.Save(ctx, user)
}
