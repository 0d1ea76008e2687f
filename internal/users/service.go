package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
	"github.com/qmedica/catalog-backend/pkg/security"
)

const minPasswordLength = 8

type userRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

// Actor identifies the signed-in admin performing a user operation.
type Actor struct {
	UserID uint
	Role   enums.Role
}

// UserInput carries the admin form fields for an account. Password is blank
// on edit to keep the current hash.
type UserInput struct {
	Email    string
	Password string
	Role     enums.Role
}

// Service exposes account management and credential checks.
type Service interface {
	List(ctx context.Context, actor Actor) ([]models.User, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.User, error)
	Create(ctx context.Context, actor Actor, input UserInput) (*models.User, error)
	Update(ctx context.Context, actor Actor, id uint, input UserInput) (*models.User, error)
	Delete(ctx context.Context, actor Actor, id uint) error

	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Bootstrap(ctx context.Context) error
}

type service struct {
	repo userRepository
	cfg  *config.Config
	logg *logger.Logger
}

func NewService(repo userRepository, cfg *config.Config, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cfg: cfg, logg: logg}, nil
}

// List hides Super Admin accounts from actors below Super Admin.
func (s *service) List(ctx context.Context, actor Actor) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	if actor.Role == enums.RoleSuperAdmin {
		return users, nil
	}
	visible := make([]models.User, 0, len(users))
	for _, user := range users {
		if user.Role == enums.RoleSuperAdmin {
			continue
		}
		visible = append(visible, user)
	}
	return visible, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uint) (*models.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == enums.RoleSuperAdmin && actor.Role != enums.RoleSuperAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient privileges")
	}
	return user, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input UserInput) (*models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if err := s.checkRoleAssignment(actor, input.Role); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.cfg.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{Email: email, PasswordHash: hash, Role: input.Role}
	if err := s.repo.Create(ctx, user); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uint, input UserInput) (*models.User, error) {
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRoleAssignment(actor, user.Role); err != nil {
		return nil, err
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if err := s.checkRoleAssignment(actor, input.Role); err != nil {
		return nil, err
	}

	user.Email = email
	user.Role = input.Role
	if input.Password != "" {
		if len(input.Password) < minPasswordLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		}
		hash, err := security.HashPassword(input.Password, s.cfg.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return user, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uint) error {
	if actor.UserID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}

	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.checkRoleAssignment(actor, user.Role); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

// Authenticate verifies credentials and returns the matching account. The
// same error is returned for unknown emails and bad passwords.
func (s *service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, invalid
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	match, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, invalid
	}
	return user, nil
}

// Bootstrap creates the initial Super Admin on an empty users table. With no
// CATALOG_BOOTSTRAP_ADMIN_PASSWORD set, a random credential is generated and
// logged once at startup.
func (s *service) Bootstrap(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if count > 0 {
		return nil
	}

	email, err := normalizeEmail(s.cfg.Bootstrap.AdminEmail)
	if err != nil {
		return err
	}

	password := s.cfg.Bootstrap.AdminPassword
	generated := false
	if password == "" {
		password, err = security.GenerateTempPassword(20)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate bootstrap password")
		}
		generated = true
	}

	hash, err := security.HashPassword(password, s.cfg.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash bootstrap password")
	}

	user := &models.User{Email: email, PasswordHash: hash, Role: enums.RoleSuperAdmin}
	if err := s.repo.Create(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bootstrap user")
	}

	logCtx := s.logg.WithField(ctx, "email", email)
	if generated {
		logCtx = s.logg.WithField(logCtx, "temp_password", password)
	}
	s.logg.Info(logCtx, "bootstrap.admin_created")
	return nil
}

// checkRoleAssignment blocks actors below Super Admin from touching Super
// Admin accounts or granting the role.
func (s *service) checkRoleAssignment(actor Actor, target enums.Role) error {
	if target == enums.RoleSuperAdmin && actor.Role != enums.RoleSuperAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "super admin accounts require super admin privileges")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(strings.ToLower(raw))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}
	return email, nil
}
