package users

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
	"github.com/qmedica/catalog-backend/pkg/security"
)

type stubUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newStubUserRepo(seed ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[uint]*models.User), nextID: 1}
	for _, user := range seed {
		if user.ID >= repo.nextID {
			repo.nextID = user.ID + 1
		}
		copied := *user
		repo.users[user.ID] = &copied
	}
	return repo
}

func (s *stubUserRepo) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = s.nextID
	s.nextID++
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id uint) error {
	delete(s.users, id)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     8,
			ArgonKeyLen:      16,
		},
		Bootstrap: config.BootstrapConfig{AdminEmail: "admin@example.com"},
	}
}

func newUserService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(repo, testConfig(), logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, id uint, email string, role enums.Role, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testConfig().Password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &models.User{ID: id, Email: email, PasswordHash: hash, Role: role}
}

func TestAdminCannotDeleteSuperAdmin(t *testing.T) {
	repo := newStubUserRepo(
		seedUser(t, 1, "root@example.com", enums.RoleSuperAdmin, "rootpassword"),
		seedUser(t, 2, "admin@example.com", enums.RoleAdmin, "adminpassword"),
	)
	svc := newUserService(t, repo)

	err := svc.Delete(context.Background(), Actor{UserID: 2, Role: enums.RoleAdmin}, 1)
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, ok := repo.users[1]; !ok {
		t.Fatal("super admin row should remain")
	}

	_, err = svc.Get(context.Background(), Actor{UserID: 2, Role: enums.RoleAdmin}, 1)
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden on read, got %v", err)
	}
}

func TestAdminCannotGrantSuperAdmin(t *testing.T) {
	svc := newUserService(t, newStubUserRepo())

	_, err := svc.Create(context.Background(), Actor{UserID: 2, Role: enums.RoleAdmin}, UserInput{
		Email:    "new@example.com",
		Password: "password1234",
		Role:     enums.RoleSuperAdmin,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListHidesSuperAdminsFromAdmins(t *testing.T) {
	repo := newStubUserRepo(
		seedUser(t, 1, "root@example.com", enums.RoleSuperAdmin, "rootpassword"),
		seedUser(t, 2, "admin@example.com", enums.RoleAdmin, "adminpassword"),
	)
	svc := newUserService(t, repo)

	visible, err := svc.List(context.Background(), Actor{UserID: 2, Role: enums.RoleAdmin})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visible) != 1 || visible[0].Role == enums.RoleSuperAdmin {
		t.Fatalf("super admin should be hidden, got %+v", visible)
	}

	all, err := svc.List(context.Background(), Actor{UserID: 1, Role: enums.RoleSuperAdmin})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("super admin should see everyone, got %d", len(all))
	}
}

func TestCannotDeleteOwnAccount(t *testing.T) {
	repo := newStubUserRepo(seedUser(t, 1, "root@example.com", enums.RoleSuperAdmin, "rootpassword"))
	svc := newUserService(t, repo)

	err := svc.Delete(context.Background(), Actor{UserID: 1, Role: enums.RoleSuperAdmin}, 1)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	repo := newStubUserRepo(seedUser(t, 1, "root@example.com", enums.RoleSuperAdmin, "rootpassword"))
	svc := newUserService(t, repo)

	if _, err := svc.Authenticate(context.Background(), "root@example.com", "rootpassword"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	_, err := svc.Authenticate(context.Background(), "root@example.com", "wrongpassword")
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "rootpassword")
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestBootstrapCreatesSuperAdminOnce(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(t, repo)

	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one bootstrap user, got %d", len(repo.users))
	}
	for _, user := range repo.users {
		if user.Role != enums.RoleSuperAdmin {
			t.Fatalf("bootstrap user role = %s", user.Role)
		}
	}

	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap second run: %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("bootstrap should be a no-op on a populated table, got %d users", len(repo.users))
	}
}
