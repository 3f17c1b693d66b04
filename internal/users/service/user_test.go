package service

import (
	"context"
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"

	usererrors "campsite/internal/users/errors"
	"campsite/internal/users/validator"
	"campsite/pkg/config"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/logger"
	"campsite/pkg/model"
)

type mockUserRepository struct {
	createFunc         func(ctx context.Context, user *model.User) error
	findByUsernameFunc func(ctx context.Context, username string) (*model.User, error)
	findByIDFunc       func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "user-1"
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, usererrors.ErrNotFound
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, usererrors.ErrNotFound
}

func (m *mockUserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	return map[string]*model.User{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func newTestService(repo *mockUserRepository) UserService {
	cfg := testConfig()
	return NewUserService(repo, validator.NewUserValidator(cfg.Log), cfg)
}

func TestRegister_Success(t *testing.T) {
	svc := newTestService(&mockUserRepository{})

	user, err := svc.Register(context.Background(), &model.Credentials{
		Username: "  Camper  ",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "camper" {
		t.Errorf("expected normalized username camper, got %q", user.Username)
	}
	if user.PasswordHash == "" || user.PasswordHash == "longenough" {
		t.Errorf("expected a bcrypt hash, got %q", user.PasswordHash)
	}
}

func TestRegister_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			t.Fatal("repository should not be called when validation fails")
			return nil
		},
	})

	_, err := svc.Register(context.Background(), &model.Credentials{
		Username: "ab",
		Password: "short",
	})
	if !apperrors.IsCode(err, apperrors.CodeInvalidPayload) {
		t.Fatalf("expected invalid payload error, got %v", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestService(&mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return fmt.Errorf("%w: %s", usererrors.ErrDuplicateUsername, user.Username)
		},
	})

	_, err := svc.Register(context.Background(), &model.Credentials{
		Username: "camper",
		Password: "longenough",
	})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	svc := newTestService(&mockUserRepository{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: "user-1", Username: username, PasswordHash: string(hash)}, nil
		},
	})

	_, err = svc.Authenticate(context.Background(), &model.Credentials{
		Username: "camper",
		Password: "wrongpassword",
	})
	if !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
}

func TestAuthenticate_UnknownUserSameFailure(t *testing.T) {
	svc := newTestService(&mockUserRepository{})

	_, err := svc.Authenticate(context.Background(), &model.Credentials{
		Username: "nobody",
		Password: "whatever123",
	})
	if !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	if got := apperrors.AsAppError(err).Message; got != "Invalid username or password" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestAuthenticate_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	svc := newTestService(&mockUserRepository{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			if username != "camper" {
				t.Errorf("expected normalized lookup camper, got %q", username)
			}
			return &model.User{ID: "user-1", Username: username, PasswordHash: string(hash)}, nil
		},
	})

	user, err := svc.Authenticate(context.Background(), &model.Credentials{
		Username: "  CAMPER ",
		Password: "rightpassword",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("unexpected user id %q", user.ID)
	}
}
