package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	usererrors "campsite/internal/users/errors"
	"campsite/internal/users/repository"
	"campsite/internal/users/validator"
	"campsite/pkg/config"
	apperrors "campsite/pkg/errors"
	"campsite/pkg/model"
	"campsite/pkg/sanitizer"
)

type UserService interface {
	Register(ctx context.Context, creds *model.Credentials) (*model.User, error)
	Authenticate(ctx context.Context, creds *model.Credentials) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, validator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, creds *model.Credentials) (*model.User, error) {
	creds.Username = sanitizer.NormalizeUsername(creds.Username)

	if err := s.validator.Validate(creds); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "username", creds.Username, "error", err)
		return nil, apperrors.InvalidPayload(err.Error(), nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Username:     creds.Username,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, usererrors.ErrDuplicateUsername) {
			return nil, apperrors.Conflict("A user with that username already exists")
		}
		s.cfg.Log.Error("Failed to create user", "username", creds.Username, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate verifies the credential pair. Both unknown usernames and
// wrong passwords produce the same failure so the response does not reveal
// which half was wrong.
func (s *userService) Authenticate(ctx context.Context, creds *model.Credentials) (*model.User, error) {
	username := sanitizer.NormalizeUsername(creds.Username)

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return nil, apperrors.Unauthenticated("Invalid username or password")
		}
		s.cfg.Log.Error("Failed to look up user", "username", username, "error", err)
		return nil, apperrors.Internal("Failed to authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperrors.Unauthenticated("Invalid username or password")
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, usererrors.ErrNotFound) || errors.Is(err, usererrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user, nil
}

func (s *userService) GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("Failed to resolve users", err)
	}
	return users, nil
}
