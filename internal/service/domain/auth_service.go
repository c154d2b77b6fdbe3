package domain

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/repository"
	"github.com/qs-lzh/coaster-review/internal/service"
	"github.com/qs-lzh/coaster-review/internal/validation"
)

const maxBcryptInput = 72

type AuthService interface {
	// Register creates a regular user after checking, in order, that the
	// passwords match, the username is valid, the password is valid and the
	// username is free.
	Register(ctx context.Context, username, password, confirm string) (*model.User, error)
	// Login fails with ErrInvalidCredentials whether the username is unknown
	// or the password is wrong.
	Login(ctx context.Context, username, password string) (*model.User, error)
	CreateUser(ctx context.Context, username, password string, role model.UserRole) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

type authService struct {
	db     *gorm.DB
	repo   repository.UserRepo
	cost   int
	logger *zap.Logger

	// compared against for unknown usernames so both failures cost one bcrypt run
	dummyHash []byte
}

var _ AuthService = (*authService)(nil)

func NewAuthService(db *gorm.DB, userRepo repository.UserRepo, cost int, logger *zap.Logger) *authService {
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &authService{
		db:        db,
		repo:      userRepo,
		cost:      cost,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

func (s *authService) Register(ctx context.Context, username, password, confirm string) (*model.User, error) {
	if password != confirm {
		return nil, service.ErrPasswordMismatch
	}
	return s.CreateUser(ctx, username, password, model.RoleUser)
}

func (s *authService) CreateUser(ctx context.Context, username, password string, role model.UserRole) (*model.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidUsername, err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidPassword, err)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, s.internal("check username", err)
	}
	if taken {
		return nil, service.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), s.cost)
	if err != nil {
		return nil, s.internal("hash password", err)
	}

	user := &model.User{
		Username:       username,
		HashedPassword: string(hash),
		Role:           role,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, service.ErrUsernameTaken
		}
		return nil, s.internal("create user", err)
	}

	s.logger.Info("user created", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, bcryptInput(password))
			return nil, service.ErrInvalidCredentials
		}
		return nil, s.internal("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), bcryptInput(password)); err != nil {
		return nil, service.ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, s.internal("load user", err)
	}
	return user, nil
}

// bcryptInput passes passwords of up to 72 bytes through unchanged. Longer
// ones are sha256 digested first, bcrypt rejects them and thirty multi-byte
// runes can reach 120 bytes.
func bcryptInput(password string) []byte {
	if len(password) <= maxBcryptInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (s *authService) internal(op string, err error) error {
	s.logger.Error("auth store failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, service.ErrInternal, err)
}
