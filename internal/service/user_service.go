package service

import (
	"context"
	"errors"

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

// UserService covers the account-management operations that sit next
// to the auth flows: profile lookup from an authenticated context,
// password change and the admin listing/activation toggles. These run
// in contexts where the caller is already authenticated, so not-found
// is reported as such; enumeration is not a concern here.
type UserService struct {
	users      UserStore
	bcryptCost int
}

func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// GetByID resolves a user for an authenticated caller.
func (s *UserService) GetByID(ctx context.Context, id uint64) (model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

// ChangePassword swaps the stored hash after checking the current
// password. Accounts without a password (OTP-only) cannot change one.
// Existing sessions stay valid across the change.
func (s *UserService) ChangePassword(ctx context.Context, userID uint64, currentPassword, newPassword string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return ErrNoPasswordSet
	}
	if !utils.VerifyPassword(user.PasswordHash, currentPassword) {
		return ErrWrongCurrentPassword
	}
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// SetActive soft-(de)activates an account. Deactivation blocks every
// login path and refresh on the next check; it does not tear down
// sessions eagerly.
func (s *UserService) SetActive(ctx context.Context, userID uint64, active bool) error {
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// List returns one page of users for the admin listing, newest first.
// Page and limit are 1-based and clamped to sane bounds.
func (s *UserService) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.users.List(ctx, (page-1)*limit, limit)
}
