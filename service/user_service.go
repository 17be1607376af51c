package service

import (
	"context"
	"errors"
	"fmt"

	"accountability/model"

	"gorm.io/gorm"
)

// UserService answers identity questions for the graph services.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Create registers an identity. Credentials are handled by the auth service.
func (s *UserService) Create(ctx context.Context, username, email string) (*model.User, error) {
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidArgument)
	}
	user := &model.User{Username: username, Email: email}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: username or email already taken", ErrInvalidArgument)
		}
		return nil, persistenceError("create user", err)
	}
	return user, nil
}

func (s *UserService) Exists(ctx context.Context, userID uint) (bool, error) {
	return userExists(s.db.WithContext(ctx), userID)
}

// GetDisplay returns ErrNotFound when the user is absent.
func (s *UserService) GetDisplay(ctx context.Context, userID uint) (*model.UserDisplay, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user", userID)
	}
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	return &model.UserDisplay{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// GetDisplays loads many users at once; missing ids are simply absent.
func (s *UserService) GetDisplays(ctx context.Context, userIDs []uint) (map[uint]model.UserDisplay, error) {
	result := make(map[uint]model.UserDisplay, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []model.UserDisplay
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Select("id, username, email").
		Where("id IN ?", userIDs).
		Scan(&rows).Error; err != nil {
		return nil, persistenceError("load users", err)
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}

func userExists(db *gorm.DB, userID uint) (bool, error) {
	var count int64
	if err := db.Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, persistenceError("check user", err)
	}
	return count > 0, nil
}

// requireUser returns ErrNotFound when the user does not exist.
func requireUser(db *gorm.DB, userID uint) error {
	ok, err := userExists(db, userID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("user", userID)
	}
	return nil
}
