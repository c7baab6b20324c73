package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"focus-planner/internal/model"
)

// UserRepository stores the single owner profile of the bot.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Owner returns the stored owner, or gorm.ErrRecordNotFound while the bot
// is not bound to anyone yet.
func (r *UserRepository) Owner(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Order("id").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// BindOwner creates the owner record from a Telegram profile.
func (r *UserRepository) BindOwner(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	user := model.User{
		TelegramID: telegramID,
		FirstName:  firstName,
		LastName:   lastName,
		Username:   username,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("bind owner: %w", err)
	}
	return &user, nil
}

// UpdateProfile refreshes the stored owner profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User, firstName, lastName, username string) (*model.User, error) {
	updates := map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"username":   username,
	}
	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update owner: %w", err)
	}
	return user, nil
}
