// Package repository contains the data access layer on top of GORM.
//
// Every multi-step write runs inside a single transaction so a failure leaves
// no partial state, and unique-constraint violations are mapped to typed
// conflict errors rather than leaking driver errors to handlers.
package repository

import (
	"context"
	"errors"
	"time"

	"cifconnect/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPseudo(ctx context.Context, pseudo string) (*models.User, error)
	Register(ctx context.Context, user *models.User, defaultRoom string) error
	UpdatePseudo(ctx context.Context, userID uint, newPseudo string) (*models.User, error)
	Ban(ctx context.Context, userID uint, reason string, expiresAt *time.Time) error
	ClearBan(ctx context.Context, userID uint) error
	List(ctx context.Context, search string, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Return nil for not found, not an error
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByPseudo(ctx context.Context, pseudo string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("pseudo = ?", pseudo).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Register creates the user and auto-joins them to the default public room
// when one exists. Both writes commit together or not at all.
func (r *userRepository) Register(ctx context.Context, user *models.User, defaultRoom string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if defaultRoom == "" {
			return nil
		}
		var room models.Room
		if err := tx.Where("name = ?", defaultRoom).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // No default room configured yet; nothing to join.
			}
			return err
		}
		return tx.Create(&models.RoomMember{RoomID: room.ID, UserID: user.ID}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Email or pseudo already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdatePseudo renames the user. Renaming to the current pseudo is rejected
// as a conflict, as is taking a pseudo owned by another user. Existing
// messages keep their snapshotted display name.
func (r *userRepository) UpdatePseudo(ctx context.Context, userID uint, newPseudo string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if user.Pseudo == newPseudo {
			return models.NewConflictError("You are already using this pseudo")
		}
		user.Pseudo = newPseudo
		user.LastPseudoUpdate = time.Now().UTC()
		return tx.Save(&user).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", userID)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("This pseudo is already taken")
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Ban(ctx context.Context, userID uint, reason string, expiresAt *time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_banned":      true,
		"ban_reason":     reason,
		"ban_expires_at": expiresAt,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}

func (r *userRepository) ClearBan(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_banned":      false,
		"ban_reason":     "",
		"ban_expires_at": nil,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, search string, limit, offset int) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("pseudo LIKE ? OR email LIKE ?", like, like)
	}
	var users []models.User
	if err := query.Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
