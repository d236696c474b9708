package repository

import (
	"context"
	"errors"

	"cifconnect/internal/models"

	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations.
type ReactionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Reaction, error)
	Toggle(ctx context.Context, messageID, userID uint, emoji string) (*models.Reaction, bool, error)
	Delete(ctx context.Context, id uint) error
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) GetByID(ctx context.Context, id uint) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.db.WithContext(ctx).First(&reaction, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reaction", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &reaction, nil
}

// Toggle adds the user's reaction to the message, or removes the existing one
// when the (user, message) pair already has a row. It returns the created
// reaction, or removed=true when the toggle deleted one.
//
// The unique index on (user_id, message_id) is the enforcement backstop: when
// two toggles race, the loser's insert fails with a duplicate key and is
// treated as a toggle-off of the winner's row.
func (r *reactionRepository) Toggle(ctx context.Context, messageID, userID uint, emoji string) (*models.Reaction, bool, error) {
	var created *models.Reaction
	removed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where("message_id = ? AND user_id = ?", messageID, userID).First(&existing).Error
		if err == nil {
			removed = true
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		reaction := models.Reaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
		}
		if err := tx.Create(&reaction).Error; err != nil {
			return err
		}
		created = &reaction
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent toggle-on; undo that row.
			res := r.db.WithContext(ctx).
				Where("message_id = ? AND user_id = ?", messageID, userID).
				Delete(&models.Reaction{})
			if res.Error != nil {
				return nil, false, models.NewInternalError(res.Error)
			}
			return nil, true, nil
		}
		return nil, false, models.NewInternalError(err)
	}
	return created, removed, nil
}

func (r *reactionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Reaction{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Reaction", id)
	}
	return nil
}
