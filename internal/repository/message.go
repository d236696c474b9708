package repository

import (
	"context"
	"errors"

	"cifconnect/internal/models"

	"gorm.io/gorm"
)

// History pagination policy: the chat view renders a room's history from the
// top, so listings are oldest-first. Callers may request up to MaxHistoryLimit
// messages per page.
const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 500
)

// MessageRepository defines the interface for message data operations.
type MessageRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByRoom(ctx context.Context, roomID uint, limit, offset int) ([]models.Message, error)
	Create(ctx context.Context, msg *models.Message) error
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).Preload("Reactions").First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

// ListByRoom returns the room's history oldest-first. The primary key is the
// tiebreaker so concurrent sends within the same timestamp keep a stable,
// total order.
func (r *messageRepository) ListByRoom(ctx context.Context, roomID uint, limit, offset int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Preload("Reactions").
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the message along with its reactions and detaches any
// reports pointing at it, in one transaction.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Threaded replies go with their parent, at any depth.
		ids := []uint{id}
		frontier := []uint{id}
		for len(frontier) > 0 {
			var replyIDs []uint
			if err := tx.Model(&models.Message{}).Where("parent_id IN ?", frontier).Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			ids = append(ids, replyIDs...)
			frontier = replyIDs
		}

		if err := tx.Where("message_id IN ?", ids).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Report{}).Where("message_id IN ?", ids).
			Update("message_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Message{}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
