package repository

import (
	"context"
	"errors"
	"fmt"

	"cifconnect/internal/models"

	"gorm.io/gorm"
)

// RoomRepository defines the interface for room and membership operations.
type RoomRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Room, error)
	List(ctx context.Context) ([]models.Room, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Room, error)
	IsMember(ctx context.Context, roomID, userID uint) (bool, error)
	CreateWithCreator(ctx context.Context, room *models.Room, creator *models.User) error
	Join(ctx context.Context, room *models.Room, user *models.User) (joined bool, err error)
	Quit(ctx context.Context, room *models.Room, user *models.User) error
	Update(ctx context.Context, roomID uint, updates map[string]interface{}) (*models.Room, error)
	Delete(ctx context.Context, roomID uint) error
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) GetByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Preload("Creator").First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Room", id)
		}
		return nil, models.NewInternalError(err)
	}
	room.IsPrivate = room.AccessKey != nil
	return &room, nil
}

func (r *roomRepository) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.WithContext(ctx).Preload("Creator").Order("created_at ASC").Find(&rooms).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range rooms {
		rooms[i].IsPrivate = rooms[i].AccessKey != nil
	}
	return rooms, nil
}

func (r *roomRepository) ListForUser(ctx context.Context, userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN room_members rm ON rooms.id = rm.room_id").
		Where("rm.user_id = ?", userID).
		Preload("Creator").
		Order("rooms.created_at ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range rooms {
		rooms[i].IsPrivate = rooms[i].AccessKey != nil
	}
	return rooms, nil
}

func (r *roomRepository) IsMember(ctx context.Context, roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// CreateWithCreator creates the room, adds the creator as first member, and
// appends the creator's join notice, all in one transaction.
func (r *roomRepository) CreateWithCreator(ctx context.Context, room *models.Room, creator *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.RoomMember{RoomID: room.ID, UserID: creator.ID}).Error; err != nil {
			return err
		}
		return tx.Create(systemMessage(room.ID, creator, models.MessageTypeJoin)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("A room with this name already exists")
		}
		return models.NewInternalError(err)
	}
	room.IsPrivate = room.AccessKey != nil
	return nil
}

// Join inserts the membership and the join system message. Joining a room the
// user already belongs to is a no-op and reports joined=false.
func (r *roomRepository) Join(ctx context.Context, room *models.Room, user *models.User) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.RoomMember{RoomID: room.ID, UserID: user.ID}).Error; err != nil {
			return err
		}
		return tx.Create(systemMessage(room.ID, user, models.MessageTypeJoin)).Error
	})
	if err != nil {
		// The composite primary key is the backstop for concurrent joins:
		// a duplicate membership row means the user is already in.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	return true, nil
}

// Quit removes the membership and appends the quit system message. Quitting a
// room the user is not a member of is a not-found error.
func (r *roomRepository) Quit(ctx context.Context, room *models.Room, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("room_id = ? AND user_id = ?", room.ID, user.ID).Delete(&models.RoomMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Membership", fmt.Sprintf("%d/%d", room.ID, user.ID))
		}
		return tx.Create(systemMessage(room.ID, user, models.MessageTypeQuit)).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *roomRepository) Update(ctx context.Context, roomID uint, updates map[string]interface{}) (*models.Room, error) {
	err := r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID).Updates(updates).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("A room with this name already exists")
		}
		return nil, models.NewInternalError(err)
	}
	return r.GetByID(ctx, roomID)
}

func (r *roomRepository) Delete(ctx context.Context, roomID uint) error {
	// Memberships and messages (and through them reactions) go with the room.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&models.RoomMember{}).Error; err != nil {
			return err
		}
		var messageIDs []uint
		if err := tx.Model(&models.Message{}).Where("room_id = ?", roomID).Pluck("id", &messageIDs).Error; err != nil {
			return err
		}
		if len(messageIDs) > 0 {
			if err := tx.Where("message_id IN ?", messageIDs).Delete(&models.Reaction{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Report{}).Where("message_id IN ?", messageIDs).
				Update("message_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("room_id = ?", roomID).Delete(&models.Message{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Room{}, roomID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// systemMessage builds a join/quit notice authored by the acting user with
// their pseudo snapshotted like any other message.
func systemMessage(roomID uint, user *models.User, kind models.MessageType) *models.Message {
	verb := "joined"
	if kind == models.MessageTypeQuit {
		verb = "left"
	}
	return &models.Message{
		RoomID:            roomID,
		AuthorID:          user.ID,
		AuthorDisplayName: user.Pseudo,
		Content:           fmt.Sprintf("%s %s the room", user.Pseudo, verb),
		MessageType:       kind,
	}
}
