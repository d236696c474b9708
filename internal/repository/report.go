package repository

import (
	"context"
	"errors"
	"time"

	"cifconnect/internal/models"

	"gorm.io/gorm"
)

// BanAction describes the optional ban side-effect of resolving a report.
// A nil ExpiresAt makes the ban permanent.
type BanAction struct {
	Reason    string
	ExpiresAt *time.Time
}

// ReportRepository defines the interface for moderation report operations.
type ReportRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context, status string, limit, offset int) ([]models.Report, error)
	Resolve(ctx context.Context, reportID uint, status string, resolvedBy uint, ban *BanAction) (*models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Reported").
		Preload("Message").
		First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &report, nil
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// List returns reports newest-first for the admin dashboard.
func (r *reportRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var reports []models.Report
	err := query.
		Preload("Reporter").
		Preload("Reported").
		Preload("Message").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

// Resolve updates the report's status and, when a ban is requested, flips the
// reported user's ban fields in the same transaction. A ban with no explicit
// reason inherits the report's reason.
func (r *reportRepository) Resolve(ctx context.Context, reportID uint, status string, resolvedBy uint, ban *BanAction) (*models.Report, error) {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, reportID).Error; err != nil {
			return err
		}

		if err := tx.Model(&report).Updates(map[string]interface{}{
			"status":      status,
			"resolved_by": resolvedBy,
			"resolved_at": now,
		}).Error; err != nil {
			return err
		}

		if ban == nil {
			return nil
		}
		if report.ReportedID == nil {
			return models.NewConflictError("The reported user no longer exists")
		}
		reason := ban.Reason
		if reason == "" {
			reason = report.Reason
		}
		return tx.Model(&models.User{}).Where("id = ?", *report.ReportedID).Updates(map[string]interface{}{
			"is_banned":      true,
			"ban_reason":     reason,
			"ban_expires_at": ban.ExpiresAt,
		}).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", reportID)
		}
		return nil, models.NewInternalError(err)
	}
	return r.GetByID(ctx, reportID)
}
