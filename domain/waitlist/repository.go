package waitlist

import (
	"context"
	"errors"
	"time"

	"github.com/physiscaffold/waitlist-api/internal/models"
	apperrors "github.com/physiscaffold/waitlist-api/pkg/errors"
	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist

type WaitlistRepository interface {
	// FindByEmail looks up an entry by normalized email. A miss returns
	// (nil, nil); it is the expected path for first-time signups.
	FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	// Insert persists a new entry. A unique-index violation on email is
	// reported as a ConflictError so callers can resolve races.
	Insert(ctx context.Context, entry *models.WaitlistEntry) error
	// CountAll returns the number of enrolled emails.
	CountAll(ctx context.Context) (int64, error)
	// MarkNotified sets the notified timestamp for an entry, once.
	MarkNotified(ctx context.Context, email string, at time.Time) error
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry

	if err := wr.db.WithContext(ctx).Where("email = ?", email).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("failed to look up waitlist entry", err)
	}

	return &entry, nil
}

func (wr *waitlistRepository) Insert(ctx context.Context, entry *models.WaitlistEntry) error {
	if err := wr.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.NewConflictError("waitlist entry with this email already exists", err)
		}
		return apperrors.NewDatabaseError("unable to create waitlist entry", err)
	}

	return nil
}

func (wr *waitlistRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64

	if err := wr.db.WithContext(ctx).Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
		return 0, apperrors.NewDatabaseError("unable to count waitlist entries", err)
	}

	return count, nil
}

func (wr *waitlistRepository) MarkNotified(ctx context.Context, email string, at time.Time) error {
	result := wr.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("email = ? AND notified_at IS NULL", email).
		Update("notified_at", at)

	if result.Error != nil {
		return apperrors.NewDatabaseError("unable to mark waitlist entry as notified", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("waitlist entry not found or already notified", nil)
	}

	return nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}
