package contact

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/electrohogar/storefront-backend/pkg/db/models"
)

// Repository encapsulates contact message persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a contact repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the submission and returns the stored row.
func (r *Repository) Create(ctx context.Context, message *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// MarkNotified records when the notification email went out.
func (r *Repository) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ContactMessage{}).
		Where("id = ?", id).
		Update("notified_at", at).
		Error
}
