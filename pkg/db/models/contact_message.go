package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage stores a persisted contact-form submission.
type ContactMessage struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string     `gorm:"column:name;type:text;not null"`
	Email      string     `gorm:"column:email;type:text;not null;index:contact_messages_email_idx"`
	Phone      *string    `gorm:"column:phone;type:text"`
	Subject    *string    `gorm:"column:subject;type:text"`
	Message    string     `gorm:"column:message;type:text;not null"`
	NotifiedAt *time.Time `gorm:"column:notified_at;type:timestamptz"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
