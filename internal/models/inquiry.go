package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MailStatus string

const (
	MailStatusSent   MailStatus = "sent"
	MailStatusFailed MailStatus = "failed"
)

// ContactInquiry records a contact form submission and how its two emails fared.
type ContactInquiry struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	Email           string     `gorm:"size:255;not null;index" json:"email"`
	Phone           string     `gorm:"size:32" json:"phone"`
	SiteAddress     string     `gorm:"size:512" json:"site_address"`
	Message         string     `gorm:"type:text" json:"message"`
	AdminMailStatus MailStatus `gorm:"size:16" json:"admin_mail_status"`
	UserMailStatus  MailStatus `gorm:"size:16" json:"user_mail_status"`
	IPAddress       string     `gorm:"size:45" json:"ip_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (ContactInquiry) TableName() string {
	return "contact_inquiries"
}

// BeforeCreate generates a UUID if not set
func (i *ContactInquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
