package services

import (
	"context"
	"strings"
	"time"

	"github.com/bajrangpainters/backend/internal/models"
	"gorm.io/gorm"
)

// InquiryService persists contact enquiries for the admin dashboard.
type InquiryService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInquiryService(db *gorm.DB) *InquiryService {
	return &InquiryService{db: db, now: time.Now}
}

func (s *InquiryService) Record(ctx context.Context, inquiry *models.ContactInquiry) error {
	return s.db.WithContext(ctx).Create(inquiry).Error
}

// InquiryFilter narrows List. Zero values match everything.
type InquiryFilter struct {
	Search string
	Failed bool
}

// Paginate clamps a requested page and page size to what List serves.
func Paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// List returns enquiries newest first with pagination.
func (s *InquiryService) List(ctx context.Context, page, limit int, filter InquiryFilter) ([]models.ContactInquiry, int64, error) {
	page, limit = Paginate(page, limit)

	query := s.db.WithContext(ctx).Model(&models.ContactInquiry{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}
	if filter.Failed {
		query = query.Where("admin_mail_status = ? OR user_mail_status = ?", models.MailStatusFailed, models.MailStatusFailed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	inquiries := []models.ContactInquiry{}
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&inquiries).Error; err != nil {
		return nil, 0, err
	}
	return inquiries, total, nil
}

type InquiryStats struct {
	Total          int64 `json:"total"`
	Last24h        int64 `json:"last_24h"`
	Last7d         int64 `json:"last_7d"`
	AdminMailFails int64 `json:"admin_mail_failures"`
	UserMailFails  int64 `json:"user_mail_failures"`
}

func (s *InquiryService) Stats(ctx context.Context) (InquiryStats, error) {
	var stats InquiryStats
	db := s.db.WithContext(ctx).Model(&models.ContactInquiry{})
	now := s.now()

	counts := []struct {
		dst   *int64
		where string
		args  []interface{}
	}{
		{&stats.Total, "", nil},
		{&stats.Last24h, "created_at > ?", []interface{}{now.Add(-24 * time.Hour)}},
		{&stats.Last7d, "created_at > ?", []interface{}{now.AddDate(0, 0, -7)}},
		{&stats.AdminMailFails, "admin_mail_status = ?", []interface{}{models.MailStatusFailed}},
		{&stats.UserMailFails, "user_mail_status = ?", []interface{}{models.MailStatusFailed}},
	}
	for _, c := range counts {
		q := db.Session(&gorm.Session{})
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return InquiryStats{}, err
		}
	}
	return stats, nil
}
