package services

import (
	"context"
	"testing"
	"time"

	"github.com/bajrangpainters/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedInquiries(t *testing.T, svc *InquiryService, now time.Time) {
	t.Helper()
	rows := []models.ContactInquiry{
		{Name: "Asha Verma", Email: "asha@example.com", Phone: "+919876543210", AdminMailStatus: models.MailStatusSent, UserMailStatus: models.MailStatusSent, CreatedAt: now.Add(-time.Hour)},
		{Name: "Ravi Kumar", Email: "ravi@example.com", Phone: "+919812345678", AdminMailStatus: models.MailStatusFailed, UserMailStatus: models.MailStatusSent, CreatedAt: now.Add(-48 * time.Hour)},
		{Name: "Meena Shah", Email: "meena@example.com", Phone: "+919800000000", AdminMailStatus: models.MailStatusSent, UserMailStatus: models.MailStatusFailed, CreatedAt: now.AddDate(0, 0, -30)},
	}
	for i := range rows {
		require.NoError(t, svc.Record(context.Background(), &rows[i]))
	}
}

func TestInquiryServiceList(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := NewInquiryService(newTestDB(t))
	seedInquiries(t, svc, now)

	all, total, err := svc.List(context.Background(), 1, 20, InquiryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, "Asha Verma", all[0].Name)
	assert.Equal(t, "Meena Shah", all[2].Name)

	page, total, err := svc.List(context.Background(), 2, 2, InquiryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "Meena Shah", page[0].Name)

	found, total, err := svc.List(context.Background(), 1, 20, InquiryFilter{Search: "RAVI"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "ravi@example.com", found[0].Email)

	failed, total, err := svc.List(context.Background(), 1, 20, InquiryFilter{Failed: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, failed, 2)
}

func TestInquiryServiceListEmpty(t *testing.T) {
	svc := NewInquiryService(newTestDB(t))
	rows, total, err := svc.List(context.Background(), 0, 0, InquiryFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestInquiryServiceStats(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := NewInquiryService(newTestDB(t))
	svc.now = func() time.Time { return now }
	seedInquiries(t, svc, now)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, InquiryStats{
		Total:          3,
		Last24h:        1,
		Last7d:         2,
		AdminMailFails: 1,
		UserMailFails:  1,
	}, stats)
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{1, 20, 1, 20},
		{3, 100, 3, 100},
		{0, 0, 1, 20},
		{-3, 5000, 1, 20},
		{2, -1, 2, 20},
	}
	for _, c := range cases {
		page, limit := Paginate(c.page, c.limit)
		assert.Equal(t, c.wantPage, page)
		assert.Equal(t, c.wantLimit, limit)
	}
}
