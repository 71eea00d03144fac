package db

import (
	"context"
	"strings"
	"time"

	"campus_shelf/models"

	"gorm.io/gorm"
)

// RequestRow 请求 + 书名 + 借书人，给捐书人的收件箱和 CLI 用
type RequestRow struct {
	ID                    string               `json:"id"`
	BookID                string               `json:"bookId"`
	BookTitle             string               `json:"bookTitle"`
	BorrowerID            string               `json:"borrowerId"`
	BorrowerName          string               `json:"borrowerName"`
	DonorID               string               `json:"donorId"`
	Status                models.RequestStatus `json:"status"`
	Kind                  models.RequestKind   `json:"kind"`
	Timestamp             time.Time            `json:"timestamp"`
	PreferredDeliveryDate string               `json:"preferredDeliveryDate,omitempty"`
	PreferredDeliveryTime string               `json:"preferredDeliveryTime,omitempty"`
	BorrowerContact       string               `json:"borrowerContact,omitempty"`
}

type RequestRowsQuery struct {
	DonorID    string
	BorrowerID string
	Status     string // "", PENDING, ACCEPTED, REJECTED
	Q          string // 模糊搜索：书名/借书人
	Page       int
	Size       int
}

type PagedRequestRows struct {
	Total int64        `json:"total"`
	Items []RequestRow `json:"items"`
}

func (r *Repo) ListRequestRows(ctx context.Context, q RequestRowsQuery) (*PagedRequestRows, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	qry := r.DB.WithContext(ctx).
		Table(models.RequestTable + " r").
		Joins("JOIN " + models.BookTable + " b ON b.id = r.book_id").
		Joins("LEFT JOIN " + models.UserTable + " u ON u.id = r.borrower_id")

	if q.DonorID != "" {
		qry = qry.Where("r.donor_id = ?", q.DonorID)
	}
	if q.BorrowerID != "" {
		qry = qry.Where("r.borrower_id = ?", q.BorrowerID)
	}
	if s := strings.ToUpper(strings.TrimSpace(q.Status)); s != "" {
		qry = qry.Where("r.status = ?", s)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		qry = qry.Where("LOWER(b.title) LIKE ? OR LOWER(COALESCE(u.name, '')) LIKE ?", pat, pat)
	}

	var total int64
	if err := qry.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	rows := []RequestRow{}
	if err := qry.
		Select(`
			r.id, r.book_id, b.title AS book_title,
			r.borrower_id, COALESCE(u.name, '') AS borrower_name,
			r.donor_id, r.status, r.kind, r.timestamp,
			r.preferred_delivery_date, r.preferred_delivery_time, r.borrower_contact
		`).
		Order("r.timestamp DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return &PagedRequestRows{Total: total, Items: rows}, nil
}
