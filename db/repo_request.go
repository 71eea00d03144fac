package db

import (
	"context"

	"campus_shelf/exchange"
	"campus_shelf/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repo) ListRequestsByBorrower(ctx context.Context, borrowerID string) ([]models.BookRequest, error) {
	out := []models.BookRequest{}
	err := r.DB.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("timestamp DESC").
		Find(&out).Error
	return out, err
}

func (r *Repo) ListRequestsByDonor(ctx context.Context, donorID string) ([]models.BookRequest, error) {
	out := []models.BookRequest{}
	err := r.DB.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("timestamp DESC").
		Find(&out).Error
	return out, err
}

// WithTx fn 返回错误则整体回滚
func (r *Repo) WithTx(ctx context.Context, fn func(tx exchange.Tx) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct{ db *gorm.DB }

func (t *gormTx) LockUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, exchange.ErrUserNotFound)
	}
	return &u, nil
}

func (t *gormTx) SaveCounters(ctx context.Context, u *models.User) error {
	err := t.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"campus_coins":   u.CampusCoins,
			"donation_score": u.DonationScore,
		}).Error
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return exchange.ErrInsufficientCoins
	}
	return err
}

func (t *gormTx) ActiveRequest(ctx context.Context, borrowerID, bookID string) (*models.BookRequest, error) {
	var rs []models.BookRequest
	if err := t.db.WithContext(ctx).
		Where("borrower_id = ? AND book_id = ? AND status <> ?", borrowerID, bookID, models.StatusRejected).
		Limit(1).
		Find(&rs).Error; err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, nil
	}
	return &rs[0], nil
}

func (t *gormTx) InsertRequest(ctx context.Context, req *models.BookRequest) error {
	err := t.db.WithContext(ctx).Create(req).Error
	// 部分唯一索引兜底
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return exchange.ErrDuplicateRequest
	}
	return err
}

func (t *gormTx) LockRequest(ctx context.Context, id string) (*models.BookRequest, error) {
	var req models.BookRequest
	if err := t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err, exchange.ErrRequestNotFound)
	}
	return &req, nil
}

func (t *gormTx) SaveStatus(ctx context.Context, req *models.BookRequest) error {
	return t.db.WithContext(ctx).Model(&models.BookRequest{}).
		Where("id = ?", req.ID).
		Update("status", req.Status).Error
}
