package db

import (
	"context"

	"campus_shelf/exchange"
	"campus_shelf/models"

	"gorm.io/gorm/clause"
)

func (r *Repo) FindBook(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, exchange.ErrBookNotFound)
	}
	return &b, nil
}

// ListBooks 整个目录，最新的在前
func (r *Repo) ListBooks(ctx context.Context) ([]models.Book, error) {
	books := []models.Book{}
	err := r.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&books).Error
	return books, err
}

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) SeedBooks(ctx context.Context, books []models.Book) (int64, error) {
	if len(books) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&books)
	return res.RowsAffected, res.Error
}
