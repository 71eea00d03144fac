//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"campus_shelf/exchange"
	"campus_shelf/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SHELF_TEST_DSN 指向一个可写的测试库，例如
// host=localhost user=postgres password=postgres dbname=shelf_test port=5432 sslmode=disable
func openTestDB(t *testing.T) *Repo {
	t.Helper()
	dsn := os.Getenv("SHELF_TEST_DSN")
	if dsn == "" {
		t.Skip("SHELF_TEST_DSN not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true, Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))
	return NewRepo(gdb)
}

func TestIntegration_PairIndexAndCoinCheck(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	u := &models.User{ID: uuid.NewString(), Name: "Ada", Email: uuid.NewString() + "@mit.edu", College: "MIT", CampusCoins: 1}
	require.NoError(t, repo.CreateUser(ctx, u))
	bookID := "book_it_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		repo.DB.Where("borrower_id = ?", u.ID).Delete(&models.BookRequest{})
		repo.DB.Delete(&models.User{}, "id = ?", u.ID)
	})

	req := func(id string) *models.BookRequest {
		return &models.BookRequest{ID: id, BookID: bookID, BorrowerID: u.ID, DonorID: "donor", Status: models.StatusPending, Timestamp: time.Now()}
	}

	err := repo.WithTx(ctx, func(tx exchange.Tx) error { return tx.InsertRequest(ctx, req("req_it_a_"+u.ID[:8])) })
	require.NoError(t, err)

	// 绕过 ActiveRequest 直接插第二条，索引拦下
	err = repo.WithTx(ctx, func(tx exchange.Tx) error { return tx.InsertRequest(ctx, req("req_it_b_"+u.ID[:8])) })
	assert.ErrorIs(t, err, exchange.ErrDuplicateRequest)

	// 被拒绝后同一对可以再请求
	require.NoError(t, repo.DB.Model(&models.BookRequest{}).Where("id = ?", "req_it_a_"+u.ID[:8]).Update("status", models.StatusRejected).Error)
	err = repo.WithTx(ctx, func(tx exchange.Tx) error { return tx.InsertRequest(ctx, req("req_it_c_"+u.ID[:8])) })
	assert.NoError(t, err)

	err = repo.WithTx(ctx, func(tx exchange.Tx) error {
		locked, err := tx.LockUser(ctx, u.ID)
		if err != nil {
			return err
		}
		locked.CampusCoins = -5
		return tx.SaveCounters(ctx, locked)
	})
	assert.ErrorIs(t, err, exchange.ErrInsufficientCoins)

	got, err := repo.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CampusCoins)
}
