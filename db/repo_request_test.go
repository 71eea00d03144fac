package db

import (
	"context"
	"testing"

	"campus_shelf/exchange"
	"campus_shelf/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryDB 不连库的 postgres 会话；inject 在对应回调之前塞入驱动错误，
// 和真实连接一样经过 TranslateError
func dryDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=x dbname=x sslmode=disable"), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return gdb
}

func inject(t *testing.T, gdb *gorm.DB, err error) {
	t.Helper()
	fn := func(tx *gorm.DB) { tx.AddError(err) }
	require.NoError(t, gdb.Callback().Create().Before("gorm:create").Register("test:inject", fn))
	require.NoError(t, gdb.Callback().Update().Before("gorm:update").Register("test:inject", fn))
	require.NoError(t, gdb.Callback().Query().Before("gorm:query").Register("test:inject", fn))
}

func TestInsertRequest_UniqueViolationIsDuplicate(t *testing.T) {
	gdb := dryDB(t)
	inject(t, gdb, &pgconn.PgError{Code: "23505", ConstraintName: "shelf_requests_one_active_per_pair"})
	tx := &gormTx{db: gdb}

	err := tx.InsertRequest(context.Background(), &models.BookRequest{ID: "req_1", BookID: "book_1", BorrowerID: "u1", Status: models.StatusPending})
	assert.ErrorIs(t, err, exchange.ErrDuplicateRequest)
}

func TestSaveCounters_CheckViolationIsInsufficientCoins(t *testing.T) {
	gdb := dryDB(t)
	inject(t, gdb, &pgconn.PgError{Code: "23514", ConstraintName: "chk_users_campus_coins"})
	tx := &gormTx{db: gdb}

	err := tx.SaveCounters(context.Background(), &models.User{ID: "u1", CampusCoins: -1})
	assert.ErrorIs(t, err, exchange.ErrInsufficientCoins)
}

func TestGormTx_OtherDriverErrorsPassThrough(t *testing.T) {
	gdb := dryDB(t)
	inject(t, gdb, &pgconn.PgError{Code: "40001"})
	tx := &gormTx{db: gdb}
	ctx := context.Background()

	err := tx.InsertRequest(ctx, &models.BookRequest{ID: "req_1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, exchange.ErrDuplicateRequest)

	err = tx.SaveCounters(ctx, &models.User{ID: "u1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, exchange.ErrInsufficientCoins)
}

func TestGormTx_LockMissingRowsMapToSentinels(t *testing.T) {
	gdb := dryDB(t)
	inject(t, gdb, gorm.ErrRecordNotFound)
	tx := &gormTx{db: gdb}
	ctx := context.Background()

	_, err := tx.LockUser(ctx, "ghost")
	assert.ErrorIs(t, err, exchange.ErrUserNotFound)
	_, err = tx.LockRequest(ctx, "req_ghost")
	assert.ErrorIs(t, err, exchange.ErrRequestNotFound)
}

func TestInsertRequest_NoErrorInDryRun(t *testing.T) {
	tx := &gormTx{db: dryDB(t)}
	err := tx.InsertRequest(context.Background(), &models.BookRequest{ID: "req_1", BookID: "book_1", BorrowerID: "u1", Status: models.StatusPending})
	assert.NoError(t, err)
}
