package db

import (
	"fmt"

	"campus_shelf/config"
	"campus_shelf/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect 打开 Postgres；TranslateError 让唯一索引冲突变成 gorm.ErrDuplicatedKey
func Connect(cfg config.Postgres, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         NewGormLogger(log, cfg.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	log.Info("database connected", zap.String("host", cfg.Host), zap.String("db", cfg.DBName))
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Book{}, &models.BookRequest{}, &models.Feedback{}, &models.Connection{}); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	// 同一借书人对同一本书最多一条未被拒绝的请求
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_pair
	  ON %s (borrower_id, book_id)
	  WHERE status <> 'REJECTED';
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return errors.Wrap(err, "create pair index")
	}

	// 捐书人查看收到的请求
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_donor_ts_desc
	  ON %s (donor_id, timestamp DESC);
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return errors.Wrap(err, "create donor index")
	}

	return nil
}
