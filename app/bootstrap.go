package app

import (
	"context"

	"campus_shelf/catalog"
	"campus_shelf/db"

	"go.uber.org/zap"
)

// SeedCatalog 写入示例同伴和书目，已存在的记录跳过
func SeedCatalog(ctx context.Context, repo *db.Repo, log *zap.Logger) error {
	users, err := repo.SeedUsers(ctx, catalog.MockPeers())
	if err != nil {
		return err
	}
	books, err := repo.SeedBooks(ctx, catalog.MockBooks())
	if err != nil {
		return err
	}
	log.Info("seed catalog", zap.Int64("users", users), zap.Int64("books", books))
	return nil
}
