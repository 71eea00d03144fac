package db

import (
	"context"

	"campus_shelf/models"

	"gorm.io/gorm/clause"
)

func (r *Repo) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	return r.DB.WithContext(ctx).Create(f).Error
}

// Connect 幂等：同一对用户重复连接不报错，created 表示是否新建
func (r *Repo) Connect(ctx context.Context, userID, peerID string) (created bool, err error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Connection{UserID: userID, PeerID: peerID})
	return res.RowsAffected > 0, res.Error
}

// ConnectedPeerIDs 当前用户已连接的同伴
func (r *Repo) ConnectedPeerIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.DB.WithContext(ctx).Model(&models.Connection{}).
		Where("user_id = ?", userID).
		Pluck("peer_id", &ids).Error
	return ids, err
}
