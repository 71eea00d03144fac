package db

import (
	"context"

	"campus_shelf/exchange"
	"campus_shelf/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEmailTaken = errors.New("email already registered")

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// notFound 把 gorm 的 ErrRecordNotFound 换成业务哨兵错误
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// Users

func (r *Repo) TouchUserLogin(ctx context.Context, userID string) error {
	// 用数据库时间更准，且避免并发覆盖：NOW() + 计数自增
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"last_login_at": gorm.Expr("NOW()"),
			"last_seen_at":  gorm.Expr("NOW()"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, exchange.ErrUserNotFound)
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err, exchange.ErrUserNotFound)
	}
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

// UpdateUser 行锁读出用户，fn 修改后整行写回；fn 出错则回滚
func (r *Repo) UpdateUser(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&u, "id = ?", id).Error; err != nil {
			return notFound(err, exchange.ErrUserNotFound)
		}
		if err := fn(&u); err != nil {
			return err
		}
		u.ID = id
		return tx.Save(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListPeers 校园圈：除自己以外的用户，按名字排序
func (r *Repo) ListPeers(ctx context.Context, excludeID string) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Where("id <> ?", excludeID).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

// SeedUsers 已存在的 id/email 跳过
func (r *Repo) SeedUsers(ctx context.Context, users []models.User) (int64, error) {
	if len(users) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&users)
	return res.RowsAffected, res.Error
}
