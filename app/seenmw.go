package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type SeenToucher interface {
	TouchUserSeen(ctx context.Context, userID string) error
}

// TouchLastSeen 每个用户每 throttle 最多写一次 last_seen_at
func TouchLastSeen(repo SeenToucher, rdb *redis.Client, throttle time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserID)
		if uid == "" {
			c.Next()
			return
		}

		key := "user:lastseen:" + uid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			if err := repo.TouchUserSeen(c, uid); err != nil {
				// 不阻塞请求
				log.Warn("touch last seen", zap.String("user", uid), zap.Error(err))
			}
		}
		c.Next()
	}
}
