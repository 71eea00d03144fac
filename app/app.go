package app

import (
	"context"
	"time"

	"campus_shelf/assistant"
	"campus_shelf/config"
	"campus_shelf/db"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Repo   *db.Repo
	Log    *zap.Logger
	Config *config.Config

	// AI 为 nil 表示未配置 API key，助手只返回兜底文案
	AI assistant.Generator
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	// --- DB: Postgres ---
	conn, err := db.Connect(cfg.Postgres, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}

	// --- AI ---
	var gen assistant.Generator
	if cfg.AI.APIKey != "" {
		g, err := assistant.NewGenAI(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, err
		}
		gen = g
	} else {
		log.Warn("ai api key not set, assistant runs on fallbacks")
	}

	// --- Gin ---
	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log))
	useCORS(r, cfg.HTTP.WebOrigin)

	return &App{
		Router: r, DB: conn, RDB: rdb, Repo: db.NewRepo(conn),
		Log: log, Config: cfg, AI: gen,
	}, nil
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Log.Sync()
}
