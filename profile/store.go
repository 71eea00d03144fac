// Package profile keeps exactly one current-user record per user: a persisted
// JSON copy backed by the source of record.
package profile

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"campus_shelf/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// Source 数据库里的用户记录；UpdateUser 需在行锁事务里执行 fn
type Source interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error)
}

var ErrNegativeCounter = errors.New("campus coins and donation score must stay non-negative")

func key(id string) string { return "shelf:profile:" + id }

// Default 首次登录时的固定默认资料
func Default() models.User {
	return models.User{
		Name:    "Campus Reader",
		College: "MIT",
		Branch:  "Computer Science",
		Year:    "2nd Year",
		Role:    models.RoleStudent,
	}
}

// FromLogin 默认资料 + 登录邮箱/学校，名字取邮箱前缀并首字母大写
func FromLogin(base models.User, email, college string) models.User {
	u := base
	u.Email = strings.ToLower(strings.TrimSpace(email))
	if c := strings.TrimSpace(college); c != "" {
		u.College = c
	}
	local, _, _ := strings.Cut(u.Email, "@")
	if r, size := utf8.DecodeRuneInString(local); r != utf8.RuneError {
		u.Name = string(unicode.ToTitle(r)) + local[size:]
	}
	return u
}

func Encode(u models.User) (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", errors.Wrap(err, "encode profile")
	}
	return string(b), nil
}

func Decode(s string) (models.User, error) {
	var u models.User
	if err := json.Unmarshal([]byte(s), &u); err != nil {
		return models.User{}, errors.Wrap(err, "decode profile")
	}
	if u.ID == "" {
		return models.User{}, errors.New("decode profile: missing id")
	}
	return u, nil
}

type Store struct {
	kv  KV
	src Source
	log *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(kv KV, src Source, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, src: src, log: log, locks: map[string]*sync.Mutex{}}
}

func (s *Store) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Current 先读持久化副本；缺失或损坏时回源并重写副本
func (s *Store) Current(ctx context.Context, id string) (*models.User, error) {
	raw, ok, err := s.kv.Get(ctx, key(id))
	if err != nil {
		s.log.Warn("profile cache read failed", zap.String("user", id), zap.Error(err))
	}
	if ok {
		u, err := Decode(raw)
		if err == nil && u.ID == id {
			return &u, nil
		}
		s.log.Warn("discarding malformed profile", zap.String("user", id), zap.Error(err))
	}
	u, err := s.src.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Replace(ctx, *u); err != nil {
		s.log.Warn("profile persist failed", zap.String("user", id), zap.Error(err))
	}
	return u, nil
}

// Replace 整条记录覆盖写
func (s *Store) Replace(ctx context.Context, u models.User) error {
	raw, err := Encode(u)
	if err != nil {
		return err
	}
	return errors.Wrap(s.kv.Set(ctx, key(u.ID), raw), "persist profile")
}

// Update serializes writers per user, applies fn inside the source's locked
// transaction, then re-persists the whole record.
func (s *Store) Update(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	u, err := s.src.UpdateUser(ctx, id, func(u *models.User) error {
		if err := fn(u); err != nil {
			return err
		}
		if u.CampusCoins < 0 || u.DonationScore < 0 {
			return ErrNegativeCounter
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.Replace(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

// Refresh re-reads the source of record under the per-user lock and persists
// it. Callers that changed counters in their own transaction use this instead
// of Replace so an older snapshot never overwrites a newer one.
func (s *Store) Refresh(ctx context.Context, id string) (*models.User, error) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	u, err := s.src.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Replace(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

// Forget 删除持久化副本（登出/外部改动后）
func (s *Store) Forget(ctx context.Context, id string) error {
	return s.kv.Del(ctx, key(id))
}
