// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"campus_shelf/app"
	"campus_shelf/assistant"
	"campus_shelf/catalog"
	"campus_shelf/db"
	"campus_shelf/exchange"
	"campus_shelf/models"
	"campus_shelf/profile"
	"campus_shelf/session"
	"campus_shelf/views"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Users 用户表上 handlers 需要的操作，*db.Repo 实现
type Users interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	TouchUserLogin(ctx context.Context, userID string) error
	ListPeers(ctx context.Context, excludeID string) ([]models.User, error)
}

type Books interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	CreateBook(ctx context.Context, b *models.Book) error
}

type RequestRows interface {
	ListRequestRows(ctx context.Context, q db.RequestRowsQuery) (*db.PagedRequestRows, error)
}

type Hub interface {
	CreateFeedback(ctx context.Context, f *models.Feedback) error
	Connect(ctx context.Context, userID, peerID string) (bool, error)
	ConnectedPeerIDs(ctx context.Context, userID string) ([]string, error)
}

type UIStates interface {
	Load(ctx context.Context, sid string) (session.UIState, error)
	Save(ctx context.Context, sid string, st session.UIState) error
	Update(ctx context.Context, sid string, fn func(st *session.UIState) error) (session.UIState, error)
}

type Sessions interface {
	Create(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	TTL() time.Duration
}

type Srv struct {
	Users    Users
	Books    Books
	Rows     RequestRows
	Hub      Hub
	Exchange *exchange.Service
	Profiles *profile.Store
	UI       UIStates
	Sessions Sessions
	AI       *assistant.Assistant
	Debounce *assistant.Debouncer
	Memo     *catalog.Memo
	Log      *zap.Logger

	SecureCookie bool
	now          func() time.Time
}

func GetSrv(a *app.App) *Srv {
	ttl := a.Config.Session.TTL
	return &Srv{
		Users:        a.Repo,
		Books:        a.Repo,
		Rows:         a.Repo,
		Hub:          a.Repo,
		Exchange:     exchange.NewService(a.Repo, a.Config.Rewards, a.Log.Named("exchange")),
		Profiles:     profile.NewStore(session.NewRedisKV(a.RDB, ttl), a.Repo, a.Log.Named("profile")),
		UI:           session.NewUIStore(a.RDB, ttl),
		Sessions:     session.NewAppSessionStore(a.RDB, ttl),
		AI:           assistant.New(a.AI, a.Log.Named("assistant")),
		Debounce:     assistant.NewDebouncer(a.Config.AI.Debounce),
		Memo:         &catalog.Memo{},
		Log:          a.Log,
		SecureCookie: a.Config.SecureCookies(),
		now:          time.Now,
	}
}

// --- helpers ---

func (s *Srv) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func userID(c *gin.Context) string    { return c.GetString(app.CtxUserID) }
func sessionID(c *gin.Context) string { return c.GetString(app.CtxSessionID) }

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.SecureCookie,
		MaxAge:   int(maxAge / time.Second),
	})
}

// currentUser 当前用户资料（持久化副本优先）
func (s *Srv) currentUser(c *gin.Context) (*models.User, bool) {
	u, err := s.Profiles.Current(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return u, true
}

// fail 把各包的哨兵错误映射成 HTTP 状态码
func (s *Srv) fail(c *gin.Context, err error) {
	var le *catalog.ListingError
	switch {
	case errors.As(err, &le):
		c.JSON(http.StatusBadRequest, app.H{"error": catalog.ErrInvalidListing.Error(), "fields": le.Fields})
	case errors.Is(err, exchange.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, app.H{
			"error":        err.Error(),
			"notification": exchange.Notification{Message: "You've already requested this book", Type: exchange.NoticeWarning},
		})
	case errors.Is(err, exchange.ErrBookNotFound),
		errors.Is(err, exchange.ErrRequestNotFound),
		errors.Is(err, exchange.ErrUserNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, exchange.ErrNotDonor):
		c.JSON(http.StatusForbidden, app.H{"error": err.Error()})
	case errors.Is(err, exchange.ErrOptionUnavailable),
		errors.Is(err, exchange.ErrInsufficientCoins),
		errors.Is(err, exchange.ErrInvalidTransition),
		errors.Is(err, profile.ErrNegativeCounter),
		errors.Is(err, db.ErrEmailTaken):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, views.ErrUnknownView),
		errors.Is(err, views.ErrUnknownSegment),
		errors.Is(err, session.ErrUnknownLanguage),
		errors.Is(err, session.ErrUnknownPalette):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	default:
		s.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
}
