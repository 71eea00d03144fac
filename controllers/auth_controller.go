package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"campus_shelf/app"
	"campus_shelf/exchange"
	"campus_shelf/models"
	"campus_shelf/profile"
	"campus_shelf/session"
	"campus_shelf/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// LoginColleges 登录页可选学校
var LoginColleges = []string{"MIT", "Stanford", "Harvard", "Delhi University"}

type loginIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	College  string `json:"college" binding:"omitempty,oneof=MIT Stanford Harvard 'Delhi University'"`
}

// POST /api/auth/login
// 首次登录即注册：默认资料 + 邮箱/学校
func (ac *AuthController) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(in.Email))

	u, err := ac.Users.FindUserByEmail(ctx, email)
	switch {
	case errors.Is(err, exchange.ErrUserNotFound):
		hash, herr := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if herr != nil {
			ac.fail(c, herr)
			return
		}
		nu := profile.FromLogin(profile.Default(), email, in.College)
		nu.ID = uuid.NewString()
		nu.PasswordHash = string(hash)
		if err := ac.Users.CreateUser(ctx, &nu); err != nil {
			ac.fail(c, err)
			return
		}
		ac.Log.Info("user registered", zap.String("user", nu.ID), zap.String("college", nu.College))
		u = &nu
	case err != nil:
		ac.fail(c, err)
		return
	default:
		if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": "invalid email or password"})
			return
		}
	}

	if err := ac.Users.TouchUserLogin(ctx, u.ID); err != nil {
		ac.Log.Warn("touch login", zap.String("user", u.ID), zap.Error(err)) // 不阻塞
	}
	sid := uuid.NewString()
	if err := ac.Sessions.Create(ctx, sid, u.ID); err != nil {
		ac.fail(c, err)
		return
	}
	st := session.DefaultUIState()
	st.IsLoggedIn = true
	if err := ac.UI.Save(ctx, sid, st); err != nil {
		ac.fail(c, err)
		return
	}
	if err := ac.Profiles.Replace(ctx, *u); err != nil {
		ac.Log.Warn("persist profile", zap.String("user", u.ID), zap.Error(err))
	}
	ac.setAppCookie(c.Writer, sid, ac.Sessions.TTL())
	c.JSON(http.StatusOK, app.H{
		"user":         u,
		"state":        st,
		"notification": exchange.Notification{Message: fmt.Sprintf("Welcome to Campus Shelf, %s!", u.Name), Type: exchange.NoticeSuccess},
	})
}

// POST /api/auth/logout?all=true 时撤销该用户所有设备上的会话
func (ac *AuthController) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("all") == "true" && userID(c) != "" {
		if err := ac.Sessions.RevokeAllForUser(ctx, userID(c)); err != nil {
			ac.fail(c, err)
			return
		}
	} else if sid := sessionID(c); sid != "" {
		if err := ac.Sessions.Delete(ctx, sid); err != nil {
			ac.Log.Warn("delete session", zap.Error(err))
		}
	}
	if uid := userID(c); uid != "" {
		_ = ac.Profiles.Forget(ctx, uid)
	}
	ac.setAppCookie(c.Writer, "", -1)
	c.JSON(http.StatusOK, app.H{
		"ok":           true,
		"state":        views.State{View: views.Login, Segment: views.Buyer},
		"notification": exchange.Notification{Message: "Logged out successfully", Type: exchange.NoticeInfo},
	})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	u, ok := ac.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

type profileIn struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=255"`
	College        *string `json:"college" binding:"omitempty,min=1,max=255"`
	Branch         *string `json:"branch" binding:"omitempty,max=255"`
	Year           *string `json:"year" binding:"omitempty,max=64"`
	PhoneNumber    *string `json:"phoneNumber" binding:"omitempty,max=32"`
	AltPhoneNumber *string `json:"altPhoneNumber" binding:"omitempty,max=32"`
}

// PUT /api/profile 只改资料字段，计数器不可由客户端修改
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var in profileIn
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	u, err := ac.Profiles.Update(c.Request.Context(), userID(c), func(u *models.User) error {
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = strings.TrimSpace(*v)
			}
		}
		set(&u.Name, in.Name)
		set(&u.College, in.College)
		set(&u.Branch, in.Branch)
		set(&u.Year, in.Year)
		set(&u.PhoneNumber, in.PhoneNumber)
		set(&u.AltPhoneNumber, in.AltPhoneNumber)
		return nil
	})
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}
