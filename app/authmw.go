package app

import (
	"net/http"

	"campus_shelf/db"
	"campus_shelf/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// gin.Context 里的键
const (
	CtxUserID    = "userID"
	CtxSessionID = "sessionID"
	CtxUserName  = "userName"
)

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认用户仍存在
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set(CtxUserID, as.UserID)
		c.Set(CtxSessionID, ck.Value)
		c.Set(CtxUserName, u.Name)

		c.Next()
	}
}
