package controllers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"campus_shelf/app"
	"campus_shelf/assistant"
	"campus_shelf/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type AssistantController struct{ *Srv }

func NewAssistantController(s *Srv) *AssistantController { return &AssistantController{Srv: s} }

// chatContext context 为空时用当前用户资料描述
func chatContext(u models.User) string {
	return fmt.Sprintf("User is %s from %s, branch %s", u.Name, u.College, u.Branch)
}

// POST /api/assistant/chat {message, context}
func (ac *AssistantController) Chat(c *gin.Context) {
	var in struct {
		Message string `json:"message" binding:"required,max=4000"`
		Context string `json:"context" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if in.Context == "" {
		if u, err := ac.Profiles.Current(c.Request.Context(), userID(c)); err == nil {
			in.Context = chatContext(*u)
		}
	}
	c.JSON(http.StatusOK, app.H{"reply": ac.AI.Chat(c.Request.Context(), in.Message, in.Context)})
}

// GET /api/assistant/suggestions?q=
// 同一会话 500ms 内的新请求会让旧请求返回 204
func (ac *AssistantController) Suggestions(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len([]rune(q)) < assistant.MinSuggestQuery {
		c.JSON(http.StatusOK, app.H{"suggestions": []string{}})
		return
	}
	if err := ac.Debounce.Wait(c.Request.Context(), sessionID(c)); err != nil {
		if errors.Is(err, assistant.ErrSuperseded) {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusRequestTimeout)
		return
	}
	c.JSON(http.StatusOK, app.H{"suggestions": ac.AI.SearchSuggestions(c.Request.Context(), q)})
}

// POST /api/assistant/recommend {course, semester}
func (ac *AssistantController) Recommend(c *gin.Context) {
	var in struct {
		Course   string `json:"course" binding:"required"`
		Semester string `json:"semester" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "Please fill all fields"})
		return
	}
	c.JSON(http.StatusOK, app.H{"recommendation": ac.AI.Recommend(c.Request.Context(), in.Course, in.Semester)})
}

// POST /api/assistant/preview {title}
func (ac *AssistantController) Preview(c *gin.Context) {
	var in struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"preview": ac.AI.Preview(c.Request.Context(), in.Title)})
}

// POST /api/assistant/ebooks {subject, semester}
func (ac *AssistantController) EBooks(c *gin.Context) {
	var in struct {
		Subject  string `json:"subject" binding:"required"`
		Semester string `json:"semester" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "Please fill all fields"})
		return
	}
	c.JSON(http.StatusOK, app.H{"resources": ac.AI.EBooks(c.Request.Context(), in.Subject, in.Semester)})
}

// POST /api/assistant/icebreaker {interest, branch}；branch 缺省取当前用户
func (ac *AssistantController) Icebreaker(c *gin.Context) {
	var in struct {
		Interest string `json:"interest" binding:"required"`
		Branch   string `json:"branch"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if in.Branch == "" {
		if u, err := ac.Profiles.Current(c.Request.Context(), userID(c)); err == nil {
			in.Branch = u.Branch
		}
	}
	c.JSON(http.StatusOK, app.H{"tip": ac.AI.Icebreaker(c.Request.Context(), in.Branch, in.Interest)})
}

// POST /api/assistant/condition {image(base64), mimeType}
func (ac *AssistantController) Condition(c *gin.Context) {
	var in struct {
		Image    string `json:"image" binding:"required"`
		MimeType string `json:"mimeType"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	data := in.Image
	// 兼容 data URL
	if i := strings.Index(data, ";base64,"); i >= 0 {
		if in.MimeType == "" {
			in.MimeType = strings.TrimPrefix(data[:i], "data:")
		}
		data = data[i+len(";base64,"):]
	}
	img, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "image must be base64"})
		return
	}
	c.JSON(http.StatusOK, app.H{"analysis": ac.AI.AnalyzeCondition(c.Request.Context(), img, in.MimeType)})
}

// POST /api/assistant/libraries {latitude, longitude}
func (ac *AssistantController) Libraries(c *gin.Context) {
	var in struct {
		Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
		Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, ac.AI.NearbyLibraries(c.Request.Context(), *in.Latitude, *in.Longitude))
}
