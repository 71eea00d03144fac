package controllers

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"campus_shelf/app"
	"campus_shelf/catalog"
	"campus_shelf/exchange"
	"campus_shelf/models"
	"campus_shelf/session"
	"campus_shelf/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HubController 校园圈 + 反馈
type HubController struct{ *Srv }

func NewHubController(s *Srv) *HubController { return &HubController{Srv: s} }

type peerView struct {
	models.User
	Connected bool `json:"connected"`
}

func (s *Srv) peers(c *gin.Context, query string) ([]peerView, error) {
	ctx := c.Request.Context()
	uid := userID(c)
	all, err := s.Users.ListPeers(ctx, uid)
	if err != nil {
		return nil, err
	}
	connected, err := s.Hub.ConnectedPeerIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	matched := catalog.FilterPeers(all, query)
	out := make([]peerView, 0, len(matched))
	for _, p := range matched {
		out = append(out, peerView{User: p, Connected: slices.Contains(connected, p.ID)})
	}
	return out, nil
}

// GET /api/hub/peers?q=
func (hc *HubController) Peers(c *gin.Context) {
	ps, err := hc.peers(c, c.Query("q"))
	if err != nil {
		hc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"peers": ps})
}

// POST /api/hub/peers/:id/connect 重复连接返回 200
func (hc *HubController) Connect(c *gin.Context) {
	peerID := c.Param("id")
	if _, err := uuid.Parse(peerID); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	if peerID == userID(c) {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot connect to yourself"})
		return
	}
	ctx := c.Request.Context()
	peer, err := hc.Users.FindUserByID(ctx, peerID)
	if err != nil {
		hc.fail(c, err)
		return
	}
	created, err := hc.Hub.Connect(ctx, userID(c), peerID)
	if err != nil {
		hc.fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, app.H{
		"connected":    true,
		"created":      created,
		"notification": exchange.Notification{Message: fmt.Sprintf("Connection request sent to %s!", peer.Name), Type: exchange.NoticeSuccess},
	})
}

// FeedbackCategories 反馈分类；Campus Specific 需要指定学校
var FeedbackCategories = []string{"Suggestion", models.CampusSpecific, "Praise"}

// POST /api/feedback
func (hc *HubController) Feedback(c *gin.Context) {
	var in struct {
		Category         string `json:"category" binding:"required,oneof=Suggestion 'Campus Specific' Praise"`
		Message          string `json:"message" binding:"required,max=4000"`
		TargetUniversity string `json:"targetUniversity" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	f := models.Feedback{
		ID:       uuid.NewString(),
		UserID:   userID(c),
		Category: in.Category,
		Message:  strings.TrimSpace(in.Message),
	}
	if in.Category == models.CampusSpecific {
		target := strings.TrimSpace(in.TargetUniversity)
		if target == "" {
			c.JSON(http.StatusBadRequest, app.H{"error": "target university is required", "fields": []string{"targetUniversity"}})
			return
		}
		f.TargetUniversity = &target
	}
	if f.Message == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "message is required", "fields": []string{"message"}})
		return
	}
	if err := hc.Hub.CreateFeedback(c.Request.Context(), &f); err != nil {
		hc.fail(c, err)
		return
	}
	// 提交后回到首页
	if _, err := hc.UI.Update(c.Request.Context(), sessionID(c), func(st *session.UIState) error {
		st.State = st.Navigate(views.Explore)
		return nil
	}); err != nil {
		hc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{
		"feedback":     f,
		"notification": exchange.Notification{Message: "Feedback received!", Type: exchange.NoticeSuccess},
	})
}
