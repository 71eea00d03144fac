package controllers

import (
	"context"
	"net/http"
	"strconv"

	"campus_shelf/app"
	"campus_shelf/db"
	"campus_shelf/exchange"
	"campus_shelf/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// bindOptions body 可为空
func bindOptions(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

// afterExchange 交易改了计数器，从库里重读并刷新持久化的资料副本
func (s *Srv) afterExchange(ctx context.Context, uid string) {
	if _, err := s.Profiles.Refresh(ctx, uid); err != nil {
		s.Log.Warn("refresh profile", zap.String("user", uid), zap.Error(err))
	}
}

// POST /api/books/:id/request
func (rc *RequestController) Request(c *gin.Context) {
	var opts exchange.RequestOptions
	if !bindOptions(c, &opts) {
		return
	}
	res, err := rc.Exchange.RequestBook(c.Request.Context(), userID(c), c.Param("id"), opts)
	if err != nil {
		rc.fail(c, err)
		return
	}
	rc.afterExchange(c.Request.Context(), userID(c))
	c.JSON(http.StatusCreated, res)
}

// GET /api/books/:id/offer
func (rc *RequestController) Offer(c *gin.Context) {
	u, ok := rc.currentUser(c)
	if !ok {
		return
	}
	o, err := rc.Exchange.Offer(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// POST /api/books/:id/acquire {choice, ...options}
func (rc *RequestController) Acquire(c *gin.Context) {
	var in struct {
		Choice exchange.Choice `json:"choice" binding:"required,oneof=COINS DISCOUNT"`
		exchange.RequestOptions
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := rc.Exchange.Acquire(c.Request.Context(), userID(c), c.Param("id"), in.Choice, in.RequestOptions)
	if err != nil {
		rc.fail(c, err)
		return
	}
	rc.afterExchange(c.Request.Context(), userID(c))
	c.JSON(http.StatusCreated, res)
}

// GET /api/requests 我发出的请求
func (rc *RequestController) Mine(c *gin.Context) {
	reqs, err := rc.Exchange.ListMine(c.Request.Context(), userID(c))
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": reqs})
}

// GET /api/requests/incoming?status=&q=&page=&size=
func (rc *RequestController) Incoming(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	res, err := rc.Rows.ListRequestRows(c.Request.Context(), db.RequestRowsQuery{
		DonorID: userID(c),
		Status:  c.Query("status"),
		Q:       c.Query("q"),
		Page:    page,
		Size:    size,
	})
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /api/requests/:id {status}
func (rc *RequestController) SetStatus(c *gin.Context) {
	var in struct {
		Status models.RequestStatus `json:"status" binding:"required,oneof=ACCEPTED REJECTED"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	r, err := rc.Exchange.SetStatus(c.Request.Context(), userID(c), c.Param("id"), in.Status)
	if err != nil {
		rc.fail(c, err)
		return
	}
	if in.Status == models.StatusAccepted {
		// 捐书人 donationScore 变了
		rc.afterExchange(c.Request.Context(), userID(c))
	}
	c.JSON(http.StatusOK, app.H{"request": r})
}
