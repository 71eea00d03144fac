package controllers

import (
	"fmt"
	"net/http"

	"campus_shelf/models"

	"github.com/gin-gonic/gin"
)

// CoinStatus 金币进度：达到 AcquireCost 即解锁 70% 折扣
type CoinStatus struct {
	Coins          int    `json:"coins"`
	DonationScore  int    `json:"donationScore"`
	Threshold      int    `json:"threshold"`
	CoinsAway      int    `json:"coinsAway"`
	Progress       int    `json:"progress"` // 0..100
	DiscountActive bool   `json:"discountActive"`
	Message        string `json:"message"`
}

func coinStatus(u models.User, threshold int) CoinStatus {
	cs := CoinStatus{Coins: u.CampusCoins, DonationScore: u.DonationScore, Threshold: threshold}
	if threshold <= 0 || u.CampusCoins >= threshold {
		cs.DiscountActive = true
		cs.Progress = 100
		cs.Message = "Discount Activated! 70% Off your next purchase."
		return cs
	}
	cs.CoinsAway = threshold - u.CampusCoins
	cs.Progress = u.CampusCoins * 100 / threshold
	cs.Message = fmt.Sprintf("You are %d coins away from 70%% discount.", cs.CoinsAway)
	return cs
}

// GET /api/coins
func (s *Srv) Coins(c *gin.Context) {
	u, ok := s.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, coinStatus(*u, s.Exchange.Rewards().AcquireCost))
}
