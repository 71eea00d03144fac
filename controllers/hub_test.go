package controllers

import (
	"net/http"
	"testing"

	"campus_shelf/catalog"
	"campus_shelf/exchange"
	"campus_shelf/models"
	"campus_shelf/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeers_SearchAndConnect(t *testing.T) {
	h := newHarness(t, nil)
	sarah := catalog.MockPeers()[0]

	rec := h.do(t, http.MethodPost, "/api/hub/peers/"+sarah.ID+"/connect", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[struct {
		Notification exchange.Notification `json:"notification"`
	}](t, rec)
	assert.Equal(t, "Connection request sent to Sarah Miller!", body.Notification.Message)

	rec = h.do(t, http.MethodPost, "/api/hub/peers/"+sarah.ID+"/connect", "")
	assert.Equal(t, http.StatusOK, rec.Code, "repeat connect is idempotent")

	got := decode[struct {
		Peers []struct {
			ID        string `json:"id"`
			Connected bool   `json:"connected"`
		} `json:"peers"`
	}](t, h.do(t, http.MethodGet, "/api/hub/peers?q=archi", ""))
	require.Len(t, got.Peers, 1)
	assert.Equal(t, sarah.ID, got.Peers[0].ID)
	assert.True(t, got.Peers[0].Connected)
}

func TestPeers_ConnectRejectsSelfAndUnknown(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/hub/peers/"+testUser+"/connect", "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/hub/peers/not-a-uuid/connect", "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/api/hub/peers/6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1affff/connect", "").Code)
	assert.Empty(t, h.repo.conns)
}

func TestFeedback(t *testing.T) {
	h := newHarness(t, nil)
	h.do(t, http.MethodPut, "/api/state", `{"view":"FEEDBACK"}`)

	rec := h.do(t, http.MethodPost, "/api/feedback", `{"category":"Campus Specific","message":"More CS books please"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "targetUniversity")

	rec = h.do(t, http.MethodPost, "/api/feedback", `{"category":"Complaint","message":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.repo.feedback)

	rec = h.do(t, http.MethodPost, "/api/feedback", `{"category":"Campus Specific","message":"More CS books please","targetUniversity":" Stanford "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, h.repo.feedback, 1)
	f := h.repo.feedback[0]
	assert.Equal(t, testUser, f.UserID)
	require.NotNil(t, f.TargetUniversity)
	assert.Equal(t, "Stanford", *f.TargetUniversity)
	assert.Equal(t, views.Explore, h.ui.states[testSID].View)

	// 非 Campus Specific 不记录学校
	rec = h.do(t, http.MethodPost, "/api/feedback", `{"category":"Praise","message":"Love it","targetUniversity":"MIT"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, h.repo.feedback[1].TargetUniversity)
	assert.Equal(t, models.CampusSpecific, f.Category)
}
