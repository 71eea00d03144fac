package controllers

import (
	"net/http"

	"campus_shelf/app"
	"campus_shelf/session"
	"campus_shelf/views"

	"github.com/gin-gonic/gin"
)

// StateController 当前会话的 view/segment/筛选条件与偏好
type StateController struct{ *Srv }

func NewStateController(s *Srv) *StateController { return &StateController{Srv: s} }

// GET /api/state
func (sc *StateController) Get(c *gin.Context) {
	st, err := sc.UI.Load(c.Request.Context(), sessionID(c))
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type stateIn struct {
	View          *string `json:"view"`
	Segment       *string `json:"segment"`
	FilterCollege *bool   `json:"filterCollege"`
	SearchQuery   *string `json:"searchQuery" binding:"omitempty,max=200"`
}

// applyState 先切 segment（会重置落地页），再应用显式 view
func applyState(st *session.UIState, in stateIn) error {
	if in.Segment != nil {
		seg, err := views.ParseSegment(*in.Segment)
		if err != nil {
			return err
		}
		st.State = st.SwitchSegment(seg)
	}
	if in.View != nil {
		v, err := views.ParseView(*in.View)
		if err != nil {
			return err
		}
		st.State = st.Navigate(v)
	}
	if in.FilterCollege != nil {
		st.FilterCollege = *in.FilterCollege
	}
	if in.SearchQuery != nil {
		st.SearchQuery = *in.SearchQuery
	}
	return nil
}

func (sc *StateController) update(c *gin.Context, in stateIn) {
	st, err := sc.UI.Update(c.Request.Context(), sessionID(c), func(st *session.UIState) error {
		return applyState(st, in)
	})
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PUT /api/state
func (sc *StateController) Put(c *gin.Context) {
	var in stateIn
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	sc.update(c, in)
}

// POST /api/state/segment {segment}
func (sc *StateController) SwitchSegment(c *gin.Context) {
	var in struct {
		Segment string `json:"segment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	sc.update(c, stateIn{Segment: &in.Segment})
}

// POST /api/state/view {view}
func (sc *StateController) Navigate(c *gin.Context) {
	var in struct {
		View string `json:"view" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	sc.update(c, stateIn{View: &in.View})
}

// GET /api/prefs
func (sc *StateController) GetPrefs(c *gin.Context) {
	st, err := sc.UI.Load(c.Request.Context(), sessionID(c))
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Prefs)
}

// PUT /api/prefs；isLoggedIn 只由登录/登出改变
func (sc *StateController) PutPrefs(c *gin.Context) {
	var in struct {
		DarkMode     *bool   `json:"darkMode"`
		Language     *string `json:"language"`
		ThemePalette *string `json:"themePalette"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	st, err := sc.UI.Update(c.Request.Context(), sessionID(c), func(st *session.UIState) error {
		if in.Language != nil {
			l, err := session.ParseLanguage(*in.Language)
			if err != nil {
				return err
			}
			st.Language = l
		}
		if in.ThemePalette != nil {
			p, err := session.ParsePalette(*in.ThemePalette)
			if err != nil {
				return err
			}
			st.ThemePalette = p
		}
		if in.DarkMode != nil {
			st.DarkMode = *in.DarkMode
		}
		return nil
	})
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st.Prefs)
}

// GET /api/view 按当前 view 返回对应面板的数据
func (sc *StateController) View(c *gin.Context) {
	st, err := sc.UI.Load(c.Request.Context(), sessionID(c))
	if err != nil {
		sc.fail(c, err)
		return
	}
	panel, err := views.Dispatch[app.H](st.State, &panelVisitor{Srv: sc.Srv, c: c, st: st})
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"view": st.View, "segment": st.Segment, "panel": panel})
}
