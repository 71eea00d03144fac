package controllers

import (
	"campus_shelf/app"
	"campus_shelf/assistant"
	"campus_shelf/catalog"
	"campus_shelf/models"
	"campus_shelf/session"
	"campus_shelf/views"

	"github.com/gin-gonic/gin"
)

// panelVisitor 为每个 view 组装面板数据
type panelVisitor struct {
	*Srv
	c  *gin.Context
	st session.UIState
}

var _ views.Visitor[app.H] = (*panelVisitor)(nil)

func (p *panelVisitor) user() (*models.User, error) {
	return p.Profiles.Current(p.c.Request.Context(), userID(p.c))
}

func (p *panelVisitor) Login() (app.H, error) {
	return app.H{"loggedIn": p.st.IsLoggedIn, "colleges": LoginColleges}, nil
}

func (p *panelVisitor) Explore(seg views.Segment) (app.H, error) {
	u, err := p.user()
	if err != nil {
		return nil, err
	}
	st := p.st
	st.Segment = seg
	books, err := p.visibleBooks(p.c, st, u)
	if err != nil {
		return nil, err
	}
	return app.H{
		"filterCollege": st.FilterCollege,
		"searchQuery":   st.SearchQuery,
		"total":         len(books),
		"books":         withDiscount(books),
	}, nil
}

func (p *panelVisitor) MyRequests() (app.H, error) {
	reqs, err := p.Exchange.ListMine(p.c.Request.Context(), userID(p.c))
	if err != nil {
		return nil, err
	}
	return app.H{"total": len(reqs), "requests": reqs}, nil
}

func (p *panelVisitor) MyListings() (app.H, error) {
	books, err := p.Books.ListBooks(p.c.Request.Context())
	if err != nil {
		return nil, err
	}
	mine := catalog.OwnListings(books, userID(p.c))
	return app.H{"total": len(mine), "books": withDiscount(mine)}, nil
}

func (p *panelVisitor) Profile() (app.H, error) {
	u, err := p.user()
	if err != nil {
		return nil, err
	}
	return app.H{"user": u}, nil
}

func (p *panelVisitor) AddBook() (app.H, error) {
	return app.H{
		"conditions": []models.BookCondition{
			models.ConditionNew, models.ConditionLikeNew, models.ConditionGood, models.ConditionFair, models.ConditionPoor,
		},
		"required":    []string{"title", "author", "branch", "area", "phoneNumber", "contactNumber", "imageUrl"},
		"aiCondition": p.AI.Enabled(),
	}, nil
}

func (p *panelVisitor) Feedback() (app.H, error) {
	return app.H{"categories": FeedbackCategories}, nil
}

func (p *panelVisitor) Settings() (app.H, error) {
	return app.H{
		"prefs":     p.st.Prefs,
		"palettes":  session.Palettes,
		"languages": session.Languages,
	}, nil
}

func (p *panelVisitor) LanguagePicker() (app.H, error) {
	return app.H{"current": p.st.Language, "languages": session.Languages}, nil
}

func (p *panelVisitor) aiPanel() app.H {
	return app.H{"enabled": p.AI.Enabled(), "minQuery": assistant.MinSuggestQuery}
}

func (p *panelVisitor) AISuggest() (app.H, error)   { return p.aiPanel(), nil }
func (p *panelVisitor) BookPreview() (app.H, error) { return p.aiPanel(), nil }
func (p *panelVisitor) EBooks() (app.H, error)      { return p.aiPanel(), nil }
func (p *panelVisitor) AIAssistant() (app.H, error) { return p.aiPanel(), nil }

func (p *panelVisitor) CampusHub() (app.H, error) {
	ps, err := p.peers(p.c, "")
	if err != nil {
		return nil, err
	}
	return app.H{"total": len(ps), "peers": ps}, nil
}

func (p *panelVisitor) CampusCoin() (app.H, error) {
	u, err := p.user()
	if err != nil {
		return nil, err
	}
	return app.H{"coins": coinStatus(*u, p.Exchange.Rewards().AcquireCost)}, nil
}
