package controllers

import (
	"net/http"

	"campus_shelf/app"
	"campus_shelf/catalog"
	"campus_shelf/exchange"
	"campus_shelf/models"
	"campus_shelf/session"
	"campus_shelf/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

// visibleBooks 当前会话状态下可见的书；卖家只看自己的上架
func (s *Srv) visibleBooks(c *gin.Context, st session.UIState, u *models.User) ([]models.Book, error) {
	ctx := c.Request.Context()
	books, err := s.Books.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	if st.Segment == views.Seller {
		return catalog.OwnListings(books, u.ID), nil
	}
	var accepted []string
	if st.Segment == views.Library {
		reqs, err := s.Exchange.ListMine(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		accepted = catalog.AcceptedBookIDs(reqs, u.ID)
	}
	return s.Memo.FilterSort(books, catalog.Filter{
		Segment:         st.Segment,
		FilterCollege:   st.FilterCollege,
		UserCollege:     u.College,
		AcceptedBookIDs: accepted,
		Query:           st.SearchQuery,
	}), nil
}

// GET /api/books?q=
// q 存在时覆盖并保存会话里的搜索词
func (bc *BookController) List(c *gin.Context) {
	u, ok := bc.currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	// 只写 searchQuery，不覆盖并发切换的 segment / view
	st, err := bc.UI.Update(ctx, sessionID(c), func(st *session.UIState) error {
		if q, has := c.GetQuery("q"); has {
			st.SearchQuery = q
		}
		return nil
	})
	if err != nil {
		bc.fail(c, err)
		return
	}
	books, err := bc.visibleBooks(c, st, u)
	if err != nil {
		bc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"segment":       st.Segment,
		"filterCollege": st.FilterCollege,
		"searchQuery":   st.SearchQuery,
		"total":         len(books),
		"books":         withDiscount(books),
	})
}

// GET /api/books/mine
func (bc *BookController) Mine(c *gin.Context) {
	books, err := bc.Books.ListBooks(c.Request.Context())
	if err != nil {
		bc.fail(c, err)
		return
	}
	mine := catalog.OwnListings(books, userID(c))
	c.JSON(http.StatusOK, app.H{"total": len(mine), "books": withDiscount(mine)})
}

// POST /api/books 上架；字段缺失时整单拒绝
func (bc *BookController) Create(c *gin.Context) {
	var in catalog.Listing
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	u, ok := bc.currentUser(c)
	if !ok {
		return
	}
	b, err := catalog.NewBook(in, *u, bc.clock())
	if err != nil {
		bc.fail(c, err)
		return
	}
	if err := bc.Books.CreateBook(c.Request.Context(), &b); err != nil {
		bc.fail(c, err)
		return
	}
	bc.Log.Info("book listed", zap.String("book", b.ID), zap.String("donor", u.ID))
	c.JSON(http.StatusCreated, app.H{
		"book":         b,
		"notification": exchange.Notification{Message: "Book listed successfully!", Type: exchange.NoticeSuccess},
	})
}

type bookView struct {
	models.Book
	DiscountPercent int `json:"discountPercent"`
}

func withDiscount(books []models.Book) []bookView {
	out := make([]bookView, 0, len(books))
	for _, b := range books {
		out = append(out, bookView{Book: b, DiscountPercent: b.DiscountPercent()})
	}
	return out
}
