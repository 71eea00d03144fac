package controllers

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"campus_shelf/app"
	"campus_shelf/assistant"
	"campus_shelf/catalog"
	"campus_shelf/db"
	"campus_shelf/exchange"
	"campus_shelf/models"
	"campus_shelf/profile"
	"campus_shelf/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() { gin.SetMode(gin.TestMode) }

// memRepo 内存版 *db.Repo，覆盖 handlers 用到的接口
type memRepo struct {
	mu       sync.Mutex
	users    map[string]models.User
	books    []models.Book
	requests map[string]models.BookRequest
	order    []string
	feedback []models.Feedback
	conns    map[[2]string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:    map[string]models.User{},
		requests: map[string]models.BookRequest{},
		conns:    map[[2]string]bool{},
	}
}

func (m *memRepo) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, exchange.ErrUserNotFound
	}
	return &u, nil
}

func (m *memRepo) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, exchange.ErrUserNotFound
}

func (m *memRepo) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email {
			return db.ErrEmailTaken
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memRepo) TouchUserLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.LoginCount++
	m.users[id] = u
	return nil
}

func (m *memRepo) ListPeers(_ context.Context, excludeID string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.ID != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateUser(_ context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, exchange.ErrUserNotFound
	}
	if err := fn(&u); err != nil {
		return nil, err
	}
	m.users[id] = u
	return &u, nil
}

func (m *memRepo) ListBooks(context.Context) ([]models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Book(nil), m.books...), nil
}

func (m *memRepo) CreateBook(_ context.Context, b *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = append([]models.Book{*b}, m.books...)
	return nil
}

func (m *memRepo) FindBook(_ context.Context, id string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, exchange.ErrBookNotFound
}

func (m *memRepo) listReq(match func(models.BookRequest) bool) []models.BookRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookRequest
	for i := len(m.order) - 1; i >= 0; i-- {
		if r := m.requests[m.order[i]]; match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memRepo) ListRequestsByBorrower(_ context.Context, id string) ([]models.BookRequest, error) {
	return m.listReq(func(r models.BookRequest) bool { return r.BorrowerID == id }), nil
}

func (m *memRepo) ListRequestsByDonor(_ context.Context, id string) ([]models.BookRequest, error) {
	return m.listReq(func(r models.BookRequest) bool { return r.DonorID == id }), nil
}

func (m *memRepo) ListRequestRows(_ context.Context, q db.RequestRowsQuery) (*db.PagedRequestRows, error) {
	reqs := m.listReq(func(r models.BookRequest) bool {
		return (q.DonorID == "" || r.DonorID == q.DonorID) && (q.Status == "" || string(r.Status) == q.Status)
	})
	out := &db.PagedRequestRows{Total: int64(len(reqs)), Items: []db.RequestRow{}}
	for _, r := range reqs {
		out.Items = append(out.Items, db.RequestRow{ID: r.ID, BookID: r.BookID, BorrowerID: r.BorrowerID, DonorID: r.DonorID, Status: r.Status, Kind: r.Kind})
	}
	return out, nil
}

func (m *memRepo) WithTx(_ context.Context, fn func(exchange.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{users: maps.Clone(m.users), requests: maps.Clone(m.requests), order: append([]string(nil), m.order...)}
	if err := fn(tx); err != nil {
		return err
	}
	m.users, m.requests, m.order = tx.users, tx.requests, tx.order
	return nil
}

func (m *memRepo) CreateFeedback(_ context.Context, f *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, *f)
	return nil
}

func (m *memRepo) Connect(_ context.Context, userID, peerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := [2]string{userID, peerID}
	if m.conns[k] {
		return false, nil
	}
	m.conns[k] = true
	return true, nil
}

func (m *memRepo) ConnectedPeerIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.conns {
		if k[0] == userID {
			out = append(out, k[1])
		}
	}
	return out, nil
}

type memTx struct {
	users    map[string]models.User
	requests map[string]models.BookRequest
	order    []string
}

func (t *memTx) LockUser(_ context.Context, id string) (*models.User, error) {
	u, ok := t.users[id]
	if !ok {
		return nil, exchange.ErrUserNotFound
	}
	return &u, nil
}

func (t *memTx) SaveCounters(_ context.Context, u *models.User) error {
	t.users[u.ID] = *u
	return nil
}

func (t *memTx) ActiveRequest(_ context.Context, borrowerID, bookID string) (*models.BookRequest, error) {
	for _, r := range t.requests {
		if r.BorrowerID == borrowerID && r.BookID == bookID && r.Status != models.StatusRejected {
			return &r, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertRequest(_ context.Context, r *models.BookRequest) error {
	t.requests[r.ID] = *r
	t.order = append(t.order, r.ID)
	return nil
}

func (t *memTx) LockRequest(_ context.Context, id string) (*models.BookRequest, error) {
	r, ok := t.requests[id]
	if !ok {
		return nil, exchange.ErrRequestNotFound
	}
	return &r, nil
}

func (t *memTx) SaveStatus(_ context.Context, r *models.BookRequest) error {
	t.requests[r.ID] = *r
	return nil
}

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (k *memKV) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[key]
	return v, ok, nil
}

func (k *memKV) Set(_ context.Context, key, v string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = v
	return nil
}

func (k *memKV) Del(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key)
	return nil
}

type memUI struct {
	mu     sync.Mutex
	states map[string]session.UIState
	// beforeWrite 在读完、写入前调用一次，用来插入并发写
	beforeWrite func()
}

func (u *memUI) Load(_ context.Context, sid string) (session.UIState, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if st, ok := u.states[sid]; ok {
		return st, nil
	}
	return session.DefaultUIState(), nil
}

func (u *memUI) Save(_ context.Context, sid string, st session.UIState) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.states[sid] = st
	return nil
}

// Update 与 UIStore 一样只合并改动过的字段
func (u *memUI) Update(ctx context.Context, sid string, fn func(*session.UIState) error) (session.UIState, error) {
	before, _ := u.Load(ctx, sid)
	st := before
	if err := fn(&st); err != nil {
		return session.UIState{}, err
	}
	if u.beforeWrite != nil {
		u.beforeWrite()
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	cur, ok := u.states[sid]
	if !ok {
		cur = session.DefaultUIState()
	}
	h := session.EncodeUIState(cur)
	maps.Copy(h, session.ChangedFields(before, st))
	u.states[sid] = session.DecodeUIState(h)
	return st, nil
}

type memSessions struct {
	mu  sync.Mutex
	ids map[string]string
}

func (s *memSessions) Create(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = userID
	return nil
}

func (s *memSessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
	return nil
}

func (s *memSessions) RevokeAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, uid := range s.ids {
		if uid == userID {
			delete(s.ids, id)
		}
	}
	return nil
}

func (s *memSessions) TTL() time.Duration { return time.Hour }

const (
	testUser = "6c1f6a1e-2b9f-4d53-9c3a-0b7c2f1a0001"
	testSID  = "sid-1"
)

type harness struct {
	srv  *Srv
	repo *memRepo
	ui   *memUI
	sess *memSessions
	r    *gin.Engine
}

// newHarness 预置当前用户与演示书目；中间件直接注入 userID / sessionID
func newHarness(t *testing.T, gen assistant.Generator) *harness {
	t.Helper()
	repo := newMemRepo()
	repo.users[testUser] = models.User{ID: testUser, Name: "Ada", Email: "ada@mit.edu", College: "MIT", Branch: "Mathematics"}
	for _, p := range catalog.MockPeers() {
		repo.users[p.ID] = p
	}
	repo.books = catalog.MockBooks()

	ui := &memUI{states: map[string]session.UIState{}}
	sess := &memSessions{ids: map[string]string{}}
	log := zap.NewNop()
	s := &Srv{
		Users:    repo,
		Books:    repo,
		Rows:     repo,
		Hub:      repo,
		Exchange: exchange.NewService(repo, exchange.DefaultRewards(), log),
		Profiles: profile.NewStore(&memKV{data: map[string]string{}}, repo, log),
		UI:       ui,
		Sessions: sess,
		AI:       assistant.New(gen, log),
		Debounce: assistant.NewDebouncer(10 * time.Millisecond),
		Memo:     &catalog.Memo{},
		Log:      log,
		now:      func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) },
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Anonymous") == "" {
			c.Set(app.CtxUserID, testUser)
			c.Set(app.CtxSessionID, testSID)
		}
		c.Next()
	})
	authCtl := NewAuthController(s)
	stateCtl := NewStateController(s)
	bookCtl := NewBookController(s)
	reqCtl := NewRequestController(s)
	hubCtl := NewHubController(s)
	aiCtl := NewAssistantController(s)

	r.POST("/api/auth/login", authCtl.Login)
	r.POST("/api/auth/logout", authCtl.Logout)
	r.PUT("/api/profile", authCtl.UpdateProfile)
	r.GET("/api/coins", s.Coins)
	r.GET("/api/state", stateCtl.Get)
	r.PUT("/api/state", stateCtl.Put)
	r.POST("/api/state/segment", stateCtl.SwitchSegment)
	r.PUT("/api/prefs", stateCtl.PutPrefs)
	r.GET("/api/view", stateCtl.View)
	r.GET("/api/books", bookCtl.List)
	r.POST("/api/books", bookCtl.Create)
	r.POST("/api/books/:id/request", reqCtl.Request)
	r.POST("/api/books/:id/acquire", reqCtl.Acquire)
	r.GET("/api/requests/incoming", reqCtl.Incoming)
	r.PATCH("/api/requests/:id", reqCtl.SetStatus)
	r.GET("/api/hub/peers", hubCtl.Peers)
	r.POST("/api/hub/peers/:id/connect", hubCtl.Connect)
	r.POST("/api/feedback", hubCtl.Feedback)
	r.POST("/api/assistant/chat", aiCtl.Chat)
	r.GET("/api/assistant/suggestions", aiCtl.Suggestions)
	r.POST("/api/assistant/recommend", aiCtl.Recommend)
	r.POST("/api/assistant/condition", aiCtl.Condition)

	return &harness{srv: s, repo: repo, ui: ui, sess: sess, r: r}
}

func (h *harness) do(t *testing.T, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

