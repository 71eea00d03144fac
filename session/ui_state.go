package session

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"campus_shelf/views"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Language string

// Languages 可选界面语言，English 为默认
var Languages = []Language{"English", "Bengali", "Hindi", "Gujarati", "Marathi", "Tamil", "Telugu"}

type Palette string

const (
	PaletteClassic   Palette = "CLASSIC"
	PaletteCyberpunk Palette = "CYBERPUNK"
	PaletteOcean     Palette = "OCEAN"
	PaletteMidnight  Palette = "MIDNIGHT"
)

var Palettes = []Palette{PaletteClassic, PaletteCyberpunk, PaletteOcean, PaletteMidnight}

var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrUnknownPalette  = errors.New("unknown theme palette")
)

func ParseLanguage(s string) (Language, error) {
	if l := Language(s); slices.Contains(Languages, l) {
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

func ParsePalette(s string) (Palette, error) {
	if p := Palette(s); slices.Contains(Palettes, p) {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPalette, s)
}

// Prefs 跨页面保留的偏好
type Prefs struct {
	IsLoggedIn   bool     `json:"isLoggedIn"`
	DarkMode     bool     `json:"darkMode"`
	Language     Language `json:"language"`
	ThemePalette Palette  `json:"themePalette"`
}

type UIState struct {
	views.State
	FilterCollege bool   `json:"filterCollege"`
	SearchQuery   string `json:"searchQuery"`
	Prefs
}

func DefaultUIState() UIState {
	return UIState{
		State:         views.Initial(),
		FilterCollege: true,
		Prefs:         Prefs{Language: Languages[0], ThemePalette: PaletteClassic},
	}
}

const (
	fView          = "view"
	fSegment       = "segment"
	fFilterCollege = "filterCollege"
	fSearchQuery   = "searchQuery"
	fIsLoggedIn    = "isLoggedIn"
	fDarkMode      = "darkMode"
	fLanguage      = "language"
	fThemePalette  = "themePalette"
)

// DecodeUIState 逐字段解析；缺失或非法的字段取默认值
func DecodeUIState(h map[string]string) UIState {
	st := DefaultUIState()
	if v, err := views.ParseView(h[fView]); err == nil {
		st.View = v
	}
	if s, err := views.ParseSegment(h[fSegment]); err == nil {
		st.Segment = s
	}
	if b, err := strconv.ParseBool(h[fFilterCollege]); err == nil {
		st.FilterCollege = b
	}
	st.SearchQuery = h[fSearchQuery]
	if b, err := strconv.ParseBool(h[fIsLoggedIn]); err == nil {
		st.IsLoggedIn = b
	}
	if b, err := strconv.ParseBool(h[fDarkMode]); err == nil {
		st.DarkMode = b
	}
	if l, err := ParseLanguage(h[fLanguage]); err == nil {
		st.Language = l
	}
	if p, err := ParsePalette(h[fThemePalette]); err == nil {
		st.ThemePalette = p
	}
	return st
}

func EncodeUIState(st UIState) map[string]string {
	return map[string]string{
		fView:          st.View.String(),
		fSegment:       st.Segment.String(),
		fFilterCollege: strconv.FormatBool(st.FilterCollege),
		fSearchQuery:   st.SearchQuery,
		fIsLoggedIn:    strconv.FormatBool(st.IsLoggedIn),
		fDarkMode:      strconv.FormatBool(st.DarkMode),
		fLanguage:      string(st.Language),
		fThemePalette:  string(st.ThemePalette),
	}
}

// ChangedFields 两个状态编码后不同的字段
func ChangedFields(before, after UIState) map[string]string {
	a := EncodeUIState(after)
	for k, v := range EncodeUIState(before) {
		if a[k] == v {
			delete(a, k)
		}
	}
	return a
}

func uiKey(sid string) string { return "shelf:ui:" + sid }

// UIStore 每个登录会话一个 redis hash，过期时间跟随会话
type UIStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUIStore(rdb *redis.Client, ttl time.Duration) *UIStore {
	return &UIStore{rdb: rdb, ttl: ttl}
}

func (s *UIStore) Load(ctx context.Context, sid string) (UIState, error) {
	h, err := s.rdb.HGetAll(ctx, uiKey(sid)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return DefaultUIState(), errors.Wrap(err, "load ui state")
	}
	return DecodeUIState(h), nil
}

func (s *UIStore) Save(ctx context.Context, sid string, st UIState) error {
	return s.write(ctx, sid, EncodeUIState(st))
}

func (s *UIStore) write(ctx context.Context, sid string, h map[string]string) error {
	fields := make(map[string]any, len(h))
	for k, v := range h {
		fields[k] = v
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, uiKey(sid), fields)
	pipe.Expire(ctx, uiKey(sid), s.ttl)
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "save ui state")
}

// Update 读改写，只 HSET fn 改过的字段，并发的其它字段写入不会被旧值覆盖；
// fn 返回错误或没有改动时不落盘
func (s *UIStore) Update(ctx context.Context, sid string, fn func(st *UIState) error) (UIState, error) {
	before, err := s.Load(ctx, sid)
	if err != nil {
		return before, err
	}
	st := before
	if err := fn(&st); err != nil {
		return st, err
	}
	changed := ChangedFields(before, st)
	if len(changed) == 0 {
		return st, nil
	}
	return st, s.write(ctx, sid, changed)
}
