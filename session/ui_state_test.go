package session

import (
	"encoding/json"
	"maps"
	"testing"

	"campus_shelf/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUIState_EmptyIsDefault(t *testing.T) {
	st := DecodeUIState(nil)
	assert.Equal(t, DefaultUIState(), st)
	assert.Equal(t, views.Explore, st.View)
	assert.Equal(t, views.Buyer, st.Segment)
	assert.True(t, st.FilterCollege)
	assert.False(t, st.DarkMode)
	assert.False(t, st.IsLoggedIn)
	assert.Equal(t, Language("English"), st.Language)
	assert.Equal(t, PaletteClassic, st.ThemePalette)
}

func TestDecodeUIState_MalformedFieldsFallBack(t *testing.T) {
	st := DecodeUIState(map[string]string{
		"view":          "NOWHERE",
		"segment":       "SELLER",
		"filterCollege": "maybe",
		"darkMode":      "true",
		"language":      "Klingon",
		"themePalette":  "OCEAN",
		"searchQuery":   "calc",
	})
	assert.Equal(t, views.Explore, st.View)
	assert.Equal(t, views.Seller, st.Segment)
	assert.True(t, st.FilterCollege)
	assert.True(t, st.DarkMode)
	assert.Equal(t, Language("English"), st.Language)
	assert.Equal(t, PaletteOcean, st.ThemePalette)
	assert.Equal(t, "calc", st.SearchQuery)
}

func TestUIStateRoundTrip(t *testing.T) {
	in := UIState{
		State:         views.State{View: views.CampusHub, Segment: views.Library},
		FilterCollege: false,
		SearchQuery:   "physics",
		Prefs:         Prefs{IsLoggedIn: true, DarkMode: true, Language: "Tamil", ThemePalette: PaletteMidnight},
	}
	assert.Equal(t, in, DecodeUIState(EncodeUIState(in)))
}

func TestUIStateJSONIsFlat(t *testing.T) {
	b, err := json.Marshal(DefaultUIState())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "EXPLORE", m["view"])
	assert.Equal(t, "BUYER", m["segment"])
	assert.Equal(t, true, m["filterCollege"])
	assert.Equal(t, "CLASSIC", m["themePalette"])
}

func TestParseLanguageAndPalette(t *testing.T) {
	for _, l := range Languages {
		got, err := ParseLanguage(string(l))
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseLanguage("english")
	assert.ErrorIs(t, err, ErrUnknownLanguage)

	_, err = ParsePalette("NEON")
	assert.ErrorIs(t, err, ErrUnknownPalette)
}

func TestChangedFields(t *testing.T) {
	base := DefaultUIState()
	assert.Empty(t, ChangedFields(base, base))

	q := base
	q.SearchQuery = "calc"
	assert.Equal(t, map[string]string{"searchQuery": "calc"}, ChangedFields(base, q))

	seg := base
	seg.Segment = views.Seller
	seg.DarkMode = true
	assert.Equal(t, map[string]string{"segment": "SELLER", "darkMode": "true"}, ChangedFields(base, seg))
}

// 两个从同一快照出发的更新各写各的字段，合并后都保留
func TestChangedFields_OverlappingUpdatesMerge(t *testing.T) {
	base := DefaultUIState()
	stored := EncodeUIState(base)

	keystroke := base
	keystroke.SearchQuery = "phys"
	segment := base
	segment.Segment = views.Library
	segment.View = views.MyRequests

	maps.Copy(stored, ChangedFields(base, segment))
	maps.Copy(stored, ChangedFields(base, keystroke))

	got := DecodeUIState(stored)
	assert.Equal(t, views.Library, got.Segment)
	assert.Equal(t, views.MyRequests, got.View)
	assert.Equal(t, "phys", got.SearchQuery)
}
