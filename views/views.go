// Package views holds the single active view / active segment selector and the
// exhaustive dispatch over view variants.
package views

import (
	"errors"
	"fmt"
)

type View int

const (
	Login View = iota
	Explore
	MyRequests
	MyListings
	Profile
	AddBook
	Feedback
	Settings
	LanguagePicker
	AISuggest
	BookPreview
	EBooks
	CampusHub
	CampusCoin
	AIAssistant
)

var viewNames = [...]string{
	Login:          "LOGIN",
	Explore:        "EXPLORE",
	MyRequests:     "MY_REQUESTS",
	MyListings:     "MY_LISTINGS",
	Profile:        "PROFILE",
	AddBook:        "ADD_BOOK",
	Feedback:       "FEEDBACK",
	Settings:       "SETTINGS",
	LanguagePicker: "LANGUAGE_PICKER",
	AISuggest:      "AI_SUGGEST",
	BookPreview:    "BOOK_PREVIEW",
	EBooks:         "E_BOOKS",
	CampusHub:      "CAMPUS_HUB",
	CampusCoin:     "CAMPUS_COIN",
	AIAssistant:    "AI_ASSISTANT",
}

type Segment int

const (
	Buyer Segment = iota
	Seller
	Library
)

var segmentNames = [...]string{
	Buyer:   "BUYER",
	Seller:  "SELLER",
	Library: "LIBRARY",
}

var (
	ErrUnknownView    = errors.New("unknown view")
	ErrUnknownSegment = errors.New("unknown segment")
)

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

func (v View) Valid() bool { return v >= 0 && int(v) < len(viewNames) }

func ParseView(s string) (View, error) {
	for i, n := range viewNames {
		if n == s {
			return View(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

func (v View) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownView, int(v))
	}
	return []byte(v.String()), nil
}

func (v *View) UnmarshalText(b []byte) error {
	p, err := ParseView(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

func (s Segment) String() string {
	if s < 0 || int(s) >= len(segmentNames) {
		return fmt.Sprintf("Segment(%d)", int(s))
	}
	return segmentNames[s]
}

func (s Segment) Valid() bool { return s >= 0 && int(s) < len(segmentNames) }

func ParseSegment(s string) (Segment, error) {
	for i, n := range segmentNames {
		if n == s {
			return Segment(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSegment, s)
}

func (s Segment) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSegment, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Segment) UnmarshalText(b []byte) error {
	p, err := ParseSegment(string(b))
	if err != nil {
		return err
	}
	*s = p
	return nil
}

// Landing 每个 segment 的默认落地页
func (s Segment) Landing() View {
	if s == Seller {
		return MyListings
	}
	return Explore
}

// State 没有历史栈，只有当前 view 和 segment
type State struct {
	View    View    `json:"view"`
	Segment Segment `json:"segment"`
}

func Initial() State { return State{View: Explore, Segment: Buyer} }

func (st State) Navigate(v View) State {
	st.View = v
	return st
}

func (st State) SwitchSegment(s Segment) State {
	st.Segment = s
	st.View = s.Landing()
	return st
}
