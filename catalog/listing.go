package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"campus_shelf/models"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidListing = errors.New("missing requirements: please provide a book picture, quality, area, and contact number")

// ListingError 列出缺失的字段，前端逐项高亮
type ListingError struct {
	Fields []string
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrInvalidListing, strings.Join(e.Fields, ", "))
}

func (e *ListingError) Unwrap() error { return ErrInvalidListing }

// Listing 上架表单
type Listing struct {
	Title            string               `json:"title" validate:"required"`
	Author           string               `json:"author" validate:"required"`
	Branch           string               `json:"branch" validate:"required"`
	Condition        models.BookCondition `json:"condition" validate:"omitempty,oneof='New' 'Like New' 'Good' 'Fair' 'Poor'"`
	Location         string               `json:"location"`
	Area             string               `json:"area" validate:"required"`
	PhoneNumber      string               `json:"phoneNumber" validate:"required"`
	ContactNumber    string               `json:"contactNumber" validate:"required"`
	AltContactNumber string               `json:"altContactNumber"`
	PickupDate       string               `json:"pickupDate"`
	PickupTime       string               `json:"pickupTime"`
	IsUrgent         bool                 `json:"isUrgent"`
	MarketPrice      float64              `json:"marketPrice" validate:"gte=0"`
	CurrentPrice     float64              `json:"currentPrice" validate:"gte=0"`
	ImageURL         string               `json:"imageUrl" validate:"required"`
}

var validate = newValidator()

// 报错字段用 json 名，和前端表单一致
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (l Listing) Validate() error {
	trimmed := l
	trimmed.Title = strings.TrimSpace(l.Title)
	trimmed.Author = strings.TrimSpace(l.Author)
	trimmed.Branch = strings.TrimSpace(l.Branch)
	trimmed.Area = strings.TrimSpace(l.Area)
	trimmed.PhoneNumber = strings.TrimSpace(l.PhoneNumber)
	trimmed.ContactNumber = strings.TrimSpace(l.ContactNumber)
	trimmed.ImageURL = strings.TrimSpace(l.ImageURL)

	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	le := &ListingError{}
	for _, fe := range verrs {
		le.Fields = append(le.Fields, fe.Field())
	}
	return le
}

// NewBook 由表单生成一本书；id 按时间生成
func NewBook(l Listing, donor models.User, now time.Time) (models.Book, error) {
	if err := l.Validate(); err != nil {
		return models.Book{}, err
	}
	cond := l.Condition
	if cond == "" {
		cond = models.ConditionGood
	}
	return models.Book{
		ID:                   fmt.Sprintf("book_%d", now.UnixNano()),
		Title:                strings.TrimSpace(l.Title),
		Author:               strings.TrimSpace(l.Author),
		Condition:            cond,
		IsUrgent:             l.IsUrgent,
		IsInstitutionDonated: false,
		DonorID:              donor.ID,
		College:              donor.College,
		Branch:               strings.TrimSpace(l.Branch),
		Location:             l.Location,
		Area:                 strings.TrimSpace(l.Area),
		PhoneNumber:          strings.TrimSpace(l.PhoneNumber),
		ContactNumber:        strings.TrimSpace(l.ContactNumber),
		AltContactNumber:     l.AltContactNumber,
		PickupDate:           l.PickupDate,
		PickupTime:           l.PickupTime,
		ImageURL:             strings.TrimSpace(l.ImageURL),
		MarketPrice:          l.MarketPrice,
		CurrentPrice:         l.CurrentPrice,
		CreatedAt:            now,
	}, nil
}
