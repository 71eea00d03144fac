// models/book_request.go
package models

import (
	"math"
	"time"
)

const BookTable = "shelf_books"
const RequestTable = "shelf_requests"

type BookCondition string

const (
	ConditionNew     BookCondition = "New"
	ConditionLikeNew BookCondition = "Like New"
	ConditionGood    BookCondition = "Good"
	ConditionFair    BookCondition = "Fair"
	ConditionPoor    BookCondition = "Poor"
)

type Book struct {
	ID                   string        `gorm:"size:64;primaryKey" json:"id"` // book_<unix nanos>
	Title                string        `gorm:"size:255;not null" json:"title"`
	Author               string        `gorm:"size:255;not null" json:"author"`
	Condition            BookCondition `gorm:"size:20;not null;default:'Good'" json:"condition"`
	IsUrgent             bool          `gorm:"not null;default:false" json:"isUrgent"`
	IsInstitutionDonated bool          `gorm:"not null;default:false" json:"isInstitutionDonated"`
	DonorID              string        `gorm:"size:64;index;not null" json:"donorId"`
	College              string        `gorm:"size:255;index;not null" json:"college"`
	Branch               string        `gorm:"size:255" json:"branch"`
	Location             string        `gorm:"size:255" json:"location"`
	Area                 string        `gorm:"size:255" json:"area"`
	PhoneNumber          string        `gorm:"size:32" json:"phoneNumber"`
	ContactNumber        string        `gorm:"size:32" json:"contactNumber"`
	AltContactNumber     string        `gorm:"size:32" json:"altContactNumber"`
	PickupDate           string        `gorm:"size:32" json:"pickupDate,omitempty"`
	PickupTime           string        `gorm:"size:32" json:"pickupTime,omitempty"`
	ImageURL             string        `gorm:"type:text" json:"imageUrl,omitempty"`
	MarketPrice          float64       `json:"marketPrice,omitempty"`
	CurrentPrice         float64       `json:"currentPrice,omitempty"`
	CreatedAt            time.Time     `gorm:"index" json:"createdAt"`
}

// DiscountPercent 与卡片上的折扣角标一致
func (b Book) DiscountPercent() int {
	if b.MarketPrice <= 0 {
		return 0
	}
	return int(math.Round((b.MarketPrice - b.CurrentPrice) / b.MarketPrice * 100))
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusAccepted RequestStatus = "ACCEPTED"
	StatusRejected RequestStatus = "REJECTED"
)

type RequestKind string

const (
	KindRequest         RequestKind = "REQUEST"
	KindAcquireCoins    RequestKind = "ACQUIRE_COINS"
	KindAcquireDiscount RequestKind = "ACQUIRE_DISCOUNT"
)

type BookRequest struct {
	ID         string        `gorm:"size:64;primaryKey" json:"id"` // req_<unix nanos>
	BookID     string        `gorm:"size:64;index;not null" json:"bookId"`
	BorrowerID string        `gorm:"type:uuid;index;not null" json:"borrowerId"`
	DonorID    string        `gorm:"size:64;index;not null" json:"donorId"`
	Status     RequestStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Kind       RequestKind   `gorm:"size:20;not null;default:'REQUEST'" json:"kind"`
	CoinDelta  int           `gorm:"not null;default:0" json:"coinDelta"`
	Timestamp  time.Time     `gorm:"index;not null" json:"timestamp"`

	PreferredDeliveryDate string `gorm:"size:32" json:"preferredDeliveryDate,omitempty"`
	PreferredDeliveryTime string `gorm:"size:32" json:"preferredDeliveryTime,omitempty"`
	BorrowerContact       string `gorm:"size:32" json:"borrowerContact,omitempty"`
	BorrowerAltContact    string `gorm:"size:32" json:"borrowerAltContact,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func (Book) TableName() string        { return BookTable }
func (BookRequest) TableName() string { return RequestTable }
