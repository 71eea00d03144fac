package models

import (
	"time"
)

const UserTable = "shelf_users"

type UserRole string

const (
	RoleStudent     UserRole = "Student (Donor/Borrower)"
	RoleInstitution UserRole = "Institution Partner"
)

// User 当前登录用户 / 校园同伴，共用一张表
type User struct {
	ID      string   `gorm:"primaryKey;type:uuid" json:"id"`
	Name    string   `gorm:"size:255;not null" json:"name"`
	Email   string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	College string   `gorm:"size:255;index;not null" json:"college"`
	Branch  string   `gorm:"size:255" json:"branch"`
	Year    string   `gorm:"size:64" json:"year"`
	Role    UserRole `gorm:"size:64;not null;default:'Student (Donor/Borrower)'" json:"role"`

	// 两个计数器都不能为负，由 CHECK 约束兜底
	DonationScore int `gorm:"not null;default:0;check:donation_score >= 0" json:"donationScore"`
	CampusCoins   int `gorm:"not null;default:0;check:campus_coins >= 0" json:"campusCoins"`

	PhoneNumber    string `gorm:"size:32" json:"phoneNumber,omitempty"`
	AltPhoneNumber string `gorm:"size:32" json:"altPhoneNumber,omitempty"`

	PasswordHash string `gorm:"size:255" json:"-"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }
