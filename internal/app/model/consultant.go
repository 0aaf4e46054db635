package model

import (
	"time"
)

type ConsultantStatus string

const (
	ConsultantPending  ConsultantStatus = "pending"
	ConsultantApproved ConsultantStatus = "approved"
	ConsultantRejected ConsultantStatus = "rejected"
)

// Valid reports whether s is one of the three workflow states.
func (s ConsultantStatus) Valid() bool {
	switch s {
	case ConsultantPending, ConsultantApproved, ConsultantRejected:
		return true
	}
	return false
}

type Consultant struct {
	ID                  uint             `gorm:"primarykey" json:"id"`
	Name                string           `gorm:"type:varchar(100);not null" json:"name"`
	Email               string           `gorm:"type:varchar(120);not null;uniqueIndex:uq_consultant_email" json:"email"`
	Phone               string           `gorm:"type:varchar(20);not null" json:"phone"`
	ExpertiseCategoryID uint             `gorm:"column:expertise_category;not null;index" json:"expertise_category"`
	Bio                 string           `gorm:"type:text;not null" json:"bio"`
	ProfilePicture      string           `gorm:"type:varchar(255)" json:"profile_picture,omitempty"`
	Status              ConsultantStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`

	// Filled only by queries that join categories.
	CategoryName string `gorm:"->;-:migration" json:"category_name,omitempty"`

	ExpertiseCategory *Category `gorm:"foreignKey:ExpertiseCategoryID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Consultant) TableName() string {
	return "consultants"
}
