package model

import (
	"time"

	"gorm.io/datatypes"
)

// Product category references carry no foreign key constraint: deleting a
// category leaves the ids dangling and the product reads as uncategorized.
type Product struct {
	ID             uint              `gorm:"primarykey" json:"id"`
	Title          string            `gorm:"type:varchar(200);not null" json:"title"`
	Description    string            `gorm:"type:text" json:"description"`
	Specifications datatypes.JSONMap `json:"specifications,omitempty"`
	Price          float64           `gorm:"not null;default:0" json:"price"`
	Active         bool              `gorm:"not null;index" json:"active"`
	CreatedAt      time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	SellerID       *uint             `gorm:"index" json:"seller_id,omitempty"`
	SellerEmail    string            `gorm:"type:varchar(200)" json:"seller_email,omitempty"`
	CategoryID     *uint             `gorm:"index" json:"category_id,omitempty"`
	SubCategoryID  *uint             `gorm:"column:subcategory_id;index" json:"subcategory_id,omitempty"`
	Image          string            `gorm:"type:varchar(255)" json:"image,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// OwnedBy reports whether userID is the product's seller.
func (p *Product) OwnedBy(userID uint) bool {
	return p.SellerID != nil && *p.SellerID == userID
}
