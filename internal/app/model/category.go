package model

import "time"

// UncategorizedLabel is shown for products whose category is unset or gone.
const UncategorizedLabel = "Uncategorized"

type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	SubCategories []SubCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"subcategories,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// SubCategory names are unique within their parent category. The parent
// reference is nullable so an orphaned subcategory remains readable.
type SubCategory struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(120);not null;uniqueIndex:idx_subcategory_parent_name" json:"name"`
	CategoryID  *uint     `gorm:"index;uniqueIndex:idx_subcategory_parent_name" json:"category_id"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (SubCategory) TableName() string {
	return "subcategories"
}
