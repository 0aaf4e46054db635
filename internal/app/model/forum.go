package model

import (
	"time"
)

// ForumCategory groups threads. A category with a ParentID is a
// subcategory; nesting is one level deep in practice but not enforced.
type ForumCategory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_forum_category_name" json:"name"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Parent *ForumCategory `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (ForumCategory) TableName() string {
	return "forum_categories"
}

type Thread struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Title      string    `gorm:"type:varchar(200);not null" json:"title"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Filled only by queries that join users and categories.
	AuthorName   string `gorm:"->;-:migration" json:"author_name,omitempty"`
	CategoryName string `gorm:"->;-:migration" json:"category_name,omitempty"`

	Category *ForumCategory `gorm:"foreignKey:CategoryID" json:"-"`
	Author   *User          `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Thread) TableName() string {
	return "forum_threads"
}

type Reply struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ThreadID  uint      `gorm:"not null;index" json:"thread_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	AuthorName string `gorm:"->;-:migration" json:"author_name,omitempty"`

	Thread *Thread `gorm:"foreignKey:ThreadID" json:"-"`
	Author *User   `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Reply) TableName() string {
	return "forum_replies"
}
