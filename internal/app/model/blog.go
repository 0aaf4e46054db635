package model

import (
	"path/filepath"
	"strings"
	"time"
)

type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
)

// MediaTypeOf classifies an uploaded file by extension. Anything that is not
// an image, video or audio file is a document.
func MediaTypeOf(filename string) MediaType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return MediaImage
	case ".mp4", ".webm", ".mov":
		return MediaVideo
	case ".mp3", ".wav", ".ogg":
		return MediaAudio
	default:
		return MediaDocument
	}
}

type BlogCategory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_blog_category_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (BlogCategory) TableName() string {
	return "blog_categories"
}

type Post struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Title      string    `gorm:"type:varchar(200);not null" json:"title"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Tags       string    `gorm:"type:varchar(255)" json:"tags"` // lowercase, comma separated
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	MediaPath  string    `gorm:"type:varchar(255)" json:"media_path,omitempty"`
	MediaType  MediaType `gorm:"type:varchar(20)" json:"media_type,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	AuthorName   string `gorm:"->;-:migration" json:"author_name,omitempty"`
	CategoryName string `gorm:"->;-:migration" json:"category_name,omitempty"`
	LikeCount    int64  `gorm:"->;-:migration" json:"like_count"`

	Author   *User         `gorm:"foreignKey:AuthorID" json:"-"`
	Category *BlogCategory `gorm:"foreignKey:CategoryID" json:"-"`
}

func (Post) TableName() string {
	return "blog_posts"
}

// TagList splits Tags into its entries.
func (p Post) TagList() []string {
	if p.Tags == "" {
		return []string{}
	}
	return strings.Split(p.Tags, ",")
}

// BlogComment may be left anonymously, in which case AuthorID is nil.
type BlogComment struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	AuthorID   *uint     `gorm:"index" json:"author_id,omitempty"`
	AuthorName string    `gorm:"type:varchar(100);not null" json:"author_name"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at"`

	Replies []CommentReply `gorm:"foreignKey:CommentID" json:"replies"`
	Post    *Post          `gorm:"foreignKey:PostID" json:"-"`
}

func (BlogComment) TableName() string {
	return "blog_comments"
}

type CommentReply struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CommentID  uint      `gorm:"not null;index" json:"comment_id"`
	AuthorID   *uint     `gorm:"index" json:"author_id,omitempty"`
	AuthorName string    `gorm:"type:varchar(100);not null" json:"author_name"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at"`

	Comment *BlogComment `gorm:"foreignKey:CommentID" json:"-"`
}

func (CommentReply) TableName() string {
	return "blog_comment_replies"
}

// PostLike records one user's like; a second like from the same user is
// refused by the unique index.
type PostLike struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:uq_post_like_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uq_post_like_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `gorm:"foreignKey:PostID" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (PostLike) TableName() string {
	return "post_likes"
}
