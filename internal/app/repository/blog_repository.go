package repository

import (
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostFilter struct {
	Search     string
	CategoryID *uint
	Tag        string
	Limit      int
}

type BlogRepository interface {
	// Category operations
	CreateCategory(category *model.BlogCategory) error
	FindCategoryByID(id uint) (*model.BlogCategory, error)
	FindCategoryByName(name string) (*model.BlogCategory, error)
	FindCategories() ([]model.BlogCategory, error)
	DeleteCategory(id uint) error

	// Post operations
	CreatePost(post *model.Post) error
	FindPostByID(id uint) (*model.Post, error)
	FindPosts(filter PostFilter) ([]model.Post, error)
	DeletePost(id uint) error

	// Comment operations
	CreateComment(comment *model.BlogComment) error
	FindCommentByID(id uint) (*model.BlogComment, error)
	FindComments(postID uint) ([]model.BlogComment, error)
	CreateCommentReply(reply *model.CommentReply) error
	DeleteComment(id uint) error

	// Like operations
	ToggleLike(postID, userID uint) (liked bool, count int64, err error)
}

type blogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) CreateCategory(category *model.BlogCategory) error {
	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create blog category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}
	return nil
}

func (r *blogRepository) FindCategoryByID(id uint) (*model.BlogCategory, error) {
	var category model.BlogCategory
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *blogRepository) FindCategoryByName(name string) (*model.BlogCategory, error) {
	var category model.BlogCategory
	if err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *blogRepository) FindCategories() ([]model.BlogCategory, error) {
	var categories []model.BlogCategory
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to find blog categories in database", err)
		return nil, err
	}
	return categories, nil
}

// DeleteCategory removes the category. Its posts stay and become
// uncategorized.
func (r *blogRepository) DeleteCategory(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Post{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.BlogCategory{}, id)
		if result.Error != nil {
			logger.Error("Failed to delete blog category from database", result.Error, map[string]interface{}{
				"category_id": id,
			})
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// posts selects posts with author name, category name and like count.
func (r *blogRepository) posts() *gorm.DB {
	return r.db.Model(&model.Post{}).
		Select("blog_posts.*, users.name AS author_name, blog_categories.name AS category_name, " +
			"(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = blog_posts.id) AS like_count").
		Joins("LEFT JOIN users ON users.id = blog_posts.author_id").
		Joins("LEFT JOIN blog_categories ON blog_categories.id = blog_posts.category_id")
}

func (r *blogRepository) CreatePost(post *model.Post) error {
	logger.Debug("Creating blog post in database", map[string]interface{}{
		"author_id": post.AuthorID,
		"title":     post.Title,
	})

	if err := r.db.Omit(clause.Associations).Create(post).Error; err != nil {
		logger.Error("Failed to create blog post in database", err, map[string]interface{}{
			"author_id": post.AuthorID,
		})
		return err
	}
	return nil
}

func (r *blogRepository) FindPostByID(id uint) (*model.Post, error) {
	var post model.Post
	if err := r.posts().Where("blog_posts.id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// FindPosts returns posts newest first. Search matches title, body and tags;
// Tag matches one whole entry of the tag list.
func (r *blogRepository) FindPosts(filter PostFilter) ([]model.Post, error) {
	logger.Debug("Finding blog posts with filter", map[string]interface{}{
		"search":      filter.Search,
		"category_id": filter.CategoryID,
		"tag":         filter.Tag,
	})

	query := r.posts()
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			`LOWER(blog_posts.title) LIKE ? ESCAPE '\' OR LOWER(blog_posts.body) LIKE ? ESCAPE '\' OR blog_posts.tags LIKE ? ESCAPE '\'`,
			like, like, like,
		)
	}
	if filter.CategoryID != nil {
		query = query.Where("blog_posts.category_id = ?", *filter.CategoryID)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where(`(',' || blog_posts.tags || ',') LIKE ? ESCAPE '\'`,
			"%,"+escapeLike(strings.ToLower(tag))+",%")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var posts []model.Post
	err := query.Order("blog_posts.created_at DESC").Order("blog_posts.id DESC").Find(&posts).Error
	if err != nil {
		logger.Error("Failed to find blog posts", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}
	return posts, nil
}

// DeletePost removes the post with its likes, comments and replies.
func (r *blogRepository) DeletePost(id uint) error {
	logger.Debug("Deleting blog post in database", map[string]interface{}{
		"post_id": id,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&model.BlogComment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&model.CommentReply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.BlogComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Post{}, id)
		if result.Error != nil {
			logger.Error("Failed to delete blog post from database", result.Error, map[string]interface{}{
				"post_id": id,
			})
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *blogRepository) CreateComment(comment *model.BlogComment) error {
	if err := r.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		logger.Error("Failed to create blog comment in database", err, map[string]interface{}{
			"post_id": comment.PostID,
		})
		return err
	}
	return nil
}

func (r *blogRepository) FindCommentByID(id uint) (*model.BlogComment, error) {
	var comment model.BlogComment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindComments returns the post's comments and their replies, oldest first.
func (r *blogRepository) FindComments(postID uint) ([]model.BlogComment, error) {
	var comments []model.BlogComment
	err := r.db.
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		logger.Error("Failed to find blog comments", err, map[string]interface{}{
			"post_id": postID,
		})
		return nil, err
	}
	return comments, nil
}

func (r *blogRepository) CreateCommentReply(reply *model.CommentReply) error {
	if err := r.db.Omit(clause.Associations).Create(reply).Error; err != nil {
		logger.Error("Failed to create comment reply in database", err, map[string]interface{}{
			"comment_id": reply.CommentID,
		})
		return err
	}
	return nil
}

// DeleteComment removes the comment and its replies.
func (r *blogRepository) DeleteComment(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&model.CommentReply{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.BlogComment{}, id)
		if result.Error != nil {
			logger.Error("Failed to delete blog comment from database", result.Error, map[string]interface{}{
				"comment_id": id,
			})
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ToggleLike adds the user's like, or removes it when present, and returns
// the resulting state with the post's like count.
func (r *blogRepository) ToggleLike(postID, userID uint) (bool, int64, error) {
	var liked bool
	var count int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.PostLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// A concurrent toggle may have stored the like already
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Omit(clause.Associations).
				Create(&model.PostLike{PostID: postID, UserID: userID}).Error
			if err != nil {
				return err
			}
			liked = true
		}
		return tx.Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
	})
	if err != nil {
		logger.Error("Failed to toggle post like", err, map[string]interface{}{
			"post_id": postID,
			"user_id": userID,
		})
		return false, 0, err
	}
	return liked, count, nil
}
