package repository

import (
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ForumRepository interface {
	// Category operations
	CreateCategory(category *model.ForumCategory) error
	FindCategoryByID(id uint) (*model.ForumCategory, error)
	FindCategoryByName(name string) (*model.ForumCategory, error)
	FindCategories() ([]model.ForumCategory, error)
	CountSubCategories(id uint) (int64, error)
	DeleteCategory(id uint) error

	// Thread operations
	CreateThread(thread *model.Thread) error
	FindThreadByID(id uint) (*model.Thread, error)
	FindLatestThreads(limit int) ([]model.Thread, error)
	SearchThreads(term string) ([]model.Thread, error)
	FindThreadsByCategory(categoryID uint) ([]model.Thread, error)
	FindRelatedThreads(thread *model.Thread, limit int) ([]model.Thread, error)
	MoveThread(id, categoryID uint) error
	DeleteThread(id uint) error

	// Reply operations
	CreateReply(reply *model.Reply) error
	FindReplyByID(id uint) (*model.Reply, error)
	FindReplies(threadID uint) ([]model.Reply, error)
	DeleteReply(id uint) error
}

type forumRepository struct {
	db *gorm.DB
}

func NewForumRepository(db *gorm.DB) ForumRepository {
	return &forumRepository{db: db}
}

func (r *forumRepository) CreateCategory(category *model.ForumCategory) error {
	logger.Debug("Creating forum category in database", map[string]interface{}{
		"name":      category.Name,
		"parent_id": category.ParentID,
	})

	if err := r.db.Omit("Parent").Create(category).Error; err != nil {
		logger.Error("Failed to create forum category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}
	return nil
}

func (r *forumRepository) FindCategoryByID(id uint) (*model.ForumCategory, error) {
	var category model.ForumCategory
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *forumRepository) FindCategoryByName(name string) (*model.ForumCategory, error) {
	var category model.ForumCategory
	if err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *forumRepository) FindCategories() ([]model.ForumCategory, error) {
	var categories []model.ForumCategory
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to find forum categories in database", err)
		return nil, err
	}
	return categories, nil
}

func (r *forumRepository) CountSubCategories(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.ForumCategory{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

// DeleteCategory removes the category together with its threads and their
// replies.
func (r *forumRepository) DeleteCategory(id uint) error {
	logger.Debug("Deleting forum category in database", map[string]interface{}{
		"category_id": id,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		threadIDs := tx.Model(&model.Thread{}).Select("id").Where("category_id = ?", id)
		if err := tx.Where("thread_id IN (?)", threadIDs).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", id).Delete(&model.Thread{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.ForumCategory{}, id)
		if result.Error != nil {
			logger.Error("Failed to delete forum category from database", result.Error, map[string]interface{}{
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

// threads selects threads with their author and category names.
func (r *forumRepository) threads() *gorm.DB {
	return r.db.Model(&model.Thread{}).
		Select("forum_threads.*, users.name AS author_name, forum_categories.name AS category_name").
		Joins("LEFT JOIN users ON users.id = forum_threads.author_id").
		Joins("LEFT JOIN forum_categories ON forum_categories.id = forum_threads.category_id")
}

func newestThreadsFirst(query *gorm.DB) *gorm.DB {
	return query.Order("forum_threads.created_at DESC").Order("forum_threads.id DESC")
}

func (r *forumRepository) CreateThread(thread *model.Thread) error {
	logger.Debug("Creating thread in database", map[string]interface{}{
		"category_id": thread.CategoryID,
		"author_id":   thread.AuthorID,
	})

	if err := r.db.Omit("Category", "Author").Create(thread).Error; err != nil {
		logger.Error("Failed to create thread in database", err, map[string]interface{}{
			"category_id": thread.CategoryID,
		})
		return err
	}
	return nil
}

func (r *forumRepository) FindThreadByID(id uint) (*model.Thread, error) {
	var thread model.Thread
	if err := r.threads().Where("forum_threads.id = ?", id).First(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *forumRepository) FindLatestThreads(limit int) ([]model.Thread, error) {
	var threads []model.Thread
	if err := newestThreadsFirst(r.threads()).Limit(limit).Find(&threads).Error; err != nil {
		logger.Error("Failed to find latest threads", err)
		return nil, err
	}
	return threads, nil
}

// SearchThreads matches term case-insensitively against title and body.
func (r *forumRepository) SearchThreads(term string) ([]model.Thread, error) {
	logger.Debug("Searching threads in database", map[string]interface{}{
		"term": term,
	})

	like := "%" + escapeLike(strings.ToLower(term)) + "%"
	query := r.threads().Where(
		`LOWER(forum_threads.title) LIKE ? ESCAPE '\' OR LOWER(forum_threads.body) LIKE ? ESCAPE '\'`,
		like, like,
	)

	var threads []model.Thread
	if err := newestThreadsFirst(query).Find(&threads).Error; err != nil {
		logger.Error("Failed to search threads", err, map[string]interface{}{
			"term": term,
		})
		return nil, err
	}
	return threads, nil
}

func (r *forumRepository) FindThreadsByCategory(categoryID uint) ([]model.Thread, error) {
	var threads []model.Thread
	query := r.threads().Where("forum_threads.category_id = ?", categoryID)
	if err := newestThreadsFirst(query).Find(&threads).Error; err != nil {
		logger.Error("Failed to find threads by category", err, map[string]interface{}{
			"category_id": categoryID,
		})
		return nil, err
	}
	return threads, nil
}

// FindRelatedThreads returns the newest other threads of the same category.
func (r *forumRepository) FindRelatedThreads(thread *model.Thread, limit int) ([]model.Thread, error) {
	var threads []model.Thread
	query := r.threads().
		Where("forum_threads.category_id = ? AND forum_threads.id <> ?", thread.CategoryID, thread.ID)
	if err := newestThreadsFirst(query).Limit(limit).Find(&threads).Error; err != nil {
		logger.Error("Failed to find related threads", err, map[string]interface{}{
			"thread_id": thread.ID,
		})
		return nil, err
	}
	return threads, nil
}

func (r *forumRepository) MoveThread(id, categoryID uint) error {
	result := r.db.Model(&model.Thread{}).Where("id = ?", id).Update("category_id", categoryID)
	if result.Error != nil {
		logger.Error("Failed to move thread", result.Error, map[string]interface{}{
			"thread_id":   id,
			"category_id": categoryID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteThread removes the thread and its replies in one transaction.
func (r *forumRepository) DeleteThread(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Thread{}, id)
		if result.Error != nil {
			logger.Error("Failed to delete thread from database", result.Error, map[string]interface{}{
				"thread_id": id,
			})
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *forumRepository) CreateReply(reply *model.Reply) error {
	if err := r.db.Omit(clause.Associations).Create(reply).Error; err != nil {
		logger.Error("Failed to create reply in database", err, map[string]interface{}{
			"thread_id": reply.ThreadID,
		})
		return err
	}
	return nil
}

func (r *forumRepository) FindReplyByID(id uint) (*model.Reply, error) {
	var reply model.Reply
	if err := r.db.First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// FindReplies returns the thread's replies oldest first.
func (r *forumRepository) FindReplies(threadID uint) ([]model.Reply, error) {
	var replies []model.Reply
	err := r.db.Model(&model.Reply{}).
		Select("forum_replies.*, users.name AS author_name").
		Joins("LEFT JOIN users ON users.id = forum_replies.author_id").
		Where("forum_replies.thread_id = ?", threadID).
		Order("forum_replies.created_at ASC").
		Order("forum_replies.id ASC").
		Find(&replies).Error
	if err != nil {
		logger.Error("Failed to find replies", err, map[string]interface{}{
			"thread_id": threadID,
		})
		return nil, err
	}
	return replies, nil
}

func (r *forumRepository) DeleteReply(id uint) error {
	result := r.db.Delete(&model.Reply{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete reply from database", result.Error, map[string]interface{}{
			"reply_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
