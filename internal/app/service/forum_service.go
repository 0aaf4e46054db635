package service

import (
	"errors"
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
)

// LatestThreadsLimit bounds the "latest threads" sidebar and the related
// threads of a thread page.
const LatestThreadsLimit = 5

const dashboardThreadsLimit = 20

type ThreadInput struct {
	Title      string `validate:"required,max=200"`
	Body       string `validate:"required"`
	CategoryID uint   `validate:"required"`
}

type ForumCategoryInput struct {
	Name     string `validate:"required,max=100"`
	ParentID *uint
}

type ForumHome struct {
	Categories    []model.ForumCategory `json:"categories"`
	LatestThreads []model.Thread        `json:"latest_threads"`
}

type ThreadPage struct {
	Thread         *model.Thread  `json:"thread"`
	Replies        []model.Reply  `json:"replies"`
	RelatedThreads []model.Thread `json:"related_threads"`
	LatestThreads  []model.Thread `json:"latest_threads"`
}

type ForumCategoryPage struct {
	Category      *model.ForumCategory `json:"category"`
	Threads       []model.Thread       `json:"threads"`
	LatestThreads []model.Thread       `json:"latest_threads"`
}

type ForumService interface {
	Home() (*ForumHome, error)
	Dashboard() (*ForumHome, error)
	Search(term string) ([]model.Thread, error)
	ThreadPage(id uint) (*ThreadPage, error)
	CategoryPage(id uint) (*ForumCategoryPage, error)
	CreateThread(authorID uint, input ThreadInput) (*model.Thread, error)
	Reply(authorID, threadID uint, body string) (*model.Reply, error)

	CreateCategory(input ForumCategoryInput) (*model.ForumCategory, error)
	DeleteCategory(id uint) error
	MoveThread(id, categoryID uint) (*model.Thread, error)
	DeleteThread(id uint) error
	DeleteReply(id uint) (*model.Reply, error)
}

type forumService struct {
	forumRepo repository.ForumRepository
}

func NewForumService(forumRepo repository.ForumRepository) ForumService {
	return &forumService{forumRepo: forumRepo}
}

func (s *forumService) Home() (*ForumHome, error) {
	return s.overview(LatestThreadsLimit)
}

// Dashboard is the moderation view: every category and a longer thread list.
func (s *forumService) Dashboard() (*ForumHome, error) {
	return s.overview(dashboardThreadsLimit)
}

func (s *forumService) overview(limit int) (*ForumHome, error) {
	categories, err := s.forumRepo.FindCategories()
	if err != nil {
		return nil, err
	}
	latest, err := s.forumRepo.FindLatestThreads(limit)
	if err != nil {
		return nil, err
	}
	return &ForumHome{Categories: categories, LatestThreads: latest}, nil
}

// Search returns threads whose title or body contains term, newest first.
// A blank term matches nothing.
func (s *forumService) Search(term string) ([]model.Thread, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.Thread{}, nil
	}
	return s.forumRepo.SearchThreads(term)
}

func (s *forumService) findThread(id uint) (*model.Thread, error) {
	thread, err := s.forumRepo.FindThreadByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return thread, nil
}

func (s *forumService) findCategory(id uint) (*model.ForumCategory, error) {
	category, err := s.forumRepo.FindCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForumCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *forumService) ThreadPage(id uint) (*ThreadPage, error) {
	thread, err := s.findThread(id)
	if err != nil {
		return nil, err
	}
	replies, err := s.forumRepo.FindReplies(id)
	if err != nil {
		return nil, err
	}
	related, err := s.forumRepo.FindRelatedThreads(thread, LatestThreadsLimit)
	if err != nil {
		return nil, err
	}
	latest, err := s.forumRepo.FindLatestThreads(LatestThreadsLimit)
	if err != nil {
		return nil, err
	}
	return &ThreadPage{Thread: thread, Replies: replies, RelatedThreads: related, LatestThreads: latest}, nil
}

func (s *forumService) CategoryPage(id uint) (*ForumCategoryPage, error) {
	category, err := s.findCategory(id)
	if err != nil {
		return nil, err
	}
	threads, err := s.forumRepo.FindThreadsByCategory(id)
	if err != nil {
		return nil, err
	}
	latest, err := s.forumRepo.FindLatestThreads(LatestThreadsLimit)
	if err != nil {
		return nil, err
	}
	return &ForumCategoryPage{Category: category, Threads: threads, LatestThreads: latest}, nil
}

func (s *forumService) CreateThread(authorID uint, input ThreadInput) (*model.Thread, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.findCategory(input.CategoryID); err != nil {
		if errors.Is(err, ErrForumCategoryNotFound) {
			return nil, validationError("forum category does not exist")
		}
		return nil, err
	}

	thread := &model.Thread{
		Title:      input.Title,
		Body:       input.Body,
		CategoryID: input.CategoryID,
		AuthorID:   authorID,
	}
	if err := s.forumRepo.CreateThread(thread); err != nil {
		return nil, err
	}

	logger.Info("Thread created", map[string]interface{}{
		"thread_id":   thread.ID,
		"category_id": thread.CategoryID,
		"author_id":   authorID,
	})
	return thread, nil
}

func (s *forumService) Reply(authorID, threadID uint, body string) (*model.Reply, error) {
	if _, err := s.findThread(threadID); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyReply
	}

	reply := &model.Reply{Body: body, ThreadID: threadID, AuthorID: authorID}
	if err := s.forumRepo.CreateReply(reply); err != nil {
		return nil, err
	}

	logger.Info("Reply added", map[string]interface{}{
		"reply_id":  reply.ID,
		"thread_id": threadID,
	})
	return reply, nil
}

func (s *forumService) CreateCategory(input ForumCategoryInput) (*model.ForumCategory, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		if _, err := s.findCategory(*input.ParentID); err != nil {
			if errors.Is(err, ErrForumCategoryNotFound) {
				return nil, validationError("parent category does not exist")
			}
			return nil, err
		}
	}

	if _, err := s.forumRepo.FindCategoryByName(input.Name); err == nil {
		return nil, ErrCategoryNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &model.ForumCategory{Name: input.Name, ParentID: input.ParentID}
	if err := s.forumRepo.CreateCategory(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}

	logger.Info("Forum category created", map[string]interface{}{
		"category_id": category.ID,
		"parent_id":   category.ParentID,
	})
	return category, nil
}

// DeleteCategory refuses while subcategories remain; otherwise the category
// goes together with its threads.
func (s *forumService) DeleteCategory(id uint) error {
	if _, err := s.findCategory(id); err != nil {
		return err
	}
	children, err := s.forumRepo.CountSubCategories(id)
	if err != nil {
		return err
	}
	if children > 0 {
		logger.Warn("Forum category delete refused: has subcategories", map[string]interface{}{
			"category_id": id,
			"children":    children,
		})
		return ErrCategoryHasChildren
	}

	if err := s.forumRepo.DeleteCategory(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForumCategoryNotFound
		}
		return err
	}

	logger.Info("Forum category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

func (s *forumService) MoveThread(id, categoryID uint) (*model.Thread, error) {
	if categoryID == 0 {
		return nil, validationError("please select a category")
	}
	if _, err := s.findThread(id); err != nil {
		return nil, err
	}
	if _, err := s.findCategory(categoryID); err != nil {
		if errors.Is(err, ErrForumCategoryNotFound) {
			return nil, validationError("forum category does not exist")
		}
		return nil, err
	}

	if err := s.forumRepo.MoveThread(id, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}

	logger.Info("Thread moved", map[string]interface{}{
		"thread_id":   id,
		"category_id": categoryID,
	})
	return s.findThread(id)
}

func (s *forumService) DeleteThread(id uint) error {
	if err := s.forumRepo.DeleteThread(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThreadNotFound
		}
		return err
	}
	logger.Info("Thread deleted", map[string]interface{}{
		"thread_id": id,
	})
	return nil
}

// DeleteReply returns the removed reply so callers can go back to its thread.
func (s *forumService) DeleteReply(id uint) (*model.Reply, error) {
	reply, err := s.forumRepo.FindReplyByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	if err := s.forumRepo.DeleteReply(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	logger.Info("Reply deleted", map[string]interface{}{
		"reply_id":  id,
		"thread_id": reply.ThreadID,
	})
	return reply, nil
}
