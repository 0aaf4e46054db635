package service

import (
	"context"
	"errors"
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	anonymousAuthor  = "Anonymous"
	latestPostsLimit = 5
)

// Like toggle outcomes
const (
	LikeActionLiked   = "liked"
	LikeActionUnliked = "unliked"
)

type PostInput struct {
	Title      string `validate:"required,max=200"`
	Body       string `validate:"required"`
	Tags       string `validate:"max=255"`
	CategoryID *uint
}

// CommentInput carries a comment or reply. AuthorID is nil for anonymous
// visitors.
type CommentInput struct {
	AuthorID   *uint
	AuthorName string
	Body       string
}

type BlogQuery struct {
	Search     string
	CategoryID *uint
	Tag        string
}

type BlogIndex struct {
	Posts      []model.Post         `json:"posts"`
	Categories []model.BlogCategory `json:"categories"`
}

type PostPage struct {
	Post     *model.Post         `json:"post"`
	Comments []model.BlogComment `json:"comments"`
	Latest   []model.Post        `json:"latest"`
}

type LikeResult struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

type BlogService interface {
	List(query BlogQuery) (*BlogIndex, error)
	PostPage(id uint) (*PostPage, error)
	Create(ctx context.Context, authorID uint, input PostInput, media *storage.Upload) (*model.Post, error)
	Comment(postID uint, input CommentInput) (*model.BlogComment, error)
	ReplyToComment(commentID uint, input CommentInput) (*model.CommentReply, error)
	ToggleLike(postID, userID uint) (*LikeResult, error)

	ListCategories() ([]model.BlogCategory, error)
	CreateCategory(name string) (*model.BlogCategory, error)
	DeleteCategory(id uint) error
	DeletePost(ctx context.Context, id uint) error
	DeleteComment(id uint) (*model.BlogComment, error)
}

type blogService struct {
	blogRepo repository.BlogRepository
	files    storage.FileStore
}

func NewBlogService(blogRepo repository.BlogRepository, files storage.FileStore) BlogService {
	return &blogService{blogRepo: blogRepo, files: files}
}

// normalizeTags lowercases, trims and de-duplicates a comma separated list.
func normalizeTags(raw string) string {
	seen := make(map[string]bool)
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return strings.Join(tags, ",")
}

func (s *blogService) List(query BlogQuery) (*BlogIndex, error) {
	posts, err := s.blogRepo.FindPosts(repository.PostFilter{
		Search:     query.Search,
		CategoryID: query.CategoryID,
		Tag:        query.Tag,
	})
	if err != nil {
		return nil, err
	}
	categories, err := s.blogRepo.FindCategories()
	if err != nil {
		return nil, err
	}
	return &BlogIndex{Posts: posts, Categories: categories}, nil
}

func (s *blogService) findPost(id uint) (*model.Post, error) {
	post, err := s.blogRepo.FindPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *blogService) PostPage(id uint) (*PostPage, error) {
	post, err := s.findPost(id)
	if err != nil {
		return nil, err
	}
	comments, err := s.blogRepo.FindComments(id)
	if err != nil {
		return nil, err
	}
	latest, err := s.blogRepo.FindPosts(repository.PostFilter{Limit: latestPostsLimit})
	if err != nil {
		return nil, err
	}
	return &PostPage{Post: post, Comments: comments, Latest: latest}, nil
}

func (s *blogService) Create(ctx context.Context, authorID uint, input PostInput, media *storage.Upload) (*model.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)
	input.Tags = normalizeTags(input.Tags)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkUploadAs(media, storage.BlogMediaExtensions, ErrUnsupportedMedia); err != nil {
		return nil, err
	}
	if input.CategoryID != nil {
		if _, err := s.blogRepo.FindCategoryByID(*input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationError("blog category does not exist")
			}
			return nil, err
		}
	}

	post := &model.Post{
		Title:      input.Title,
		Body:       input.Body,
		Tags:       input.Tags,
		AuthorID:   authorID,
		CategoryID: input.CategoryID,
	}
	if media != nil {
		post.MediaType = model.MediaTypeOf(media.Filename)
	}

	err := persistWithUpload(ctx, s.files, storage.FolderBlog, media,
		func(path string) error {
			post.MediaPath = path
			return s.blogRepo.CreatePost(post)
		},
		func() error {
			return s.blogRepo.DeletePost(post.ID)
		},
	)
	if err != nil {
		return nil, err
	}

	logger.Info("Blog post created", map[string]interface{}{
		"post_id":    post.ID,
		"author_id":  authorID,
		"media_type": post.MediaType,
	})
	return s.findPost(post.ID)
}

func commentAuthor(input CommentInput) string {
	if name := strings.TrimSpace(input.AuthorName); name != "" {
		return name
	}
	return anonymousAuthor
}

func (s *blogService) Comment(postID uint, input CommentInput) (*model.BlogComment, error) {
	if _, err := s.findPost(postID); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, ErrEmptyComment
	}

	comment := &model.BlogComment{
		PostID:     postID,
		AuthorID:   input.AuthorID,
		AuthorName: commentAuthor(input),
		Body:       body,
	}
	if err := s.blogRepo.CreateComment(comment); err != nil {
		return nil, err
	}

	logger.Info("Blog comment added", map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    postID,
	})
	return comment, nil
}

func (s *blogService) ReplyToComment(commentID uint, input CommentInput) (*model.CommentReply, error) {
	comment, err := s.blogRepo.FindCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, ErrEmptyReply
	}

	reply := &model.CommentReply{
		CommentID:  comment.ID,
		AuthorID:   input.AuthorID,
		AuthorName: commentAuthor(input),
		Body:       body,
	}
	if err := s.blogRepo.CreateCommentReply(reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// ToggleLike likes the post for userID, or takes the like back when one
// exists.
func (s *blogService) ToggleLike(postID, userID uint) (*LikeResult, error) {
	if _, err := s.findPost(postID); err != nil {
		return nil, err
	}
	liked, count, err := s.blogRepo.ToggleLike(postID, userID)
	if err != nil {
		return nil, err
	}

	action := LikeActionUnliked
	if liked {
		action = LikeActionLiked
	}
	logger.Debug("Post like toggled", map[string]interface{}{
		"post_id": postID,
		"user_id": userID,
		"action":  action,
	})
	return &LikeResult{Action: action, Count: count}, nil
}

func (s *blogService) ListCategories() ([]model.BlogCategory, error) {
	return s.blogRepo.FindCategories()
}

func (s *blogService) CreateCategory(name string) (*model.BlogCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("category name is required")
	}
	if len(name) > 100 {
		return nil, validationError("category name must be at most 100 characters")
	}

	if _, err := s.blogRepo.FindCategoryByName(name); err == nil {
		return nil, ErrCategoryNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &model.BlogCategory{Name: name}
	if err := s.blogRepo.CreateCategory(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}
	return category, nil
}

func (s *blogService) DeleteCategory(id uint) error {
	if err := s.blogRepo.DeleteCategory(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlogCategoryNotFound
		}
		return err
	}
	logger.Info("Blog category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

// DeletePost removes the post and its discussion; the media file is removed
// best-effort afterwards.
func (s *blogService) DeletePost(ctx context.Context, id uint) error {
	post, err := s.findPost(id)
	if err != nil {
		return err
	}
	if err := s.blogRepo.DeletePost(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	removeFileBestEffort(ctx, s.files, post.MediaPath)

	logger.Info("Blog post deleted", map[string]interface{}{
		"post_id": id,
	})
	return nil
}

// DeleteComment returns the removed comment so callers can go back to its
// post.
func (s *blogService) DeleteComment(id uint) (*model.BlogComment, error) {
	comment, err := s.blogRepo.FindCommentByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if err := s.blogRepo.DeleteComment(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}
