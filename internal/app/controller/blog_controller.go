package controller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	apperrors "github.com/agrifarma/agrifarma-backend/internal/errors"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	blogHomePath            = "/blog/"
	adminBlogCategoriesPath = "/admin/blog/categories"
)

func postPath(id uint) string {
	return fmt.Sprintf("/blog/post/%d", id)
}

type BlogController struct {
	blogService service.BlogService
}

func NewBlogController(blogService service.BlogService) *BlogController {
	return &BlogController{
		blogService: blogService,
	}
}

type PostRequest struct {
	Title      string `form:"title" json:"title"`
	Body       string `form:"body" json:"body"`
	Tags       string `form:"tags" json:"tags"`
	CategoryID *uint  `form:"category_id" json:"category_id"`
}

type CommentRequest struct {
	AuthorName string `form:"author_name" json:"author_name"`
	Body       string `form:"body" json:"body"`
}

type BlogCategoryRequest struct {
	Name string `form:"name" json:"name"`
}

// commentInput attributes a comment to the logged-in user, or to the name the
// visitor typed.
func commentInput(c *gin.Context, req CommentRequest) service.CommentInput {
	input := service.CommentInput{AuthorName: req.AuthorName, Body: req.Body}
	if auth := middleware.GetAuth(c); middleware.IsAuthenticated(auth) {
		userID := auth.UserID
		input.AuthorID = &userID
		input.AuthorName = auth.Name
	}
	return input
}

// ListPosts returns posts filtered by q, cat and tag, newest first
// GET /blog/
func (ctrl *BlogController) ListPosts(c *gin.Context) {
	index, err := ctrl.blogService.List(service.BlogQuery{
		Search:     strings.TrimSpace(c.Query("q")),
		CategoryID: optionalUintQuery(c, "cat"),
		Tag:        strings.TrimSpace(c.Query("tag")),
	})
	if err != nil {
		respondJSONError(c, err, "list posts")
		return
	}
	c.JSON(http.StatusOK, index)
}

// GetPost returns a post with its comments
// GET /blog/post/:id
func (ctrl *BlogController) GetPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id", blogHomePath)
	if !ok {
		return
	}
	page, err := ctrl.blogService.PostPage(id)
	if err != nil {
		respondJSONError(c, err, "get post")
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreatePost publishes a post with an optional media file
// POST /blog/create
func (ctrl *BlogController) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "create post", blogHomePath)
		return
	}
	if req.CategoryID != nil && *req.CategoryID == 0 {
		req.CategoryID = nil
	}

	media, closeMedia, err := formUpload(c, "media")
	if err != nil {
		respondError(c, err, "create post", blogHomePath)
		return
	}
	defer closeMedia()

	post, err := ctrl.blogService.Create(c.Request.Context(), middleware.GetAuth(c).UserID, service.PostInput{
		Title:      req.Title,
		Body:       req.Body,
		Tags:       req.Tags,
		CategoryID: req.CategoryID,
	}, media)
	if err != nil {
		respondError(c, err, "create post", blogHomePath)
		return
	}

	const msg = "Post created."
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": msg, "post": post})
		return
	}
	redirectWithFlash(c, flash.Success, msg, postPath(post.ID))
}

// Comment adds a comment; visitors may comment without logging in
// POST /blog/comment/:id
func (ctrl *BlogController) Comment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", blogHomePath)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "comment on post", postPath(id))
		return
	}

	comment, err := ctrl.blogService.Comment(id, commentInput(c, req))
	if err != nil {
		respondError(c, err, "comment on post", postPath(id))
		return
	}

	const msg = "Comment added."
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": msg, "comment": comment})
		return
	}
	redirectWithFlash(c, flash.Success, msg, postPath(id))
}

// ReplyToComment answers a comment
// POST /blog/comment/:id/reply
func (ctrl *BlogController) ReplyToComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", blogHomePath)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "reply to comment", back(c, blogHomePath))
		return
	}

	reply, err := ctrl.blogService.ReplyToComment(id, commentInput(c, req))
	if err != nil {
		respondError(c, err, "reply to comment", back(c, blogHomePath))
		return
	}

	const msg = "Reply added."
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": msg, "reply": reply})
		return
	}
	redirectWithFlash(c, flash.Success, msg, back(c, blogHomePath))
}

// ToggleLike likes or unlikes a post. Always answers JSON.
// POST /blog/like/:id
func (ctrl *BlogController) ToggleLike(c *gin.Context) {
	auth := middleware.GetAuth(c)
	if !middleware.IsAuthenticated(auth) {
		apperrors.Unauthorized(c, "", "Login required")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return
	}

	result, err := ctrl.blogService.ToggleLike(id, auth.UserID)
	if err != nil {
		respondJSONError(c, err, "like post")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"action":  result.Action,
		"count":   result.Count,
	})
}

// ListCategories returns blog categories
// GET /admin/blog/categories
func (ctrl *BlogController) ListCategories(c *gin.Context) {
	categories, err := ctrl.blogService.ListCategories()
	if err != nil {
		respondJSONError(c, err, "list blog categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory adds a blog category
// POST /admin/blog/categories
func (ctrl *BlogController) CreateCategory(c *gin.Context) {
	var req BlogCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "create blog category", adminBlogCategoriesPath)
		return
	}
	category, err := ctrl.blogService.CreateCategory(req.Name)
	if err != nil {
		respondError(c, err, "create blog category", adminBlogCategoriesPath)
		return
	}
	respondOK(c, "Saved.", adminBlogCategoriesPath, gin.H{"category": category})
}

// DeleteCategory removes a blog category; its posts become uncategorized
// POST /admin/blog/categories/:id/delete
func (ctrl *BlogController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminBlogCategoriesPath)
	if !ok {
		return
	}
	if err := ctrl.blogService.DeleteCategory(id); err != nil {
		respondError(c, err, "delete blog category", adminBlogCategoriesPath)
		return
	}
	respondOK(c, "Deleted.", adminBlogCategoriesPath, nil)
}

// DeletePost removes a post with its comments and media
// POST /admin/blog/posts/:id/delete
func (ctrl *BlogController) DeletePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id", blogHomePath)
	if !ok {
		return
	}
	if err := ctrl.blogService.DeletePost(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete post", blogHomePath)
		return
	}
	respondOK(c, "Post removed.", blogHomePath, nil)
}

// DeleteComment removes a comment and its replies
// POST /admin/blog/comments/:id/delete
func (ctrl *BlogController) DeleteComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", blogHomePath)
	if !ok {
		return
	}
	comment, err := ctrl.blogService.DeleteComment(id)
	if err != nil {
		respondError(c, err, "delete comment", blogHomePath)
		return
	}
	respondOK(c, "Comment removed.", postPath(comment.PostID), nil)
}
