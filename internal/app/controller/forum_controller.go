package controller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	forumHomePath  = "/forum/"
	adminForumPath = "/admin/forum"
)

func threadPath(id uint) string {
	return fmt.Sprintf("/forum/thread/%d", id)
}

type ForumController struct {
	forumService service.ForumService
}

func NewForumController(forumService service.ForumService) *ForumController {
	return &ForumController{
		forumService: forumService,
	}
}

type ThreadRequest struct {
	Title      string `form:"title" json:"title"`
	Body       string `form:"body" json:"body"`
	CategoryID uint   `form:"category_id" json:"category_id"`
}

type ReplyRequest struct {
	Body string `form:"body" json:"body"`
}

type ForumCategoryRequest struct {
	Name     string `form:"name" json:"name"`
	ParentID *uint  `form:"parent_id" json:"parent_id"`
}

type MoveThreadRequest struct {
	CategoryID uint `form:"category_id" json:"category_id"`
}

// Home lists forum categories and the latest threads
// GET /forum/
func (ctrl *ForumController) Home(c *gin.Context) {
	home, err := ctrl.forumService.Home()
	if err != nil {
		respondJSONError(c, err, "forum home")
		return
	}
	c.JSON(http.StatusOK, home)
}

// Search finds threads by title or body
// GET /forum/search?q=
func (ctrl *ForumController) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	threads, err := ctrl.forumService.Search(term)
	if err != nil {
		respondJSONError(c, err, "search threads")
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": term, "threads": threads})
}

// GetThread returns a thread with its replies and related threads
// GET /forum/thread/:id
func (ctrl *ForumController) GetThread(c *gin.Context) {
	id, ok := parseIDParam(c, "id", forumHomePath)
	if !ok {
		return
	}
	page, err := ctrl.forumService.ThreadPage(id)
	if err != nil {
		respondJSONError(c, err, "get thread")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetCategory returns a category with its threads
// GET /forum/category/:id
func (ctrl *ForumController) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", forumHomePath)
	if !ok {
		return
	}
	page, err := ctrl.forumService.CategoryPage(id)
	if err != nil {
		respondJSONError(c, err, "get forum category")
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateThread starts a discussion
// POST /forum/thread/new
func (ctrl *ForumController) CreateThread(c *gin.Context) {
	var req ThreadRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "create thread", forumHomePath)
		return
	}

	auth := middleware.GetAuth(c)
	thread, err := ctrl.forumService.CreateThread(auth.UserID, service.ThreadInput{
		Title:      req.Title,
		Body:       req.Body,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		respondError(c, err, "create thread", forumHomePath)
		return
	}

	const msg = "Thread created successfully."
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": msg, "thread": thread})
		return
	}
	redirectWithFlash(c, flash.Success, msg, threadPath(thread.ID))
}

// Reply adds a reply to a thread
// POST /forum/thread/:id/reply
func (ctrl *ForumController) Reply(c *gin.Context) {
	id, ok := parseIDParam(c, "id", forumHomePath)
	if !ok {
		return
	}
	var req ReplyRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "reply to thread", threadPath(id))
		return
	}

	reply, err := ctrl.forumService.Reply(middleware.GetAuth(c).UserID, id, req.Body)
	if err != nil {
		respondError(c, err, "reply to thread", threadPath(id))
		return
	}

	const msg = "Reply added successfully."
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": msg, "reply": reply})
		return
	}
	redirectWithFlash(c, flash.Success, msg, threadPath(id))
}

// Dashboard lists categories and recent threads for moderation
// GET /admin/forum
func (ctrl *ForumController) Dashboard(c *gin.Context) {
	dashboard, err := ctrl.forumService.Dashboard()
	if err != nil {
		respondJSONError(c, err, "forum dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// CreateCategory adds a forum category, or a subcategory when parent_id is set
// POST /admin/forum/categories
func (ctrl *ForumController) CreateCategory(c *gin.Context) {
	var req ForumCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "create forum category", adminForumPath)
		return
	}
	if req.ParentID != nil && *req.ParentID == 0 {
		req.ParentID = nil
	}

	category, err := ctrl.forumService.CreateCategory(service.ForumCategoryInput{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(c, err, "create forum category", adminForumPath)
		return
	}
	respondOK(c, "Category created successfully.", adminForumPath, gin.H{"category": category})
}

// DeleteCategory removes a category and its threads
// POST /admin/forum/categories/:id/delete
func (ctrl *ForumController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminForumPath)
	if !ok {
		return
	}
	if err := ctrl.forumService.DeleteCategory(id); err != nil {
		respondError(c, err, "delete forum category", adminForumPath)
		return
	}
	respondOK(c, "Category and associated threads deleted successfully.", adminForumPath, nil)
}

// MoveThread puts a thread in another category
// POST /admin/forum/threads/:id/move
func (ctrl *ForumController) MoveThread(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminForumPath)
	if !ok {
		return
	}
	var req MoveThreadRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "move thread", adminForumPath)
		return
	}

	thread, err := ctrl.forumService.MoveThread(id, req.CategoryID)
	if err != nil {
		respondError(c, err, "move thread", adminForumPath)
		return
	}
	respondOK(c, "Thread moved successfully.", threadPath(id), gin.H{"thread": thread})
}

// DeleteThread removes a thread and its replies
// POST /admin/forum/threads/:id/delete
func (ctrl *ForumController) DeleteThread(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminForumPath)
	if !ok {
		return
	}
	if err := ctrl.forumService.DeleteThread(id); err != nil {
		respondError(c, err, "delete thread", adminForumPath)
		return
	}
	respondOK(c, "Thread deleted successfully.", adminForumPath, nil)
}

// DeleteReply removes one reply
// POST /admin/forum/replies/:id/delete
func (ctrl *ForumController) DeleteReply(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminForumPath)
	if !ok {
		return
	}
	reply, err := ctrl.forumService.DeleteReply(id)
	if err != nil {
		respondError(c, err, "delete reply", adminForumPath)
		return
	}
	respondOK(c, "Reply deleted successfully.", threadPath(reply.ThreadID), nil)
}
