package controller

import (
	"errors"
	"net/http"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	apperrors "github.com/agrifarma/agrifarma-backend/internal/errors"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	applyPath                = "/consultancy/consultant/apply"
	consultancyDashboardPath = "/consultancy/admin/consultancy"
	actionDelete             = "delete"
)

type ConsultantController struct {
	consultantService service.ConsultantService
}

func NewConsultantController(consultantService service.ConsultantService) *ConsultantController {
	return &ConsultantController{
		consultantService: consultantService,
	}
}

type ApplyRequest struct {
	Name                string `form:"name" json:"name"`
	Email               string `form:"email" json:"email"`
	Phone               string `form:"phone" json:"phone"`
	ExpertiseCategoryID uint   `form:"expertise_category" json:"expertise_category"`
	Bio                 string `form:"bio" json:"bio"`
}

// Apply stores a consultant application
// POST /consultancy/consultant/apply
func (ctrl *ConsultantController) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "apply consultant", applyPath)
		return
	}

	picture, closePicture, err := formUpload(c, "profile_picture")
	if err != nil {
		respondError(c, err, "apply consultant", applyPath)
		return
	}
	defer closePicture()

	consultant, err := ctrl.consultantService.Apply(c.Request.Context(), service.ConsultantApplication{
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		ExpertiseCategoryID: req.ExpertiseCategoryID,
		Bio:                 req.Bio,
	}, picture)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			const msg = "An application with this email already exists."
			logFailure(c, err, "apply consultant", http.StatusConflict)
			if middleware.WantsJSON(c) {
				apperrors.Conflict(c, apperrors.ConsultantEmailExists, msg)
				return
			}
			redirectWithFlash(c, flash.Danger, msg, applyPath)
			return
		}
		respondError(c, err, "apply consultant", applyPath)
		return
	}

	const msg = "Application submitted successfully! We will review it soon."
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": msg, "consultant": consultant})
		return
	}
	redirectWithFlash(c, flash.Success, msg, applyPath)
}

// Browse lists approved consultants, optionally by expertise
// GET /consultancy/browse
func (ctrl *ConsultantController) Browse(c *gin.Context) {
	categoryID := optionalUintQuery(c, "category_id")

	consultants, err := ctrl.consultantService.Browse(model.ConsultantApproved, categoryID)
	if err != nil {
		respondJSONError(c, err, "browse consultants")
		return
	}
	c.JSON(http.StatusOK, gin.H{"consultants": consultants})
}

// Dashboard lists pending and approved consultants
// GET /consultancy/admin/consultancy
func (ctrl *ConsultantController) Dashboard(c *gin.Context) {
	dashboard, err := ctrl.consultantService.Dashboard()
	if err != nil {
		respondJSONError(c, err, "consultant dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Act approves, rejects or deletes a consultant
// POST /consultancy/admin/consultant/:id/:action
func (ctrl *ConsultantController) Act(c *gin.Context) {
	id, ok := parseIDParam(c, "id", consultancyDashboardPath)
	if !ok {
		return
	}
	action := c.Param("action")

	if action == actionDelete {
		if err := ctrl.consultantService.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err, "delete consultant", consultancyDashboardPath)
			return
		}
		respondOK(c, "Consultant deleted.", consultancyDashboardPath, nil)
		return
	}

	consultant, err := ctrl.consultantService.Decide(id, action)
	if err != nil {
		respondError(c, err, "update consultant", consultancyDashboardPath)
		return
	}

	message := "Consultant approved."
	if consultant.Status == model.ConsultantRejected {
		message = "Consultant rejected."
	}
	respondOK(c, message, consultancyDashboardPath, gin.H{"consultant": consultant})
}
