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

type ConsultantApplication struct {
	Name                string `validate:"required,min=2,max=100"`
	Email               string `validate:"required,email,max=120"`
	Phone               string `validate:"required,min=10,max=20"`
	ExpertiseCategoryID uint   `validate:"required"`
	Bio                 string `validate:"required,min=100,max=2000"`
}

// Decision actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type ConsultantDashboard struct {
	Pending  []model.Consultant `json:"pending"`
	Approved []model.Consultant `json:"approved"`
}

type ConsultantService interface {
	Apply(ctx context.Context, input ConsultantApplication, picture *storage.Upload) (*model.Consultant, error)
	Decide(id uint, action string) (*model.Consultant, error)
	Delete(ctx context.Context, id uint) error
	Browse(status model.ConsultantStatus, categoryID *uint) ([]model.Consultant, error)
	Dashboard() (*ConsultantDashboard, error)
}

type consultantService struct {
	consultantRepo repository.ConsultantRepository
	categoryRepo   repository.CategoryRepository
	files          storage.FileStore
}

func NewConsultantService(
	consultantRepo repository.ConsultantRepository,
	categoryRepo repository.CategoryRepository,
	files storage.FileStore,
) ConsultantService {
	return &consultantService{
		consultantRepo: consultantRepo,
		categoryRepo:   categoryRepo,
		files:          files,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *consultantService) Apply(ctx context.Context, input ConsultantApplication, picture *storage.Upload) (*model.Consultant, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Bio = strings.TrimSpace(input.Bio)

	logger.Info("Consultant application received", map[string]interface{}{
		"email":       input.Email,
		"category_id": input.ExpertiseCategoryID,
	})

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkUpload(picture, storage.ConsultantPictureExtension); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(input.ExpertiseCategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("expertise category does not exist")
		}
		return nil, err
	}

	exists, err := s.consultantRepo.ExistsByEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Consultant application rejected: duplicate email", map[string]interface{}{
			"email": input.Email,
		})
		return nil, ErrDuplicateEmail
	}

	consultant := &model.Consultant{
		Name:                input.Name,
		Email:               input.Email,
		Phone:               input.Phone,
		ExpertiseCategoryID: input.ExpertiseCategoryID,
		Bio:                 input.Bio,
		Status:              model.ConsultantPending,
	}

	err = persistWithUpload(ctx, s.files, storage.FolderConsultants, picture,
		func(path string) error {
			consultant.ProfilePicture = path
			if err := s.consultantRepo.Create(consultant); err != nil {
				// Lost the race against a concurrent application
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicateEmail
				}
				return err
			}
			return nil
		},
		func() error {
			return s.consultantRepo.Delete(consultant.ID)
		},
	)
	if err != nil {
		return nil, err
	}

	logger.Info("Consultant application stored", map[string]interface{}{
		"consultant_id": consultant.ID,
	})
	return consultant, nil
}

// Decide moves a pending consultant to approved or rejected. Reviewed
// consultants are terminal and can only be deleted.
func (s *consultantService) Decide(id uint, action string) (*model.Consultant, error) {
	var target model.ConsultantStatus
	switch action {
	case ActionApprove:
		target = model.ConsultantApproved
	case ActionReject:
		target = model.ConsultantRejected
	default:
		return nil, ErrInvalidAction
	}

	consultant, err := s.consultantRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultantNotFound
		}
		return nil, err
	}
	if consultant.Status != model.ConsultantPending {
		logger.Warn("Consultant decision refused: already reviewed", map[string]interface{}{
			"consultant_id": id,
			"status":        consultant.Status,
		})
		return nil, ErrInvalidTransition
	}

	if err := s.consultantRepo.UpdateStatus(id, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultantNotFound
		}
		return nil, err
	}

	logger.Info("Consultant reviewed", map[string]interface{}{
		"consultant_id": id,
		"status":        target,
	})
	return s.consultantRepo.FindByID(id)
}

// Delete removes the row; the picture is removed best-effort afterwards.
func (s *consultantService) Delete(ctx context.Context, id uint) error {
	consultant, err := s.consultantRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConsultantNotFound
		}
		return err
	}

	if err := s.consultantRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConsultantNotFound
		}
		return err
	}
	removeFileBestEffort(ctx, s.files, consultant.ProfilePicture)

	logger.Info("Consultant deleted", map[string]interface{}{
		"consultant_id": id,
	})
	return nil
}

func (s *consultantService) Browse(status model.ConsultantStatus, categoryID *uint) ([]model.Consultant, error) {
	if !status.Valid() {
		return nil, validationError("unknown consultant status %q", status)
	}
	return s.consultantRepo.FindByStatus(status, categoryID)
}

func (s *consultantService) Dashboard() (*ConsultantDashboard, error) {
	pending, err := s.consultantRepo.FindByStatus(model.ConsultantPending, nil)
	if err != nil {
		return nil, err
	}
	approved, err := s.consultantRepo.FindByStatus(model.ConsultantApproved, nil)
	if err != nil {
		return nil, err
	}
	return &ConsultantDashboard{Pending: pending, Approved: approved}, nil
}
