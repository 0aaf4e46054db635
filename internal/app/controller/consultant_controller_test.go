package controller

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var consultantBio = strings.Repeat("Soil health and irrigation planning for smallholder farms. ", 3)

func setupConsultantControllerTest(t *testing.T) (*testEnv, *model.Category) {
	env := newTestEnv(t)
	consultantService := service.NewConsultantService(
		repository.NewConsultantRepository(env.db),
		repository.NewCategoryRepository(env.db),
		env.files,
	)
	ctrl := NewConsultantController(consultantService)

	admin := env.auth.RequireAdmin()
	env.router.POST("/consultancy/consultant/apply", ctrl.Apply)
	env.router.GET("/consultancy/browse", ctrl.Browse)
	env.router.GET("/consultancy/admin/consultancy", admin, ctrl.Dashboard)
	env.router.POST("/consultancy/admin/consultant/:id/:action", admin, ctrl.Act)

	category := &model.Category{Name: "Agronomy"}
	require.NoError(t, env.db.Create(category).Error)
	return env, category
}

func applicationForm(category *model.Category, email string) url.Values {
	return url.Values{
		"name":               {"Dr. Kavya"},
		"email":              {email},
		"phone":              {"9876543210"},
		"expertise_category": {uintString(category.ID)},
		"bio":                {consultantBio},
	}
}

func (e *testEnv) createConsultant(t *testing.T, category *model.Category, email string, status model.ConsultantStatus) *model.Consultant {
	t.Helper()
	consultant := &model.Consultant{
		Name:                "Consultant",
		Email:               email,
		Phone:               "9876543210",
		ExpertiseCategoryID: category.ID,
		Bio:                 consultantBio,
		Status:              status,
	}
	require.NoError(t, e.db.Create(consultant).Error)
	return consultant
}

func TestConsultantController_Apply_Form(t *testing.T) {
	env, category := setupConsultantControllerTest(t)

	w := env.serve(formRequest(http.MethodPost, "/consultancy/consultant/apply", applicationForm(category, "Kavya@Agro.test")))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, applyPath, w.Header().Get("Location"))
	messages := flashMessages(t, w)
	require.Len(t, messages, 1)
	assert.Equal(t, flash.Success, messages[0].Category)

	var stored model.Consultant
	require.NoError(t, env.db.First(&stored).Error)
	assert.Equal(t, "kavya@agro.test", stored.Email)
	assert.Equal(t, model.ConsultantPending, stored.Status)
}

func TestConsultantController_Apply_WithPicture(t *testing.T) {
	env, category := setupConsultantControllerTest(t)

	req := multipartRequest(t, "/consultancy/consultant/apply", applicationForm(category, "pic@agro.test"),
		"profile_picture", "me.jpg", []byte("jpeg"))
	req.Header.Set("Accept", "application/json")
	w := env.serve(req)

	require.Equal(t, http.StatusCreated, w.Code)
	consultant := decodeBody(t, w)["consultant"].(map[string]interface{})
	picture, _ := consultant["profile_picture"].(string)
	assert.True(t, strings.HasPrefix(picture, "uploads/consultants/"), picture)
}

func TestConsultantController_Apply_RejectsGif(t *testing.T) {
	env, category := setupConsultantControllerTest(t)

	req := multipartRequest(t, "/consultancy/consultant/apply", applicationForm(category, "gif@agro.test"),
		"profile_picture", "me.gif", []byte("gif"))
	req.Header.Set("Accept", "application/json")
	w := env.serve(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UPLOAD_INVALID_FILE_TYPE", decodeBody(t, w)["error"])
}

func TestConsultantController_Apply_DuplicateEmail(t *testing.T) {
	env, category := setupConsultantControllerTest(t)
	env.createConsultant(t, category, "dup@agro.test", model.ConsultantPending)

	t.Run("form", func(t *testing.T) {
		w := env.serve(formRequest(http.MethodPost, "/consultancy/consultant/apply", applicationForm(category, "DUP@agro.test")))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		messages := flashMessages(t, w)
		require.Len(t, messages, 1)
		assert.Equal(t, flash.Danger, messages[0].Category)
	})

	t.Run("json", func(t *testing.T) {
		req := formRequest(http.MethodPost, "/consultancy/consultant/apply", applicationForm(category, "dup@agro.test"))
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		w := env.serve(req)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONSULTANT_EMAIL_EXISTS", decodeBody(t, w)["error"])
	})
}

func TestConsultantController_Apply_ShortBio(t *testing.T) {
	env, category := setupConsultantControllerTest(t)
	form := applicationForm(category, "short@agro.test")
	form.Set("bio", "Too short")

	w := env.serve(formRequest(http.MethodPost, "/consultancy/consultant/apply", form))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	messages := flashMessages(t, w)
	require.Len(t, messages, 1)
	assert.Equal(t, flash.Warning, messages[0].Category)

	var count int64
	require.NoError(t, env.db.Model(&model.Consultant{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConsultantController_Browse(t *testing.T) {
	env, category := setupConsultantControllerTest(t)
	other := &model.Category{Name: "Livestock"}
	require.NoError(t, env.db.Create(other).Error)
	env.createConsultant(t, category, "a@agro.test", model.ConsultantApproved)
	env.createConsultant(t, other, "b@agro.test", model.ConsultantApproved)
	env.createConsultant(t, category, "c@agro.test", model.ConsultantPending)

	w := env.serve(jsonRequest(t, http.MethodGet, "/consultancy/browse", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["consultants"], 2)

	w = env.serve(jsonRequest(t, http.MethodGet, "/consultancy/browse?category_id="+uintString(other.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)
	consultants := decodeBody(t, w)["consultants"].([]interface{})
	require.Len(t, consultants, 1)
	assert.Equal(t, "Livestock", consultants[0].(map[string]interface{})["category_name"])
}

func TestConsultantController_Act(t *testing.T) {
	env, category := setupConsultantControllerTest(t)
	admin := env.createUser(t, "admin@farm.test", model.RoleAdmin)
	token := sessionToken(t, admin)
	consultant := env.createConsultant(t, category, "a@agro.test", model.ConsultantPending)
	base := "/consultancy/admin/consultant/" + uintString(consultant.ID)

	w := env.serve(withSession(formRequest(http.MethodPost, base+"/approve", url.Values{}), token))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, consultancyDashboardPath, w.Header().Get("Location"))
	messages := flashMessages(t, w)
	require.Len(t, messages, 1)
	assert.Equal(t, "Consultant approved.", messages[0].Text)

	// Decisions are final.
	w = env.serve(withSession(jsonRequest(t, http.MethodPost, base+"/reject", nil), token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONSULTANT_INVALID_TRANSITION", decodeBody(t, w)["error"])

	w = env.serve(withSession(jsonRequest(t, http.MethodPost, base+"/promote", nil), token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONSULTANT_INVALID_ACTION", decodeBody(t, w)["error"])

	w = env.serve(withSession(jsonRequest(t, http.MethodPost, base+"/delete", nil), token))
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.serve(withSession(jsonRequest(t, http.MethodPost, base+"/delete", nil), token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsultantController_AdminOnly(t *testing.T) {
	env, _ := setupConsultantControllerTest(t)
	user := env.createUser(t, "user@farm.test", model.RoleUser)

	w := env.serve(withSession(jsonRequest(t, http.MethodGet, "/consultancy/admin/consultancy", nil), sessionToken(t, user)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.serve(withSession(formRequest(http.MethodPost, "/consultancy/admin/consultant/1/approve", url.Values{}), sessionToken(t, user)))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestConsultantController_Dashboard(t *testing.T) {
	env, category := setupConsultantControllerTest(t)
	admin := env.createUser(t, "admin@farm.test", model.RoleAdmin)
	env.createConsultant(t, category, "p@agro.test", model.ConsultantPending)
	env.createConsultant(t, category, "a@agro.test", model.ConsultantApproved)
	env.createConsultant(t, category, "r@agro.test", model.ConsultantRejected)

	w := env.serve(withSession(jsonRequest(t, http.MethodGet, "/consultancy/admin/consultancy", nil), sessionToken(t, admin)))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["pending"], 1)
	assert.Len(t, body["approved"], 1)
}
