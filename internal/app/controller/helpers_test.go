package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/db"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/agrifarma/agrifarma-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret     = "test-secret"
	testCookieName = "agrifarma_session"
)

type testEnv struct {
	db     *gorm.DB
	files  *storage.LocalStorage
	auth   *middleware.AuthMiddleware
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	files, err := storage.NewLocalStorage(t.TempDir(), "/static")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	auth := middleware.NewAuthMiddleware(testSecret, testCookieName, nil)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(flash.Middleware(testSecret, false))
	router.Use(auth.LoadSession())

	return &testEnv{db: testDB, files: files, auth: auth, router: router}
}

func (e *testEnv) createUser(t *testing.T, email string, role model.UserRole) *model.User {
	t.Helper()
	hash, err := util.HashPassword("password123")
	require.NoError(t, err)
	user := &model.User{Name: strings.Split(email, "@")[0], Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createProduct(t *testing.T, title string, price float64, active bool, seller *model.User) *model.Product {
	t.Helper()
	product := &model.Product{Title: title, Price: price, Active: active}
	if seller != nil {
		product.SellerID = &seller.ID
		product.SellerEmail = seller.Email
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func sessionToken(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := util.GenerateSessionToken(util.SessionSubject{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
	}, testSecret, time.Hour)
	require.NoError(t, err)
	return token.Token
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// formRequest builds a browser style form post.
func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	return req
}

// flashMessages reads back the messages carried by the last flash cookie set
// on the response.
func flashMessages(t *testing.T, w *httptest.ResponseRecorder) []flash.Message {
	t.Helper()
	var last *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == flash.CookieName && cookie.Value != "" {
			last = cookie
		}
	}
	if last == nil {
		return nil
	}

	reader := gin.New()
	reader.Use(flash.Middleware(testSecret, false))
	reader.GET("/flash", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"messages": flash.Pop(c)})
	})
	req := httptest.NewRequest(http.MethodGet, "/flash", nil)
	req.AddCookie(last)
	rec := httptest.NewRecorder()
	reader.ServeHTTP(rec, req)

	var body struct {
		Messages []flash.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Messages
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// multipartRequest builds a form post carrying one file under field.
func multipartRequest(t *testing.T, target string, values url.Values, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, vals := range values {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
