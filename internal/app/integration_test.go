package app

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/agrifarma/agrifarma-backend/config"
	"github.com/agrifarma/agrifarma-backend/internal/app/controller"
	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/agrifarma/agrifarma-backend/internal/db"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/agrifarma/agrifarma-backend/internal/router"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret     = "test-secret"
	testCookieName = "agrifarma_session"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := &config.Config{
		Server:  config.ServerConfig{GinMode: gin.TestMode},
		Session: config.SessionConfig{CookieName: testCookieName, Secret: "integration-flash-secret"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Storage: config.StorageConfig{Backend: "local", RootDir: t.TempDir()},
		Shop:    config.ShopConfig{ProductMaxDays: 30, DefaultPerPage: 12},
		Admin:   config.AdminConfig{Email: "admin@agrifarma.test", Password: "admin-pass", Name: "Admin"},
	}
	require.NoError(t, db.EnsureAdmin(testDB, cfg.Admin))

	files, err := storage.NewLocalStorage(cfg.Storage.RootDir, "/static")
	require.NoError(t, err)

	// Repositories
	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	// Services
	authService := service.NewAuthService(userRepo, files, nil, testSecret, time.Hour)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, files, cfg.Shop.DefaultPerPage)
	cartService := service.NewCartService(repository.NewCartRepository(testDB), productRepo)
	consultantService := service.NewConsultantService(repository.NewConsultantRepository(testDB), categoryRepo, files)
	messageService := service.NewMessageService(repository.NewMessageRepository(testDB))
	forumService := service.NewForumService(repository.NewForumRepository(testDB))
	blogService := service.NewBlogService(repository.NewBlogRepository(testDB), files)

	r := router.NewRouter(
		controller.NewAuthController(authService, cfg.Session),
		controller.NewProductController(productService, categoryService, files),
		controller.NewCartController(cartService),
		controller.NewConsultantController(consultantService),
		controller.NewCategoryController(categoryService),
		controller.NewMessageController(messageService),
		controller.NewForumController(forumService),
		controller.NewBlogController(blogService),
		controller.NewAdminController(productService, service.NewUserService(userRepo), cfg.Shop.ProductMaxDays),
		middleware.NewAuthMiddleware(testSecret, cfg.Session.CookieName, nil),
		cfg,
	)

	return &TestServer{Router: r.Setup(), DB: testDB}
}

// browser keeps cookies between requests like a real client.
type browser struct {
	t       *testing.T
	server  *TestServer
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, ts *TestServer) *browser {
	return &browser{t: t, server: ts, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range b.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	b.server.Router.ServeHTTP(w, req)
	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(b.cookies, cookie.Name)
			continue
		}
		b.cookies[cookie.Name] = cookie
	}
	return w
}

func (b *browser) postForm(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postJSON(target string, body interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(b.t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return b.do(req)
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) login(email, password string) {
	w := b.postJSON("/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(b.t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(b.t, b.cookies, testCookieName)
}

// flash reads and consumes the pending flash messages.
func (b *browser) flash() []string {
	w := b.get("/flash")
	require.Equal(b.t, http.StatusOK, w.Code)
	var body struct {
		Messages []struct {
			Category string `json:"category"`
			Message  string `json:"message"`
		} `json:"messages"`
	}
	require.NoError(b.t, json.Unmarshal(w.Body.Bytes(), &body))
	texts := make([]string, 0, len(body.Messages))
	for _, m := range body.Messages {
		texts = append(texts, m.Message)
	}
	return texts
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := newBrowser(t, ts).get("/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestCompleteShopJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	seller := newBrowser(t, ts)
	buyer := newBrowser(t, ts)

	t.Log("Step 1: Register seller and buyer")
	w := seller.postForm("/auth/register", url.Values{
		"name": {"Seller"}, "email": {"seller@farm.test"}, "password": {"secret123"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Registration successful! Please log in."}, seller.flash())
	w = buyer.postForm("/auth/register", url.Values{
		"name": {"Buyer"}, "email": {"buyer@farm.test"}, "password": {"secret123"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	buyer.flash()

	t.Log("Step 2: Seller lists a product with an image")
	seller.login("seller@farm.test", "secret123")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Drip irrigation kit"))
	require.NoError(t, mw.WriteField("price", "1200"))
	require.NoError(t, mw.WriteField("active", "on"))
	part, err := mw.CreateFormFile("image", "kit.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/shop/create", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = seller.do(req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/shop/my-products", w.Header().Get("Location"))
	assert.Equal(t, []string{"Product created successfully."}, seller.flash())

	var product model.Product
	require.NoError(t, ts.DB.First(&product).Error)

	t.Log("Step 3: The image is served from static storage")
	w = buyer.get("/shop/products/" + idPath(product.ID))
	require.Equal(t, http.StatusOK, w.Code)
	imageURL := decode(t, w)["image_url"].(string)
	require.True(t, strings.HasPrefix(imageURL, "/static/uploads/products/"), imageURL)
	w = buyer.get(imageURL)
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Equal(t, "png image bytes", string(body))

	t.Log("Step 4: Anonymous buyer is sent to login")
	w = buyer.postForm("/shop/add-to-cart/"+idPath(product.ID), url.Values{"quantity": {"2"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login?next="+url.QueryEscape("/shop/add-to-cart/"+idPath(product.ID)), w.Header().Get("Location"))
	assert.Equal(t, []string{"Please log in to access this page."}, buyer.flash())

	t.Log("Step 5: Buyer fills the cart")
	buyer.login("buyer@farm.test", "secret123")
	w = buyer.postForm("/shop/add-to-cart/"+idPath(product.ID), url.Values{"quantity": {"2"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = buyer.postForm("/shop/add-to-cart/"+idPath(product.ID)+"/ajax", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["cart_count"])

	w = buyer.get("/shop/cart")
	require.Equal(t, http.StatusOK, w.Code)
	totals := decode(t, w)["totals"].(map[string]interface{})
	assert.Equal(t, float64(3600), totals["total_price"])

	t.Log("Step 6: Seller pauses the product; the buyer can no longer see or add it")
	w = seller.postForm("/shop/products/"+idPath(product.ID)+"/toggle", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Product deactivated."}, seller.flash())

	w = buyer.get("/shop/products/" + idPath(product.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = buyer.get("/shop/cart-count")
	assert.Equal(t, float64(0), decode(t, w)["count"])

	t.Log("Step 7: Buyer cannot edit the seller's product")
	w = buyer.postForm("/shop/products/"+idPath(product.ID)+"/edit", url.Values{"price": {"1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/shop/", w.Header().Get("Location"))

	t.Log("Step 8: Logout ends the session")
	w = buyer.postForm("/auth/logout", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = buyer.get("/auth/me")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConsultancyAndInboxJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	admin := newBrowser(t, ts)
	visitor := newBrowser(t, ts)

	admin.login("admin@agrifarma.test", "admin-pass")
	w := admin.postForm("/admin/categories", url.Values{"name": {"Soil Science"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Category created successfully."}, admin.flash())
	var category model.Category
	require.NoError(t, ts.DB.First(&category).Error)

	t.Log("Visitor applies as a consultant")
	w = visitor.postForm("/consultancy/consultant/apply", url.Values{
		"name":               {"Dr. Iyer"},
		"email":              {"iyer@soil.test"},
		"phone":              {"9123456780"},
		"expertise_category": {idPath(category.ID)},
		"bio":                {strings.Repeat("Twenty years of soil testing and nutrient planning. ", 3)},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Len(t, decode(t, visitor.get("/consultancy/browse"))["consultants"], 0)

	t.Log("Visitor cannot reach the dashboard")
	w = visitor.get("/consultancy/admin/consultancy")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	t.Log("Admin approves the application")
	var consultant model.Consultant
	require.NoError(t, ts.DB.First(&consultant).Error)
	w = admin.postForm("/consultancy/admin/consultant/"+idPath(consultant.ID)+"/approve", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Consultant approved."}, admin.flash())

	w = visitor.get("/consultancy/browse?category_id=" + idPath(category.ID))
	consultants := decode(t, w)["consultants"].([]interface{})
	require.Len(t, consultants, 1)
	assert.Equal(t, "Soil Science", consultants[0].(map[string]interface{})["category_name"])

	t.Log("The category cannot be deleted while in use")
	w = admin.postForm("/admin/categories/"+idPath(category.ID)+"/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"This category is still used by consultants and cannot be deleted."}, admin.flash())

	t.Log("Visitor sends a contact message; admin reads it")
	w = visitor.postForm("/submit-message", url.Values{
		"name": {"Visitor"}, "email": {"visitor@mail.test"}, "message": {"Do you visit farms in Satara?"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/#contact-section", w.Header().Get("Location"))

	w = admin.get("/admin/messages?status=unread")
	messages := decode(t, w)["messages"].([]interface{})
	require.Len(t, messages, 1)
	id := uint(messages[0].(map[string]interface{})["id"].(float64))

	w = admin.get("/admin/messages/" + idPath(id))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, admin.get("/admin/messages?status=unread"))["messages"], 0)
}

func TestCommunityJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	admin := newBrowser(t, ts)
	member := newBrowser(t, ts)
	visitor := newBrowser(t, ts)

	t.Log("Admin opens a forum category")
	admin.login("admin@agrifarma.test", "admin-pass")
	w := admin.postForm("/admin/forum/categories", url.Values{"name": {"Crop Protection"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Category created successfully."}, admin.flash())
	var category model.ForumCategory
	require.NoError(t, ts.DB.First(&category).Error)

	t.Log("Member starts a thread and replies")
	w = member.postForm("/auth/register", url.Values{
		"name": {"Member"}, "email": {"member@farm.test"}, "password": {"secret123"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	member.flash()
	member.login("member@farm.test", "secret123")

	w = member.postForm("/forum/thread/new", url.Values{
		"title": {"Aphids on okra"}, "body": {"Leaves are curling, what works?"}, "category_id": {idPath(category.ID)},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	var thread model.Thread
	require.NoError(t, ts.DB.First(&thread).Error)
	assert.Equal(t, "/forum/thread/"+idPath(thread.ID), w.Header().Get("Location"))
	assert.Equal(t, []string{"Thread created successfully."}, member.flash())

	w = member.postForm("/forum/thread/"+idPath(thread.ID)+"/reply", url.Values{"body": {"  "}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Reply cannot be empty."}, member.flash())
	w = member.postForm("/forum/thread/"+idPath(thread.ID)+"/reply", url.Values{"body": {"Spray neem oil at dusk."}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Reply added successfully."}, member.flash())

	page := decode(t, visitor.get("/forum/thread/"+idPath(thread.ID)))
	replies := page["replies"].([]interface{})
	require.Len(t, replies, 1)
	assert.Equal(t, "Member", replies[0].(map[string]interface{})["author_name"])
	assert.Len(t, decode(t, visitor.get("/forum/search?q=APHIDS"))["threads"], 1)

	t.Log("Member blogs; a visitor comments anonymously")
	w = member.postForm("/blog/create", url.Values{
		"title": {"Mulching basics"}, "body": {"Straw keeps the soil cool."}, "tags": {"Soil, Organic"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Post created."}, member.flash())
	var post model.Post
	require.NoError(t, ts.DB.First(&post).Error)

	w = visitor.postForm("/blog/comment/"+idPath(post.ID), url.Values{"body": {"Thanks!"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Comment added."}, visitor.flash())
	comments := decode(t, visitor.get("/blog/post/"+idPath(post.ID)))["comments"].([]interface{})
	require.Len(t, comments, 1)
	assert.Equal(t, "Anonymous", comments[0].(map[string]interface{})["author_name"])
	assert.Len(t, decode(t, visitor.get("/blog/?tag=organic"))["posts"], 1)

	t.Log("Only logged-in users can like")
	w = visitor.postForm("/blog/like/"+idPath(post.ID), url.Values{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = member.postForm("/blog/like/"+idPath(post.ID), url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "liked", decode(t, w)["action"])
	assert.Equal(t, float64(1), decode(t, w)["count"])

	t.Log("Deleting the forum category removes its threads")
	w = admin.postForm("/admin/forum/categories/"+idPath(category.ID)+"/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"Category and associated threads deleted successfully."}, admin.flash())
	assert.Equal(t, http.StatusNotFound, visitor.get("/forum/thread/"+idPath(thread.ID)).Code)
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)
	b := newBrowser(t, ts)

	protectedRoutes := []string{
		"/auth/me",
		"/shop/cart",
		"/shop/my-products",
		"/admin/products",
		"/admin/users",
		"/admin/messages",
		"/admin/forum",
		"/admin/blog/categories",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			w := b.get(route)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "AUTH_UNAUTHORIZED", decode(t, w)["error"])
		})
	}
}

func idPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
