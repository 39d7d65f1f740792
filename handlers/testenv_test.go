package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookmark_manager/auth"
	"bookmark_manager/config"
	"bookmark_manager/database"
	"bookmark_manager/models"
)

func init() {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("bookmarkurl", func(fl validator.FieldLevel) bool {
			u, err := url.Parse(fl.Field().String())
			if err != nil {
				return false
			}
			return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		})
	}
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             "test-secret",
		TokenExpiration:       time.Hour,
		LoginURL:              "/login",
		FaviconTimeout:        time.Second,
		AbsoluteURLIsBookmark: true,
	}
}

func setupTestEnv(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := testConfig()
	auth.Init(cfg)
	Init(cfg)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	database.DB = db

	router := gin.New()
	router.POST("/api/register", Register)
	router.POST("/api/login", Login)
	router.GET("/bookmarks", ListBookmarks)
	router.GET("/bookmarks/:year/:month/:day/:slug", BookmarkDetail)
	router.GET("/tags/:name/bookmarks", BookmarksByTag)
	router.GET("/export/:model", ExportModel)

	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/add", ShowAddForm)
		api.POST("/add", AddBookmark)
		api.GET("/bookmarks/mine", ListMyBookmarks)
		api.GET("/instances/:id/edit", ShowEditForm)
		api.POST("/instances/:id/edit", EditInstance)
		api.POST("/instances/:id/delete", DeleteInstance)
	}

	return router
}

// createUserToken provisions a user and returns it with a bearer token.
func createUserToken(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	if err := database.DB.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	token, err := auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// serveHTML performs an unauthenticated request with an HTML Accept header,
// standing in for a browser without credentials.
func serveHTML(t *testing.T, router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func rowCount(t *testing.T, model interface{}) int64 {
	t.Helper()

	var count int64
	if err := database.DB.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}

// newSiteServer serves a site with a favicon, so submissions probe something
// local and fast.
func newSiteServer(t *testing.T, hasFavicon bool) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/favicon.ico" && !hasFavicon {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)
	return ts
}
