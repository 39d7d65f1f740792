package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bookmark_manager/config"
	"bookmark_manager/models"
)

func testInit() {
	Init(&config.Config{
		JWTSecret:       "test-secret",
		TokenExpiration: time.Hour,
		LoginURL:        "/login",
	})
}

func TestTokenRoundtrip(t *testing.T) {
	testInit()

	user := &models.User{ID: 42, Username: "alice"}
	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("claims.UserID = %d, want 42", claims.UserID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	testInit()

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/protected", AuthMiddleware(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	testInit()
	router := newAuthRouter()

	// No credentials, API client: 401.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/protected", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no-auth status = %d, want 401", w.Code)
	}

	// No credentials, browser: redirect to login.
	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("browser no-auth = %d -> %q, want 302 -> /login", w.Code, w.Header().Get("Location"))
	}

	// Valid token passes through with the user id set.
	token, err := GenerateToken(&models.User{ID: 7})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	// Malformed header shape is rejected.
	req = httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("malformed header status = %d, want 401", w.Code)
	}
}
