package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"bookmark_manager/config"
	"bookmark_manager/models"
)

var (
	jwtKey          []byte
	tokenExpiration = 24 * time.Hour
	loginURL        = "/login"
)

// Init wires the auth package to the loaded configuration. Must run before
// any token is generated or validated.
func Init(cfg *config.Config) {
	jwtKey = []byte(cfg.JWTSecret)
	tokenExpiration = cfg.TokenExpiration
	loginURL = cfg.LoginURL
}

type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

func GenerateToken(user *models.User) (string, error) {
	expirationTime := time.Now().Add(tokenExpiration)
	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// AuthMiddleware verifies JWT tokens in the Authorization header. Browser
// requests without credentials are redirected to the login page; API clients
// get a 401 body.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			reject(c, "Authorization header is required")
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			reject(c, "Authorization header must be in format: Bearer {token}")
			return
		}

		claims, err := ValidateToken(bearerToken[1])
		if err != nil {
			reject(c, err.Error())
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}

func reject(c *gin.Context, msg string) {
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, loginURL)
	} else {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	}
	c.Abort()
}

// GetUserID extracts the authenticated user's ID from the context.
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}
