package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is built once at startup and passed into the handlers; nothing else
// reads the environment after Load returns.
type Config struct {
	ListenAddr string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	MigrationsPath string // empty = fall back to AutoMigrate

	JWTSecret       string
	TokenExpiration time.Duration

	LoginURL string // where unauthenticated browser requests are sent

	FaviconTimeout time.Duration

	// VerifyExists makes submission validation probe the URL itself and
	// reject unreachable links. Off by default, matching the original
	// deployment.
	VerifyExists bool

	// AbsoluteURLIsBookmark makes detail links point at the bookmarked URL
	// itself instead of the date+slug detail page.
	AbsoluteURLIsBookmark bool

	LogLevel  string
	PrettyLog bool
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func Load() *Config {
	return &Config{
		ListenAddr: getenv("LISTEN_ADDR", ":8080"),

		DBHost:     getenv("DB_HOST", "127.0.0.1"),
		DBUser:     getenv("DB_USER", "bookmarks"),
		DBPassword: getenv("DB_PASSWORD", "bookmarks"),
		DBName:     getenv("DB_NAME", "bookmarks"),
		DBPort:     getenv("DB_PORT", "5432"),

		MigrationsPath: getenv("MIGRATIONS_PATH", "migrations"),

		JWTSecret:       getenv("JWT_SECRET", "change-me-in-production"),
		TokenExpiration: mustDuration("TOKEN_EXPIRATION", 24*time.Hour),

		LoginURL: getenv("LOGIN_URL", "/login"),

		FaviconTimeout: mustDuration("FAVICON_TIMEOUT", 3*time.Second),

		VerifyExists:          mustBool("VERIFY_EXISTS", false),
		AbsoluteURLIsBookmark: mustBool("ABSOLUTE_URL_IS_BOOKMARK", true),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		PrettyLog: mustBool("PRETTY_LOG", false),
	}
}

func getenv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func mustBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func mustDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
