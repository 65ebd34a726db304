package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPublicGroupID is the id of the seeded public community group.
const DefaultPublicGroupID uint = 1

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	JWTSecret string
	JWTTTL    time.Duration

	// PublicGroupID is the only group whose leaderboards hide private members.
	PublicGroupID   uint
	PublicGroupName string
	// Location fixes the calendar used for today/yesterday/week boundaries.
	Location *time.Location

	RateLimitUpload   time.Duration
	RateLimitJoinCode time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "sheesh"),

		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		PublicGroupName: getEnv("PUBLIC_GROUP_NAME", "Sheesh"),
	}

	var err error
	cfg.PublicGroupID, err = parseID(getEnv("PUBLIC_GROUP_ID", strconv.FormatUint(uint64(DefaultPublicGroupID), 10)))
	if err != nil {
		return nil, fmt.Errorf("invalid PUBLIC_GROUP_ID: %w", err)
	}

	cfg.Location, err = time.LoadLocation(getEnv("LEADERBOARD_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_TIMEZONE: %w", err)
	}

	ttlMinutes, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %w", err)
	}
	cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute

	cfg.RateLimitUpload, err = time.ParseDuration(getEnv("RATE_LIMIT_UPLOAD", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_UPLOAD: %w", err)
	}
	cfg.RateLimitJoinCode, err = time.ParseDuration(getEnv("RATE_LIMIT_JOIN_CODE", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_JOIN_CODE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks invariants that the env parsing alone cannot.
func (c *Config) Validate() error {
	switch c.AppEnv {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid APP_ENV %q", c.AppEnv)
	}
	if c.PublicGroupID == 0 {
		return errors.New("PUBLIC_GROUP_ID must be positive")
	}
	if c.Location == nil {
		return errors.New("leaderboard timezone is not set")
	}
	if c.AppEnv == "production" && c.JWTSecret == "change-me" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}
	return nil
}

// CloudinaryEnabled reports whether avatar uploads can be stored.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" || os.Getenv("CLOUDINARY_URL") != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
