package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config carries everything the process needs, loaded once at startup and
// passed explicitly to the pieces that use it.
type Config struct {
	Addr        string
	DSN         string
	SessionKey  string
	TokenSecret string
	PageSize    int

	// R2/S3 image storage; when AccountID is empty the local-disk
	// storage under MediaDir is used instead.
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	PublicURL       string
	MediaDir        string

	// Optional Google sign-in; OAuth routes are mounted only when set.
	GoogleKey      string
	GoogleSecret   string
	GoogleCallback string
}

func Load() (*Config, error) {
	cfg := &Config{
		Addr:            getenv("ADDR", ":3000"),
		DSN:             os.Getenv("DSN"),
		SessionKey:      os.Getenv("SESSION_KEY"),
		TokenSecret:     os.Getenv("TOKEN_SECRET"),
		PageSize:        2,
		AccountID:       os.Getenv("ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("ACCESS_KEY_ID"),
		AccessKeySecret: os.Getenv("ACCESS_KEY_SECRET"),
		BucketName:      os.Getenv("BUCKET_NAME"),
		PublicURL:       os.Getenv("PUBLIC_URL"),
		MediaDir:        getenv("MEDIA_DIR", "media"),
		GoogleKey:       os.Getenv("GOOGLE_KEY"),
		GoogleSecret:    os.Getenv("GOOGLE_SECRET"),
		GoogleCallback:  getenv("GOOGLE_CALLBACK", "http://localhost:3000/auth/google/callback"),
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid PAGE_SIZE %q", v)
		}
		cfg.PageSize = n
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("DSN is required")
	}
	if cfg.SessionKey == "" {
		return nil, fmt.Errorf("SESSION_KEY is required")
	}
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
