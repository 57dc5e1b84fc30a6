package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	BaseURL         string
	InstitutionSlug string
	TimeoutMs       int
	UserAgent       string

	ScrapeMaxBodyBytes int64
	ScrapeFailFast     bool

	LogVerbose bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "bankinfo.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		BaseURL:         getEnv("BANKINFO_BASE_URL", "http://canada-banks-info.com/routing-numbers"),
		InstitutionSlug: getEnv("BANKINFO_INSTITUTION_SLUG", "royal-trust-corporation-of-canada-routing-numbers"),
		TimeoutMs:       getEnvInt("BANKINFO_TIMEOUT_MS", 30000),
		UserAgent:       getEnv("BANKINFO_USER_AGENT", "bankinfo/1.0 (+branch address scraper)"),

		ScrapeMaxBodyBytes: int64(getEnvInt("SCRAPE_MAX_BODY_BYTES", 2<<20)),
		ScrapeFailFast:     getEnvBool("SCRAPE_FAIL_FAST", false),

		LogVerbose: getEnvBool("LOG_VERBOSE", false),
	}

	return cfg, nil
}

// LookupBaseURL is the per-institution prefix that branch URLs are built on.
func (c Config) LookupBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.Trim(c.InstitutionSlug, "/")
}

// OutputPath places name under OutputDir.
func (c Config) OutputPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
