package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Defaults mirror the fixed literals the suite was written against.
const (
	DefaultBaseURL        = "http://localhost:3000"
	DefaultImplicitWait   = 5 * time.Second
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080
	DefaultUserEmail      = "user@example.com"
	DefaultUserPassword   = "123456"
	DefaultArtifactsDir   = "./test-results"
)

// TestConfig holds all configuration for E2E tests
type TestConfig struct {
	BaseURL        string
	ImplicitWait   time.Duration
	ViewportWidth  int
	ViewportHeight int
	Headless       bool
	Screenshots    bool
	ArtifactsDir   string
	UserEmail      string
	UserPassword   string

	// EmbeddedApp starts the reference inventory app in-process and points
	// BaseURL at it.
	EmbeddedApp bool

	// PlaywrightPreinstalled skips the driver/browser download step.
	PlaywrightPreinstalled bool
}

var (
	loadOnce sync.Once
	loaded   *TestConfig
)

// GetConfig returns the test configuration, resolved once per process from
// the environment and an optional .env file.
func GetConfig() *TestConfig {
	loadOnce.Do(func() {
		loaded = Load(".env")
		log.Printf("[e2e-config] Resolved BaseURL=%s (embedded=%t, headless=%t, wait=%s)",
			loaded.BaseURL, loaded.EmbeddedApp, loaded.Headless, loaded.ImplicitWait)
	})
	return loaded
}

// Load builds a TestConfig from envFile (if it exists) and the process
// environment. Environment variables take precedence over the file.
func Load(envFile string) *TestConfig {
	v := viper.New()
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("headless", true)
	v.SetDefault("screenshots", true)
	v.SetDefault("e2e_implicit_wait", DefaultImplicitWait)
	v.SetDefault("e2e_viewport_width", DefaultViewportWidth)
	v.SetDefault("e2e_viewport_height", DefaultViewportHeight)
	v.SetDefault("e2e_artifacts_dir", DefaultArtifactsDir)
	v.SetDefault("e2e_user_email", DefaultUserEmail)
	v.SetDefault("e2e_user_password", DefaultUserPassword)
	v.SetDefault("e2e_embedded_app", false)
	v.SetDefault("playwright_preinstalled", false)

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				log.Printf("[e2e-config] ignoring unreadable %s: %v", envFile, err)
			}
		}
	}
	v.AutomaticEnv()

	wait := v.GetDuration("e2e_implicit_wait")
	if wait <= 0 {
		wait = DefaultImplicitWait
	}

	return &TestConfig{
		BaseURL:                strings.TrimRight(v.GetString("base_url"), "/"),
		ImplicitWait:           wait,
		ViewportWidth:          v.GetInt("e2e_viewport_width"),
		ViewportHeight:         v.GetInt("e2e_viewport_height"),
		Headless:               v.GetBool("headless"),
		Screenshots:            v.GetBool("screenshots"),
		ArtifactsDir:           v.GetString("e2e_artifacts_dir"),
		UserEmail:              v.GetString("e2e_user_email"),
		UserPassword:           v.GetString("e2e_user_password"),
		EmbeddedApp:            v.GetBool("e2e_embedded_app"),
		PlaywrightPreinstalled: v.GetBool("playwright_preinstalled"),
	}
}

// URL joins path onto the base URL.
func (c *TestConfig) URL(path string) string {
	if path == "" {
		return c.BaseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}
