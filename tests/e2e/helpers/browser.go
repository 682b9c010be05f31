package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/TayyabaHussain58/InventoryApp/tests/e2e/config"
	"github.com/TayyabaHussain58/InventoryApp/tests/e2e/scenario"
)

// Tracker counts session setups and teardowns so a suite can check that
// every browser it started was released.
type Tracker struct {
	setups    atomic.Int64
	teardowns atomic.Int64
}

func (t *Tracker) Setups() int64    { return t.setups.Load() }
func (t *Tracker) Teardowns() int64 { return t.teardowns.Load() }

// Balanced reports whether every setup has been torn down.
func (t *Tracker) Balanced() bool { return t.Setups() == t.Teardowns() }

// DefaultTracker is shared by sessions created without an explicit tracker.
var DefaultTracker = &Tracker{}

var installOnce sync.Once
var installErr error

// Session owns one headless browser for the lifetime of one scenario.
type Session struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	Config     *config.TestConfig

	t        testing.TB
	tracker  *Tracker
	started  bool
	tearOnce sync.Once
}

// NewSession creates an unstarted session.
func NewSession(t testing.TB, cfg *config.TestConfig, tracker *Tracker) *Session {
	if tracker == nil {
		tracker = DefaultTracker
	}
	return &Session{Config: cfg, t: t, tracker: tracker}
}

// Open starts a session and registers its teardown with t.Cleanup, so the
// browser is released exactly once whatever the scenario's outcome.
func Open(t testing.TB, cfg *config.TestConfig, tracker *Tracker) (*Session, error) {
	s := NewSession(t, cfg, tracker)
	t.Cleanup(s.TearDown)
	if err := s.Setup(); err != nil {
		return nil, err
	}
	return s, nil
}

// Setup launches Chromium and opens a page with the configured viewport and
// implicit wait.
func (s *Session) Setup() error {
	s.started = true
	s.tracker.setups.Add(1)

	if !s.Config.PlaywrightPreinstalled {
		installOnce.Do(func() {
			installErr = playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
		})
		if installErr != nil {
			return fmt.Errorf("%w: install playwright browsers: %w", scenario.ErrSession, installErr)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("%w: start playwright: %w", scenario.ErrSession, err)
	}
	s.Playwright = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.Config.Headless),
		Args: []string{
			"--disable-gpu",
			fmt.Sprintf("--window-size=%d,%d", s.Config.ViewportWidth, s.Config.ViewportHeight),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: launch browser: %w", scenario.ErrSession, err)
	}
	s.Browser = browser

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  s.Config.ViewportWidth,
			Height: s.Config.ViewportHeight,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create context: %w", scenario.ErrSession, err)
	}
	s.Context = context

	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("%w: create page: %w", scenario.ErrSession, err)
	}
	s.Page = page

	page.SetDefaultTimeout(float64(s.Config.ImplicitWait.Milliseconds()))
	return nil
}

// TearDown closes the browser and cleans up resources. It is a no-op for a
// session that was never set up, and only the first call has any effect.
func (s *Session) TearDown() {
	if !s.started {
		return
	}
	s.tearOnce.Do(func() {
		defer s.tracker.teardowns.Add(1)

		if s.t != nil && s.t.Failed() && s.Config.Screenshots && s.Page != nil {
			s.screenshot()
		}

		if s.Page != nil {
			_ = s.Page.Close()
		}
		if s.Context != nil {
			_ = s.Context.Close()
		}
		if s.Browser != nil {
			_ = s.Browser.Close()
		}
		if s.Playwright != nil {
			_ = s.Playwright.Stop()
		}
	})
}

// Driver returns the scenario driver for this session's page.
func (s *Session) Driver() *PlaywrightDriver {
	return NewPlaywrightDriver(s.Page, s.Config.ImplicitWait)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

func (s *Session) screenshot() {
	dir := filepath.Join(s.Config.ArtifactsDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.t.Logf("screenshot dir: %v", err)
		return
	}
	name := fmt.Sprintf("%s_%d.png", unsafeName.ReplaceAllString(s.t.Name(), "_"), time.Now().Unix())
	path := filepath.Join(dir, name)
	if _, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.t.Logf("screenshot failed: %v", err)
		return
	}
	s.t.Logf("saved failure screenshot %s", path)
}
