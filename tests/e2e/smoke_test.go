//go:build e2e

package e2e

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TayyabaHussain58/InventoryApp/tests/e2e/config"
)

// TestLoginRedirectChain checks over plain HTTP that the pages the browser
// scenarios start from are served, and that protected pages bounce to the
// login page.
func TestLoginRedirectChain(t *testing.T) {
	cfg := config.GetConfig()
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 10 * time.Second,
	}

	for _, path := range []string{"/login", "/signup"} {
		resp, err := client.Get(cfg.URL(path))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	url := cfg.URL("/products/add")
	for i := 0; i < 8; i++ {
		resp, err := client.Get(url)
		require.NoError(t, err, "redirect %d", i)
		resp.Body.Close()
		t.Logf("%s -> status=%d location=%s", url, resp.StatusCode, resp.Header.Get("Location"))

		loc := resp.Header.Get("Location")
		if loc == "" {
			assert.Contains(t, url, "/login")
			return
		}
		if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
			loc = cfg.URL(loc)
		}
		url = loc
	}
	t.Fatalf("too many redirects from /products/add")
}
