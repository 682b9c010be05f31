package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/TayyabaHussain58/InventoryApp/internal/config"
)

const errorSelector = "p.MuiTypography-root[color='error']"

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database.Path = ":memory:"
	cfg.Auth.Password.BcryptCost = 4
	cfg.Auth.JWT.Secret = "test-secret"

	app, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func do(app *App, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, req)
	return w
}

func get(app *App, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return do(app, req)
}

func postForm(app *App, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return do(app, req)
}

func doJSON(app *App, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload io.Reader = http.NoBody
	if body != nil {
		b, _ := json.Marshal(body)
		payload = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return do(app, req)
}

func document(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return doc
}

func errorText(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return strings.TrimSpace(document(t, w).Find(errorSelector).First().Text())
}

// loginCookie signs in the seeded user through the login form.
func loginCookie(t *testing.T, app *App) *http.Cookie {
	t.Helper()
	w := postForm(app, "/login", url.Values{"email": {"user@example.com"}, "password": {"123456"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == "inventory_token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

// apiToken signs in the seeded user through the JSON API.
func apiToken(t *testing.T, app *App) string {
	t.Helper()
	w := doJSON(app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "user@example.com", "password": "123456",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
