package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPage(t *testing.T) {
	app := newTestApp(t)

	w := get(app, "/login")
	require.Equal(t, http.StatusOK, w.Code)

	doc := document(t, w)
	assert.Equal(t, 1, doc.Find("form #email").Length())
	assert.Equal(t, 1, doc.Find("form #password").Length())
	assert.Zero(t, doc.Find(errorSelector).Length())

	link := doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == "Don't have an account? Sign Up"
	})
	require.Equal(t, 1, link.Length())
	href, _ := link.Attr("href")
	assert.Equal(t, "/signup", href)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name     string
		email    string
		password string
		code     int
		message  string
	}{
		{"wrong credentials", "wrong@example.com", "wrongpass", http.StatusUnauthorized, "Login failed: Invalid credentials"},
		{"wrong password", "user@example.com", "nope", http.StatusUnauthorized, "Login failed: Invalid credentials"},
		{"empty fields", "", "", http.StatusBadRequest, "Email and password are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(app, "/login", url.Values{"email": {tt.email}, "password": {tt.password}})
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.message, errorText(t, w))
			assert.Empty(t, w.Result().Cookies())
		})
	}

	t.Run("valid credentials", func(t *testing.T) {
		w := postForm(app, "/login", url.Values{"email": {"user@example.com"}, "password": {"123456"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.True(t, cookies[0].HttpOnly)

		dash := get(app, "/", cookies[0])
		require.Equal(t, http.StatusOK, dash.Code)
		assert.Contains(t, document(t, dash).Find("header").Text(), "Demo User")
	})

	t.Run("honours next", func(t *testing.T) {
		form := url.Values{"email": {"user@example.com"}, "password": {"123456"}, "next": {"/products/add"}}
		w := postForm(app, "/login", form)
		assert.Equal(t, "/products/add", w.Header().Get("Location"))
	})

	t.Run("signed in users skip the form", func(t *testing.T) {
		w := get(app, "/login", loginCookie(t, app))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/", safeNext(""))
	assert.Equal(t, "/", safeNext("https://evil.example"))
	assert.Equal(t, "/", safeNext("//evil.example"))
	assert.Equal(t, "/products", safeNext("/products"))
}

func TestSignup(t *testing.T) {
	app := newTestApp(t)

	signup := func(name, email, password, confirm string) *httptest.ResponseRecorder {
		return postForm(app, "/signup", url.Values{
			"name": {name}, "email": {email}, "password": {password}, "confirmPassword": {confirm},
		})
	}

	t.Run("new account redirects to login", func(t *testing.T) {
		w := signup("Test User", "newuser@example.com", "123456", "123456")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login"))

		login := get(app, w.Header().Get("Location"))
		assert.Contains(t, login.Body.String(), "Account created")
	})

	t.Run("mismatched passwords", func(t *testing.T) {
		w := signup("Test User", "test@example.com", "123456", "abcdef")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Passwords do not match", errorText(t, w))

		name, _ := document(t, w).Find("#name").Attr("value")
		assert.Equal(t, "Test User", name)
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := signup("Test User", "user@example.com", "123456", "123456")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User already exists", errorText(t, w))
	})

	t.Run("missing fields", func(t *testing.T) {
		w := signup("", "", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "All fields are required", errorText(t, w))
	})
}

func TestProtectedPagesRedirect(t *testing.T) {
	app := newTestApp(t)

	w := get(app, "/products/add")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?next=%2Fproducts%2Fadd", w.Header().Get("Location"))

	w = get(app, "/")
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = get(app, "/products", &http.Cookie{Name: "inventory_token", Value: "garbage"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func productForm(name, price string) url.Values {
	return url.Values{
		"name":        {name},
		"category":    {"Electronics"},
		"description": {"A new laptop"},
		"price":       {price},
		"quantity":    {"5"},
		"location":    {"Aisle 1"},
	}
}

func TestAddProduct(t *testing.T) {
	app := newTestApp(t)
	session := loginCookie(t, app)

	t.Run("form lists categories", func(t *testing.T) {
		w := get(app, "/products/add", session)
		require.Equal(t, http.StatusOK, w.Code)
		doc := document(t, w)
		assert.Equal(t, 5, doc.Find("datalist#categories option").Length())
		for _, field := range []string{"name", "category", "description", "price", "quantity", "location"} {
			assert.Equal(t, 1, doc.Find(`[name="`+field+`"]`).Length(), field)
		}

		// Browser scenarios submit the first form on the page.
		action, _ := doc.Find("form").First().Attr("action")
		assert.Equal(t, "/products/add", action)
	})

	t.Run("valid product", func(t *testing.T) {
		w := postForm(app, "/products/add", productForm("Laptop", "500"), session)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/products", w.Header().Get("Location"))

		list := get(app, "/products", session)
		rows := document(t, list).Find("#products tbody tr")
		require.Equal(t, 1, rows.Length())
		assert.Contains(t, rows.Text(), "Laptop")
		assert.Contains(t, rows.Text(), "$500.00")
		assert.Equal(t, 1, rows.Find("td.low-stock").Length())
	})

	t.Run("empty name", func(t *testing.T) {
		w := postForm(app, "/products/add", productForm("", "200"), session)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Product name is required", errorText(t, w))

		price, _ := document(t, w).Find("#product-price").Attr("value")
		assert.Equal(t, "200", price)
	})

	t.Run("negative price", func(t *testing.T) {
		w := postForm(app, "/products/add", productForm("Bad Product", "-100"), session)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Price cannot be negative", errorText(t, w))
	})

	t.Run("non-finite price", func(t *testing.T) {
		for _, price := range []string{"Inf", "NaN"} {
			w := postForm(app, "/products/add", productForm("Odd Product", price), session)
			assert.Equal(t, http.StatusBadRequest, w.Code, price)
			assert.Equal(t, "Price must be a number", errorText(t, w), price)
		}

		w := doJSON(app, http.MethodGet, "/api/stats", apiToken(t, app), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Body.String())
	})

	t.Run("only the valid product was stored", func(t *testing.T) {
		products, err := app.Service().Products(t.Context())
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})
}

func TestStockAndDeleteForms(t *testing.T) {
	app := newTestApp(t)
	session := loginCookie(t, app)

	require.Equal(t, http.StatusSeeOther, postForm(app, "/products/add", productForm("Laptop", "500"), session).Code)
	products, err := app.Service().Products(t.Context())
	require.NoError(t, err)
	id := products[0].ID

	w := postForm(app, "/products/"+id+"/stock", url.Values{"quantity": {"25"}}, session)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(app, "/products/"+id+"/stock", url.Values{"quantity": {"lots"}}, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Quantity must be a whole number", errorText(t, w))

	w = get(app, "/transactions", session)
	rows := document(t, w).Find("#transactions tbody tr")
	require.Equal(t, 2, rows.Length())
	cells := rows.First().Find("td")
	assert.Equal(t, "ADJUST", strings.TrimSpace(cells.Eq(1).Text()))
	assert.Equal(t, "20", strings.TrimSpace(cells.Last().Text()))

	w = postForm(app, "/products/"+id+"/delete", nil, session)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(app, "/products/"+id+"/delete", nil, session)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", errorText(t, w))
}

func TestDashboard(t *testing.T) {
	app := newTestApp(t)
	session := loginCookie(t, app)
	require.Equal(t, http.StatusSeeOther, postForm(app, "/products/add", productForm("Laptop", "500"), session).Code)

	doc := document(t, get(app, "/", session))
	assert.Equal(t, "1", strings.TrimSpace(doc.Find(`[data-stat="totalProducts"]`).Text()))
	assert.Equal(t, "$2500.00", strings.TrimSpace(doc.Find(`[data-stat="totalValue"]`).Text()))
	assert.Equal(t, "1", strings.TrimSpace(doc.Find(`[data-stat="lowStockItems"]`).Text()))
	assert.Contains(t, doc.Find("#low-stock").Text(), "Laptop")
}

func TestStatsPage(t *testing.T) {
	app := newTestApp(t)

	w := get(app, "/stats")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?next=%2Fstats", w.Header().Get("Location"))

	session := loginCookie(t, app)
	require.Equal(t, http.StatusSeeOther, postForm(app, "/products/add", productForm("Laptop", "500"), session).Code)
	require.Equal(t, http.StatusSeeOther, postForm(app, "/products/add", productForm("Tablet", "200"), session).Code)
	novel := productForm("Novel", "12")
	novel.Set("category", "Books")
	novel.Set("quantity", "40")
	require.Equal(t, http.StatusSeeOther, postForm(app, "/products/add", novel, session).Code)

	w = get(app, "/stats", session)
	require.Equal(t, http.StatusOK, w.Code)
	doc := document(t, w)

	assert.Equal(t, "3", strings.TrimSpace(doc.Find(`#overview [data-stat="totalProducts"]`).Text()))
	assert.Equal(t, "$3980.00", strings.TrimSpace(doc.Find(`#overview [data-stat="totalValue"]`).Text()))
	assert.Equal(t, "2", strings.TrimSpace(doc.Find(`#overview [data-stat="lowStockItems"]`).Text()))

	low := doc.Find("#low-stock li")
	require.Equal(t, 2, low.Length())
	assert.Contains(t, low.Text(), "5 units remaining in Aisle 1")
	assert.NotContains(t, low.Text(), "Novel")

	categories := doc.Find("#categories li")
	require.Equal(t, 2, categories.Length())
	assert.Equal(t, "Electronics", categories.Eq(0).AttrOr("data-category", ""))
	assert.Equal(t, "2 products", categories.Eq(0).Find(".count").Text())
	assert.Equal(t, "Books", categories.Eq(1).AttrOr("data-category", ""))
	assert.Equal(t, "1 products", categories.Eq(1).Find(".count").Text())

	assert.Equal(t, 1, doc.Find(`header a[href="/stats"]`).Length())
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	session := loginCookie(t, app)

	w := postForm(app, "/logout", nil, session)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)
}
