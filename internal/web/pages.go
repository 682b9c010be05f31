package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TayyabaHussain58/InventoryApp/internal/inventory"
)

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func loginMessage(err error) (int, string) {
	switch {
	case errors.Is(err, inventory.ErrMissingCredentials):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, inventory.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Login failed: " + err.Error()
	default:
		return http.StatusInternalServerError, "Login failed: please try again"
	}
}

func signupMessage(err error) (int, string) {
	switch {
	case errors.Is(err, inventory.ErrPasswordMismatch),
		errors.Is(err, inventory.ErrMissingFields),
		errors.Is(err, inventory.ErrDuplicateEmail):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Signup failed: please try again"
	}
}

func (a *App) loginPage(c *gin.Context) {
	if _, ok := CurrentUser(c); ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	data := gin.H{"next": c.Query("next")}
	if c.Query("registered") != "" {
		data["notice"] = "Account created. Please sign in."
	}
	a.renderer.HTML(c, http.StatusOK, "login.html", data)
}

func (a *App) login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	next := c.PostForm("next")

	u, err := a.svc.Authenticate(c.Request.Context(), email, c.PostForm("password"))
	loginsTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		code, msg := loginMessage(err)
		if code == http.StatusInternalServerError {
			a.log.Error("login failed", zap.String("email", email), zap.Error(err))
		}
		a.renderer.HTML(c, code, "login.html", gin.H{"error": msg, "email": email, "next": next})
		return
	}

	token, err := a.jwt.GenerateToken(u.ID, u.Email)
	if err != nil {
		a.log.Error("issue token", zap.String("user_id", u.ID), zap.Error(err))
		a.renderer.HTML(c, http.StatusInternalServerError, "login.html", gin.H{"error": "Login failed: please try again", "email": email, "next": next})
		return
	}
	a.authMW.setSessionCookie(c, token, a.cfg.Auth.Session.Secure)
	a.log.Info("user logged in", zap.String("user_id", u.ID))
	c.Redirect(http.StatusSeeOther, safeNext(next))
}

func (a *App) signupPage(c *gin.Context) {
	a.renderer.HTML(c, http.StatusOK, "signup.html", nil)
}

func (a *App) signup(c *gin.Context) {
	in := inventory.SignupInput{
		Name:            strings.TrimSpace(c.PostForm("name")),
		Email:           strings.TrimSpace(c.PostForm("email")),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
	}
	// The form always carries a confirmation, so an empty one must still
	// match the password.
	if in.ConfirmPassword != in.Password {
		signupsTotal.WithLabelValues("failure").Inc()
		a.renderer.HTML(c, http.StatusBadRequest, "signup.html", gin.H{
			"error": inventory.ErrPasswordMismatch.Error(), "name": in.Name, "email": in.Email,
		})
		return
	}

	u, err := a.svc.Signup(c.Request.Context(), in)
	signupsTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		code, msg := signupMessage(err)
		if code == http.StatusInternalServerError {
			a.log.Error("signup failed", zap.String("email", in.Email), zap.Error(err))
		}
		a.renderer.HTML(c, code, "signup.html", gin.H{"error": msg, "name": in.Name, "email": in.Email})
		return
	}
	a.log.Info("user signed up", zap.String("user_id", u.ID))
	c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

func (a *App) logout(c *gin.Context) {
	a.authMW.clearSessionCookie(c, a.cfg.Auth.Session.Secure)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (a *App) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := a.svc.Stats(ctx)
	if err != nil {
		a.pageError(c, err)
		return
	}
	low, err := a.svc.LowStock(ctx)
	if err != nil {
		a.pageError(c, err)
		return
	}
	a.renderer.HTML(c, http.StatusOK, "dashboard.html", gin.H{"stats": stats, "lowStock": low})
}

type categoryCount struct {
	Category inventory.Category
	Count    int
}

// statsPage shows the overview, the low-stock alert and a product count for
// every category that has products, in display order.
func (a *App) statsPage(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := a.svc.Stats(ctx)
	if err != nil {
		a.pageError(c, err)
		return
	}
	low, err := a.svc.LowStock(ctx)
	if err != nil {
		a.pageError(c, err)
		return
	}
	grouped, err := a.svc.ProductsByCategory(ctx)
	if err != nil {
		a.pageError(c, err)
		return
	}
	categories := []categoryCount{}
	for _, cat := range inventory.Categories {
		if n := len(grouped[cat]); n > 0 {
			categories = append(categories, categoryCount{Category: cat, Count: n})
		}
	}
	a.renderer.HTML(c, http.StatusOK, "stats.html", gin.H{
		"stats":      stats,
		"lowStock":   low,
		"categories": categories,
	})
}

func (a *App) productsPage(c *gin.Context) {
	a.renderProducts(c, http.StatusOK, "")
}

func (a *App) renderProducts(c *gin.Context, code int, msg string) {
	products, err := a.svc.Products(c.Request.Context())
	if err != nil {
		a.pageError(c, err)
		return
	}
	a.renderer.HTML(c, code, "products.html", gin.H{"products": products, "error": msg})
}

func (a *App) addProductPage(c *gin.Context) {
	a.renderer.HTML(c, http.StatusOK, "add_product.html", gin.H{
		"categories": inventory.Categories,
		"form":       map[string]string{},
	})
}

func (a *App) addProduct(c *gin.Context) {
	form := map[string]string{}
	for _, f := range []string{"name", "category", "description", "price", "quantity", "location"} {
		form[f] = c.PostForm(f)
	}

	in, err := inventory.ParseProductForm(form["name"], form["category"], form["description"], form["price"], form["quantity"], form["location"])
	var p *inventory.Product
	if err == nil {
		p, err = a.svc.AddProduct(c.Request.Context(), in)
	}
	if err != nil {
		code, msg := http.StatusBadRequest, err.Error()
		if !errors.Is(err, inventory.ErrInvalidProduct) {
			a.log.Error("add product", zap.Error(err))
			code, msg = http.StatusInternalServerError, "Error creating product"
		}
		a.renderer.HTML(c, code, "add_product.html", gin.H{
			"categories": inventory.Categories,
			"form":       form,
			"error":      msg,
		})
		return
	}

	productsCreatedTotal.Inc()
	a.log.Info("product added", zap.String("product_id", p.ID), zap.String("name", p.Name))
	c.Redirect(http.StatusSeeOther, "/products")
}

func (a *App) updateStockForm(c *gin.Context) {
	q, err := strconv.Atoi(strings.TrimSpace(c.PostForm("quantity")))
	if err != nil {
		a.renderProducts(c, http.StatusBadRequest, "Quantity must be a whole number")
		return
	}
	if _, err := a.svc.UpdateStock(c.Request.Context(), c.Param("id"), q); err != nil {
		a.renderProducts(c, statusFor(err), messageFor(err, "Error updating stock"))
		return
	}
	stockTransactionsTotal.WithLabelValues(string(inventory.TransactionAdjust)).Inc()
	c.Redirect(http.StatusSeeOther, "/products")
}

func (a *App) deleteProductForm(c *gin.Context) {
	if err := a.svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		a.renderProducts(c, statusFor(err), messageFor(err, "Error deleting product"))
		return
	}
	c.Redirect(http.StatusSeeOther, "/products")
}

func (a *App) transactionsPage(c *gin.Context) {
	transactions, err := a.svc.Transactions(c.Request.Context())
	if err != nil {
		a.pageError(c, err)
		return
	}
	a.renderer.HTML(c, http.StatusOK, "transactions.html", gin.H{"transactions": transactions})
}

func (a *App) pageError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Internal server error")
}
