package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TayyabaHussain58/InventoryApp/internal/inventory"
	"github.com/TayyabaHussain58/InventoryApp/internal/version"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrNotFound),
		errors.Is(err, inventory.ErrProcessNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInvalidProduct),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrInvalidTransaction),
		errors.Is(err, inventory.ErrInvalidProcess):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing text for err. Unexpected errors get
// fallback so internals are not leaked.
func messageFor(err error, fallback string) string {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		return "Product not found"
	case errors.Is(err, inventory.ErrProcessNotFound):
		return err.Error()
	case statusFor(err) == http.StatusBadRequest:
		return err.Error()
	default:
		return fallback
	}
}

func (a *App) apiError(c *gin.Context, err error, fallback string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		a.log.Error(fallback, zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(code, gin.H{"message": messageFor(err, fallback)})
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (a *App) issue(c *gin.Context, code int, u *inventory.User) {
	token, err := a.jwt.GenerateToken(u.ID, u.Email)
	if err != nil {
		a.log.Error("issue token", zap.String("user_id", u.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error issuing token"})
		return
	}
	c.JSON(code, authResponse{
		Token: token,
		User:  userResponse{ID: u.ID, Email: u.Email, Name: u.Name},
	})
}

func (a *App) apiSignup(c *gin.Context) {
	var in inventory.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	u, err := a.svc.Signup(c.Request.Context(), in)
	signupsTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		code, msg := signupMessage(err)
		if code == http.StatusInternalServerError {
			a.log.Error("signup failed", zap.String("email", in.Email), zap.Error(err))
			msg = "Error creating user"
		}
		c.JSON(code, gin.H{"message": msg})
		return
	}
	a.log.Info("user signed up", zap.String("user_id", u.ID))
	a.issue(c, http.StatusCreated, u)
}

func (a *App) apiLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	u, err := a.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	loginsTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, inventory.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		default:
			a.log.Error("login failed", zap.String("email", req.Email), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error logging in"})
		}
		return
	}
	a.issue(c, http.StatusOK, u)
}

func (a *App) apiLogout(c *gin.Context) {
	a.authMW.clearSessionCookie(c, a.cfg.Auth.Session.Secure)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (a *App) apiMe(c *gin.Context) {
	u, _ := CurrentUser(c)
	c.JSON(http.StatusOK, userResponse{ID: u.ID, Email: u.Email, Name: u.Name})
}

func (a *App) apiListProducts(c *gin.Context) {
	products, err := a.svc.Products(c.Request.Context())
	if err != nil {
		a.apiError(c, err, "Error fetching products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (a *App) apiCreateProduct(c *gin.Context) {
	var in inventory.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error creating product"})
		return
	}
	p, err := a.svc.AddProduct(c.Request.Context(), in)
	if err != nil {
		a.apiError(c, err, "Error creating product")
		return
	}
	productsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, p)
}

func (a *App) apiUpdateStock(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error updating stock"})
		return
	}
	p, err := a.svc.UpdateStock(c.Request.Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		a.apiError(c, err, "Error updating stock")
		return
	}
	stockTransactionsTotal.WithLabelValues(string(inventory.TransactionAdjust)).Inc()
	c.JSON(http.StatusOK, p)
}

func (a *App) apiDeleteProduct(c *gin.Context) {
	if err := a.svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		a.apiError(c, err, "Error deleting product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (a *App) apiLowStock(c *gin.Context) {
	products, err := a.svc.LowStock(c.Request.Context())
	if err != nil {
		a.apiError(c, err, "Error fetching products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (a *App) apiStats(c *gin.Context) {
	stats, err := a.svc.Stats(c.Request.Context())
	if err != nil {
		a.apiError(c, err, "Error fetching stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *App) apiListTransactions(c *gin.Context) {
	transactions, err := a.svc.Transactions(c.Request.Context())
	if err != nil {
		a.apiError(c, err, "Error fetching transactions")
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (a *App) apiCreateTransaction(c *gin.Context) {
	var req struct {
		ProductID string                    `json:"productId"`
		Type      inventory.TransactionType `json:"type"`
		Quantity  int                       `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error creating transaction"})
		return
	}
	t, err := a.svc.RecordMovement(c.Request.Context(), req.ProductID, req.Type, req.Quantity)
	if err != nil {
		a.apiError(c, err, "Error creating transaction")
		return
	}
	stockTransactionsTotal.WithLabelValues(string(t.Type)).Inc()
	c.JSON(http.StatusCreated, t)
}

func (a *App) apiListProcesses(c *gin.Context) {
	processes, err := a.svc.Processes(c.Request.Context())
	if err != nil {
		a.apiError(c, err, "Error fetching transaction processes")
		return
	}
	c.JSON(http.StatusOK, processes)
}

func (a *App) apiGetProcess(c *gin.Context) {
	p, err := a.svc.Process(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.apiError(c, err, "Error fetching transaction process")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *App) apiCreateProcess(c *gin.Context) {
	var in inventory.ProcessInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error creating transaction process"})
		return
	}
	u, _ := CurrentUser(c)
	p, err := a.svc.CreateProcess(c.Request.Context(), u.ID, in)
	if err != nil {
		a.apiError(c, err, "Error creating transaction process")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (a *App) apiUpdateProcess(c *gin.Context) {
	var upd inventory.ProcessUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error updating transaction process"})
		return
	}
	p, err := a.svc.UpdateProcess(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		a.apiError(c, err, "Error updating transaction process")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *App) apiDeleteProcess(c *gin.Context) {
	if err := a.svc.DeleteProcess(c.Request.Context(), c.Param("id")); err != nil {
		a.apiError(c, err, "Error deleting transaction process")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction process deleted"})
}

func (a *App) healthz(c *gin.Context) {
	if err := a.svc.Store().Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Short()})
}
