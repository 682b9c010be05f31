// Package web serves the inventory application: server-rendered pages for
// the browser and a JSON API under /api.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/TayyabaHussain58/InventoryApp/internal/auth"
	"github.com/TayyabaHussain58/InventoryApp/internal/config"
	"github.com/TayyabaHussain58/InventoryApp/internal/inventory"
	"github.com/TayyabaHussain58/InventoryApp/internal/runner"
	"github.com/TayyabaHussain58/InventoryApp/internal/runner/tasks"
)

// App wires the store, services and HTTP routes together.
type App struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *inventory.Store
	svc      *inventory.Service
	jwt      *auth.JWTManager
	authMW   *AuthMiddleware
	renderer *TemplateRenderer
	runner   *runner.Runner
	router   *gin.Engine
}

// New opens the database, seeds the configured user and builds the router.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := inventory.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	svc := inventory.NewService(store, auth.NewPasswordHasher(cfg.Auth.Password.BcryptCost))

	if cfg.Seed.Enabled {
		created, err := svc.EnsureUser(context.Background(), cfg.Seed.Name, cfg.Seed.Email, cfg.Seed.Password)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed user: %w", err)
		}
		if created {
			log.Info("seeded user", zap.String("email", cfg.Seed.Email))
		}
	}

	renderer, err := NewTemplateRenderer(nil)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	registry := runner.NewTaskRegistry()
	if cfg.Tasks.LowStockSchedule != "" {
		registry.Register(tasks.NewLowStockReport(svc, cfg.Tasks.LowStockSchedule, log))
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.TokenTTL)
	a := &App{
		cfg:      cfg,
		log:      log,
		store:    store,
		svc:      svc,
		jwt:      jwtManager,
		authMW:   NewAuthMiddleware(jwtManager, svc, cfg.Auth.Session.CookieName),
		renderer: renderer,
		runner:   runner.NewRunner(registry, log),
	}
	a.router = a.routes()
	return a, nil
}

func (a *App) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(a.log))
	if a.cfg.Metrics.Enabled {
		r.Use(Metrics())
		r.GET(a.cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	r.GET("/healthz", a.healthz)

	r.Use(a.authMW.OptionalAuth())

	r.GET("/login", a.loginPage)
	r.POST("/login", a.login)
	r.GET("/signup", a.signupPage)
	r.POST("/signup", a.signup)
	r.POST("/logout", a.logout)

	pages := r.Group("/", a.authMW.RequireSession())
	pages.GET("/", a.dashboard)
	pages.GET("/stats", a.statsPage)
	pages.GET("/products", a.productsPage)
	pages.GET("/products/add", a.addProductPage)
	pages.POST("/products/add", a.addProduct)
	pages.POST("/products/:id/stock", a.updateStockForm)
	pages.POST("/products/:id/delete", a.deleteProductForm)
	pages.GET("/transactions", a.transactionsPage)

	api := r.Group("/api")
	api.POST("/auth/signup", a.apiSignup)
	api.POST("/auth/login", a.apiLogin)

	protected := api.Group("", a.authMW.RequireAuth())
	protected.POST("/auth/logout", a.apiLogout)
	protected.GET("/auth/me", a.apiMe)
	protected.GET("/products", a.apiListProducts)
	protected.POST("/products", a.apiCreateProduct)
	protected.GET("/products/low-stock", a.apiLowStock)
	protected.PATCH("/products/:id/stock", a.apiUpdateStock)
	protected.DELETE("/products/:id", a.apiDeleteProduct)
	protected.GET("/stats", a.apiStats)
	protected.GET("/transactions", a.apiListTransactions)
	protected.POST("/transactions", a.apiCreateTransaction)

	processes := protected.Group("/transaction-processes")
	processes.GET("", a.apiListProcesses)
	processes.GET("/:id", a.apiGetProcess)
	processes.POST("", a.apiCreateProcess)
	processes.PUT("/:id", a.apiUpdateProcess)
	processes.DELETE("/:id", a.apiDeleteProcess)

	return r
}

func (a *App) Handler() http.Handler { return a.router }

func (a *App) Service() *inventory.Service { return a.svc }

func (a *App) Close() error { return a.store.Close() }

// RunTask runs a registered background task once.
func (a *App) RunTask(ctx context.Context, name string) error {
	return a.runner.RunNow(ctx, name)
}

// Run starts the scheduled tasks and serves on the configured address until
// ctx is cancelled, then drains in-flight requests within the shutdown
// timeout.
func (a *App) Run(ctx context.Context) error {
	if err := a.runner.Start(ctx); err != nil {
		return err
	}
	defer a.runner.Stop()

	srv := &http.Server{
		Addr:         a.cfg.Server.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 5 * time.Second
}
