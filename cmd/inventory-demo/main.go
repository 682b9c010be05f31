package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TayyabaHussain58/InventoryApp/internal/auth"
	"github.com/TayyabaHussain58/InventoryApp/internal/config"
	"github.com/TayyabaHussain58/InventoryApp/internal/inventory"
	"github.com/TayyabaHussain58/InventoryApp/internal/logging"
	"github.com/TayyabaHussain58/InventoryApp/internal/version"
	"github.com/TayyabaHussain58/InventoryApp/internal/web"
)

var (
	configFile string
	logger     *zap.Logger
	logLevel   zap.AtomicLevel
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "inventory-demo",
	Short: "Inventory reference application",
	Long: `Inventory reference application

Serves the login, signup and product pages exercised by the browser
end-to-end suite, plus a JSON API under /api.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		logger, logLevel, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a user account if it does not exist",
	RunE:  runSeed,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("inventory-demo %s\n", version.Full())
	},
}

var (
	seedName     string
	seedEmail    string
	seedPassword string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (env INVENTORY_* overrides it)")

	seedCmd.Flags().StringVar(&seedName, "name", "", "Display name (default from config)")
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "Email address (default from config)")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "Password (default from config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if configFile != "" {
		// Only the log level is applied live; other settings need a restart.
		watcher, err := config.Watch(configFile, func(next *config.Config, err error) {
			if err != nil {
				logger.Warn("config reload rejected", zap.Error(err))
				return
			}
			level, err := logging.ParseLevel(next.Logging.Level)
			if err != nil {
				logger.Warn("config reload rejected", zap.Error(err))
				return
			}
			logLevel.SetLevel(level)
			logger.Info("config reloaded", zap.Stringer("log_level", level))
		})
		if err != nil {
			return err
		}
		cfg = watcher.Get()
	}

	app, err := web.New(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}

func runSeed(cmd *cobra.Command, args []string) error {
	name, email, password := cfg.Seed.Name, cfg.Seed.Email, cfg.Seed.Password
	if seedName != "" {
		name = seedName
	}
	if seedEmail != "" {
		email = seedEmail
	}
	if seedPassword != "" {
		password = seedPassword
	}

	store, err := inventory.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := inventory.NewService(store, auth.NewPasswordHasher(cfg.Auth.Password.BcryptCost))
	created, err := svc.EnsureUser(cmd.Context(), name, email, password)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	if created {
		logger.Info("user created", zap.String("email", email))
	} else {
		logger.Info("user already exists", zap.String("email", email))
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
