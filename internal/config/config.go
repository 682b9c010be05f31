package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the inventory application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Path is the SQLite database file; ":memory:" keeps everything in RAM.
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWT struct {
		Secret   string        `mapstructure:"secret"`
		Issuer   string        `mapstructure:"issuer"`
		TokenTTL time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"jwt"`
	Session struct {
		CookieName string `mapstructure:"cookie_name"`
		Secure     bool   `mapstructure:"secure"`
	} `mapstructure:"session"`
	Password struct {
		BcryptCost int `mapstructure:"bcrypt_cost"`
	} `mapstructure:"password"`
}

// SeedConfig describes the account ensured at startup.
type SeedConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TasksConfig schedules background jobs. An empty schedule disables a job.
type TasksConfig struct {
	LowStockSchedule string `mapstructure:"low_stock_schedule"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "inventory")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.path", "inventory.db")

	v.SetDefault("auth.jwt.secret", "your-secret-key")
	v.SetDefault("auth.jwt.issuer", "inventory")
	v.SetDefault("auth.jwt.token_ttl", 24*time.Hour)
	v.SetDefault("auth.session.cookie_name", "inventory_token")
	v.SetDefault("auth.session.secure", false)
	v.SetDefault("auth.password.bcrypt_cost", 10)

	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.name", "Demo User")
	v.SetDefault("seed.email", "user@example.com")
	v.SetDefault("seed.password", "123456")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("tasks.low_stock_schedule", "@every 15m")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("INVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("invalid default configuration: %v", err))
	}
	return cfg
}

// Load reads configFile (YAML, optional) and applies INVENTORY_* environment
// overrides, e.g. INVENTORY_SERVER_PORT=8080.
func Load(configFile string) (*Config, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

// Watcher keeps a configuration file loaded and swaps in a new Config when
// the file changes.
type Watcher struct {
	mu       sync.RWMutex
	cfg      *Config
	onChange func(*Config, error)
}

// Watch loads configFile and reloads it on every write. onChange, if set,
// receives each reload result; a failed reload keeps the previous Config.
func Watch(configFile string, onChange func(*Config, error)) (*Watcher, error) {
	if configFile == "" {
		return nil, errors.New("config file is required for watching")
	}
	v := newViper()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	w := &Watcher{cfg: cfg, onChange: onChange}
	v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(v)
		if err == nil {
			w.mu.Lock()
			w.cfg = next
			w.mu.Unlock()
		}
		if w.onChange != nil {
			w.onChange(next, err)
		}
	})
	v.WatchConfig()
	return w, nil
}

// Get returns the current configuration (thread-safe)
func (w *Watcher) Get() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret is required")
	}
	if c.Auth.JWT.TokenTTL <= 0 {
		return errors.New("auth.jwt.token_ttl must be positive")
	}
	if c.Auth.Password.BcryptCost < 4 || c.Auth.Password.BcryptCost > 31 {
		return fmt.Errorf("auth.password.bcrypt_cost %d out of range", c.Auth.Password.BcryptCost)
	}
	if c.Seed.Enabled && (c.Seed.Email == "" || c.Seed.Password == "") {
		return errors.New("seed.email and seed.password are required when seeding is enabled")
	}
	return nil
}

// GetServerAddr returns the server listen address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction returns true if running in production mode
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
