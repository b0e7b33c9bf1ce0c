package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxConcurrent     int64
	MaxBodyMB         int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

func (a App) IsProduction() bool { return strings.EqualFold(a.Env, "production") }

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	RefreshGraceMin   int
	LeewaySec         int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// InMemory reports a sqlite database that lives only as long as the process.
func (d DB) InMemory() bool {
	if d.Driver != "sqlite" {
		return false
	}
	return d.DSN == "" || strings.Contains(d.DSN, ":memory:") || strings.Contains(d.DSN, "mode=memory")
}

type Window struct {
	WindowSec int
	Max       int
}

type RateLimit struct {
	Store     string // "memory" | "redis"
	General   Window
	Auth      Window
	SweepSpec string
}

type CORS struct {
	AllowedOrigins []string
}

type Upload struct {
	Dir          string
	PublicPrefix string
	MaxSizeMB    int64
}

type Signup struct {
	AutoApprove bool
}

type Realtime struct {
	Path              string
	MessagesPerSecond float64
	Burst             int
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	RateLimit RateLimit
	CORS      CORS
	Upload    Upload
	Signup    Signup
	Realtime  Realtime
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "resident-portal")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3001)
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 30)
	v.SetDefault("app.http.maxConcurrent", 300)
	v.SetDefault("app.http.maxBodyMB", 16)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 5)
	v.SetDefault("log.file.maxAgeDays", 30)

	v.SetDefault("jwt.issuer", "resident-portal")
	v.SetDefault("jwt.accessTokenTTLMin", 7*24*60)
	v.SetDefault("jwt.refreshGraceMin", 7*24*60)
	v.SetDefault("jwt.leewaySec", 0)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("rateLimit.store", "memory")
	v.SetDefault("rateLimit.general.windowSec", 60)
	v.SetDefault("rateLimit.general.max", 1000)
	v.SetDefault("rateLimit.auth.windowSec", 15*60)
	v.SetDefault("rateLimit.auth.max", 5)
	v.SetDefault("rateLimit.sweepSpec", "@hourly")

	v.SetDefault("cors.allowedOrigins", []string{"http://localhost:5173"})

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.publicPrefix", "/uploads")
	v.SetDefault("upload.maxSizeMB", 10)

	v.SetDefault("signup.autoApprove", false)

	v.SetDefault("realtime.path", "/ws")
	v.SetDefault("realtime.messagesPerSecond", 10)
	v.SetDefault("realtime.burst", 20)
}

// Load reads the YAML file at path (or CONFIG_PATH), overlays APP_* env vars and
// exits the process on failure.
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

// Read is Load without the exit. A missing file is not an error; defaults apply.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
			return nil, err
		}
	}
	// AutomaticEnv only applies to keys viper already knows; bind the secrets explicitly.
	_ = v.BindEnv("jwt.secret")
	_ = v.BindEnv("db.dsn")
	_ = v.BindEnv("db.password")
	_ = v.BindEnv("redis.addr")
	_ = v.BindEnv("redis.password")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		if c.App.IsProduction() {
			return errors.New("jwt.secret is required in production")
		}
		c.JWT.Secret = "dev-only-insecure-secret"
	}
	switch c.DB.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return errors.New("db.driver must be one of sqlite, postgres, mysql")
	}
	switch c.RateLimit.Store {
	case "memory":
	case "redis":
		if !c.Redis.Enabled() {
			return errors.New("rateLimit.store=redis requires redis.addr")
		}
	default:
		return errors.New("rateLimit.store must be memory or redis")
	}
	if c.RateLimit.General.Max <= 0 || c.RateLimit.Auth.Max <= 0 {
		return errors.New("rate limit max must be positive")
	}
	return nil
}
