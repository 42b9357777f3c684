package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/vocapp/internal/spaced_repetition"
)

// Config is the full runtime configuration of the service.
type Config struct {
	LogMode   string
	HTTP      HTTP
	Database  Database
	Auth      Auth
	Lookup    Lookup
	Scheduler Scheduler
	SMTP      SMTP
	Telegram  Telegram
	Ladder    spaced_repetition.Ladder
}

type HTTP struct {
	Addr         string
	LookupRate   float64 // lookups per second per learner
	LookupBurst  int
	SecureCookie bool
}

type Database struct {
	Driver  string // "sqlite3" or "postgres"
	DSN     string
	DataDir string
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Lookup struct {
	BaseURL   string
	Timeout   time.Duration
	MaxSenses int
}

type Scheduler struct {
	Enabled   bool
	Interval  time.Duration
	StartHour int
	EndHour   int
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Telegram struct {
	BotToken string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "development")

	v.SetDefault("http.addr", "127.0.0.1:8000")
	v.SetDefault("http.lookup_rate", 1.0)
	v.SetDefault("http.lookup_burst", 5)
	v.SetDefault("http.secure_cookie", false)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.data_dir", "data")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("lookup.base_url", "https://api.dictionaryapi.dev/api/v2/entries/en")
	v.SetDefault("lookup.timeout", "10s")
	v.SetDefault("lookup.max_senses", 5)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("scheduler.start_hour", 8)
	v.SetDefault("scheduler.end_hour", 20)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("telegram.bot_token", "")

	v.SetDefault("ladder.intervals", "1,2,3,5,8,12,18,28,42,56")
	v.SetDefault("ladder.demotions", "0,1,1,1,2,2,3,3,4,5")
}

// Load reads configuration from defaults, an optional config file and
// VOCAPP_* environment variables (a .env file in the working directory is
// loaded first when present). Later sources win.
func Load(file string) (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("vocapp")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %v", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogMode: v.GetString("log.mode"),
		HTTP: HTTP{
			Addr:         v.GetString("http.addr"),
			LookupRate:   v.GetFloat64("http.lookup_rate"),
			LookupBurst:  v.GetInt("http.lookup_burst"),
			SecureCookie: v.GetBool("http.secure_cookie"),
		},
		Database: Database{
			Driver:  v.GetString("database.driver"),
			DSN:     v.GetString("database.dsn"),
			DataDir: v.GetString("database.data_dir"),
		},
		Auth: Auth{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Lookup: Lookup{
			BaseURL:   strings.TrimRight(v.GetString("lookup.base_url"), "/"),
			Timeout:   v.GetDuration("lookup.timeout"),
			MaxSenses: v.GetInt("lookup.max_senses"),
		},
		Scheduler: Scheduler{
			Enabled:   v.GetBool("scheduler.enabled"),
			Interval:  v.GetDuration("scheduler.interval"),
			StartHour: v.GetInt("scheduler.start_hour"),
			EndHour:   v.GetInt("scheduler.end_hour"),
		},
		SMTP: SMTP{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
		Telegram: Telegram{
			BotToken: v.GetString("telegram.bot_token"),
		},
	}

	intervals, err := parseInts(v.GetString("ladder.intervals"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ladder intervals: %v", err)
	}
	demotions, err := parseInts(v.GetString("ladder.demotions"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ladder demotions: %v", err)
	}
	cfg.Ladder, err = spaced_repetition.NewLadder(intervals, demotions)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ladder: %v", err)
	}

	switch cfg.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Scheduler.StartHour < 0 || cfg.Scheduler.StartHour > 23 || cfg.Scheduler.EndHour < 0 || cfg.Scheduler.EndHour > 23 {
		return Config{}, fmt.Errorf("notification hours must be within 0-23, got %d-%d", cfg.Scheduler.StartHour, cfg.Scheduler.EndHour)
	}

	return cfg, nil
}

// ValidateServe checks the settings only the HTTP server needs.
func (c Config) ValidateServe() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("missing required config: JWT secret. Set it via environment variable VOCAPP_AUTH_JWT_SECRET")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
