package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	DatabaseURL   string
	RedisURL      string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	LogLevel      string

	Feed struct {
		PageSize    int
		MaxPageSize int
		CacheTTL    time.Duration
	}

	RateLimit struct {
		RPS   float64
		Burst int
	}

	// AdminUserIDs may manage any circle.
	AdminUserIDs []uint
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FEED_PAGE_SIZE", 50)
	v.SetDefault("FEED_MAX_PAGE_SIZE", 100)
	v.SetDefault("FEED_CACHE_TTL_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("ADMIN_USER_IDS", "1")
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		RedisURL:      v.GetString("REDIS_URL"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		LogLevel:      v.GetString("LOG_LEVEL"),
	}

	cfg.Feed.PageSize = v.GetInt("FEED_PAGE_SIZE")
	cfg.Feed.MaxPageSize = v.GetInt("FEED_MAX_PAGE_SIZE")
	if cfg.Feed.PageSize <= 0 {
		cfg.Feed.PageSize = 50
	}
	if cfg.Feed.MaxPageSize < cfg.Feed.PageSize {
		cfg.Feed.MaxPageSize = cfg.Feed.PageSize
	}
	cfg.Feed.CacheTTL = time.Duration(v.GetInt("FEED_CACHE_TTL_SECONDS")) * time.Second

	cfg.RateLimit.RPS = v.GetFloat64("RATE_LIMIT_RPS")
	cfg.RateLimit.Burst = v.GetInt("RATE_LIMIT_BURST")

	cfg.AdminUserIDs = parseIDList(v.GetString("ADMIN_USER_IDS"))
	return cfg
}

func parseIDList(raw string) []uint {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			log.Printf("ignoring invalid admin id %q", part)
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
