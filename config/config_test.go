package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := FromViper(v)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 50, cfg.Feed.PageSize)
	assert.Equal(t, 100, cfg.Feed.MaxPageSize)
	assert.Equal(t, 60*time.Second, cfg.Feed.CacheTTL)
	assert.Equal(t, []uint{1}, cfg.AdminUserIDs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("FEED_PAGE_SIZE", 20)
	v.Set("FEED_MAX_PAGE_SIZE", 10)
	v.Set("ADMIN_USER_IDS", "3, 7,bogus,")
	v.Set("FEED_CACHE_TTL_SECONDS", 0)

	cfg := FromViper(v)

	assert.Equal(t, 20, cfg.Feed.PageSize)
	// max never drops below the default page size
	assert.Equal(t, 20, cfg.Feed.MaxPageSize)
	assert.Equal(t, []uint{3, 7}, cfg.AdminUserIDs)
	assert.Zero(t, cfg.Feed.CacheTTL)
}

func TestFromViper_InvalidPageSizeFallsBack(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("FEED_PAGE_SIZE", -5)

	cfg := FromViper(v)
	assert.Equal(t, 50, cfg.Feed.PageSize)
}
