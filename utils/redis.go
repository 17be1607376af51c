package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

// InitRedis connects and pings. An empty url leaves Redis disabled; services
// treat a nil client as "no cache, no distributed lock".
func InitRedis(url, password string, db int) error {
	if url == "" {
		Logger().Warn("REDIS_URL empty, feed cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return err
	}

	rdb = client
	Logger().Info("redis connected")
	return nil
}

func GetRedis() *redis.Client {
	return rdb
}

func CloseRedis() error {
	if rdb != nil {
		return rdb.Close()
	}
	return nil
}
