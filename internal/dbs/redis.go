package dbs

import (
	"context"

	"algoprep/configs"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

func InitRedis(ctx context.Context, cfg *configs.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	_, err := RedisClient.Ping(ctx).Result()
	return err
}

func CloseRedis() {
	if RedisClient != nil {
		_ = RedisClient.Close()
	}
}
