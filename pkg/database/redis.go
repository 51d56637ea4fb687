package database

import (
	"context"

	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis connects the Redis client used for the answer cache and consumer retry counters.
func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := RDB.Ping(context.Background()).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}
	log.Info("Redis client connected successfully")
}

// CloseRedis closes the client if it was opened.
func CloseRedis() {
	if RDB != nil {
		_ = RDB.Close()
	}
}
