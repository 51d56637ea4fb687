package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"

	"github.com/go-redis/redis/v8"
)

const answerKeyPrefix = "chatbot:answer:"

// RedisAnswerCache stores generated answers as JSON strings.
type RedisAnswerCache struct {
	redisClient *redis.Client
}

func NewRedisAnswerCache(redisClient *redis.Client) *RedisAnswerCache {
	return &RedisAnswerCache{redisClient: redisClient}
}

func answerKey(key string) string {
	return answerKeyPrefix + key
}

// Get reports ok=false on a miss.
func (c *RedisAnswerCache) Get(ctx context.Context, key string) (model.GenerationResult, bool, error) {
	data, err := c.redisClient.Get(ctx, answerKey(key)).Bytes()
	if err == redis.Nil {
		return model.GenerationResult{}, false, nil
	}
	if err != nil {
		return model.GenerationResult{}, false, fmt.Errorf("failed to get cached answer: %w", err)
	}
	res, err := decodeAnswer(data)
	if err != nil {
		return model.GenerationResult{}, false, err
	}
	return res, true, nil
}

func (c *RedisAnswerCache) Set(ctx context.Context, key string, res model.GenerationResult, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	if err := c.redisClient.Set(ctx, answerKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache answer: %w", err)
	}
	return nil
}

func decodeAnswer(data []byte) (model.GenerationResult, error) {
	var res model.GenerationResult
	if err := json.Unmarshal(data, &res); err != nil {
		return model.GenerationResult{}, fmt.Errorf("failed to unmarshal cached answer: %w", err)
	}
	if res.Documents == nil {
		res.Documents = []model.Document{}
	}
	return res, nil
}
