package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
)

// AnswerCache stores generated answers by key.
type AnswerCache interface {
	Get(ctx context.Context, key string) (model.GenerationResult, bool, error)
	Set(ctx context.Context, key string, res model.GenerationResult, ttl time.Duration) error
}

// CachedAnswerer serves repeated questions from an AnswerCache. Degraded answers are never
// stored and cache errors only cost a cache miss.
type CachedAnswerer struct {
	next  Answerer
	cache AnswerCache
	ttl   time.Duration
}

func NewCachedAnswerer(next Answerer, cache AnswerCache, ttl time.Duration) *CachedAnswerer {
	return &CachedAnswerer{next: next, cache: cache, ttl: ttl}
}

func (c *CachedAnswerer) Answer(ctx context.Context, message string) model.GenerationResult {
	key := CacheKey(message)
	if res, ok, err := c.cache.Get(ctx, key); err != nil {
		log.Warnf("[AnswerCache] cache read failed, error: %v", err)
	} else if ok {
		log.Debugf("[AnswerCache] cache hit, key: %s", key)
		return res
	}

	res := c.next.Answer(ctx, message)
	if res.Degraded || ctx.Err() != nil {
		return res
	}
	if err := c.cache.Set(ctx, key, res, c.ttl); err != nil {
		log.Warnf("[AnswerCache] cache write failed, error: %v", err)
	}
	return res
}

// CacheKey is the hex SHA-256 of the cleaned message.
func CacheKey(message string) string {
	sum := sha256.Sum256([]byte(message))
	return hex.EncodeToString(sum[:])
}
