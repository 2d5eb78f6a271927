// Package cache remembers terminal payment callback outcomes so replayed
// callbacks can be answered without taking a row lock.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"foodshare/internal/metrics"
	"foodshare/internal/payment"
	"foodshare/pkg/logger"
)

const (
	keyPrefix  = "payment:callback:"
	DefaultTTL = 24 * time.Hour
)

type RedisCache struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker
	ttl    time.Duration
	log    logger.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &RedisCache{client: client, ttl: ttl, log: log}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-callback-cache",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
	return c
}

// Get returns the cached outcome for ref. A miss, an open breaker or a
// redis error all report found=false; only the error distinguishes them.
func (c *RedisCache) Get(ctx context.Context, ref string) (*payment.CallbackResult, bool, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		val, err := c.client.Get(ctx, keyPrefix+ref).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return val, nil
	})
	if err != nil {
		metrics.PaymentCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("callback cache get: %w", err)
	}
	if out == nil {
		metrics.PaymentCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}

	var res payment.CallbackResult
	if err := json.Unmarshal(out.([]byte), &res); err != nil {
		return nil, false, fmt.Errorf("callback cache decode: %w", err)
	}
	metrics.PaymentCacheTotal.WithLabelValues("hit").Inc()
	return &res, true, nil
}

// Set stores a terminal outcome. Non-terminal results are ignored.
func (c *RedisCache) Set(ctx context.Context, res payment.CallbackResult) error {
	if !res.Status.Terminal() {
		return nil
	}
	res.Replayed = false
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, keyPrefix+res.ProviderRef, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("callback cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) State() gobreaker.State {
	return c.cb.State()
}
