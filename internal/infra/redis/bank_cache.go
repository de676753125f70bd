package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"training-quiz-service/internal/bank"
	"training-quiz-service/internal/domain"
)

// BankCache caches bank definitions in Redis (one JSON string per bank) and
// falls back to the wrapped loader on a miss.
//
//	SET training:bank:{bankID} <json> EX ttl
type BankCache struct {
	client *redis.Client
	loader bank.Loader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewBankCache(client *redis.Client, loader bank.Loader, ttl time.Duration) *BankCache {
	return &BankCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *BankCache) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	if b, ok := c.cached(ctx, bankID); ok {
		return b, nil
	}

	result, err, _ := c.sf.Do(bankID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if b, ok := c.cached(ctx, bankID); ok {
			return b, nil
		}

		b, err := c.loader.LoadBank(ctx, bankID)
		if err != nil {
			return domain.Bank{}, err
		}
		if data, err := json.Marshal(b); err == nil {
			_ = c.client.Set(ctx, c.key(bankID), data, c.ttlWithJitter()).Err()
		}
		return b, nil
	})
	if err != nil {
		return domain.Bank{}, err
	}
	return result.(domain.Bank), nil
}

// Invalidate drops the cached copy, e.g. after the bank was re-seeded.
func (c *BankCache) Invalidate(ctx context.Context, bankID string) error {
	return c.client.Del(ctx, c.key(bankID)).Err()
}

func (c *BankCache) cached(ctx context.Context, bankID string) (domain.Bank, bool) {
	data, err := c.client.Get(ctx, c.key(bankID)).Bytes()
	if err != nil {
		return domain.Bank{}, false
	}
	var b domain.Bank
	if err := json.Unmarshal(data, &b); err != nil || len(b.Questions) == 0 {
		return domain.Bank{}, false
	}
	return b, true
}

func (c *BankCache) key(bankID string) string {
	return "training:bank:" + bankID
}

func (c *BankCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
