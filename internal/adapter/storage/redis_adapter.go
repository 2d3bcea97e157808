package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

const (
	cartKeyPrefix    = "cart:"
	checkoutLockTTL  = 30 * time.Second
	checkoutLockTail = ":checkout"
)

// releaseLockScript deletes the checkout lock only while it still holds the
// caller's token, so an expired lock re-acquired by another checkout is kept.
var releaseLockScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]

if redis.call('GET', key) == token then
	return redis.call('DEL', key)
end

return 0
`)

// RedisCartStore keeps each cart as a Redis list of JSON lines so several
// server processes can share carts. Checkout trims only the committed prefix,
// leaving lines appended meanwhile in place.
type RedisCartStore struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisCartStore(client *redis.Client, log zerolog.Logger) *RedisCartStore {
	return &RedisCartStore{client: client, log: log}
}

func cartKey(userID int64) string {
	return cartKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisCartStore) Append(ctx context.Context, userID int64, item domain.CartItem) ([]domain.CartItem, error) {
	line, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encode cart line: %w", err)
	}

	key := cartKey(userID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, line)
	lines := pipe.LRange(ctx, key, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return decodeLines(lines.Val())
}

func (r *RedisCartStore) Items(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	lines, err := r.client.LRange(ctx, cartKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return decodeLines(lines)
}

func (r *RedisCartStore) Checkout(ctx context.Context, userID int64, commit port.CommitFunc) error {
	key := cartKey(userID)

	lockKey := key + checkoutLockTail
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, lockKey, token, checkoutLockTTL).Result()
	if err != nil {
		return fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !ok {
		return domain.ErrCheckoutInProgress
	}
	defer r.releaseLock(context.WithoutCancel(ctx), lockKey, token)

	lines, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return domain.ErrEmptyCart
	}

	items, err := decodeLines(lines)
	if err != nil {
		return err
	}

	if err := commit(ctx, items); err != nil {
		return err
	}

	// The order is placed at this point; a failed trim is logged, not returned.
	if err := r.client.LTrim(ctx, key, int64(len(lines)), -1).Err(); err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Int("lines", len(lines)).
			Msg("cart not cleared after checkout")
	}
	return nil
}

func (r *RedisCartStore) releaseLock(ctx context.Context, lockKey, token string) {
	if err := releaseLockScript.Run(ctx, r.client, []string{lockKey}, token).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", lockKey).Msg("release checkout lock failed")
	}
}

func decodeLines(lines []string) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0, len(lines))
	for _, line := range lines {
		var item domain.CartItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("decode cart line: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
