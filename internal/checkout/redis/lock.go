package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Lock serializes checkout attempts per cart. The holder writes its own
// token under checkout_lock:<cartID> so that only the owning attempt can
// release the lock; the TTL bounds how long a crashed checkout can block a
// cart.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLock(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Lock{Client: client, TTL: ttl}
}

func lockKey(cartID string) string {
	return "checkout_lock:" + cartID
}

// LockCart tries to take the cart's checkout lock. Returns false when
// another checkout currently holds it.
func (l *Lock) LockCart(cartID, token string) (bool, error) {
	return l.Client.SetNX(context.Background(), lockKey(cartID), token, l.TTL).Result()
}

// UnlockCart releases the lock, but only when this holder's token still owns
// it. An expired lock re-taken by another checkout is left alone.
func (l *Lock) UnlockCart(cartID, token string) error {
	ctx := context.Background()
	key := lockKey(cartID)

	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err := l.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
