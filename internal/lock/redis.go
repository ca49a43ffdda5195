// Package lock keeps a second importer from running against the same store.
package lock

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"dgii_fiscal/internal/ports"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript pushes the expiry out only if we still own the key.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Client is the part of *redis.Client the locker uses.
type Client interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type RedisLocker struct {
	Client Client
	TTL    time.Duration
	Prefix string
}

func NewRedisLocker(c Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisLocker{Client: c, TTL: ttl, Prefix: "dgii_fiscal:lock:"}
}

// Acquire takes the key for TTL and keeps renewing it every TTL/3 until the
// returned release func is called.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	k := l.Prefix + key

	ok, err := l.Client.SetNX(ctx, k, token, l.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", k, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrLocked, key)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.keepAlive(k, token, stop)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.Client, []string{k}, token).Err(); err != nil {
				log.Printf("[LOCK][REDIS][ERR] release key=%s err=%v", k, err)
			}
		})
	}, nil
}

func (l *RedisLocker) keepAlive(k, token string, stop <-chan struct{}) {
	every := l.TTL / 3
	if every <= 0 {
		every = time.Millisecond
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), every)
		n, err := renewScript.Run(ctx, l.Client, []string{k}, token, l.TTL.Milliseconds()).Int64()
		cancel()
		switch {
		case err != nil:
			// transient; the key still has up to 2/3 of its TTL left
			log.Printf("[LOCK][REDIS][WARN] renew key=%s err=%v", k, err)
		case n == 0:
			log.Printf("[LOCK][REDIS][ERR] lost key=%s", k)
			return
		}
	}
}
