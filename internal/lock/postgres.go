package lock

import (
	"context"
	"fmt"
	"log"
	"time"

	"dgii_fiscal/internal/config/connections/postgres"
	"dgii_fiscal/internal/ports"
)

// AdvisoryLocker holds a session-level pg_advisory_lock on a dedicated pool
// connection for as long as the lock is held.
type AdvisoryLocker struct {
	PG *postgres.Postgres
}

func NewAdvisoryLocker(pg *postgres.Postgres) *AdvisoryLocker {
	return &AdvisoryLocker{PG: pg}
}

func (l *AdvisoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	conn, err := l.PG.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("advisory lock conn: %w", err)
	}

	var ok bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, key).Scan(&ok); err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock %s: %w", key, err)
	}
	if !ok {
		conn.Release()
		return nil, fmt.Errorf("%w: %s", ports.ErrLocked, key)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
			log.Printf("[LOCK][PG][ERR] unlock key=%s err=%v", key, err)
		}
		conn.Release()
	}, nil
}
