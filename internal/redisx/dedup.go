package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Deduper tracks processed event ids per consuming service. Seen marks the id
// on first sight so a redelivered event reports true.
type Deduper struct {
	R       *redis.Client
	Service string
}

func (d *Deduper) Seen(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf(KeyDedup, d.Service, eventID)
	ok, err := Exists(ctx, d.R, key)
	if err != nil || ok {
		return ok, err
	}
	return false, d.R.Set(ctx, key, "1", TTLDedup).Err()
}
