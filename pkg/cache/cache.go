package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service stores values as text. Strings and byte slices are kept as-is,
// anything else is JSON encoded; Get decodes into dest the same way.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	MSet(ctx context.Context, values map[string]interface{}, expiration time.Duration) error
	MGet(ctx context.Context, keys ...string) (map[string]string, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Close() error
}

func encode(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("cache encode: %w", err)
		}
		return string(b), nil
	}
}

func decode(raw string, dest interface{}) error {
	switch d := dest.(type) {
	case *string:
		*d = raw
		return nil
	case *[]byte:
		*d = []byte(raw)
		return nil
	default:
		if err := json.Unmarshal([]byte(raw), dest); err != nil {
			return fmt.Errorf("cache decode: %w", err)
		}
		return nil
	}
}

// MGetTyped retrieves multiple keys and decodes them. Undecodable entries count as misses.
func MGetTyped[T any](ctx context.Context, c Service, keys ...string) (map[string]T, error) {
	if len(keys) == 0 {
		return make(map[string]T), nil
	}

	raw, err := c.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]T, len(raw))
	for key, v := range raw {
		var obj T
		if err := decode(v, &obj); err != nil {
			continue
		}
		out[key] = obj
	}
	return out, nil
}

// GetOrSet returns the cached value for key, or computes, stores and returns it.
// hit reports whether the value came from the cache. Store failures are not
// fatal: the computed value is still returned together with a nil error.
func GetOrSet[T any](ctx context.Context, c Service, key string, ttl time.Duration, compute func() (T, error)) (val T, hit bool, err error) {
	if c != nil {
		if err := c.Get(ctx, key, &val); err == nil {
			return val, true, nil
		}
	}
	val, err = compute()
	if err != nil {
		return val, false, err
	}
	if c != nil {
		_ = c.Set(ctx, key, val, ttl)
	}
	return val, false, nil
}
