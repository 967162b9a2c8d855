package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/therealutkarshpriyadarshi/dashprep/internal/config"
)

// Cache memoises HDR detection results in Redis so that re-running on an
// unchanged input skips ffprobe
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// ProbeRecord is the cached detection result
type ProbeRecord struct {
	HDR      bool      `json:"hdr"`
	ProbedAt time.Time `json:"probed_at"`
}

// New creates a cache from configuration
func New(cfg config.CacheConfig) (*Cache, error) {
	return NewCache(cfg.Host, cfg.Port, cfg.Password, cfg.DB, cfg.TTL)
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Key derives the cache key for an input from its absolute path, size and
// modification time, so a rewritten file misses the cache
func Key(path string, info os.FileInfo) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	h := sha256.New()
	h.Write([]byte(abs))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(info.Size(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))

	return "hdr:" + hex.EncodeToString(h.Sum(nil))
}

// GetHDR returns the cached detection result. found is false on a miss.
func (c *Cache) GetHDR(ctx context.Context, key string) (hdr bool, found bool, err error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, false, nil // Cache miss
		}
		return false, false, fmt.Errorf("failed to get HDR result from cache: %w", err)
	}

	var record ProbeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return false, false, fmt.Errorf("failed to unmarshal HDR result: %w", err)
	}

	return record.HDR, true, nil
}

// SetHDR caches a detection result
func (c *Cache) SetHDR(ctx context.Context, key string, hdr bool) error {
	data, err := json.Marshal(ProbeRecord{HDR: hdr, ProbedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal HDR result: %w", err)
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// DeleteHDR removes a cached result
func (c *Cache) DeleteHDR(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
