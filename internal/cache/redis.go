package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is nil when REDIS_URL is unset or the server did not answer.
var Client *redis.Client

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

func InitRedis(ctx context.Context) {
	addr := strings.TrimSpace(os.Getenv("REDIS_URL"))
	if addr == "" {
		log.Println("Redis disabled: stale data is kept in process memory only")
		return
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			log.Printf("Warning: failed to parse REDIS_URL, redis disabled: %v", err)
			return
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		log.Printf("Warning: failed to connect to Redis, redis disabled: %v", err)
		_ = client.Close()
		return
	}
	Client = client
	log.Println("Connected to Redis")
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Mirror keeps the last good payload of each key in Redis so the stale tier
// survives a restart. A nil *Mirror is a valid no-op.
type Mirror struct {
	client    RedisClient
	prefix    string
	retention time.Duration
}

type mirrorEnvelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewMirror(client RedisClient, retention time.Duration) *Mirror {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &Mirror{client: client, prefix: "gmedash:stale:", retention: retention}
}

// Save stores value under key, stamped with the time it was fetched.
func (m *Mirror) Save(ctx context.Context, key string, value any, fetchedAt time.Time) error {
	if m == nil || m.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(mirrorEnvelope{Data: data, Timestamp: fetchedAt.UTC()})
	if err != nil {
		return err
	}
	return m.client.Set(ctx, m.prefix+key, payload, m.retention).Err()
}

// Load decodes the mirrored payload of key into dst and returns when it was
// fetched. ok is false on a miss.
func (m *Mirror) Load(ctx context.Context, key string, dst any) (fetchedAt time.Time, ok bool, err error) {
	if m == nil || m.client == nil {
		return time.Time{}, false, nil
	}
	raw, err := m.client.Get(ctx, m.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	var env mirrorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return time.Time{}, false, err
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return time.Time{}, false, err
	}
	return env.Timestamp, true, nil
}
