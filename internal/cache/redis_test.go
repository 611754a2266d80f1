package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestInitRedisWithCustomAddr(t *testing.T) {
	t.Setenv("REDIS_URL", "redis:9999")

	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
		Client = nil
	})

	var capturedAddr string
	newRedisClient = func(opts *redis.Options) *redis.Client {
		capturedAddr = opts.Addr
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return nil
	}

	InitRedis(context.Background())
	if capturedAddr != "redis:9999" {
		t.Fatalf("expected custom addr, got %s", capturedAddr)
	}
	if Client == nil {
		t.Fatal("expected client to be set")
	}
}

func TestInitRedisDisabledWithoutURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	origNewClient := newRedisClient
	t.Cleanup(func() {
		newRedisClient = origNewClient
		Client = nil
	})

	called := false
	newRedisClient = func(opts *redis.Options) *redis.Client {
		called = true
		return redis.NewClient(opts)
	}

	InitRedis(context.Background())
	if called || Client != nil {
		t.Fatal("redis should stay disabled without REDIS_URL")
	}
}

func TestInitRedisPingFailureDisables(t *testing.T) {
	t.Setenv("REDIS_URL", "redis:9999")

	origPing := pingRedis
	t.Cleanup(func() {
		pingRedis = origPing
		Client = nil
	})
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return errors.New("connection refused")
	}

	InitRedis(context.Background())
	if Client != nil {
		t.Fatal("client should be nil after failed ping")
	}
}

func TestMirrorSaveLoad(t *testing.T) {
	fake := newFakeRedis()
	m := NewMirror(fake, time.Hour)
	fetched := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	type payload struct {
		Price float64 `json:"price"`
	}
	if err := m.Save(context.Background(), "stock_quote_GME", payload{Price: 25.5}, fetched); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if fake.lastTTL != time.Hour {
		t.Fatalf("expected retention ttl, got %v", fake.lastTTL)
	}

	var got payload
	at, ok, err := m.Load(context.Background(), "stock_quote_GME", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Price != 25.5 || !at.Equal(fetched) {
		t.Fatalf("unexpected load: %+v at %v", got, at)
	}
}

func TestMirrorMissAndNil(t *testing.T) {
	m := NewMirror(newFakeRedis(), 0)
	var dst map[string]any
	if _, ok, err := m.Load(context.Background(), "missing", &dst); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	var nilMirror *Mirror
	if err := nilMirror.Save(context.Background(), "k", 1, time.Now()); err != nil {
		t.Fatalf("nil mirror save should be a no-op: %v", err)
	}
	if _, ok, err := nilMirror.Load(context.Background(), "k", &dst); ok || err != nil {
		t.Fatal("nil mirror load should miss")
	}
}

func TestInitRedisConnectsToServer(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr()+"/0")
	t.Cleanup(func() {
		if Client != nil {
			_ = Client.Close()
		}
		Client = nil
	})

	InitRedis(context.Background())
	if Client == nil {
		t.Fatal("expected client to be set")
	}
}

func TestMirrorExpiresAfterRetention(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := NewMirror(client, 2*time.Hour)
	fetched := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	if err := m.Save(context.Background(), "news_feed", []string{"headline"}, fetched); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if ttl := mr.TTL("gmedash:stale:news_feed"); ttl != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %v", ttl)
	}

	var got []string
	at, ok, err := m.Load(context.Background(), "news_feed", &got)
	if err != nil || !ok || len(got) != 1 || !at.Equal(fetched) {
		t.Fatalf("unexpected load: %v at %v ok=%v err=%v", got, at, ok, err)
	}

	mr.FastForward(3 * time.Hour)
	if _, ok, err := m.Load(context.Background(), "news_feed", &got); ok || err != nil {
		t.Fatalf("expected expired miss, got ok=%v err=%v", ok, err)
	}
}

type fakeRedis struct {
	data    map[string][]byte
	lastTTL time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.lastTTL = expiration
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}
