package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/redis/go-redis/v9"
)

// backends returns a fresh instance of every [Store] implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(shared.SQLiteConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	mr := miniredis.RunT(t)
	redisStore := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { redisStore.Close() })

	return map[string]Store{
		"sqlite": sqliteStore,
		"redis":  redisStore,
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("Get unset key", func(t *testing.T) {
				_, err := s.Get(ctx, "missing")
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
			})

			t.Run("Set then Get", func(t *testing.T) {
				if err := s.Set(ctx, KeyAccessToken, "first"); err != nil {
					t.Fatalf("failed to set: %v", err)
				}
				if err := s.Set(ctx, KeyAccessToken, "second"); err != nil {
					t.Fatalf("failed to overwrite: %v", err)
				}

				got, err := s.Get(ctx, KeyAccessToken)
				if err != nil {
					t.Fatalf("failed to get: %v", err)
				}
				if got != "second" {
					t.Errorf("expected last write to win, got %q", got)
				}
			})

			t.Run("Incr", func(t *testing.T) {
				for want := int64(1); want <= 3; want++ {
					got, err := s.Incr(ctx, KeyRequestCount)
					if err != nil {
						t.Fatalf("failed to incr: %v", err)
					}
					if got != want {
						t.Errorf("expected %d, got %d", want, got)
					}
				}
			})

			t.Run("Incr concurrently", func(t *testing.T) {
				const workers = 25
				key := "concurrent_count"

				var wg sync.WaitGroup
				for range workers {
					wg.Add(1)
					go func() {
						defer wg.Done()
						if _, err := s.Incr(ctx, key); err != nil {
							t.Errorf("failed to incr: %v", err)
						}
					}()
				}
				wg.Wait()

				got, err := s.Get(ctx, key)
				if err != nil {
					t.Fatalf("failed to get: %v", err)
				}
				if got != strconv.Itoa(workers) {
					t.Errorf("expected %d, got %s", workers, got)
				}
			})

			t.Run("Ping", func(t *testing.T) {
				if err := s.Ping(ctx); err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			})

			t.Run("Tokens", func(t *testing.T) {
				pair := models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}
				if err := SaveTokens(ctx, s, pair); err != nil {
					t.Fatalf("failed to save tokens: %v", err)
				}

				got, err := LoadTokens(ctx, s)
				if err != nil {
					t.Fatalf("failed to load tokens: %v", err)
				}
				if got != pair {
					t.Errorf("expected %+v, got %+v", pair, got)
				}
			})
		})
	}
}

func TestLoadTokensEmpty(t *testing.T) {
	s, err := NewSQLiteStore(shared.SQLiteConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	defer s.Close()

	pair, err := LoadTokens(context.Background(), s)
	if err != nil {
		t.Fatalf("expected unset tokens to load without error, got %v", err)
	}
	if pair.AccessToken != "" || pair.RefreshToken != "" {
		t.Errorf("expected empty pair, got %+v", pair)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, _ := strconv.Atoi(mr.Port())

		s, err := Open(ctx, shared.StoreConfig{
			Driver: shared.StoreDriverRedis,
			Redis:  shared.RedisConfig{Host: mr.Host(), Port: port},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer s.Close()

		if _, ok := s.(*RedisStore); !ok {
			t.Errorf("expected *RedisStore, got %T", s)
		}
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, _ := strconv.Atoi(mr.Port())
		mr.Close()

		_, err := Open(ctx, shared.StoreConfig{
			Driver: shared.StoreDriverRedis,
			Redis:  shared.RedisConfig{Host: "127.0.0.1", Port: port},
		})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := Open(ctx, shared.StoreConfig{
			Driver: shared.StoreDriverSQLite,
			SQLite: shared.SQLiteConfig{Path: ":memory:"},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer s.Close()

		if _, ok := s.(*SQLiteStore); !ok {
			t.Errorf("expected *SQLiteStore, got %T", s)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, shared.StoreConfig{Driver: "etcd"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

// refreshWriteFails fails every write of the refresh token.
type refreshWriteFails struct {
	Store
}

func (r refreshWriteFails) Set(ctx context.Context, key, value string) error {
	if key == KeyRefreshToken {
		return errors.New("disk full")
	}
	return r.Store.Set(ctx, key, value)
}

func TestSaveTokensPartialWrite(t *testing.T) {
	ctx := context.Background()
	inner, err := NewSQLiteStore(shared.SQLiteConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	defer inner.Close()

	if err := SaveTokens(ctx, inner, models.TokenPair{AccessToken: "old_access", RefreshToken: "old_refresh"}); err != nil {
		t.Fatalf("failed to seed tokens: %v", err)
	}

	err = SaveTokens(ctx, refreshWriteFails{inner}, models.TokenPair{AccessToken: "new_access", RefreshToken: "new_refresh"})
	if err == nil {
		t.Fatal("expected refresh token write to fail")
	}

	got, err := LoadTokens(ctx, inner)
	if err != nil {
		t.Fatalf("failed to load tokens: %v", err)
	}
	if got.AccessToken != "new_access" || got.RefreshToken != "old_refresh" {
		t.Errorf("expected access token replaced and refresh token kept, got %+v", got)
	}
}
