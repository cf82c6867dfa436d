package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

func TestCache_SetAndGet(t *testing.T) {
	cache := New()
	defer cache.Stop()
	ctx := context.Background()

	key := "analysis:abc"
	value := []byte(`{"suggestions": []}`)

	if err := cache.Set(ctx, key, value, 5*time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get() = %s, want %s", got, value)
	}
}

func TestCache_GetNonExistent(t *testing.T) {
	cache := New()
	defer cache.Stop()

	_, err := cache.Get(context.Background(), "non-existent")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	cache := New()
	defer cache.Stop()
	ctx := context.Background()

	key := "expiring-key"
	cache.Set(ctx, key, []byte("v"), 50*time.Millisecond)

	if _, err := cache.Get(ctx, key); err != nil {
		t.Error("Key should exist before TTL expiration")
	}

	time.Sleep(100 * time.Millisecond)

	if _, err := cache.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Error("Key should be expired after TTL")
	}
}

func TestCache_Delete(t *testing.T) {
	cache := New()
	defer cache.Stop()
	ctx := context.Background()

	key := "delete-key"
	cache.Set(ctx, key, []byte("v"), time.Hour)

	if _, err := cache.Get(ctx, key); err != nil {
		t.Error("Key should exist before delete")
	}

	cache.Delete(ctx, key)

	if _, err := cache.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Error("Key should not exist after delete")
	}
}

func TestCache_Overwrite(t *testing.T) {
	cache := New()
	defer cache.Stop()
	ctx := context.Background()

	key := "overwrite-key"
	cache.Set(ctx, key, []byte("one"), time.Hour)
	cache.Set(ctx, key, []byte("two"), time.Hour)

	got, _ := cache.Get(ctx, key)
	if string(got) != "two" {
		t.Errorf("Get() = %s, want two after overwrite", got)
	}
}

func TestCache_Stop(t *testing.T) {
	cache := New()

	cache.Stop()

	cache.Stop()
}

func TestCache_NewWithContext(t *testing.T) {
	cctx, cancel := context.WithCancel(context.Background())
	cache := NewWithContext(cctx)
	ctx := context.Background()

	cache.Set(ctx, "ctx-key", []byte("v"), time.Hour)

	if _, err := cache.Get(ctx, "ctx-key"); err != nil {
		t.Error("Cache should work before context cancel")
	}

	cancel()

	time.Sleep(10 * time.Millisecond)

	// отмена контекста останавливает только фоновую очистку
	cache.Set(ctx, "another", []byte("v"), time.Hour)
	if _, err := cache.Get(ctx, "another"); err != nil {
		t.Error("Cache should still work after context cancel")
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := New()
	defer cache.Stop()
	ctx := context.Background()

	done := make(chan bool)

	go func() {
		for i := 0; i < 1000; i++ {
			cache.Set(ctx, "concurrent-key", []byte("v"), time.Hour)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 1000; i++ {
			cache.Get(ctx, "concurrent-key")
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			cache.Delete(ctx, "concurrent-key")
			time.Sleep(time.Microsecond)
		}
		done <- true
	}()

	<-done
	<-done
	<-done
}
