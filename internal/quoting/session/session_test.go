package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

type testSessionConfig struct {
	sessionTTL time.Duration
	dedupeTTL  time.Duration
}

func (c testSessionConfig) GetSessionTTL() time.Duration    { return c.sessionTTL }
func (c testSessionConfig) GetDedupeTTL() time.Duration     { return c.dedupeTTL }
func (c testSessionConfig) GetFollowUpDelay() time.Duration { return 24 * time.Hour }

func testConfig() testSessionConfig {
	return testSessionConfig{sessionTTL: 24 * time.Hour, dedupeTTL: 5 * time.Minute}
}

func sampleSession(userID string) *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	s := domain.NewSession(userID, now)
	s.State = domain.StateWaitingGlaseo
	s.Language = domain.LanguageES
	s.Pending = &domain.PendingData{
		Single: &domain.Query{
			Product: domain.ProductHLSO,
			Size:    "16/20",
		},
		RequestText: "Cotizar HLSO 16/20",
	}
	return s
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRedisRepository(newTestRedis(t), testConfig())

	got, err := repo.Get(ctx, "593991234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing session, got %+v", got)
	}

	want := sampleSession("593991234567")
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err = repo.Get(ctx, "593991234567")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.State != domain.StateWaitingGlaseo {
		t.Errorf("state: expected %s, got %s", domain.StateWaitingGlaseo, got.State)
	}
	if got.Pending == nil || got.Pending.Single == nil || got.Pending.Single.Product != domain.ProductHLSO {
		t.Errorf("expected pending single HLSO, got %+v", got.Pending)
	}
	if got.Language != domain.LanguageES {
		t.Errorf("language: expected es, got %s", got.Language)
	}

	if err := repo.Delete(ctx, "593991234567"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, err = repo.Get(ctx, "593991234567")
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after delete, got %+v", got)
	}
}

func TestRedisRepositoryExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRedisRepository(client, testConfig())
	if err := repo.Save(ctx, sampleSession("user1")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	mr.FastForward(25 * time.Hour)

	got, err := repo.Get(ctx, "user1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session to be absent, got %+v", got)
	}
}

func TestRedisDeduper(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	d := NewRedisDeduper(client, testConfig())

	first, err := d.MarkProcessed(ctx, "wamid.123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first {
		t.Fatal("expected first delivery to pass")
	}

	second, err := d.MarkProcessed(ctx, "wamid.123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second {
		t.Fatal("expected redelivery to be suppressed")
	}

	mr.FastForward(6 * time.Minute)

	again, err := d.MarkProcessed(ctx, "wamid.123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again {
		t.Fatal("expected id to pass after the dedupe window")
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(testConfig())

	if err := repo.Save(ctx, sampleSession("user1")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.Get(ctx, "user1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.State != domain.StateWaitingGlaseo {
		t.Fatalf("expected stored session, got %+v", got)
	}

	// Mutating the returned session must not leak into the store.
	got.State = domain.StateIdle
	again, err := repo.Get(ctx, "user1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if again.State != domain.StateWaitingGlaseo {
		t.Errorf("store mutated through returned pointer: %s", again.State)
	}

	expired := sampleSession("user2")
	expired.UpdatedAt = time.Now().Add(-25 * time.Hour)
	if err := repo.Save(ctx, expired); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err = repo.Get(ctx, "user2")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session to be absent, got %+v", got)
	}
}

func TestMemoryDeduper(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDeduper(testConfig())

	if first, _ := d.MarkProcessed(ctx, "m1"); !first {
		t.Fatal("expected first delivery to pass")
	}
	if second, _ := d.MarkProcessed(ctx, "m1"); second {
		t.Fatal("expected redelivery to be suppressed")
	}
	if other, _ := d.MarkProcessed(ctx, "m2"); !other {
		t.Fatal("expected distinct id to pass")
	}
}

func TestLocksSerializePerUser(t *testing.T) {
	locks := NewLocks()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("user1")
			counter++
			locks.Unlock("user1")
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("expected 100 serialized increments, got %d", counter)
	}
}

func TestLocksIndependentKeys(t *testing.T) {
	locks := NewLocks()

	locks.Lock("user1")
	done := make(chan struct{})
	go func() {
		locks.Lock("user2")
		locks.Unlock("user2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different user blocked")
	}
	locks.Unlock("user1")
}
