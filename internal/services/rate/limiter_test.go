package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redrepo "github.com/HanovichS/PixelHub/internal/repo/redis"
)

func newTestLimiter(t *testing.T, perMinute, per10Sec int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redrepo.NewClient(srv.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	return NewLimiter(redrepo.NewRateRepo(client), perMinute, per10Sec), srv
}

func TestAllowRelayUnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 20, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		retry, allowed, err := limiter.AllowRelay(ctx, 42)
		if err != nil {
			t.Fatalf("AllowRelay: %v", err)
		}
		if !allowed || retry != 0 {
			t.Fatalf("attempt %d: allowed=%v retry=%d", i, allowed, retry)
		}
	}
}

func TestAllowRelayBurstLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 20, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, allowed, err := limiter.AllowRelay(ctx, 42); err != nil || !allowed {
			t.Fatalf("warmup attempt %d: allowed=%v err=%v", i, allowed, err)
		}
	}

	retry, allowed, err := limiter.AllowRelay(ctx, 42)
	if err != nil {
		t.Fatalf("AllowRelay: %v", err)
	}
	if allowed {
		t.Fatal("sixth message in 10s must be rejected")
	}
	if retry <= 0 || retry > 10 {
		t.Fatalf("retry = %d, want within (0, 10]", retry)
	}
}

func TestAllowRelayWindowExpiry(t *testing.T) {
	limiter, srv := newTestLimiter(t, 100, 1)
	ctx := context.Background()

	if _, allowed, _ := limiter.AllowRelay(ctx, 42); !allowed {
		t.Fatal("first message must pass")
	}
	if _, allowed, _ := limiter.AllowRelay(ctx, 42); allowed {
		t.Fatal("second message inside the burst window must be rejected")
	}

	srv.FastForward(11 * time.Second)

	if _, allowed, err := limiter.AllowRelay(ctx, 42); err != nil || !allowed {
		t.Fatalf("message after window expiry must pass, allowed=%v err=%v", allowed, err)
	}
}

func TestAllowRelayPerChatIsolation(t *testing.T) {
	limiter, _ := newTestLimiter(t, 100, 1)
	ctx := context.Background()

	if _, allowed, _ := limiter.AllowRelay(ctx, 1); !allowed {
		t.Fatal("chat 1 first message must pass")
	}
	if _, allowed, _ := limiter.AllowRelay(ctx, 2); !allowed {
		t.Fatal("chat 2 must have its own window")
	}
}

func TestAllowRelayNilStoreAllowsAll(t *testing.T) {
	limiter := NewLimiter(nil, 1, 1)

	for i := 0; i < 10; i++ {
		if _, allowed, err := limiter.AllowRelay(context.Background(), 42); err != nil || !allowed {
			t.Fatalf("nil store must fail open, allowed=%v err=%v", allowed, err)
		}
	}
}

func TestAllowRelayRejectsZeroChat(t *testing.T) {
	limiter := NewLimiter(nil, 1, 1)

	if _, _, err := limiter.AllowRelay(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero chat id")
	}
}
