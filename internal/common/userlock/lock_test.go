package userlock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	cerrors "github.com/park285/gift-grid-bot/internal/common/errors"
	"github.com/park285/gift-grid-bot/internal/common/testhelper"
)

func newTestLocker(t *testing.T, ttl time.Duration) *Locker {
	t.Helper()
	client, _ := testhelper.NewMiniredisClient(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(client, logger, func(userID int64) string {
		return fmt.Sprintf("test:userlock:%d", userID)
	}, ttl)
}

func TestLocker_WithLock_ReleasesAfterRun(t *testing.T) {
	locker := newTestLocker(t, 10*time.Second)
	ctx := context.Background()

	ran := false
	err := locker.WithLock(ctx, 1, func(ctx context.Context) error {
		held, err := locker.IsHeld(ctx, 1)
		if err != nil {
			return err
		}
		if !held {
			t.Error("expected lock to be held inside block")
		}
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("with lock failed: %v", err)
	}
	if !ran {
		t.Fatal("block did not run")
	}

	held, err := locker.IsHeld(ctx, 1)
	if err != nil {
		t.Fatalf("is held failed: %v", err)
	}
	if held {
		t.Fatal("expected lock released")
	}
}

func TestLocker_WithLock_BlockEndsBeforeLockExpires(t *testing.T) {
	const ttl = 250 * time.Millisecond
	locker := newTestLocker(t, ttl)
	ctx := context.Background()

	start := time.Now()
	err := locker.WithLock(ctx, 4, func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Error("expected block context to carry a deadline")
		} else if deadline.Sub(start) >= ttl {
			t.Errorf("deadline %v is not before lock expiry %v", deadline.Sub(start), ttl)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return errors.New("block was not cancelled")
		}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed >= 2*time.Second {
		t.Fatalf("block ran for %v", elapsed)
	}
}

func TestLocker_WithLock_BusyWhileHeld(t *testing.T) {
	locker := newTestLocker(t, 10*time.Second)
	ctx := context.Background()

	err := locker.WithLock(ctx, 2, func(ctx context.Context) error {
		inner := locker.WithLock(ctx, 2, func(context.Context) error {
			t.Error("nested block must not run")
			return nil
		})
		if !errors.Is(inner, ErrBusy) {
			t.Errorf("expected ErrBusy, got %v", inner)
		}
		var lockErr cerrors.LockError
		if !errors.As(inner, &lockErr) {
			t.Errorf("expected LockError, got %T", inner)
		}
		if !cerrors.IsExpectedUserBehavior(inner) {
			t.Error("busy lock should be treated as expected user behavior")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("outer with lock failed: %v", err)
	}
}

func TestLocker_WithLock_PropagatesBlockError(t *testing.T) {
	locker := newTestLocker(t, 10*time.Second)
	ctx := context.Background()
	want := errors.New("boom")

	if err := locker.WithLock(ctx, 3, func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected block error, got %v", err)
	}
	if held, _ := locker.IsHeld(ctx, 3); held {
		t.Fatal("lock should be released after block error")
	}
}

func TestLocker_Release_DoesNotDeleteForeignToken(t *testing.T) {
	client, mr := testhelper.NewMiniredisClient(t)
	locker := New(client, nil, nil, 10*time.Second)
	ctx := context.Background()

	if err := mr.Set("userlock:4", "someone-else"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := locker.release(ctx, "userlock:4", "mine"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if got, _ := mr.Get("userlock:4"); got != "someone-else" {
		t.Fatalf("foreign lock was removed, value=%q", got)
	}
}

func TestLocker_TTLExpires(t *testing.T) {
	client, mr := testhelper.NewMiniredisClient(t)
	locker := New(client, nil, nil, 2*time.Second)
	ctx := context.Background()

	ok, err := locker.tryAcquire(ctx, "userlock:5", "t1")
	if err != nil || !ok {
		t.Fatalf("first acquire failed ok=%v err=%v", ok, err)
	}
	mr.FastForward(3 * time.Second)

	ok, err = locker.tryAcquire(ctx, "userlock:5", "t2")
	if err != nil || !ok {
		t.Fatalf("acquire after ttl failed ok=%v err=%v", ok, err)
	}
}
