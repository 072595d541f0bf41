package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	redisclient "github.com/careops/hospital-admission/internal/redis"
	"github.com/careops/hospital-admission/internal/store/storetest"
)

type passLocker struct{}

func (passLocker) WithPoolLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// contendedLocker simulates another process holding the pool lock.
type contendedLocker struct{}

func (contendedLocker) WithPoolLock(context.Context, func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

func TestTryDispatchClaimsUnit(t *testing.T) {
	repo := storetest.New()
	a := NewAllocator(repo, passLocker{})
	ctx := context.Background()

	amb, err := a.TryDispatch(ctx)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !amb.Booked || amb.DispatchedAt == nil {
		t.Fatalf("claimed unit not marked booked: %+v", amb)
	}
	if amb.DriverName != "Ravi Kumar" || amb.AmbulanceNumber != "AMB-1001" {
		t.Fatalf("unexpected seeded unit: %+v", amb)
	}
}

func TestTryDispatchAlreadyBooked(t *testing.T) {
	repo := storetest.New()
	a := NewAllocator(repo, passLocker{})
	ctx := context.Background()

	if _, err := a.TryDispatch(ctx); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if _, err := a.TryDispatch(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("second dispatch: got %v, want ErrUnavailable", err)
	}
}

func TestTryDispatchLockContention(t *testing.T) {
	repo := storetest.New()
	a := NewAllocator(repo, contendedLocker{})

	if _, err := a.TryDispatch(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestReleaseFreesUnit(t *testing.T) {
	repo := storetest.New()
	a := NewAllocator(repo, passLocker{})
	ctx := context.Background()

	amb, err := a.TryDispatch(ctx)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if err := a.Release(ctx, amb.ID); err != nil {
		t.Fatalf("release: %v", err)
	}

	again, err := a.TryDispatch(ctx)
	if err != nil {
		t.Fatalf("re-dispatch after release: %v", err)
	}
	if again.ID != amb.ID {
		t.Fatalf("re-dispatch claimed %d, want %d", again.ID, amb.ID)
	}
}

func TestReleaseStaleOnlyFreesOldClaims(t *testing.T) {
	repo := storetest.New()
	a := NewAllocator(repo, passLocker{})
	ctx := context.Background()

	amb, err := a.TryDispatch(ctx)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	// a fresh claim survives the reaper
	n, err := a.ReleaseStale(ctx, 2*time.Hour)
	if err != nil {
		t.Fatalf("release stale: %v", err)
	}
	if n != 0 {
		t.Fatalf("released %d fresh claims, want 0", n)
	}

	repo.BackdateDispatch(amb.ID, time.Now().Add(-3*time.Hour))
	n, err = a.ReleaseStale(ctx, 2*time.Hour)
	if err != nil {
		t.Fatalf("release stale: %v", err)
	}
	if n != 1 {
		t.Fatalf("released %d claims, want 1", n)
	}

	if _, err := a.TryDispatch(ctx); err != nil {
		t.Fatalf("re-dispatch after reap: %v", err)
	}
}
