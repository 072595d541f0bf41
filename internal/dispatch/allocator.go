package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/careops/hospital-admission/internal/redis"
	"github.com/careops/hospital-admission/internal/store"
)

var (
	// ErrUnavailable means the pool's unit is already dispatched or the pool
	// is contended right now. It is a normal branch outcome, not a fault.
	ErrUnavailable = errors.New("no ambulance available for dispatch")
)

// Allocator manages the shared ambulance pool. All claims go through the
// Redis pool lock plus a conditional update on the booked flag, so at most
// one session holds the dispatch at a time.
type Allocator struct {
	repo   store.Repository
	locker redisclient.Locker
}

func NewAllocator(repo store.Repository, locker redisclient.Locker) *Allocator {
	return &Allocator{
		repo:   repo,
		locker: locker,
	}
}

// TryDispatch seeds the default unit if the pool is empty, then claims it.
// The claimed unit is returned so callers can surface driver details.
func (a *Allocator) TryDispatch(ctx context.Context) (*store.Ambulance, error) {
	var claimed *store.Ambulance

	err := a.locker.WithPoolLock(ctx, func(lockCtx context.Context) error {
		id, err := a.repo.EnsureDefaultAmbulance(lockCtx)
		if err != nil {
			return fmt.Errorf("ensure default ambulance: %w", err)
		}

		ok, err := a.repo.ClaimAmbulance(lockCtx, id)
		if err != nil {
			return fmt.Errorf("claim ambulance: %w", err)
		}
		if !ok {
			return ErrUnavailable
		}

		amb, err := a.repo.GetAmbulanceByID(lockCtx, id)
		if err != nil {
			return fmt.Errorf("load ambulance: %w", err)
		}

		claimed = amb
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	return claimed, nil
}

// Release frees a held dispatch. Called on workflow completion or reset.
func (a *Allocator) Release(ctx context.Context, id int64) error {
	if err := a.repo.ReleaseAmbulance(ctx, id); err != nil {
		return fmt.Errorf("release dispatch: %w", err)
	}
	return nil
}

// ReleaseStale frees claims older than ttl. Intended for the reaper worker,
// covering workflows that died without finishing.
func (a *Allocator) ReleaseStale(ctx context.Context, ttl time.Duration) (int64, error) {
	return a.repo.ReleaseStaleDispatches(ctx, time.Now().Add(-ttl))
}
