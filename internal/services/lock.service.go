package services

import (
	"context"
	"sync"
	"time"

	"labstock/internal/apperrors"

	logger "github.com/Bparsons0904/goLogger"
)

const defaultLockWait = 5 * time.Second

// LockService serializes lifecycle mutations per SKU within this process.
// Each SKU gets a one-slot channel acting as a mutex with bounded wait, so
// two concurrent checkouts of the same item resolve deterministically
// before either touches the database. Row locks inside the transaction
// remain the cross-process guarantee.
type LockService struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	maxWait time.Duration
	log     logger.Logger
}

func NewLockService() *LockService {
	return &LockService{
		locks:   make(map[string]chan struct{}),
		maxWait: defaultLockWait,
		log:     logger.New("LockService"),
	}
}

func (s *LockService) slot(sku string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.locks[sku]
	if !ok {
		slot = make(chan struct{}, 1)
		s.locks[sku] = slot
	}

	return slot
}

// Acquire takes the lock for a SKU, waiting at most the configured bound.
// The returned release function must be called exactly once, typically via
// defer. Exceeding the wait bound returns ErrLockTimeout rather than
// blocking the caller indefinitely.
func (s *LockService) Acquire(ctx context.Context, sku string) (func(), error) {
	log := s.log.Function("Acquire")

	slot := s.slot(sku)

	timer := time.NewTimer(s.maxWait)
	defer timer.Stop()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		log.Warn("lock wait exceeded", "sku", sku, "maxWait", s.maxWait)
		return nil, apperrors.Wrap(apperrors.ErrLockTimeout, "could not lock %s within %s", sku, s.maxWait)
	}
}
