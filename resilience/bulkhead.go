package resilience

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/paiflow/errors"
)

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	// Name is used in the rejection error.
	Name string
	// MaxConcurrent is the number of slots. Zero or less means 10.
	MaxConcurrent int
	// MaxWait is how long Execute waits for a slot. 0 fails immediately.
	MaxWait time.Duration
}

// Bulkhead caps how many calls run at once. The server uses one to bound
// concurrent workflow executions.
type Bulkhead struct {
	config BulkheadConfig
	sem    chan struct{}
}

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{config: config, sem: make(chan struct{}, config.MaxConcurrent)}
}

// ErrBulkheadFull is the AppError code returned when no slot frees up in time.
const ErrBulkheadFull errors.ErrorCode = "CAPACITY_EXCEEDED"

// Acquire takes a slot. The returned release func must be called once.
func (b *Bulkhead) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case b.sem <- struct{}{}:
		return b.release, nil
	default:
	}
	if b.config.MaxWait <= 0 {
		return nil, b.rejected()
	}

	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()
	select {
	case b.sem <- struct{}{}:
		return b.release, nil
	case <-timer.C:
		return nil, b.rejected()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Execute runs fn while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	release, err := b.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

func (b *Bulkhead) release() { <-b.sem }

func (b *Bulkhead) rejected() error {
	return errors.New(ErrBulkheadFull, b.config.Name+" is at capacity", http.StatusServiceUnavailable).
		WithDetail("max_concurrent", b.config.MaxConcurrent)
}

// InUse returns the number of slots currently held.
func (b *Bulkhead) InUse() int { return len(b.sem) }

// MaxConcurrent returns the slot count.
func (b *Bulkhead) MaxConcurrent() int { return b.config.MaxConcurrent }
