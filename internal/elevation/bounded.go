package elevation

import (
	"context"
	"fmt"
	"time"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/geom"
)

// DefaultTimeout bounds a single query made during playback.
const DefaultTimeout = 50 * time.Millisecond

// Bounded limits how long a query to the wrapped source may take. A query
// that does not finish in time reports ErrNotAvailable; the wrapped call keeps
// running in the background until it returns.
type Bounded struct {
	src     Source
	timeout time.Duration
}

// WithTimeout wraps src so that no query blocks longer than timeout. A
// non-positive timeout selects DefaultTimeout. A nil src is never available.
func WithTimeout(src Source, timeout time.Duration) *Bounded {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bounded{src: src, timeout: timeout}
}

func (b *Bounded) ElevationAt(ctx context.Context, p geom.Point, c crs.CRS) (float64, error) {
	if b.src == nil {
		return 0, ErrNotAvailable
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		z   float64
		err error
	}
	ch := make(chan result, 1)

	go func() {
		z, err := b.src.ElevationAt(ctx, p, c)
		ch <- result{z, err}
	}()

	select {
	case r := <-ch:
		return r.z, r.err
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %w", ErrNotAvailable, ctx.Err())
	}
}
