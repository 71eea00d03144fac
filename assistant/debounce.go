package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const DefaultDebounce = 500 * time.Millisecond

// ErrSuperseded 同一 key 上有更新的调用，本次放弃
var ErrSuperseded = errors.New("superseded by a newer call")

type pendingCall struct {
	cancel chan struct{}
}

// Debouncer 按 key 去抖：新调用取消上一个尚在等待的调用，只有最后一个在静默期后放行
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCall
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, pending: map[string]*pendingCall{}}
}

// Wait blocks for the quiet period. It returns nil when this call is still the
// newest for key, ErrSuperseded when a later call replaced it, or ctx.Err().
func (d *Debouncer) Wait(ctx context.Context, key string) error {
	c := &pendingCall{cancel: make(chan struct{})}
	d.mu.Lock()
	if prev, ok := d.pending[key]; ok {
		close(prev.cancel)
	}
	d.pending[key] = c
	d.mu.Unlock()

	t := time.NewTimer(d.delay)
	defer t.Stop()

	select {
	case <-c.cancel:
		return ErrSuperseded
	case <-ctx.Done():
		d.release(key, c)
		return ctx.Err()
	case <-t.C:
		if !d.release(key, c) {
			return ErrSuperseded
		}
		return nil
	}
}

// release 仍是最新调用时移除并返回 true
func (d *Debouncer) release(key string, c *pendingCall) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending[key] != c {
		return false
	}
	delete(d.pending, key)
	return true
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
