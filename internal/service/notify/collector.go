package notify

import (
	"context"
	"sync"

	"loc-portal/internal/domain"

	"go.uber.org/zap"
)

// Collector buffers the notifications emitted while serving one request.
// Every notification is also logged.
type Collector struct {
	mu    sync.Mutex
	items []domain.Notification
	log   *zap.Logger
}

func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log}
}

// Notify implements service.Notifier
func (c *Collector) Notify(n domain.Notification) {
	if n.Variant == "" {
		n.Variant = domain.VariantDefault
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()

	c.log.Info("notification",
		zap.String("title", n.Title),
		zap.String("variant", string(n.Variant)))
}

// Drain returns the buffered notifications and empties the buffer
func (c *Collector) Drain() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.items
	c.items = nil
	if out == nil {
		return []domain.Notification{}
	}
	return out
}

// Discard drops notifications. Used when there is no presentation sink.
type Discard struct{}

func (Discard) Notify(domain.Notification) {}

type contextKey struct{}

// WithCollector attaches a collector to the context
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the request's collector, or nil
func FromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(contextKey{}).(*Collector)
	return c
}
