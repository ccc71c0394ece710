package notify

import (
	"context"
	"sync"
	"testing"

	"loc-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_NotifyAndDrain(t *testing.T) {
	c := NewCollector(nil)

	assert.Equal(t, []domain.Notification{}, c.Drain())

	c.Notify(domain.Notification{Title: "Login successful"})
	c.Notify(domain.Notification{Title: "Payment failed", Variant: domain.VariantDestructive})

	got := c.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, domain.VariantDefault, got[0].Variant)
	assert.Equal(t, domain.VariantDestructive, got[1].Variant)

	assert.Empty(t, c.Drain())
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Notify(domain.Notification{Title: "x"})
		}()
	}
	wg.Wait()

	assert.Len(t, c.Drain(), 50)
}

func TestContextHelpers(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	c := NewCollector(nil)
	ctx := WithCollector(context.Background(), c)
	assert.Same(t, c, FromContext(ctx))
}
