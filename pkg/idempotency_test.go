package pkg

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyGuardSequential(t *testing.T) {
	guard := NewMemoryIdempotencyGuard()
	assert.True(t, guard.TryBegin("order-1"))
	assert.False(t, guard.TryBegin("order-1"))
	assert.True(t, guard.TryBegin("order-2"), "keys are independent")
}

func TestIdempotencyGuardConcurrentSingleWinner(t *testing.T) {
	guard := NewMemoryIdempotencyGuard()

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.TryBegin("order-1") {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners)
}

func TestIdempotencyGuardRollback(t *testing.T) {
	guard := NewMemoryIdempotencyGuard()
	assert.True(t, guard.TryBegin("order-1"))
	guard.Rollback("order-1")
	assert.True(t, guard.TryBegin("order-1"), "rollback permits a retry")
	assert.False(t, guard.TryBegin("order-1"))
}
