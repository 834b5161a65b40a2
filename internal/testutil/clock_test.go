package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClock_AdvancesByStep(t *testing.T) {
	clock := NewStepClock(25 * time.Millisecond)

	first := clock.Now()
	second := clock.Now()

	assert.Equal(t, 25*time.Millisecond, second.Sub(first))
	assert.Equal(t, 2, clock.Calls())
}

func TestStepClock_ZeroStep(t *testing.T) {
	clock := NewStepClock(0)
	assert.Equal(t, clock.Now(), clock.Now())
	assert.Equal(t, 0, clock.Calls())
}

func TestStepClock_ConcurrentAccess(t *testing.T) {
	clock := NewStepClock(time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, clock.Calls())
}
