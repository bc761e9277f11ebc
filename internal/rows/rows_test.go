package rows

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 17, 100, 1000} {
		visits := make([]int32, n)
		Parallel(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&visits[i], 1)
			}
		})
		for i, v := range visits {
			assert.Equal(t, int32(1), v, "n=%d index %d", n, i)
		}
	}
}

func TestParallelLimit(t *testing.T) {
	var running, peak, calls int32
	Parallel(4096, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		runtime.Gosched()
		atomic.AddInt32(&running, -1)
	})

	assert.LessOrEqual(t, int(peak), runtime.GOMAXPROCS(0))
	if runtime.GOMAXPROCS(0) > 1 {
		assert.Greater(t, int(calls), runtime.GOMAXPROCS(0))
	}
}
