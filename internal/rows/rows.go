/*
Package rows splits independent per-row work across goroutines.
*/
package rows

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minRows is the smallest chunk handed to a goroutine; below this the
// scheduling cost outweighs the work.
const minRows = 16

// chunksPerWorker splits the rows finer than one chunk per worker so a slow
// chunk doesn't leave the other workers idle.
const chunksPerWorker = 4

// Parallel calls fn over contiguous [start, end) ranges covering [0, n) and
// blocks until every call has returned. At most GOMAXPROCS calls run at
// once. Ranges never overlap so fn may write to per-row storage without
// locking.
func Parallel(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := min(runtime.GOMAXPROCS(0), (n+minRows-1)/minRows)
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := max(minRows, (n+workers*chunksPerWorker-1)/(workers*chunksPerWorker))

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
