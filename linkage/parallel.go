package linkage

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/spenczar/quiver/domain/value"
)

// Partition splits the linkage's keys into n shards. A key always lands in
// the same shard for a given n, whatever linkage it belongs to. Shards may
// be empty. n < 1 is treated as 1.
func (l *Linkage[L, R]) Partition(n int) [][]value.Value {
	if n < 1 {
		n = 1
	}
	shards := make([][]value.Value, n)
	for _, v := range l.keys {
		i := shardOf(v, n)
		shards[i] = append(shards[i], v)
	}
	return shards
}

func shardOf(v value.Value, n int) int {
	return int(xxhash.Sum64String(string(v.Key())) % uint64(n))
}

// ForEach calls fn once for every group of the full enumeration, using up
// to workers goroutines (GOMAXPROCS when workers < 1), and never more than
// the number of keys. Groups within one
// shard are visited in order; shards run concurrently. After the first
// error or cancellation of ctx no further groups are started, and that
// error is returned.
func (l *Linkage[L, R]) ForEach(ctx context.Context, workers int, fn func(Group[L, R]) error) error {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if l.Len() == 0 {
		return nil
	}
	shards := min(workers, l.Len())

	pool, err := ants.NewPool(shards)
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		failed   atomic.Bool
		firstErr error
	)
	setErr := func(err error) {
		once.Do(func() {
			firstErr = err
			failed.Store(true)
		})
	}

	for _, shard := range l.Partition(shards) {
		if len(shard) == 0 {
			continue
		}
		if failed.Load() {
			break
		}
		if err := ctx.Err(); err != nil {
			setErr(err)
			break
		}

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			for _, v := range shard {
				if failed.Load() {
					return
				}
				if err := ctx.Err(); err != nil {
					setErr(err)
					return
				}
				if err := fn(l.group(v)); err != nil {
					setErr(err)
					return
				}
			}
		}); err != nil {
			wg.Done()
			setErr(fmt.Errorf("submitting shard: %w", err))
			break
		}
	}

	wg.Wait()
	return firstErr
}
