package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/c-pro/geche"
	"golang.org/x/sync/singleflight"
)

// ErrStale marks a resolved value that lost the race to a local write and
// must be discarded instead of applied.
var ErrStale = errors.New("stale load discarded")

// Resolve is the cache-then-source read path: query the persisted tier; on a
// miss query the source tier. The boolean result reports whether the value
// came from the source and should be written back to the persisted tier.
func Resolve[V any](
	ctx context.Context,
	lookup func() (V, bool, error),
	fetch func(context.Context) (V, error),
) (V, bool, error) {
	var zero V

	v, found, err := lookup()
	if err != nil {
		return zero, false, err
	}
	if found {
		return v, false, nil
	}

	v, err = fetch(ctx)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Loader wraps Resolve with a hot in-memory tier, per-key coalescing of
// concurrent loads and a per-key version guard. A load that was in flight
// when Invalidate or Reset ran resolves to ErrStale so it cannot overwrite
// newer local state.
type Loader[K comparable, V any] struct {
	group singleflight.Group

	mu    sync.Mutex
	hot   geche.Geche[K, V]
	seq   map[K]uint64
	epoch uint64
}

func NewLoader[K comparable, V any]() *Loader[K, V] {
	return &Loader[K, V]{
		hot: geche.NewMapCache[K, V](),
		seq: make(map[K]uint64),
	}
}

func (l *Loader[K, V]) version(key K) (uint64, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epoch, l.seq[key]
}

// Invalidate drops the hot entry for key and bumps its version so in-flight
// loads for the key are discarded. Call it after every local write.
func (l *Loader[K, V]) Invalidate(key K) {
	l.mu.Lock()
	l.seq[key]++
	_ = l.hot.Del(key)
	l.mu.Unlock()
}

// Reset drops the whole hot tier and invalidates every in-flight load.
func (l *Loader[K, V]) Reset() {
	l.mu.Lock()
	l.epoch++
	l.seq = make(map[K]uint64)
	l.hot = geche.NewMapCache[K, V]()
	l.mu.Unlock()
}

type loadResult[V any] struct {
	val        V
	fromSource bool
}

// Load resolves key through hot tier, persisted tier and source tier in that
// order. The boolean result reports a source-tier hit (caller writes back).
func (l *Loader[K, V]) Load(
	ctx context.Context,
	key K,
	lookup func() (V, bool, error),
	fetch func(context.Context) (V, error),
) (V, bool, error) {
	var zero V

	l.mu.Lock()
	v, err := l.hot.Get(key)
	l.mu.Unlock()
	if err == nil {
		return v, false, nil
	}

	epoch, seq := l.version(key)

	res, err, _ := l.group.Do(fmt.Sprint(key), func() (any, error) {
		val, fromSource, err := Resolve(ctx, lookup, fetch)
		if err != nil {
			return nil, err
		}
		return loadResult[V]{val: val, fromSource: fromSource}, nil
	})
	if err != nil {
		return zero, false, err
	}

	if e, s := l.version(key); e != epoch || s != seq {
		return zero, false, ErrStale
	}

	r := res.(loadResult[V])
	l.mu.Lock()
	l.hot.Set(key, r.val)
	l.mu.Unlock()
	return r.val, r.fromSource, nil
}
