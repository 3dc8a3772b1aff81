package sluice

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/sync/semaphore"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// runConfig configures one materialization.
type runConfig struct {
	MaxConcurrency int
	ChunkSize      int
	CacheSize      int
	Verbose        bool
}

func newRunConfig() *runConfig {
	loadConfig() // Load viper config from settings file(s) and environment
	return &runConfig{
		MaxConcurrency: viper.GetInt("max_concurrency"),
		ChunkSize:      viper.GetInt("chunk_size"),
		CacheSize:      viper.GetInt("cache_size"),
		Verbose:        viper.GetBool("verbose"),
	}
}

// RunOption overrides evaluator configuration for a single Materialize call.
type RunOption func(*runConfig)

// WithMaxConcurrency bounds the number of concurrent evaluation goroutines.
func WithMaxConcurrency(n int) RunOption {
	return func(c *runConfig) {
		c.MaxConcurrency = n
	}
}

// WithChunkSize sets how many elements are handed to one goroutine at a time.
func WithChunkSize(n int) RunOption {
	return func(c *runConfig) {
		c.ChunkSize = n
	}
}

// WithVerbose toggles the evaluation progress bar.
func WithVerbose(verbose bool) RunOption {
	return func(c *runConfig) {
		c.Verbose = verbose
	}
}

// Materialize evaluates the graph under c and returns its elements.
//
// Elementwise stages run in parallel chunks; nodes consumed by more than one
// downstream branch are computed once per call. Cancelling ctx aborts the
// evaluation.
func Materialize(ctx context.Context, c Collection, opts ...RunOption) ([]any, error) {
	if !c.valid() {
		return nil, fmt.Errorf("materialize: uninitialized collection: %w", ErrInvalidInput)
	}

	cfg := newRunConfig()
	for _, f := range opts {
		f(cfg)
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = 1
	}
	if cfg.CacheSize < 1 {
		cfg.CacheSize = 1
	}
	log.Debugf("Materializing with config: %#v", cfg)

	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	ev := &evaluator{
		cfg:   cfg,
		sem:   semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		cache: cache,
	}
	if cfg.Verbose {
		ev.bar = pb.New(countNodes(c.n)).Prefix("Evaluate").Start()
	}

	out, err := ev.eval(ctx, c.n)
	if ev.bar != nil {
		ev.bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	// The cache may hand the same slice to a later call; give the caller
	// a header of their own.
	return append([]any(nil), out...), nil
}

// evaluator walks a pipeline graph bottom-up, materializing one node at a
// time. A single evaluator serves a single Materialize call.
type evaluator struct {
	cfg   *runConfig
	sem   *semaphore.Weighted
	cache *lru.Cache
	bar   *pb.ProgressBar
}

func (ev *evaluator) eval(ctx context.Context, n *node) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cached, ok := ev.cache.Get(n.id); ok {
		return cached.([]any), nil
	}

	var out []any
	var err error
	switch n.kind {
	case createNode:
		out = n.elems
	case readNode:
		out, err = readLines(n.pathGlob)
	case mapNode:
		var in []any
		in, err = ev.eval(ctx, n.inputs[0])
		if err == nil {
			out, err = ev.applyMap(ctx, n.fn, in)
		}
	case unionNode:
		for _, input := range n.inputs {
			var part []any
			part, err = ev.eval(ctx, input)
			if err != nil {
				break
			}
			out = append(out, part...)
		}
	case groupNode:
		var in []any
		in, err = ev.eval(ctx, n.inputs[0])
		if err == nil {
			out, err = groupRows(in)
		}
	case reduceNode:
		var in []any
		in, err = ev.eval(ctx, n.inputs[0])
		if err == nil {
			out, err = reduceRows(in, n.reduceFn)
		}
	default:
		err = fmt.Errorf("materialize: unknown node kind %d", n.kind)
	}
	if err != nil {
		return nil, err
	}

	ev.cache.Add(n.id, out)
	if ev.bar != nil {
		ev.bar.Increment()
	}
	return out, nil
}

// applyMap applies fn to every element, fanning chunks of the input out to
// goroutines bounded by the evaluator's semaphore. Element order is
// preserved.
func (ev *evaluator) applyMap(ctx context.Context, fn MapFunc, in []any) ([]any, error) {
	out := make([]any, len(in))

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	fail := func(err error) {
		once.Do(func() { firstErr = err })
	}

	for start := 0; start < len(in); start += ev.cfg.ChunkSize {
		end := start + ev.cfg.ChunkSize
		if end > len(in) {
			end = len(in)
		}
		if err := ev.sem.Acquire(ctx, 1); err != nil {
			fail(err)
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			defer ev.sem.Release(1)
			for i := start; i < end; i++ {
				mapped, err := fn(in[i])
				if err != nil {
					fail(err)
					return
				}
				out[i] = mapped
			}
		}(start, end)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// groupRows shuffles KV elements into one KV{key, []any} per distinct key.
// Rows come out in first-seen key order, but callers must not rely on that.
func groupRows(in []any) ([]any, error) {
	groups := make(map[any][]any)
	keys := make([]any, 0)

	for _, elem := range in {
		kv, ok := elem.(KV)
		if !ok {
			return nil, fmt.Errorf("group by key: element %#v is not a key/value pair", elem)
		}
		if kv.Key != nil && !reflect.TypeOf(kv.Key).Comparable() {
			return nil, fmt.Errorf("group by key: key of type %T is not comparable", kv.Key)
		}
		if _, seen := groups[kv.Key]; !seen {
			keys = append(keys, kv.Key)
		}
		groups[kv.Key] = append(groups[kv.Key], kv.Value)
	}

	out := make([]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, KV{Key: key, Value: groups[key]})
	}
	return out, nil
}

// reduceRows groups KV elements by key and folds each key's values with fn.
func reduceRows(in []any, fn ReduceFunc) ([]any, error) {
	grouped, err := groupRows(in)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(grouped))
	for _, elem := range grouped {
		row := elem.(KV)
		values := row.Value.([]any)
		acc := values[0]
		for _, v := range values[1:] {
			acc, err = fn(acc, v)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, KV{Key: row.Key, Value: acc})
	}
	return out, nil
}

// countNodes returns the number of distinct nodes reachable from n.
func countNodes(n *node) int {
	seen := make(map[int]bool)
	var walk func(*node)
	walk = func(n *node) {
		if seen[n.id] {
			return
		}
		seen[n.id] = true
		for _, input := range n.inputs {
			walk(input)
		}
	}
	walk(n)
	return len(seen)
}
