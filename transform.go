package sluice

import (
	"fmt"
)

// MapFunc transforms a single element. Returning an error aborts
// materialization of the pipeline.
type MapFunc func(elem any) (any, error)

// ReduceFunc folds one value into an accumulator. The accumulator for a key
// starts as that key's first value.
type ReduceFunc func(acc, value any) (any, error)

// mustSamePipeline asserts that all collections are initialized and share one
// pipeline, returning it. Mixing pipelines is a structural programming error,
// so misuse panics rather than returning an error.
func mustSamePipeline(op string, cs ...Collection) *Pipeline {
	if len(cs) == 0 {
		panic(fmt.Errorf("%s: no input collections: %w", op, ErrInvalidInput))
	}
	var p *Pipeline
	for _, c := range cs {
		if !c.valid() {
			panic(fmt.Errorf("%s: uninitialized collection: %w", op, ErrInvalidInput))
		}
		if p == nil {
			p = c.p
		} else if c.p != p {
			panic(fmt.Errorf("%s: %w", op, ErrPipelineMismatch))
		}
	}
	return p
}

// ElementwiseMap applies fn to every element of c, yielding a collection of
// the results. fn must be safe for concurrent calls; the evaluator may apply
// it from multiple goroutines.
func ElementwiseMap(c Collection, fn MapFunc) Collection {
	p := mustSamePipeline("ElementwiseMap", c)
	n := p.newNode(mapNode, c.n)
	n.fn = fn
	return Collection{p: p, n: n}
}

// GroupByKey groups a collection of KV elements by key, yielding one
// KV{key, []any} per distinct key. Values originating from one upstream
// source keep that source's order; ordering across sources and the order of
// the emitted rows are unspecified.
func GroupByKey(c Collection) Collection {
	p := mustSamePipeline("GroupByKey", c)
	n := p.newNode(groupNode, c.n)
	return Collection{p: p, n: n}
}

// Union concatenates collections of a common element type into one. All
// inputs must belong to the same pipeline.
func Union(cs ...Collection) Collection {
	p := mustSamePipeline("Union", cs...)
	nodes := make([]*node, len(cs))
	for i, c := range cs {
		nodes[i] = c.n
	}
	n := p.newNode(unionNode, nodes...)
	return Collection{p: p, n: n}
}

// PerKeyReduce groups a collection of KV elements by key and folds each
// key's values into a single value with fn, yielding one KV per distinct key.
func PerKeyReduce(c Collection, fn ReduceFunc) Collection {
	p := mustSamePipeline("PerKeyReduce", c)
	n := p.newNode(reduceNode, c.n)
	n.reduceFn = fn
	return Collection{p: p, n: n}
}
