package sluice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateAndMaterialize(t *testing.T) {
	p := NewPipeline()
	c := p.Create("a", "b", "c")

	out := materialize(t, c)
	assert.Equal(t, []any{"a", "b", "c"}, out)
}

func TestElementwiseMap(t *testing.T) {
	p := NewPipeline()
	c := p.Create("a", "b", "c")

	upper := ElementwiseMap(c, func(elem any) (any, error) {
		return strings.ToUpper(elem.(string)), nil
	})

	out := materialize(t, upper)
	assert.Equal(t, []any{"A", "B", "C"}, out)
}

func TestElementwiseMapPropagatesErrors(t *testing.T) {
	p := NewPipeline()
	c := p.Create(1, 2, 3)

	boom := errors.New("boom")
	mapped := ElementwiseMap(c, func(elem any) (any, error) {
		if elem.(int) == 2 {
			return nil, boom
		}
		return elem, nil
	})

	_, err := Materialize(context.Background(), mapped)
	assert.ErrorIs(t, err, boom)
}

func TestGroupByKey(t *testing.T) {
	p := NewPipeline()
	c := p.Create(
		KV{Key: "a", Value: 1},
		KV{Key: "b", Value: 2},
		KV{Key: "a", Value: 3},
	)

	rows := rowsByKey(t, materialize(t, GroupByKey(c)))
	assert.Len(t, rows, 2)
	// Values from one source keep insertion order.
	assert.Equal(t, []any{1, 3}, rows["a"].Value)
	assert.Equal(t, []any{2}, rows["b"].Value)
}

func TestUnion(t *testing.T) {
	p := NewPipeline()
	a := p.Create(1, 2)
	b := p.Create(3)
	c := p.Create()

	out := materialize(t, Union(a, b, c))
	assert.ElementsMatch(t, []any{1, 2, 3}, out)
}

func TestUnionPanicsOnPipelineMismatch(t *testing.T) {
	p1 := NewPipeline()
	p2 := NewPipeline()
	a := p1.Create(1)
	b := p2.Create(2)

	assert.Panics(t, func() { Union(a, b) })
	assert.Panics(t, func() { Union() })
	assert.Panics(t, func() { GroupByKey(Collection{}) })
}

func TestPerKeyReduce(t *testing.T) {
	p := NewPipeline()
	c := p.Create(
		KV{Key: "a", Value: 1},
		KV{Key: "a", Value: 2},
		KV{Key: "b", Value: 10},
	)

	sums := PerKeyReduce(c, func(acc, value any) (any, error) {
		return acc.(int) + value.(int), nil
	})

	rows := rowsByKey(t, materialize(t, sums))
	assert.Len(t, rows, 2)
	assert.Equal(t, 3, rows["a"].Value)
	assert.Equal(t, 10, rows["b"].Value)
}
