package sluice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func materialize(t *testing.T, c Collection) []any {
	t.Helper()
	out, err := Materialize(context.Background(), c)
	assert.Nil(t, err)
	return out
}

func rowsByKey(t *testing.T, elems []any) map[any]KV {
	t.Helper()
	rows := make(map[any]KV, len(elems))
	for _, elem := range elems {
		kv, ok := elem.(KV)
		assert.True(t, ok, "output element %#v is not a KV", elem)
		_, dup := rows[kv.Key]
		assert.False(t, dup, "duplicate output row for key %v", kv.Key)
		rows[kv.Key] = kv
	}
	return rows
}

func TestCoGroupByKeyNamed(t *testing.T) {
	p := NewPipeline()
	a := p.Create(KV{Key: 1, Value: "x"})
	b := p.Create()

	joined, err := CoGroupByKey(Named(map[string]Collection{"a": a, "b": b}))
	assert.Nil(t, err)

	rows := rowsByKey(t, materialize(t, joined))
	assert.Len(t, rows, 1)

	groups := rows[1].Value.(map[string][]any)
	assert.Equal(t, []any{"x"}, groups["a"])
	assert.Equal(t, []any{}, groups["b"])
}

func TestCoGroupByKeyPositional(t *testing.T) {
	p := NewPipeline()
	c1 := p.Create(KV{Key: 1, Value: "x"})
	c2 := p.Create(KV{Key: 1, Value: "y"}, KV{Key: 1, Value: "z"})

	joined, err := CoGroupByKey(Positional(c1, c2))
	assert.Nil(t, err)

	rows := rowsByKey(t, materialize(t, joined))
	assert.Len(t, rows, 1)

	groups := rows[1].Value.([][]any)
	assert.Len(t, groups, 2)
	assert.Equal(t, []any{"x"}, groups[0])
	// Values from one source keep that source's order.
	assert.Equal(t, []any{"y", "z"}, groups[1])
}

func TestCoGroupByKeyOutputKeySet(t *testing.T) {
	p := NewPipeline()
	a := p.Create(KV{Key: "k1", Value: 1}, KV{Key: "k2", Value: 2}, KV{Key: "k1", Value: 3})
	b := p.Create(KV{Key: "k2", Value: 4}, KV{Key: "k3", Value: 5})

	joined, err := CoGroupByKey(Named(map[string]Collection{"a": a, "b": b}))
	assert.Nil(t, err)

	rows := rowsByKey(t, materialize(t, joined))
	assert.Len(t, rows, 3)
	for _, key := range []string{"k1", "k2", "k3"} {
		assert.Contains(t, rows, any(key))
	}
}

func TestCoGroupByKeyUniformContainerShape(t *testing.T) {
	p := NewPipeline()
	a := p.Create(KV{Key: 1, Value: "only-a"})
	b := p.Create(KV{Key: 2, Value: "only-b"})
	c := p.Create()

	joined, err := CoGroupByKey(Named(map[string]Collection{"a": a, "b": b, "c": c}))
	assert.Nil(t, err)

	for _, elem := range materialize(t, joined) {
		groups := elem.(KV).Value.(map[string][]any)
		// Every tag is present in every row, matched or not.
		assert.Len(t, groups, 3)
		for _, tag := range []string{"a", "b", "c"} {
			assert.Contains(t, groups, tag)
			assert.NotNil(t, groups[tag])
		}
	}
}

func TestCoGroupByKeyFreshContainerPerRow(t *testing.T) {
	p := NewPipeline()
	a := p.Create(KV{Key: 1, Value: "x"}, KV{Key: 2, Value: "y"})
	b := p.Create()

	joined, err := CoGroupByKey(Named(map[string]Collection{"a": a, "b": b}))
	assert.Nil(t, err)

	rows := rowsByKey(t, materialize(t, joined))
	first := rows[1].Value.(map[string][]any)
	second := rows[2].Value.(map[string][]any)

	// Mutating one row's container must not leak into another row.
	first["b"] = append(first["b"], "mutated")
	assert.Len(t, second["b"], 0)
	assert.Len(t, second["a"], 1)
}

func TestCoGroupByKeyPipelineMismatch(t *testing.T) {
	p1 := NewPipeline()
	p2 := NewPipeline()
	a := p1.Create(KV{Key: 1, Value: "x"})
	b := p2.Create(KV{Key: 1, Value: "y"})

	_, err := CoGroupByKey(Positional(a, b))
	assert.ErrorIs(t, err, ErrPipelineMismatch)

	// An explicit pipeline makes even a single foreign input an error.
	_, err = CoGroupByKey(Positional(a), WithPipeline(p2))
	assert.ErrorIs(t, err, ErrPipelineMismatch)

	_, err = CoGroupByKey(Positional(a), WithPipeline(p1))
	assert.Nil(t, err)
}

func TestCoGroupByKeyInvalidInput(t *testing.T) {
	p := NewPipeline()
	a := p.Create(KV{Key: 1, Value: "x"})

	var invalidInputTests = []struct {
		name  string
		input CoGroupInput
	}{
		{"nil input", nil},
		{"empty named input", Named(map[string]Collection{})},
		{"empty positional input", Positional()},
		{"uninitialized collection", Positional(a, Collection{})},
	}

	for _, test := range invalidInputTests {
		_, err := CoGroupByKey(test.input)
		assert.ErrorIs(t, err, ErrInvalidInput, test.name)
	}
}

func TestCoGroupByKeyNilOption(t *testing.T) {
	p := NewPipeline()
	a := p.Create(KV{Key: 1, Value: "x"})

	_, err := CoGroupByKey(Positional(a), nil)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestCoGroupByKeyRejectsNonPairElements(t *testing.T) {
	p := NewPipeline()
	a := p.Create("not a pair")

	joined, err := CoGroupByKey(Positional(a))
	assert.Nil(t, err)

	_, err = Materialize(context.Background(), joined)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "not a key/value pair")
}
