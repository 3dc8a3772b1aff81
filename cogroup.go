package sluice

import (
	"fmt"
	"sort"
)

// taggedValue carries a value through the shuffle together with the index of
// the source it came from.
type taggedValue struct {
	tag   int
	value any
}

// containerSpec describes the per-row result container for one co-group
// input shape. newContainer is invoked once per output row and must allocate
// fresh state on every call: rows may be filled concurrently and are never
// allowed to share a container.
type containerSpec struct {
	newContainer func() any
	add          func(container any, tag int, value any)
}

// CoGroupInput is the input to CoGroupByKey: either Named or Positional.
type CoGroupInput interface {
	// normalize resolves the input into an ordered list of source
	// collections and the container spec for the resulting rows.
	normalize() ([]Collection, containerSpec, error)
}

type namedInput struct {
	inputs map[string]Collection
}

// Named tags each input collection with a caller-supplied name. Rows produced
// by CoGroupByKey have a map[string][]any container holding, under every tag,
// the values that source carried for the row's key.
func Named(inputs map[string]Collection) CoGroupInput {
	return namedInput{inputs: inputs}
}

func (in namedInput) normalize() ([]Collection, containerSpec, error) {
	if len(in.inputs) == 0 {
		return nil, containerSpec{}, fmt.Errorf("co-group: no named inputs: %w", ErrInvalidInput)
	}

	// Tag order is made deterministic so tag indices are stable.
	tags := make([]string, 0, len(in.inputs))
	for tag := range in.inputs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	sources := make([]Collection, len(tags))
	for i, tag := range tags {
		sources[i] = in.inputs[tag]
	}

	shape := containerSpec{
		newContainer: func() any {
			container := make(map[string][]any, len(tags))
			for _, tag := range tags {
				container[tag] = []any{}
			}
			return container
		},
		add: func(container any, tag int, value any) {
			m := container.(map[string][]any)
			m[tags[tag]] = append(m[tags[tag]], value)
		},
	}
	return sources, shape, nil
}

type positionalInput struct {
	inputs []Collection
}

// Positional tags each input collection with its position. Rows produced by
// CoGroupByKey have a [][]any container of the same arity as the input,
// holding at index i the values the i-th source carried for the row's key.
func Positional(inputs ...Collection) CoGroupInput {
	return positionalInput{inputs: inputs}
}

func (in positionalInput) normalize() ([]Collection, containerSpec, error) {
	if len(in.inputs) == 0 {
		return nil, containerSpec{}, fmt.Errorf("co-group: no input collections: %w", ErrInvalidInput)
	}

	arity := len(in.inputs)
	shape := containerSpec{
		newContainer: func() any {
			container := make([][]any, arity)
			for i := range container {
				container[i] = []any{}
			}
			return container
		},
		add: func(container any, tag int, value any) {
			groups := container.([][]any)
			groups[tag] = append(groups[tag], value)
		},
	}
	return in.inputs, shape, nil
}

type coGroupOptions struct {
	pipeline *Pipeline
}

// CoGroupOption configures CoGroupByKey.
type CoGroupOption func(*coGroupOptions)

// WithPipeline pins the pipeline the co-group must be constructed in. Every
// input collection is then required to belong to it. Without this option the
// pipeline is inferred from the first input collection (for Named inputs,
// the first in sorted tag order).
func WithPipeline(p *Pipeline) CoGroupOption {
	return func(o *coGroupOptions) {
		o.pipeline = p
	}
}

// CoGroupByKey joins any number of keyed collections. The result contains
// one KV row per key present in any input; the row's value is a container
// (see Named and Positional) aggregating, per source, the values that source
// carried under the key.
//
// Container shape is uniform across all rows and fixed by the input shape: a
// source with no values for a key contributes an empty sequence in its slot,
// never an absent slot. Values from one source keep that source's order;
// ordering across sources and the order of rows are unspecified.
//
// All validation happens at construction time: CoGroupByKey fails if the
// input is nil or empty (ErrInvalidInput), if an option is nil
// (ErrInvalidOption), or if the inputs do not all belong to one pipeline
// (ErrPipelineMismatch). There are no data-dependent error paths beyond
// non-KV elements being rejected during materialization.
func CoGroupByKey(input CoGroupInput, opts ...CoGroupOption) (Collection, error) {
	if input == nil {
		return Collection{}, fmt.Errorf("co-group: nil input: %w", ErrInvalidInput)
	}

	var o coGroupOptions
	for _, opt := range opts {
		if opt == nil {
			return Collection{}, fmt.Errorf("co-group: nil option: %w", ErrInvalidOption)
		}
		opt(&o)
	}

	sources, shape, err := input.normalize()
	if err != nil {
		return Collection{}, err
	}

	p := o.pipeline
	for i, c := range sources {
		if !c.valid() {
			return Collection{}, fmt.Errorf("co-group: input %d is uninitialized: %w", i, ErrInvalidInput)
		}
		if p == nil {
			p = c.p
		}
		if c.p != p {
			return Collection{}, fmt.Errorf("co-group: input %d: %w", i, ErrPipelineMismatch)
		}
	}

	// Tag pairing: one transform per source, each closing over its own tag.
	tagged := make([]Collection, len(sources))
	for i, c := range sources {
		tag := i
		tagged[i] = ElementwiseMap(c, func(elem any) (any, error) {
			kv, ok := elem.(KV)
			if !ok {
				return nil, fmt.Errorf("co-group: element %#v is not a key/value pair", elem)
			}
			return KV{Key: kv.Key, Value: taggedValue{tag: tag, value: kv.Value}}, nil
		})
	}

	grouped := GroupByKey(Union(tagged...))

	// Reconstruction: a fresh container per row, every tag present even when
	// no value matched.
	result := ElementwiseMap(grouped, func(elem any) (any, error) {
		row := elem.(KV)
		container := shape.newContainer()
		for _, raw := range row.Value.([]any) {
			tv := raw.(taggedValue)
			shape.add(container, tv.tag, tv.value)
		}
		return KV{Key: row.Key, Value: container}, nil
	})
	return result, nil
}
