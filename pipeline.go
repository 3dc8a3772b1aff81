package sluice

// KV is a single keyed element. Key must be comparable for the element to
// pass through GroupByKey or PerKeyReduce; Value may be anything.
type KV struct {
	Key   any
	Value any
}

// nodeKind identifies the operation a graph node performs.
type nodeKind int

const (
	createNode nodeKind = iota
	readNode
	mapNode
	groupNode
	unionNode
	reduceNode
)

// node is a single vertex in a pipeline's deferred computation graph.
// Nodes are immutable once constructed.
type node struct {
	id     int
	kind   nodeKind
	inputs []*node

	elems    []any      // createNode: the source elements
	pathGlob string     // readNode: files to read lines from
	fn       MapFunc    // mapNode
	reduceFn ReduceFunc // reduceNode
}

// Pipeline is the execution context that collections belong to. All
// collections combined by a multi-input transform must come from the same
// Pipeline; this is validated at construction time.
//
// Pipeline construction is synchronous and single-threaded. Only evaluation
// (see Materialize) runs concurrently.
type Pipeline struct {
	nextID int
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (p *Pipeline) newNode(kind nodeKind, inputs ...*node) *node {
	n := &node{
		id:     p.nextID,
		kind:   kind,
		inputs: inputs,
	}
	p.nextID++
	return n
}

// Collection is a deferred, immutable handle on one node of a pipeline's
// graph. The zero Collection is invalid; collections are obtained from
// Pipeline.Create, ReadText, or a transform.
type Collection struct {
	p *Pipeline
	n *node
}

// Pipeline returns the pipeline this collection belongs to.
func (c Collection) Pipeline() *Pipeline {
	return c.p
}

func (c Collection) valid() bool {
	return c.p != nil && c.n != nil
}

// Create returns a collection holding the given elements. The elements are
// not copied; callers must not mutate them after construction.
func (p *Pipeline) Create(elems ...any) Collection {
	n := p.newNode(createNode)
	n.elems = elems
	return Collection{p: p, n: n}
}
