package testing

import (
	"github.com/go-drift/reconcile/pkg/core"
	"github.com/go-drift/reconcile/pkg/dom"
)

// RenderCall records one RenderComponent call.
type RenderCall struct {
	Component     string
	Tree          *Tree
	ParentContext core.Context
}

// UpdateCall records one UpdateTree call.
type UpdateCall struct {
	OldNode    dom.Node
	NewNode    dom.Node
	ParentNode dom.Node
	Tree       *Tree
	Context    core.Context
}

// Renderer is a core.TreeRenderer that records every call instead of
// touching a document.
type Renderer struct {
	// OnRender runs inside RenderComponent after the tree is built.
	OnRender func(inst core.Instance, tree *Tree)
	// Reconcile runs inside UpdateTree. A parent pushes props to its
	// children from here, as a real diff would.
	Reconcile func(tree *Tree)
	// NextNode picks the node UpdateTree returns. Nil, or a nil result,
	// keeps the old node.
	NextNode func(old dom.Node, tree *Tree) dom.Node

	Renders            []RenderCall
	Updates            []UpdateCall
	ClearDidMountCalls int

	didMount []func()
}

// NewRenderer creates an empty recording renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderComponent snapshots inst into a Tree.
func (r *Renderer) RenderComponent(inst core.Instance, parentContext core.Context) core.VirtualTree {
	tree := snapshot(inst, parentContext)
	r.Renders = append(r.Renders, RenderCall{
		Component:     inst.Base().ID(),
		Tree:          tree,
		ParentContext: parentContext,
	})
	if r.OnRender != nil {
		r.OnRender(inst, tree)
	}
	return tree
}

// UpdateTree records the reconcile and returns the old node unless NextNode
// supplies a replacement.
func (r *Renderer) UpdateTree(oldNode dom.Node, next core.VirtualTree, parentNode dom.Node, context core.Context) dom.Node {
	tree, _ := next.(*Tree)
	if r.Reconcile != nil && tree != nil {
		r.Reconcile(tree)
	}
	newNode := oldNode
	if r.NextNode != nil {
		if n := r.NextNode(oldNode, tree); n != nil {
			newNode = n
		}
	}
	r.Updates = append(r.Updates, UpdateCall{
		OldNode:    oldNode,
		NewNode:    newNode,
		ParentNode: parentNode,
		Tree:       tree,
		Context:    context,
	})
	return newNode
}

// QueueDidMount defers fn until the next ClearDidMount.
func (r *Renderer) QueueDidMount(fn func()) {
	if fn != nil {
		r.didMount = append(r.didMount, fn)
	}
}

// ClearDidMount runs the deferred post-mount callbacks.
func (r *Renderer) ClearDidMount() {
	r.ClearDidMountCalls++
	r.runDidMount()
}

func (r *Renderer) runDidMount() {
	for len(r.didMount) > 0 {
		pending := r.didMount
		r.didMount = nil
		for _, fn := range pending {
			fn()
		}
	}
}

// RenderCount returns how many times inst has been rendered since the last
// Reset. Mount renders are not counted.
func (r *Renderer) RenderCount(inst core.Instance) int {
	id := inst.Base().ID()
	n := 0
	for _, call := range r.Renders {
		if call.Component == id {
			n++
		}
	}
	return n
}

// RenderOrder returns the IDs of rendered components in call order.
func (r *Renderer) RenderOrder() []string {
	ids := make([]string, len(r.Renders))
	for i, call := range r.Renders {
		ids[i] = call.Component
	}
	return ids
}

// Reset clears the recorded calls.
func (r *Renderer) Reset() {
	r.Renders = nil
	r.Updates = nil
	r.ClearDidMountCalls = 0
}
