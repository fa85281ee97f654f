package testing

import (
	"maps"

	"github.com/go-drift/reconcile/pkg/core"
	"github.com/go-drift/reconcile/pkg/dom"
)

// Node is an in-memory dom.Node.
type Node struct {
	Tag    string
	Parent *Node

	components *dom.ComponentMap
}

// NewNode creates a detached node with the given tag.
func NewNode(tag string) *Node {
	return &Node{Tag: tag}
}

// ParentNode returns the parent node, or nil.
func (n *Node) ParentNode() dom.Node {
	if n.Parent == nil {
		return nil
	}
	return n.Parent
}

func (n *Node) TagName() string                   { return n.Tag }
func (n *Node) Components() *dom.ComponentMap     { return n.components }
func (n *Node) SetComponents(m *dom.ComponentMap) { n.components = m }

// Tree is the virtual tree produced by Renderer. It snapshots what the
// component looked like when it rendered.
type Tree struct {
	Owner        core.Instance
	Props        core.Props
	State        core.State
	ChildContext core.Context
}

// Context returns the context handed to the tree's children.
func (t *Tree) Context() core.Context {
	return t.ChildContext
}

func snapshot(inst core.Instance, parentContext core.Context) *Tree {
	c := inst.Base()
	childContext := maps.Clone(parentContext)
	if childContext == nil {
		childContext = core.Context{}
	}
	maps.Copy(childContext, inst.GetChildContext())
	return &Tree{
		Owner:        inst,
		Props:        maps.Clone(c.Props()),
		State:        maps.Clone(c.State()),
		ChildContext: childContext,
	}
}
