package core

import "github.com/go-drift/reconcile/pkg/dom"

// Cache holds a component's render bookkeeping: mount status, values staged
// for the next render cycle, and the node and tree from the last one.
type Cache struct {
	isMounted     bool
	props         Props
	state         State
	context       Context
	node          dom.Node
	vtree         VirtualTree
	parentContext Context
}

func (c *Cache) assign(props Props, state State, context Context) {
	c.props = props
	c.state = state
	c.context = context
}

// Mount records a completed mount. The mount collaborator calls it once the
// component's first tree has been rendered into node.
func (c *Cache) Mount(node dom.Node, vtree VirtualTree, parentContext Context) {
	c.isMounted = true
	c.node = node
	c.vtree = vtree
	c.parentContext = parentContext
}

// Unmount marks the component unmounted. Later render cycles are no-ops.
func (c *Cache) Unmount() {
	c.isMounted = false
}

// IsMounted reports whether the component is mounted.
func (c *Cache) IsMounted() bool {
	return c.isMounted
}

// Node returns the current root node.
func (c *Cache) Node() dom.Node {
	return c.node
}

// VTree returns the current virtual tree.
func (c *Cache) VTree() VirtualTree {
	return c.vtree
}

// ParentContext returns the context the component was mounted with.
func (c *Cache) ParentContext() Context {
	return c.parentContext
}

// Staged returns the values staged for the next render cycle, if any.
func (c *Cache) Staged() (Props, State, Context) {
	return c.props, c.state, c.context
}
