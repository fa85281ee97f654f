package core

import (
	"github.com/google/uuid"

	"github.com/go-drift/reconcile/pkg/dom"
	"github.com/go-drift/reconcile/pkg/errors"
)

// Lifecycle is the set of hooks a component may override. Component
// provides no-op defaults for all of them.
type Lifecycle interface {
	ComponentWillMount()
	ComponentDidMount()
	ComponentWillReceiveProps(nextProps Props, nextContext Context)
	ComponentWillUpdate(nextProps Props, nextState State, nextContext Context)
	ComponentDidUpdate(prevProps Props, prevState State, prevContext Context)
	ComponentWillUnmount()
	GetChildContext() Context
	ShouldComponentUpdate(nextProps Props, nextState State, nextContext Context) bool
}

// Instance is satisfied by any struct that embeds Component.
type Instance interface {
	Lifecycle
	Base() *Component
}

// Component is the base for stateful components. Embed it and override the
// Lifecycle hooks you need:
//
//	type counter struct {
//	    core.Component
//	}
//
//	func (c *counter) ComponentDidUpdate(prevProps core.Props, prevState core.State, prevContext core.Context) {
//	    // react to the committed render
//	}
//
//	c := &counter{}
//	core.Init(c, root, core.Props{"step": 1}, nil)
//	c.SetState(core.Partial{"count": 1}, nil)
type Component struct {
	self    Instance
	root    *Root
	id      string
	updater *Updater
	cache   *Cache
	props   Props
	state   State
	context Context
	refs    map[string]any
}

// Init wires inst to root. It must be called once, before the component is
// mounted. A nil context is treated as empty.
func Init(inst Instance, root *Root, props Props, context Context) *Component {
	if root == nil {
		panic("core: Init requires a Root")
	}
	c := inst.Base()
	c.self = inst
	c.root = root
	c.id = uuid.NewString()
	c.updater = newUpdater(c, root.queue)
	c.cache = &Cache{}
	c.props = props
	c.state = State{}
	c.refs = make(map[string]any)
	if context == nil {
		context = Context{}
	}
	c.context = context
	return c
}

// Base returns the embedded Component.
func (c *Component) Base() *Component { return c }

// ID returns the component's unique identifier.
func (c *Component) ID() string { return c.id }

// Root returns the render root the component belongs to.
func (c *Component) Root() *Root { return c.root }

// Props returns the committed props.
func (c *Component) Props() Props { return c.props }

// State returns the committed state.
func (c *Component) State() State { return c.state }

// Context returns the committed context.
func (c *Component) Context() Context { return c.context }

// Refs returns the component's refs.
func (c *Component) Refs() map[string]any { return c.refs }

// Updater returns the component's updater.
func (c *Component) Updater() *Updater { return c.updater }

// Cache returns the component's render cache.
func (c *Component) Cache() *Cache { return c.cache }

// InitState sets the initial state without scheduling anything. Call it
// right after Init, before mount.
func (c *Component) InitState(state State) {
	if state == nil {
		state = State{}
	}
	c.state = state
}

func (c *Component) assign(props Props, state State, context Context) {
	c.props = props
	c.state = state
	c.context = context
}

// ComponentWillMount is called once before the first render.
func (c *Component) ComponentWillMount() {}

// ComponentDidMount is called once after the component's node is attached.
func (c *Component) ComponentDidMount() {}

// ComponentWillReceiveProps is called before a parent pushes new props.
// State set here is folded into the same update.
func (c *Component) ComponentWillReceiveProps(nextProps Props, nextContext Context) {}

// ComponentWillUpdate is called before the next values are committed.
func (c *Component) ComponentWillUpdate(nextProps Props, nextState State, nextContext Context) {}

// ComponentDidUpdate is called after a render with the previous values.
func (c *Component) ComponentDidUpdate(prevProps Props, prevState State, prevContext Context) {}

// ComponentWillUnmount is called before the component is removed.
func (c *Component) ComponentWillUnmount() {}

// GetChildContext returns context entries passed to descendants.
func (c *Component) GetChildContext() Context { return nil }

// ShouldComponentUpdate reports whether an update should render. The
// default always renders.
func (c *Component) ShouldComponentUpdate(nextProps Props, nextState State, nextContext Context) bool {
	return true
}

// SetState queues patch and callback. The callback runs after the render
// that commits the patch.
func (c *Component) SetState(patch StatePatch, callback func()) {
	c.updater.AddCallback(callback)
	c.updater.AddState(patch)
}

// ReplaceState queues a replacement of the whole state by next. It takes
// effect on the component's next update.
func (c *Component) ReplaceState(next State, callback func()) {
	c.updater.AddCallback(callback)
	c.updater.ReplaceState(next)
}

// ReceiveProps delivers new props from a re-rendering parent. State changes
// made in ComponentWillReceiveProps are folded into the same render, which
// runs before ReceiveProps returns.
func (c *Component) ReceiveProps(nextProps Props, nextContext Context) {
	if nextProps == nil {
		nextProps = Props{}
	}
	c.holdUpdates("core.Component.ReceiveProps", func() {
		c.self.ComponentWillReceiveProps(nextProps, nextContext)
	})
	c.updater.EmitUpdate(nextProps, nextContext)
}

// PrepareMount runs ComponentWillMount with updates held and commits any
// state it queued. The mount collaborator calls it before the first render.
func (c *Component) PrepareMount() {
	c.holdUpdates("core.Component.PrepareMount", c.self.ComponentWillMount)
	c.state = c.updater.GetState()
}

// holdUpdates runs hook with the updater marked in flight, then restores
// the previous flag so a surrounding render cycle keeps its guard.
func (c *Component) holdUpdates(op string, hook func()) {
	u := c.updater
	held := u.isPending
	defer func() { u.isPending = held }()
	defer errors.Propagate(op, errors.KindLifecycle, c.id, nil)
	u.isPending = true
	hook()
}

// ForceUpdate runs a render cycle with the staged values, or the committed
// ones when nothing is staged. It is a no-op while a cycle for this
// component is already running or the component is not mounted.
func (c *Component) ForceUpdate(callback func()) {
	u, cache := c.updater, c.cache
	if u.isPending || !cache.isMounted {
		c.root.metrics.IgnoredForceUpdate(c.root.name)
		c.root.logger.Debug("force update ignored", "root", c.root.name, "component", c.id,
			"in_flight", u.isPending, "mounted", cache.isMounted)
		return
	}

	nextProps, nextState, nextContext := cache.props, cache.state, cache.context
	if nextProps == nil {
		nextProps = c.props
	}
	if nextState == nil {
		nextState = c.state
	}
	if nextContext == nil {
		nextContext = Context{}
	}
	cache.props, cache.state, cache.context = nil, nil, nil

	u.isPending = true
	c.render(nextProps, nextState, nextContext, callback)
	u.isPending = false

	c.root.metrics.Rendered(c.root.name)
	// Flush anything raised by hooks or callbacks during the cycle.
	u.EmitUpdate(nil, nil)
}

func (c *Component) render(nextProps Props, nextState State, nextContext Context, callback func()) {
	defer errors.Propagate("core.Component.ForceUpdate", errors.KindLifecycle, c.id, func() { c.updater.isPending = false })

	cache := c.cache
	parentContext, node := cache.parentContext, cache.node
	prevProps, prevState, prevContext := c.props, c.state, c.context

	c.self.ComponentWillUpdate(nextProps, nextState, nextContext)
	c.state, c.props, c.context = nextState, nextProps, nextContext

	tree, newNode := c.renderTree(parentContext, node)
	if newNode != node {
		dom.TransferComponents(node, newNode)
	}
	cache.vtree = tree
	cache.node = newNode

	c.root.renderer.ClearDidMount()
	c.self.ComponentDidUpdate(prevProps, prevState, prevContext)
	if callback != nil {
		callback()
	}
}

// renderTree asks the renderer for the next tree and reconciles it against
// node. Failures are tagged as render errors.
func (c *Component) renderTree(parentContext Context, node dom.Node) (VirtualTree, dom.Node) {
	defer errors.Propagate("core.Component.ForceUpdate", errors.KindRender, c.id, nil)

	renderer := c.root.renderer
	tree := renderer.RenderComponent(c.self, parentContext)
	var parentNode dom.Node
	if node != nil {
		parentNode = node.ParentNode()
	}
	var treeContext Context
	if tree != nil {
		treeContext = tree.Context()
	}
	return tree, renderer.UpdateTree(node, tree, parentNode, treeContext)
}

// DOMNode returns the component's current root node, or nil when the
// component renders nothing visible.
func (c *Component) DOMNode() dom.Node {
	node := c.cache.node
	if node == nil || dom.IsPlaceholder(node) {
		return nil
	}
	return node
}

// IsMounted reports whether the component is mounted.
func (c *Component) IsMounted() bool {
	return c.cache.isMounted
}
