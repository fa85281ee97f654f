package testing

import (
	"testing"

	"github.com/go-drift/reconcile/pkg/core"
	"github.com/go-drift/reconcile/pkg/dom"
)

// Tester bundles a recording renderer with a root that renders through it,
// and acts as the mount collaborator for components under test.
type Tester struct {
	Renderer *Renderer
	Root     *core.Root

	mounted []core.Instance
}

// NewTester creates a tester. Call Cleanup when done, or use NewTesterWithT.
func NewTester(opts ...core.Option) *Tester {
	r := NewRenderer()
	return &Tester{
		Renderer: r,
		Root:     core.NewRoot(r, opts...),
	}
}

// NewTesterWithT creates a tester that unmounts everything via t.Cleanup().
func NewTesterWithT(t *testing.T, opts ...core.Option) *Tester {
	tester := NewTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Mount mounts an initialised component into a new detached node.
func (t *Tester) Mount(inst core.Instance, tag string) *Node {
	return t.MountUnder(inst, tag, nil, nil)
}

// MountUnder mounts an initialised component into a new node attached
// under parent, with parentContext as its inherited context.
func (t *Tester) MountUnder(inst core.Instance, tag string, parent *Node, parentContext core.Context) *Node {
	c := inst.Base()
	c.PrepareMount()

	tree := snapshot(inst, parentContext)
	node := NewNode(tag)
	node.Parent = parent
	c.Cache().Mount(node, tree, parentContext)
	dom.EnsureComponents(node).Set(c.ID(), inst)
	t.mounted = append(t.mounted, inst)

	t.Renderer.QueueDidMount(inst.ComponentDidMount)
	t.Renderer.runDidMount()
	return node
}

// Unmount runs ComponentWillUnmount, marks the component unmounted and
// removes it from its node's reverse map.
func (t *Tester) Unmount(inst core.Instance) {
	c := inst.Base()
	if !c.IsMounted() {
		return
	}
	inst.ComponentWillUnmount()
	c.Cache().Unmount()
	if node := c.Cache().Node(); node != nil {
		if m := node.Components(); m != nil {
			m.Delete(c.ID())
		}
	}
}

// Cleanup unmounts every component mounted through the tester, newest first.
func (t *Tester) Cleanup() {
	for i := len(t.mounted) - 1; i >= 0; i-- {
		t.Unmount(t.mounted[i])
	}
	t.mounted = nil
}
