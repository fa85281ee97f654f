package core_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/reconcile/pkg/core"
	"github.com/go-drift/reconcile/pkg/dom"
	"github.com/go-drift/reconcile/pkg/errors"
	"github.com/go-drift/reconcile/pkg/metrics"
	drifttest "github.com/go-drift/reconcile/pkg/testing"
)

// probe is a component whose hooks record what happened and can be
// customised per test.
type probe struct {
	core.Component

	events []string

	willMount   func(p *probe)
	receive     func(p *probe, nextProps core.Props)
	should      func(nextProps core.Props, nextState core.State) bool
	willUpdate  func(p *probe, nextProps core.Props, nextState core.State)
	didUpdate   func(p *probe, prevProps core.Props, prevState core.State)
	childCtx    core.Context
	didMountRan bool
}

func newProbe(tester *drifttest.Tester, props core.Props, state core.State) *probe {
	p := &probe{}
	core.Init(p, tester.Root, props, nil)
	p.InitState(state)
	return p
}

func (p *probe) ComponentWillMount() {
	p.events = append(p.events, "willMount")
	if p.willMount != nil {
		p.willMount(p)
	}
}

func (p *probe) ComponentDidMount() {
	p.didMountRan = true
}

func (p *probe) ComponentWillReceiveProps(nextProps core.Props, nextContext core.Context) {
	p.events = append(p.events, "willReceiveProps")
	if p.receive != nil {
		p.receive(p, nextProps)
	}
}

func (p *probe) ShouldComponentUpdate(nextProps core.Props, nextState core.State, nextContext core.Context) bool {
	if p.should != nil {
		return p.should(nextProps, nextState)
	}
	return true
}

func (p *probe) ComponentWillUpdate(nextProps core.Props, nextState core.State, nextContext core.Context) {
	p.events = append(p.events, "willUpdate")
	if p.willUpdate != nil {
		p.willUpdate(p, nextProps, nextState)
	}
}

func (p *probe) ComponentDidUpdate(prevProps core.Props, prevState core.State, prevContext core.Context) {
	p.events = append(p.events, "didUpdate")
	if p.didUpdate != nil {
		p.didUpdate(p, prevProps, prevState)
	}
}

func (p *probe) GetChildContext() core.Context {
	return p.childCtx
}

func TestSetState_RendersSynchronouslyOutsideBatch(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{"count": 0})
	tester.Mount(p, "DIV")

	var seen any
	p.SetState(core.Partial{"count": 1}, func() {
		seen = p.State()["count"]
	})

	assert.Equal(t, 1, p.State()["count"])
	assert.Equal(t, 1, seen, "callback runs after the render commits")
	assert.Equal(t, 1, tester.Renderer.RenderCount(p))
	assert.Equal(t, []string{"willMount", "willUpdate", "didUpdate"}, p.events)
	assert.Equal(t, 1, tester.Renderer.ClearDidMountCalls)
	assert.Equal(t, 0, p.Updater().PendingCallbacks())
}

func TestSetState_FunctionPatchesInBatchCompound(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{"count": 0})
	tester.Mount(p, "DIV")

	inc := core.UpdateFunc(func(s core.State, _ core.Props) core.State {
		return core.State{"count": s["count"].(int) + 1}
	})
	tester.Root.Batch(func() {
		p.SetState(inc, nil)
		p.SetState(inc, nil)
	})

	assert.Equal(t, 2, p.State()["count"])
	assert.Equal(t, 1, tester.Renderer.RenderCount(p), "both patches merge into one render")
}

func TestSetState_CallbacksRunOnceInOrder(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{})
	tester.Mount(p, "DIV")

	var order []string
	tester.Root.Batch(func() {
		p.SetState(core.Partial{"a": 1}, func() { order = append(order, "first") })
		p.SetState(core.Partial{"b": 2}, nil)
		p.SetState(core.Partial{"c": 3}, func() { order = append(order, "second") })
		assert.Empty(t, order)
	})

	assert.Equal(t, []string{"first", "second"}, order)

	p.SetState(core.Partial{"d": 4}, nil)
	assert.Equal(t, []string{"first", "second"}, order, "callbacks must not run again")
}

func TestReplaceState_AppliesOnNextUpdate(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{"keep": true})
	tester.Mount(p, "DIV")

	tester.Root.Batch(func() {
		p.SetState(core.Partial{"b": 2}, nil)
		p.ReplaceState(core.State{"a": 1}, nil)
	})

	assert.Equal(t, core.State{"a": 1}, p.State())
	assert.Equal(t, 1, tester.Renderer.RenderCount(p))
}

func TestShouldComponentUpdateFalse_CommitsWithoutRendering(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, core.Props{"v": 1}, core.State{"count": 0})
	p.should = func(core.Props, core.State) bool { return false }
	tester.Mount(p, "DIV")
	p.events = nil

	called := false
	p.SetState(core.Partial{"count": 3}, func() { called = true })

	assert.Equal(t, 3, p.State()["count"])
	assert.Empty(t, p.events, "no lifecycle hooks on the skip path")
	assert.Empty(t, tester.Renderer.Renders)
	assert.Empty(t, tester.Renderer.Updates)
	assert.Equal(t, 0, tester.Renderer.ClearDidMountCalls)
	assert.False(t, called)
	assert.Equal(t, 1, p.Updater().PendingCallbacks(), "callback waits for a committed render")

	p.ReceiveProps(core.Props{"v": 2}, core.Context{"theme": "dark"})
	assert.Equal(t, 2, p.Props()["v"])
	assert.Equal(t, "dark", p.Context()["theme"])
	assert.Empty(t, tester.Renderer.Renders)
}

func TestForceUpdate_NoopWhenUnmounted(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{"count": 0})

	p.ForceUpdate(nil)
	assert.Empty(t, tester.Renderer.Renders)
	assert.Empty(t, p.events)

	tester.Mount(p, "DIV")
	tester.Unmount(p)
	p.events = nil

	called := false
	p.ForceUpdate(func() { called = true })
	assert.False(t, p.IsMounted())
	assert.Empty(t, tester.Renderer.Renders)
	assert.Empty(t, p.events)
	assert.False(t, called)
}

func TestForceUpdate_ReentrantCallIsNoop(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{})
	nested := 0
	p.willUpdate = func(p *probe, _ core.Props, _ core.State) {
		assert.True(t, p.Updater().Pending())
		p.ForceUpdate(func() { nested++ })
	}
	tester.Mount(p, "DIV")

	p.ForceUpdate(nil)

	assert.Equal(t, 1, tester.Renderer.RenderCount(p))
	assert.Equal(t, 0, nested)
	assert.False(t, p.Updater().Pending())
}

func TestForceUpdate_KeepsCommittedValues(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, core.Props{"a": 1}, core.State{"b": 2})
	tester.Mount(p, "DIV")

	p.ForceUpdate(nil)

	assert.Equal(t, core.Props{"a": 1}, p.Props())
	assert.Equal(t, core.State{"b": 2}, p.State())
	assert.Equal(t, 1, tester.Renderer.RenderCount(p))
}

func TestDidUpdateSeesPreviousValues(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{"count": 0})
	var prev any
	p.didUpdate = func(_ *probe, _ core.Props, prevState core.State) {
		prev = prevState["count"]
	}
	tester.Mount(p, "DIV")

	p.SetState(core.Partial{"count": 7}, nil)

	assert.Equal(t, 0, prev)
}

func TestSetStateInDidUpdate_FlushedAfterCycle(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{"count": 0})
	p.didUpdate = func(p *probe, _ core.Props, _ core.State) {
		if p.State()["count"] == 1 {
			assert.True(t, p.Updater().Pending())
			p.SetState(core.Partial{"count": 2}, nil)
			assert.Equal(t, 1, p.State()["count"], "must not render inside the running cycle")
		}
	}
	tester.Mount(p, "DIV")

	p.SetState(core.Partial{"count": 1}, nil)

	assert.Equal(t, 2, p.State()["count"])
	assert.Equal(t, 2, tester.Renderer.RenderCount(p))
}

func TestBatch_DefersUntilFlush(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{})
	tester.Mount(p, "DIV")

	tester.Root.Batch(func() {
		p.SetState(core.Partial{"a": 1}, nil)
		assert.True(t, tester.Root.Queue().IsPending())
		assert.Equal(t, 1, tester.Root.Queue().Len())
		assert.Empty(t, tester.Renderer.Renders)
		assert.Nil(t, p.State()["a"])
	})

	assert.Equal(t, 1, p.State()["a"])
	assert.False(t, tester.Root.Queue().IsPending())
	assert.Equal(t, 0, tester.Root.Queue().Len())
}

func TestEmitUpdateWithProps_RendersDuringBatch(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, core.Props{"v": 0}, core.State{})
	tester.Mount(p, "DIV")

	tester.Root.Batch(func() {
		p.Updater().EmitUpdate(core.Props{"v": 1}, nil)
		assert.Equal(t, 1, p.Props()["v"])
		assert.Equal(t, 1, tester.Renderer.RenderCount(p))
		// The post-render flush registers the updater while the batch collects.
		assert.Equal(t, 1, tester.Root.Queue().Len())
	})

	assert.Equal(t, 0, tester.Root.Queue().Len())
	assert.Equal(t, 1, tester.Renderer.RenderCount(p))
	assert.Equal(t, 1, p.Props()["v"])
}

func TestBatch_AncestorRendersFirstAndSubsumesDescendant(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	parent := newProbe(tester, nil, core.State{"x": 0})
	child := newProbe(tester, core.Props{"fromParent": 0}, core.State{"y": 0})
	parentNode := tester.Mount(parent, "DIV")
	tester.MountUnder(child, "SPAN", parentNode, nil)

	tester.Renderer.Reconcile = func(tree *drifttest.Tree) {
		if tree.Owner == core.Instance(parent) {
			child.ReceiveProps(core.Props{"fromParent": tree.State["x"]}, nil)
		}
	}

	tester.Root.Batch(func() {
		// Bubbling: the deepest component handles the event first.
		child.SetState(core.Partial{"y": 1}, nil)
		parent.SetState(core.Partial{"x": 5}, nil)
	})

	assert.Equal(t, []string{parent.ID(), child.ID()}, tester.Renderer.RenderOrder())
	assert.Equal(t, 1, tester.Renderer.RenderCount(child), "queued child update is subsumed")
	assert.Equal(t, 5, child.Props()["fromParent"])
	assert.Equal(t, 1, child.State()["y"])
}

func TestBatch_DrainsUpdatersAddedDuringFlush(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	a := newProbe(tester, nil, core.State{})
	b := newProbe(tester, nil, core.State{})
	c := newProbe(tester, nil, core.State{})
	tester.Mount(a, "DIV")
	tester.Mount(b, "DIV")
	tester.Mount(c, "DIV")

	a.didUpdate = func(*probe, core.Props, core.State) {
		b.SetState(core.Partial{"from": "a"}, nil)
	}
	b.didUpdate = func(*probe, core.Props, core.State) {
		c.SetState(core.Partial{"from": "b"}, nil)
	}

	tester.Root.Batch(func() {
		a.SetState(core.Partial{"go": true}, nil)
	})

	assert.Equal(t, "a", b.State()["from"])
	assert.Equal(t, "b", c.State()["from"])
	assert.Equal(t, []string{a.ID(), b.ID(), c.ID()}, tester.Renderer.RenderOrder())
	assert.Equal(t, 0, tester.Root.Queue().Len())
	assert.False(t, tester.Root.Queue().IsPending())
}

func TestBatch_NestedBatchFlushesOnce(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{})
	tester.Mount(p, "DIV")

	tester.Root.Batch(func() {
		tester.Root.Batch(func() {
			p.SetState(core.Partial{"a": 1}, nil)
		})
		assert.Empty(t, tester.Renderer.Renders, "inner batch must not flush")
		p.SetState(core.Partial{"b": 2}, nil)
	})

	assert.Equal(t, core.State{"a": 1, "b": 2}, p.State())
	assert.Equal(t, 1, tester.Renderer.RenderCount(p))
}

func TestRootsAreIndependent(t *testing.T) {
	first := drifttest.NewTesterWithT(t)
	second := drifttest.NewTesterWithT(t)
	a := newProbe(first, nil, core.State{})
	b := newProbe(second, nil, core.State{})
	first.Mount(a, "DIV")
	second.Mount(b, "DIV")

	first.Root.Batch(func() {
		a.SetState(core.Partial{"v": 1}, nil)
		b.SetState(core.Partial{"v": 1}, nil)
		assert.Nil(t, a.State()["v"], "first root is batching")
		assert.Equal(t, 1, b.State()["v"], "second root is not")
	})
	assert.Equal(t, 1, a.State()["v"])
}

func TestReceiveProps_MergesStateFromHook(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, core.Props{"v": 0}, core.State{"derived": 0})
	p.receive = func(p *probe, nextProps core.Props) {
		p.SetState(core.Partial{"derived": nextProps["v"].(int) * 2}, nil)
	}
	tester.Mount(p, "DIV")

	p.ReceiveProps(core.Props{"v": 4}, nil)

	assert.Equal(t, 4, p.Props()["v"])
	assert.Equal(t, 8, p.State()["derived"])
	assert.Equal(t, 1, tester.Renderer.RenderCount(p))
}

func TestPrepareMount_CommitsWillMountState(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{"ready": false})
	p.willMount = func(p *probe) {
		p.SetState(core.Partial{"ready": true}, nil)
	}

	tester.Mount(p, "DIV")

	assert.Equal(t, true, p.State()["ready"])
	assert.True(t, p.didMountRan)
	assert.True(t, p.IsMounted())
	assert.Empty(t, tester.Renderer.Renders)
}

func TestNodeReplacement_TransfersReverseMap(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{})
	oldNode := tester.Mount(p, "DIV")
	oldNode.Components().Set("extra", "owner")

	replacement := drifttest.NewNode("SECTION")
	tester.Renderer.NextNode = func(dom.Node, *drifttest.Tree) dom.Node {
		return replacement
	}

	p.ForceUpdate(nil)

	require.NotNil(t, replacement.Components())
	assert.Nil(t, oldNode.Components(), "old node must release its map")
	owner, ok := replacement.Components().Load(p.ID())
	require.True(t, ok)
	assert.Equal(t, core.Instance(p), owner)
	_, ok = replacement.Components().Load("extra")
	assert.True(t, ok)
	assert.Equal(t, dom.Node(replacement), p.DOMNode())
	assert.Equal(t, dom.Node(replacement), p.Cache().Node())
}

func TestRender_PassesParentNodeAndContext(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{})
	p.childCtx = core.Context{"theme": "dark"}
	parent := drifttest.NewNode("BODY")
	node := tester.MountUnder(p, "DIV", parent, core.Context{"locale": "en"})

	p.ForceUpdate(nil)

	require.Len(t, tester.Renderer.Updates, 1)
	call := tester.Renderer.Updates[0]
	assert.Equal(t, dom.Node(node), call.OldNode)
	assert.Equal(t, dom.Node(parent), call.ParentNode)
	assert.Equal(t, core.Context{"locale": "en", "theme": "dark"}, call.Context)
	assert.Equal(t, core.Context{"locale": "en"}, tester.Renderer.Renders[0].ParentContext)
}

func TestDOMNode_PlaceholderIsNil(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{})
	tester.Mount(p, dom.PlaceholderTag)

	assert.Nil(t, p.DOMNode())
	assert.NotNil(t, p.Cache().Node())
}

func TestHookPanic_ReleasesGuardsAndPropagates(t *testing.T) {
	var reported []*errors.PanicError
	errors.SetHandler(&panicRecorder{onPanic: func(err *errors.PanicError) {
		reported = append(reported, err)
	}})
	defer errors.SetHandler(nil)

	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{})
	fail := true
	p.willUpdate = func(*probe, core.Props, core.State) {
		if fail {
			panic("hook failed")
		}
	}
	tester.Mount(p, "DIV")

	recovered := capturePanic(func() {
		tester.Root.Batch(func() {
			p.SetState(core.Partial{"a": 1}, nil)
		})
	})

	pe, ok := recovered.(*errors.PanicError)
	require.True(t, ok, "got %T", recovered)
	assert.Equal(t, "hook failed", pe.Value)
	assert.Equal(t, errors.KindLifecycle, pe.Kind)
	assert.Equal(t, p.ID(), pe.Component)
	require.Len(t, reported, 1)
	assert.False(t, p.Updater().Pending())
	assert.False(t, tester.Root.Queue().IsPending())

	fail = false
	p.SetState(core.Partial{"b": 2}, nil)
	assert.Equal(t, 2, p.State()["b"])
}

func TestRendererPanic_IsTaggedAsRenderFailure(t *testing.T) {
	var reported []*errors.PanicError
	errors.SetHandler(&panicRecorder{onPanic: func(err *errors.PanicError) {
		reported = append(reported, err)
	}})
	defer errors.SetHandler(nil)

	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, nil, core.State{})
	tester.Mount(p, "DIV")
	tester.Renderer.OnRender = func(core.Instance, *drifttest.Tree) {
		panic("renderer failed")
	}

	recovered := capturePanic(func() {
		p.SetState(core.Partial{"a": 1}, nil)
	})

	pe, ok := recovered.(*errors.PanicError)
	require.True(t, ok, "got %T", recovered)
	assert.Equal(t, errors.KindRender, pe.Kind)
	assert.Equal(t, "renderer failed", pe.Value)
	require.Len(t, reported, 1)
	assert.Same(t, pe, reported[0])
	assert.False(t, p.Updater().Pending())
}

func TestReceivePropsDuringOwnRender_KeepsGuard(t *testing.T) {
	tester := drifttest.NewTesterWithT(t)
	p := newProbe(tester, core.Props{"v": 0}, core.State{})
	tester.Mount(p, "DIV")

	var inFlight, pushed bool
	p.willUpdate = func(p *probe, _ core.Props, _ core.State) {
		if pushed {
			return
		}
		pushed = true
		p.ReceiveProps(core.Props{"v": 1}, nil)
		inFlight = p.Updater().Pending()
	}

	p.SetState(core.Partial{"a": 1}, nil)

	assert.True(t, inFlight, "the render cycle's guard must survive a nested ReceiveProps")
	assert.Equal(t, 1, tester.Renderer.RenderCount(p), "the nested update must not render reentrantly")
	assert.False(t, p.Updater().Pending())
	assert.Contains(t, p.events, "willReceiveProps")
}

func TestMetrics_RecordScheduling(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("test")
	require.NoError(t, m.Register(reg))

	tester := drifttest.NewTesterWithT(t, core.WithName("ui"), core.WithMetrics(m))
	p := newProbe(tester, nil, core.State{})
	tester.Mount(p, "DIV")

	p.SetState(core.Partial{"a": 1}, nil)
	tester.Root.Batch(func() {
		p.SetState(core.Partial{"b": 1}, nil)
	})
	p.should = func(core.Props, core.State) bool { return false }
	p.SetState(core.Partial{"c": 1}, nil)
	tester.Unmount(p)
	p.ForceUpdate(nil)

	assert.Equal(t, 2.0, gathered(t, reg, "test_scheduler_renders_total"))
	// The batched SetState, plus the post-render flush that re-registers
	// while the batch is still draining.
	assert.Equal(t, 2.0, gathered(t, reg, "test_scheduler_deferred_total"))
	assert.Equal(t, 1.0, gathered(t, reg, "test_scheduler_skipped_total"))
	assert.Equal(t, 2.0, gathered(t, reg, "test_scheduler_sync_updates_total"))
	assert.Equal(t, 1.0, gathered(t, reg, "test_scheduler_ignored_force_updates_total"))
}

type panicRecorder struct {
	onPanic func(*errors.PanicError)
}

func (h *panicRecorder) HandleError(*errors.SchedulerError) {}

func (h *panicRecorder) HandlePanic(err *errors.PanicError) {
	h.onPanic(err)
}

func capturePanic(fn func()) (recovered any) {
	defer func() {
		recovered = recover()
	}()
	fn()
	return nil
}

func gathered(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	var sum float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
