// Package core schedules component updates and merges pending state.
//
// A Root owns an UpdateQueue and a TreeRenderer. Every component initialised
// against the root gets an Updater that queues state patches and decides
// whether an update renders immediately or waits for the current batch.
//
// # Components
//
// Embed Component in your struct and override the lifecycle hooks you need:
//
//	type counter struct {
//	    core.Component
//	}
//
//	func (c *counter) ShouldComponentUpdate(nextProps core.Props, nextState core.State, nextContext core.Context) bool {
//	    return nextState["count"] != c.State()["count"]
//	}
//
//	c := &counter{}
//	core.Init(c, root, nil, nil)
//	c.InitState(core.State{"count": 0})
//
// # State Patches
//
// SetState accepts a Partial, which is shallow-merged, or an UpdateFunc,
// which computes a partial from the state accumulated so far:
//
//	c.SetState(core.Partial{"label": "saved"}, nil)
//	c.SetState(core.UpdateFunc(func(s core.State, p core.Props) core.State {
//	    return core.State{"count": s["count"].(int) + 1}
//	}), func() {
//	    // runs after the render that commits this patch
//	})
//
// ReplaceState swaps the whole state on the next update.
//
// # Batching
//
// Outside a batch, SetState renders before it returns. Event dispatch wraps
// handlers in Root.Batch so that every component touched by one event
// renders at most once, ancestors first:
//
//	root.Batch(func() {
//	    child.SetState(core.Partial{"open": true}, nil)
//	    parent.SetState(core.Partial{"selected": 3}, nil)
//	})
//
// Props pushed down by a re-rendering parent (Component.ReceiveProps) always
// render synchronously.
//
// # Reentrancy
//
// Everything runs on one goroutine. A component renders at most one cycle
// at a time: ForceUpdate during its own cycle is a no-op, and state set from
// hooks during a cycle is flushed right after the cycle completes.
package core
