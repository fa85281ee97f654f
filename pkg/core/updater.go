package core

// Updater owns one component's pending state patches and post-render
// callbacks, and decides whether an update renders now or joins the batch.
type Updater struct {
	component        *Component
	queue            *UpdateQueue
	pendingStates    []StatePatch
	pendingCallbacks []func()
	isPending        bool
	nextProps        Props
	nextContext      Context
}

func newUpdater(c *Component, queue *UpdateQueue) *Updater {
	return &Updater{component: c, queue: queue}
}

// Pending reports whether the component's render cycle is in flight.
func (u *Updater) Pending() bool {
	return u.isPending
}

// PendingStates returns the number of queued patches.
func (u *Updater) PendingStates() int {
	return len(u.pendingStates)
}

// PendingCallbacks returns the number of queued post-render callbacks.
func (u *Updater) PendingCallbacks() int {
	return len(u.pendingCallbacks)
}

// EmitUpdate stages nextProps and nextContext and schedules an update.
// New props from a re-rendering parent, or any update while no batch is
// collecting, render immediately. Otherwise the updater joins the queue.
// A nil nextProps means no new props were supplied.
func (u *Updater) EmitUpdate(nextProps Props, nextContext Context) {
	u.nextProps = nextProps
	u.nextContext = nextContext
	root := u.queue.root
	if nextProps != nil || !u.queue.IsPending() {
		if nextProps != nil || len(u.pendingStates) > 0 {
			root.metrics.UpdatedSync(root.name)
		}
		u.Update()
		return
	}
	u.queue.Add(u)
}

// Update merges staged props and pending state and hands them to the
// render-or-skip decision. It does nothing when neither is present.
func (u *Updater) Update() {
	c := u.component
	nextProps, nextContext := u.nextProps, u.nextContext
	if nextProps == nil && len(u.pendingStates) == 0 {
		return
	}
	if nextProps == nil {
		nextProps = c.props
	}
	if nextContext == nil {
		nextContext = c.context
	}
	u.nextProps, u.nextContext = nil, nil
	shouldUpdate(c.self, nextProps, u.GetState(), nextContext, u.ClearCallbacks)
}

// AddState queues patch and, unless a render is in flight, emits an update.
// Empty patches are ignored.
func (u *Updater) AddState(patch StatePatch) {
	if isEmptyPatch(patch) {
		return
	}
	u.pendingStates = append(u.pendingStates, patch)
	if !u.isPending {
		u.EmitUpdate(nil, nil)
	}
}

// ReplaceState drops the most recently queued patch (or all of them under
// ReplaceAll) and queues a replacement by next. It does not emit an update;
// the replacement applies on the next Update.
func (u *Updater) ReplaceState(next State) {
	if u.queue.root.replacePolicy == ReplaceAll {
		clear(u.pendingStates)
		u.pendingStates = u.pendingStates[:0]
	} else if n := len(u.pendingStates); n > 0 {
		u.pendingStates[n-1] = nil
		u.pendingStates = u.pendingStates[:n-1]
	}
	u.pendingStates = append(u.pendingStates, replacement{state: next})
}

// GetState folds the pending patches over the component's committed state
// and empties the queue. The committed state is not modified.
func (u *Updater) GetState() State {
	c := u.component
	if len(u.pendingStates) == 0 {
		return c.state
	}
	pending := u.pendingStates
	u.pendingStates = nil

	state := cloneState(c.state)
	for _, patch := range pending {
		state = patch.apply(state, c.props)
	}
	return state
}

// AddCallback queues cb to run after the next committed render.
// Nil callbacks are dropped.
func (u *Updater) AddCallback(cb func()) {
	if cb != nil {
		u.pendingCallbacks = append(u.pendingCallbacks, cb)
	}
}

// ClearCallbacks runs the queued callbacks in order and empties the queue.
// Callbacks queued while these run wait for the next render.
func (u *Updater) ClearCallbacks() {
	if len(u.pendingCallbacks) == 0 {
		return
	}
	callbacks := u.pendingCallbacks
	u.pendingCallbacks = nil
	for _, cb := range callbacks {
		cb()
	}
}
