package core

import "maps"

// Props are the inputs a component receives from its parent.
type Props map[string]any

// State is a component's own mutable data.
type State map[string]any

// Context is data passed implicitly down the tree.
type Context map[string]any

// StatePatch is a queued state change. It is one of Partial, UpdateFunc or
// a replacement queued by ReplaceState.
type StatePatch interface {
	apply(acc State, props Props) State
}

// Partial is shallow-merged into the accumulated state.
type Partial State

func (p Partial) apply(acc State, _ Props) State {
	maps.Copy(acc, p)
	return acc
}

// UpdateFunc computes a partial state from the state accumulated so far and
// the component's current props. Its result is shallow-merged.
type UpdateFunc func(state State, props Props) State

func (f UpdateFunc) apply(acc State, props Props) State {
	maps.Copy(acc, f(acc, props))
	return acc
}

// replacement discards everything accumulated in the current merge pass.
type replacement struct {
	state State
}

func (r replacement) apply(State, Props) State {
	return cloneState(r.state)
}

func isEmptyPatch(p StatePatch) bool {
	switch v := p.(type) {
	case nil:
		return true
	case Partial:
		return v == nil
	case UpdateFunc:
		return v == nil
	}
	return false
}

func cloneState(s State) State {
	if s == nil {
		return State{}
	}
	return maps.Clone(s)
}
