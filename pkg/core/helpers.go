package core

// assignable receives the uniform props/state/context write. Both the live
// component and its Cache implement it.
type assignable interface {
	assign(props Props, state State, context Context)
}

func updatePropsAndState(target assignable, props Props, state State, context Context) {
	if context == nil {
		context = Context{}
	}
	target.assign(props, state, context)
}

// shouldUpdate either commits the next values directly onto the component,
// when ShouldComponentUpdate declines, or stages them and runs a render
// cycle.
func shouldUpdate(inst Instance, nextProps Props, nextState State, nextContext Context, callback func()) {
	c := inst.Base()
	if !inst.ShouldComponentUpdate(nextProps, nextState, nextContext) {
		updatePropsAndState(c, nextProps, nextState, nextContext)
		c.root.metrics.Skipped(c.root.name)
		c.root.logger.Debug("render skipped", "root", c.root.name, "component", c.id)
		return
	}
	updatePropsAndState(c.cache, nextProps, nextState, nextContext)
	c.ForceUpdate(callback)
}
