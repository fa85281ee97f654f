package core

import "slices"

// UpdateQueue collects updaters deferred while a batch is open and flushes
// them when the batch ends.
type UpdateQueue struct {
	root      *Root
	updaters  []*Updater
	isPending bool
}

// Add registers u for the current batch. Updaters are inserted at the front:
// events bubble from the deepest component up, so the last registrant is the
// outermost ancestor and renders first. A descendant that receives new props
// from that render has its pending state folded in, and its own queued entry
// becomes a no-op.
func (q *UpdateQueue) Add(u *Updater) {
	q.updaters = slices.Insert(q.updaters, 0, u)
	q.root.metrics.Deferred(q.root.name)
	q.root.logger.Debug("update deferred", "root", q.root.name, "component", u.component.id, "queued", len(q.updaters))
}

// IsPending reports whether a batch is collecting or flushing.
func (q *UpdateQueue) IsPending() bool {
	return q.isPending
}

// Len returns the number of queued updaters.
func (q *UpdateQueue) Len() int {
	return len(q.updaters)
}

// BatchUpdate flushes every queued updater, including those registered while
// flushing, before returning.
func (q *UpdateQueue) BatchUpdate() {
	q.isPending = true
	defer func() {
		q.isPending = false
	}()

	passes := 0
	for len(q.updaters) > 0 {
		updaters := q.updaters
		q.updaters = nil
		passes++
		q.root.logger.Debug("drain pass", "root", q.root.name, "pass", passes, "size", len(updaters))
		for _, u := range updaters {
			u.Update()
		}
	}
	q.root.metrics.Drained(q.root.name, passes)
}
