package core

import (
	"github.com/go-drift/reconcile/pkg/dom"
	"github.com/go-drift/reconcile/pkg/logging"
	"github.com/go-drift/reconcile/pkg/metrics"
)

// VirtualTree is a rendered description of a component's output.
type VirtualTree interface {
	// Context returns the context handed to the tree's children.
	Context() Context
}

// TreeRenderer renders components to virtual trees and reconciles those
// trees against mounted nodes.
type TreeRenderer interface {
	// RenderComponent renders inst to a new virtual tree.
	RenderComponent(inst Instance, parentContext Context) VirtualTree
	// UpdateTree reconciles next against oldNode and returns the resulting
	// root node, which may be oldNode itself or a replacement.
	UpdateTree(oldNode dom.Node, next VirtualTree, parentNode dom.Node, context Context) dom.Node
	// ClearDidMount runs the post-mount callbacks collected during the most
	// recent render.
	ClearDidMount()
}

// ReplacePolicy selects which pending patches ReplaceState discards.
type ReplacePolicy int

const (
	// ReplaceLast discards only the most recently queued patch.
	ReplaceLast ReplacePolicy = iota
	// ReplaceAll discards every queued patch.
	ReplaceAll
)

func (p ReplacePolicy) String() string {
	if p == ReplaceAll {
		return "all"
	}
	return "last"
}

// DefaultRootName labels roots created without WithName.
const DefaultRootName = "main"

// Root is a render root. It owns the update queue shared by every component
// initialised against it, so independent roots never batch together.
type Root struct {
	name          string
	queue         *UpdateQueue
	renderer      TreeRenderer
	logger        logging.Logger
	metrics       *metrics.Metrics
	replacePolicy ReplacePolicy
}

// Option configures a Root.
type Option func(*Root)

// WithName sets the root name used in logs and metric labels.
func WithName(name string) Option {
	return func(r *Root) {
		if name != "" {
			r.name = name
		}
	}
}

// WithLogger sets the root logger. The default discards everything.
func WithLogger(logger logging.Logger) Option {
	return func(r *Root) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records scheduling activity into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Root) {
		r.metrics = m
	}
}

// WithReplacePolicy selects the ReplaceState policy. The default is ReplaceLast.
func WithReplacePolicy(p ReplacePolicy) Option {
	return func(r *Root) {
		r.replacePolicy = p
	}
}

// NewRoot creates a render root that reconciles through renderer.
func NewRoot(renderer TreeRenderer, opts ...Option) *Root {
	r := &Root{
		name:     DefaultRootName,
		renderer: renderer,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.queue = &UpdateQueue{root: r}
	return r
}

// Name returns the root name.
func (r *Root) Name() string {
	return r.name
}

// Queue returns the root's update queue.
func (r *Root) Queue() *UpdateQueue {
	return r.queue
}

// Renderer returns the tree renderer.
func (r *Root) Renderer() TreeRenderer {
	return r.renderer
}

// ReplacePolicy returns the configured ReplaceState policy.
func (r *Root) ReplacePolicy() ReplacePolicy {
	return r.replacePolicy
}

// Batch runs dispatch with the queue collecting, then flushes everything it
// collected. Event dispatch calls this once per top-level event. A Batch
// nested inside another only runs dispatch; the outer call flushes.
func (r *Root) Batch(dispatch func()) {
	q := r.queue
	if q.isPending {
		if dispatch != nil {
			dispatch()
		}
		return
	}
	q.isPending = true
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				q.isPending = false
				panic(rec)
			}
		}()
		if dispatch != nil {
			dispatch()
		}
	}()
	q.BatchUpdate()
}
