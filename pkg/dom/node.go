// Package dom defines the node contract the scheduler reconciles against and
// the reverse map that ties a node back to the components rendering it.
package dom

import "github.com/puzpuzpuz/xsync/v3"

// PlaceholderTag is the tag of the node rendered for "nothing visible".
const PlaceholderTag = "NOSCRIPT"

// Node is a mounted root node produced by the tree renderer.
type Node interface {
	// ParentNode returns the node this node is attached under, or nil.
	ParentNode() Node
	// TagName returns the upper-case element tag.
	TagName() string
	// Components returns the node's reverse map, or nil if none is attached.
	Components() *ComponentMap
	// SetComponents attaches a reverse map to the node.
	SetComponents(m *ComponentMap)
}

// IsPlaceholder reports whether node stands in for an empty render.
func IsPlaceholder(node Node) bool {
	return node != nil && node.TagName() == PlaceholderTag
}

// ComponentMap maps component IDs to the component instances that own a node.
// A map is owned by exactly one live node at a time.
type ComponentMap struct {
	entries *xsync.MapOf[string, any]
}

// NewComponentMap creates an empty reverse map.
func NewComponentMap() *ComponentMap {
	return &ComponentMap{entries: xsync.NewMapOf[string, any]()}
}

// Set records value under key, replacing any previous value.
func (m *ComponentMap) Set(key string, value any) {
	m.entries.Store(key, value)
}

// Load returns the value stored under key.
func (m *ComponentMap) Load(key string) (any, bool) {
	return m.entries.Load(key)
}

// Delete removes key.
func (m *ComponentMap) Delete(key string) {
	m.entries.Delete(key)
}

// Len returns the number of entries.
func (m *ComponentMap) Len() int {
	return m.entries.Size()
}

// Range calls fn for each entry until fn returns false.
func (m *ComponentMap) Range(fn func(key string, value any) bool) {
	m.entries.Range(fn)
}

// EnsureComponents returns node's reverse map, attaching a new one if absent.
func EnsureComponents(node Node) *ComponentMap {
	m := node.Components()
	if m == nil {
		m = NewComponentMap()
		node.SetComponents(m)
	}
	return m
}

// TransferComponents moves every entry of oldNode's reverse map into
// newNode's map and detaches the old map. It is a no-op when the nodes are
// the same or either is nil.
func TransferComponents(oldNode, newNode Node) {
	if oldNode == nil || newNode == nil || oldNode == newNode {
		return
	}
	target := EnsureComponents(newNode)
	source := oldNode.Components()
	if source == nil {
		return
	}
	source.Range(func(key string, value any) bool {
		target.Set(key, value)
		return true
	})
	source.entries.Clear()
	oldNode.SetComponents(nil)
}
