package tree

import "github.com/benz9527/xtree/lib/infra"

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

//go:generate stringer -type=RBRotation
type RBRotation uint8

const (
	LeftRotation RBRotation = iota
	RightRotation
)

// RotationHook observes completed rotations. The pivot is the key of
// the node the rotation was applied to, i.e. the node that moved down.
// The hook runs on the mutating goroutine; keep it cheap.
type RotationHook[K infra.OrderedKey] func(rotation RBRotation, pivot K)

type RBNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// LevelOrderItem is one step of a breadth-first walk over the tree.
type LevelOrderItem[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Depth() int64
	// Direction reports where the node hangs relative to its parent,
	// Root for the data root.
	Direction() RBDirection
	ParentKey() (K, bool)
}

// RBTree is an ordered in-memory container with O(log n) lookup,
// insertion and removal. Duplicate keys collapse to one node; the
// override mode decides whether a duplicate insert replaces the stored
// value or keeps it.
//
// The tree is a single mutable graph without internal locking. Callers
// must serialize Insert, Remove and SetOverrideMode externally (one
// writer at a time, or one lock around the whole tree). Len reads an
// atomic counter, but that alone does not make concurrent readers safe
// during a mutation.
type RBTree[K infra.OrderedKey, V any] interface {
	Len() int64
	Root() RBNode[K, V]
	Get(key K) (V, bool)
	// Insert stores val under key. It reports the previous value and
	// true when key was already present (replaced under override mode,
	// kept otherwise); a fresh insert reports the zero value and false.
	Insert(key K, val V) (V, bool)
	// Remove unlinks key and reports its value, false when absent.
	Remove(key K) (V, bool)
	IsOverrideMode() bool
	SetOverrideMode(enabled bool)
	// Foreach visits the nodes in ascending key order. Return false
	// from action to stop early.
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	// LevelOrderForeach visits the nodes breadth-first, level by level.
	// Read-only and restartable. Return false from action to stop early.
	LevelOrderForeach(action func(idx int64, item LevelOrderItem[K, V]) bool)
}
