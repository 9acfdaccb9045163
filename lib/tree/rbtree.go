package tree

import (
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

type rbNode[K infra.OrderedKey, V any] struct {
	// Non-owning back-reference, nil for the data root and for detached
	// nodes. The unique owning link is the parent's left or right slot.
	parent *rbNode[K, V]
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

// Nil nodes count as black (p2).
func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) makeBlack() {
	node.color = Black
}

func (node *rbNode[K, V]) makeRed() {
	node.color = Red
}

// References:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The data root is black.

// rbTree hangs the data root off a keyless sentinel node: rotations
// that would relink the root's parent relink the sentinel's left slot
// instead, so the primitives never branch on a missing parent. The
// sentinel itself takes no part in the color rules.
type rbTree[K infra.OrderedKey, V any] struct {
	sentinel     *rbNode[K, V]
	count        int64
	overrideMode bool
	rotationHook RotationHook[K]
}

func (tree *rbTree[K, V]) dataRoot() *rbNode[K, V] {
	return tree.sentinel.left
}

func (tree *rbTree[K, V]) keyCompare(k1, k2 K) int64 {
	if k1 == k2 {
		return 0
	} else if k1 < k2 {
		return -1
	}
	return 1
}

// setParent keeps the back-reference consistent with the owning child
// link. The data root never points at the sentinel.
func (tree *rbTree[K, V]) setParent(node, parent *rbNode[K, V]) {
	if node == nil {
		return
	}
	if parent == tree.sentinel {
		parent = nil
	}
	node.parent = parent
}

func (tree *rbTree[K, V]) isRoot(node *rbNode[K, V]) bool {
	return node != nil && node == tree.sentinel.left && node.parent == nil
}

func (tree *rbTree[K, V]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.sentinel.left == nil {
		return nil
	}
	return tree.sentinel.left
}

func (tree *rbTree[K, V]) IsOverrideMode() bool {
	return tree.overrideMode
}

// SetOverrideMode switches the duplicate policy for future inserts
// only; nodes already in the tree are untouched.
func (tree *rbTree[K, V]) SetOverrideMode(enabled bool) {
	tree.overrideMode = enabled
}

func (tree *rbTree[K, V]) Get(key K) (V, bool) {
	for aux := tree.dataRoot(); aux != nil; {
		res := tree.keyCompare(aux.key, key)
		if /* less */ res < 0 {
			aux = aux.right
		} else /* greater */ if res > 0 {
			aux = aux.left
		} else {
			return aux.val, true
		}
	}
	var zero V
	return zero, false
}

// findParent walks from the data root to the node already holding key,
// or to the would-be parent of a fresh key.
func (tree *rbTree[K, V]) findParent(key K) *rbNode[K, V] {
	aux := tree.dataRoot()
	child := aux
	for child != nil {
		res := tree.keyCompare(child.key, key)
		if res == 0 {
			return child
		}
		aux = child
		if /* greater */ res > 0 {
			child = child.left
		} else /* less */ {
			child = child.right
		}
	}
	return aux
}

func (tree *rbTree[K, V]) Insert(key K, val V) (V, bool) {
	var zero V
	if tree.dataRoot() == nil {
		tree.sentinel.left = &rbNode[K, V]{key: key, val: val, color: Black}
		atomic.AddInt64(&tree.count, 1)
		return zero, false
	}

	x := tree.findParent(key)
	res := tree.keyCompare(x.key, key)
	if /* duplicate */ res == 0 {
		// Key, hence position, is unchanged. No links, no color, no
		// size change either way.
		old := x.val
		if tree.overrideMode {
			x.val = val
		}
		return old, true
	}

	z := &rbNode[K, V]{key: key, val: val, color: Red}
	tree.setParent(z, x)
	if res > 0 {
		x.left = z
	} else {
		x.right = z
	}
	tree.fixInsert(z)
	atomic.AddInt64(&tree.count, 1)
	return zero, false
}

// uncle is the grandparent's other child. The caller guarantees a red
// parent, which implies the grandparent exists (the root is black).
func (tree *rbTree[K, V]) uncle(node *rbNode[K, V]) *rbNode[K, V] {
	parent := node.parent
	grandpa := parent.parent
	if grandpa == nil {
		return nil
	}
	if parent == grandpa.left {
		return grandpa.right
	}
	return grandpa.left
}

// fixInsert restores the red-black rules after linking the red leaf x.
// At most two rotations per insertion.
func (tree *rbTree[K, V]) fixInsert(x *rbNode[K, V]) {
	parent := x.parent
	for parent != nil && parent.isRed() {
		uncle := tree.uncle(x)
		if /* red uncle */ uncle.isRed() {
			// Push the blackness down from the grandparent and retry
			// from there, the double red may have moved up.
			parent.makeBlack()
			uncle.makeBlack()
			parent.parent.makeRed()
			x = parent.parent
			parent = x.parent
			continue
		}

		grandpa := parent.parent
		if parent == grandpa.left {
			// x on the inner side needs the extra rotation to line
			// x, parent and grandpa up first.
			misaligned := x == parent.right
			if misaligned {
				tree.leftRotate(parent)
			}
			tree.rightRotate(grandpa)
			if misaligned {
				x.makeBlack()
				parent = nil
			} else {
				parent.makeBlack()
			}
			grandpa.makeRed()
		} else {
			misaligned := x == parent.left
			if misaligned {
				tree.rightRotate(parent)
			}
			tree.leftRotate(grandpa)
			if misaligned {
				x.makeBlack()
				parent = nil
			} else {
				parent.makeBlack()
			}
			grandpa.makeRed()
		}
	}

	tree.dataRoot().makeBlack()
	tree.dataRoot().parent = nil
}

// removeMin locates the in-order successor of node, the leftmost node
// of its right subtree, and splices it out of its original slot. The
// successor keeps its stale right link; the caller still reads it
// while grafting.
func (tree *rbTree[K, V]) removeMin(node *rbNode[K, V]) *rbNode[K, V] {
	aux := node.right
	parent := aux
	for aux != nil && aux.left != nil {
		parent = aux
		aux = aux.left
	}
	if parent == aux {
		// The right child has no left subtree, it is the successor.
		return aux
	}
	parent.left = aux.right
	tree.setParent(aux.right, parent)
	return aux
}

func (tree *rbTree[K, V]) Remove(key K) (V, bool) {
	d := tree.dataRoot()
	parent := tree.sentinel

	for d != nil {
		res := tree.keyCompare(d.key, key)
		if /* less */ res < 0 {
			parent = d
			d = d.right
			continue
		} else /* greater */ if res > 0 {
			parent = d
			d = d.left
			continue
		}

		if d.right != nil {
			// Two children, or right only: graft the in-order
			// successor into d's slot and color; the removal degrades
			// to dropping a node with at most one (right) child.
			m := tree.removeMin(d)
			x := m.right
			deficitAtParent := m.right == nil
			if deficitAtParent {
				x = m.parent
			}
			mWasBlack := m.isBlack()

			m.left = d.left
			tree.setParent(d.left, m)
			if parent.left == d {
				parent.left = m
			} else {
				parent.right = m
			}
			tree.setParent(m, parent)
			if m != d.right {
				m.right = d.right
				tree.setParent(d.right, m)
			}
			m.color = d.color

			if /* black-height deficit */ mWasBlack {
				if m != d.right {
					tree.fixRemove(x, deficitAtParent)
				} else if m.right != nil {
					tree.fixRemove(m.right, false)
				} else {
					tree.fixRemove(m, true)
				}
			}
		} else {
			// Left child only, or leaf: splice the left child
			// (possibly nil) straight into d's slot.
			tree.setParent(d.left, parent)
			if parent.left == d {
				parent.left = d.left
			} else {
				parent.right = d.left
			}
			if /* black-height deficit */ d.isBlack() && tree.dataRoot() != nil {
				if d.left == nil {
					tree.fixRemove(parent, true)
				} else {
					tree.fixRemove(d.left, false)
				}
			}
		}

		d.parent = nil
		d.left = nil
		d.right = nil
		if root := tree.dataRoot(); root != nil {
			root.makeBlack()
			root.parent = nil
		}
		atomic.AddInt64(&tree.count, -1)
		return d.val, true
	}

	var zero V
	return zero, false
}

// sibling tolerates a nil cursor: after a removal the black-height
// deficit may sit at a missing child of parent.
func (tree *rbTree[K, V]) sibling(node, parent *rbNode[K, V]) *rbNode[K, V] {
	if node == nil {
		if parent.left == nil {
			return parent.right
		}
		return parent.left
	}
	parent = node.parent
	if node == parent.left {
		return parent.right
	}
	return parent.left
}

// fixRemove restores the red-black rules after a black node left the
// tree. The deficit position is either node itself, or the missing
// child of node when deficitAtParent is set. At most three rotations
// per removal.
func (tree *rbTree[K, V]) fixRemove(node *rbNode[K, V], deficitAtParent bool) {
	cur := node
	if deficitAtParent {
		cur = nil
	}
	curIsRed := !deficitAtParent && node.isRed()
	parent := node
	if !deficitAtParent {
		parent = node.parent
	}

	for !curIsRed && !tree.isRoot(cur) {
		sibling := tree.sibling(cur, parent)
		isLeft := parent.right == sibling

		switch {
		case sibling.isRed() && isLeft:
			// Red sibling: both nephews are black (p3), rotate the
			// sibling over the parent and retry against the new black
			// sibling.
			parent.makeRed()
			sibling.makeBlack()
			tree.leftRotate(parent)
		case sibling.isRed() && !isLeft:
			parent.makeRed()
			sibling.makeBlack()
			tree.rightRotate(parent)
		case sibling.left.isBlack() && sibling.right.isBlack():
			// Nothing to borrow on the sibling side without breaking
			// p4 there; drain one black level and push the deficit up
			// to the parent.
			sibling.makeRed()
			cur = parent
			curIsRed = cur.isRed()
			parent = parent.parent
		case isLeft && sibling.left.isRed() && sibling.right.isBlack():
			// Near nephew red, far nephew black: rotate the red nephew
			// over the sibling so the terminal case applies.
			sibling.makeRed()
			sibling.left.makeBlack()
			tree.rightRotate(sibling)
		case !isLeft && sibling.left.isBlack() && sibling.right.isRed():
			sibling.makeRed()
			sibling.right.makeBlack()
			tree.leftRotate(sibling)
		case isLeft && sibling.right.isRed():
			// Far nephew red: the sibling inherits the parent's color
			// and one rotation settles the deficit.
			sibling.color = parent.color
			parent.makeBlack()
			sibling.right.makeBlack()
			tree.leftRotate(parent)
			cur = tree.dataRoot()
		case !isLeft && sibling.left.isRed():
			sibling.color = parent.color
			parent.makeBlack()
			sibling.left.makeBlack()
			tree.rightRotate(parent)
			cur = tree.dataRoot()
		default:
			// impossible run to here
			panic("[rbtree] remove fixup without an applicable case")
		}
	}

	if curIsRed {
		// A red cursor absorbs the deficit without rotation.
		cur.makeBlack()
	}
	if root := tree.dataRoot(); root != nil {
		root.makeBlack()
		root.parent = nil
	}
}

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K, V]) leftRotate(node *rbNode[K, V]) {
	pivot := node.right
	if pivot == nil {
		// impossible run to here
		panic("[rbtree] left rotate node without a right child")
	}

	parent := node.parent
	node.right = pivot.left
	tree.setParent(pivot.left, node)
	pivot.left = node
	tree.setParent(node, pivot)
	if parent == nil {
		tree.sentinel.left = pivot
		tree.setParent(pivot, nil)
	} else {
		if parent.left == node {
			parent.left = pivot
		} else {
			parent.right = pivot
		}
		tree.setParent(pivot, parent)
	}

	if tree.rotationHook != nil {
		tree.rotationHook(LeftRotation, node.key)
	}
}

/*
		 |                         |
		 X                         L
		/ \     rightRotate(X)    / \
	   L   R    =============>  Lc   X
	  / \                           / \
	Lc   Ld                       Ld   R
*/
func (tree *rbTree[K, V]) rightRotate(node *rbNode[K, V]) {
	pivot := node.left
	if pivot == nil {
		// impossible run to here
		panic("[rbtree] right rotate node without a left child")
	}

	parent := node.parent
	node.left = pivot.right
	tree.setParent(pivot.right, node)
	pivot.right = node
	tree.setParent(node, pivot)
	if parent == nil {
		tree.sentinel.left = pivot
		tree.setParent(pivot, nil)
	} else {
		if parent.left == node {
			parent.left = pivot
		} else {
			parent.right = pivot
		}
		tree.setParent(pivot, parent)
	}

	if tree.rotationHook != nil {
		tree.rotationHook(RightRotation, node.key)
	}
}

// Iterative in-order traversal with an explicit stack.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	aux := tree.dataRoot()
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, atomic.LoadInt64(&tree.count)>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		if aux.right != nil {
			for aux = aux.right; aux != nil; aux = aux.left {
				stack = append(stack, aux)
			}
		}
	}
}

type RBTreeOpt[K infra.OrderedKey, V any] func(*rbTree[K, V])

// WithRBTreeKeepExisting disables override mode: a duplicate insert
// keeps the stored value and reports it back.
func WithRBTreeKeepExisting[K infra.OrderedKey, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.overrideMode = false
	}
}

// WithRBTreeRotationHook registers an observer invoked after every
// completed rotation, for logging and test instrumentation.
func WithRBTreeRotationHook[K infra.OrderedKey, V any](hook RotationHook[K]) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.rotationHook = hook
	}
}

func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	tree := &rbTree[K, V]{
		sentinel:     &rbNode[K, V]{},
		overrideMode: true,
	}

	for _, o := range opts {
		o(tree)
	}
	return tree
}
