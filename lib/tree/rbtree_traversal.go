package tree

import (
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	_ LevelOrderItem[uint8, uint8] = (*xLevelOrderItem[uint8, uint8])(nil)
)

// xLevelOrderItem adapts a live node to the read-only item view handed
// to level-order visitors.
type xLevelOrderItem[K infra.OrderedKey, V any] struct {
	node  *rbNode[K, V]
	depth int64
}

func (item *xLevelOrderItem[K, V]) Key() K {
	return item.node.key
}

func (item *xLevelOrderItem[K, V]) Val() V {
	return item.node.val
}

func (item *xLevelOrderItem[K, V]) Color() RBColor {
	return item.node.color
}

func (item *xLevelOrderItem[K, V]) Depth() int64 {
	return item.depth
}

func (item *xLevelOrderItem[K, V]) Direction() RBDirection {
	parent := item.node.parent
	if parent == nil {
		return Root
	}
	if item.node == parent.left {
		return Left
	}
	return Right
}

func (item *xLevelOrderItem[K, V]) ParentKey() (K, bool) {
	if item.node.parent == nil {
		var zero K
		return zero, false
	}
	return item.node.parent.key, true
}

// BFS traversal with an explicit queue, the visualization feed.
// Restartable and read-only.
func (tree *rbTree[K, V]) LevelOrderForeach(action func(idx int64, item LevelOrderItem[K, V]) bool) {
	aux := tree.dataRoot()
	if aux == nil {
		return
	}

	type entry struct {
		node  *rbNode[K, V]
		depth int64
	}
	queue := make([]entry, 0, atomic.LoadInt64(&tree.count)>>1+1)
	queue = append(queue, entry{node: aux})

	idx := int64(0)
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		if !action(idx, &xLevelOrderItem[K, V]{node: head.node, depth: head.depth}) {
			return
		}
		idx++
		if head.node.left != nil {
			queue = append(queue, entry{node: head.node.left, depth: head.depth + 1})
		}
		if head.node.right != nil {
			queue = append(queue, entry{node: head.node.right, depth: head.depth + 1})
		}
	}
}
