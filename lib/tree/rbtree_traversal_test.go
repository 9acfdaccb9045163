package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRbtreeLevelOrderForeach(t *testing.T) {
	tree := NewRBTree[uint64, uint64]()
	tree.LevelOrderForeach(func(idx int64, item LevelOrderItem[uint64, uint64]) bool {
		require.FailNow(t, "level-order on an empty tree")
		return false
	})

	for _, k := range referenceKeys {
		tree.Insert(k, k*10)
	}

	visited := int64(0)
	prevDepth := int64(0)
	perDepth := map[int64]int64{}
	tree.LevelOrderForeach(func(idx int64, item LevelOrderItem[uint64, uint64]) bool {
		require.Equal(t, visited, idx)
		require.Equal(t, item.Key()*10, item.Val())

		if idx == 0 {
			require.Equal(t, tree.Root().Key(), item.Key())
			require.Equal(t, Root, item.Direction())
			require.Equal(t, int64(0), item.Depth())
			_, ok := item.ParentKey()
			require.False(t, ok)
		} else {
			parentKey, ok := item.ParentKey()
			require.True(t, ok)
			_, found := tree.Get(parentKey)
			require.True(t, found)
			switch item.Direction() {
			case Left:
				require.Less(t, item.Key(), parentKey)
			case Right:
				require.Greater(t, item.Key(), parentKey)
			default:
				require.FailNow(t, "non-root item without a direction")
			}
		}

		// Breadth-first order never goes back up a level.
		require.GreaterOrEqual(t, item.Depth(), prevDepth)
		require.LessOrEqual(t, item.Depth(), prevDepth+1)
		prevDepth = item.Depth()
		perDepth[item.Depth()]++

		visited++
		return true
	})
	require.Equal(t, tree.Len(), visited)
	for depth, n := range perDepth {
		require.LessOrEqual(t, n, int64(1)<<uint(depth))
	}
}

func TestRbtreeLevelOrderForeachRestartable(t *testing.T) {
	tree := NewRBTree[uint64, uint64]()
	for _, k := range referenceKeys {
		tree.Insert(k, k)
	}

	collect := func() []uint64 {
		keys := make([]uint64, 0, tree.Len())
		tree.LevelOrderForeach(func(idx int64, item LevelOrderItem[uint64, uint64]) bool {
			keys = append(keys, item.Key())
			return true
		})
		return keys
	}

	first := collect()
	second := collect()
	require.Equal(t, first, second)
	require.Len(t, first, len(referenceKeys))
	require.Equal(t, int64(len(referenceKeys)), tree.Len())
}

func TestRbtreeLevelOrderForeachEarlyExit(t *testing.T) {
	tree := NewRBTree[uint64, uint64]()
	for _, k := range referenceKeys {
		tree.Insert(k, k)
	}

	visited := 0
	tree.LevelOrderForeach(func(idx int64, item LevelOrderItem[uint64, uint64]) bool {
		visited++
		return visited < 3
	})
	require.Equal(t, 3, visited)

	visited = 0
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		visited++
		return false
	})
	require.Equal(t, 1, visited)
}
