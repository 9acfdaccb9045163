// Package main builds a red-black tree from a key sequence, renders it
// level by level and removes keys from it, logging every rotation.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/tree"
)

var defaultKeys = []int64{12, 1, 9, 2, 0, 11, 7, 19, 4, 15, 18, 5, 14, 13, 10, 16, 6, 3, 8, 17}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		keys         []int64
		removeKeys   []int64
		keepExisting bool
	)

	cmd := &cobra.Command{
		Use:           "xtree-demo",
		Short:         "Red-black tree walkthrough: insert, render, remove, re-render",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()
			return runDemo(cmd.OutOrStdout(), logger, keys, removeKeys, keepExisting)
		},
	}

	cmd.Flags().Int64SliceVar(&keys, "keys", defaultKeys, "keys to insert, in order")
	cmd.Flags().Int64SliceVar(&removeKeys, "remove", []int64{12}, "keys to remove after the first render")
	cmd.Flags().BoolVar(&keepExisting, "keep-existing", false, "keep the stored value on duplicate keys instead of overriding it")
	return cmd
}

func runDemo(out io.Writer, logger *zap.Logger, keys, removeKeys []int64, keepExisting bool) error {
	opts := []tree.RBTreeOpt[int64, int64]{
		tree.WithRBTreeRotationHook[int64, int64](func(rotation tree.RBRotation, pivot int64) {
			dir := "left"
			if rotation == tree.RightRotation {
				dir = "right"
			}
			logger.Info("rotate",
				zap.String("direction", dir),
				zap.Int64("pivot", pivot),
			)
		}),
	}
	if keepExisting {
		opts = append(opts, tree.WithRBTreeKeepExisting[int64, int64]())
	}
	rbtree := tree.NewRBTree[int64, int64](opts...)

	for _, k := range keys {
		if old, ok := rbtree.Insert(k, k); ok {
			logger.Info("duplicate key",
				zap.Int64("key", k),
				zap.Int64("stored", old),
				zap.Bool("overridden", rbtree.IsOverrideMode()),
			)
		}
	}

	fmt.Fprintf(out, "%d distinct keys\n", rbtree.Len())
	renderLevelOrder(out, rbtree)
	fmt.Fprintf(out, "in-order: %s\n", inOrderKeys(rbtree))

	for _, k := range removeKeys {
		if val, ok := rbtree.Remove(k); ok {
			logger.Info("removed", zap.Int64("key", k), zap.Int64("val", val))
		} else {
			logger.Warn("key not found", zap.Int64("key", k))
		}
	}

	fmt.Fprintf(out, "%d keys left\n", rbtree.Len())
	renderLevelOrder(out, rbtree)
	fmt.Fprintf(out, "in-order: %s\n", inOrderKeys(rbtree))
	return nil
}

// renderLevelOrder prints one line per tree level, each node as
// key(color parentKey side), red nodes painted red.
func renderLevelOrder(out io.Writer, rbtree tree.RBTree[int64, int64]) {
	redPaint := color.New(color.FgRed, color.Bold)
	depth := int64(0)
	rbtree.LevelOrderForeach(func(idx int64, item tree.LevelOrderItem[int64, int64]) bool {
		if item.Depth() != depth {
			fmt.Fprintln(out)
			depth = item.Depth()
		}
		label := describe(item)
		if item.Color() == tree.Red {
			_, _ = redPaint.Fprint(out, label)
		} else {
			fmt.Fprint(out, label)
		}
		fmt.Fprint(out, "\t")
		return true
	})
	fmt.Fprintln(out)
}

func describe(item tree.LevelOrderItem[int64, int64]) string {
	colorTag := "B"
	if item.Color() == tree.Red {
		colorTag = "R"
	}
	parent, ok := item.ParentKey()
	if !ok {
		return fmt.Sprintf("%d(%s)", item.Key(), colorTag)
	}
	side := "LE"
	if item.Direction() == tree.Right {
		side = "RI"
	}
	return fmt.Sprintf("%d(%s %d %s)", item.Key(), colorTag, parent, side)
}

func inOrderKeys(rbtree tree.RBTree[int64, int64]) string {
	keys := make([]int64, 0, rbtree.Len())
	rbtree.Foreach(func(idx int64, color tree.RBColor, key int64, val int64) bool {
		keys = append(keys, key)
		return true
	})
	return strings.Join(lo.Map(keys, func(k int64, _ int) string {
		return strconv.FormatInt(k, 10)
	}), ",")
}
