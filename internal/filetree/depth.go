package filetree

import "github.com/LDK/javascriv-api/internal/domain/file"

// IndexByDepth groups nodes by tree depth, roots first. Root nodes have any
// submitted parent cleared: the top level of a tree is always parentless.
func IndexByDepth(nodes []*file.Node) [][]*file.Node {
	var levels [][]*file.Node

	var walk func(nodes []*file.Node, depth int)
	walk = func(nodes []*file.Node, depth int) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if depth == 0 {
				n.Parent = nil
			}
			if len(levels) <= depth {
				levels = append(levels, nil)
			}
			levels[depth] = append(levels[depth], n)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)

	return levels
}
