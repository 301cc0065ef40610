package filetree

import "github.com/LDK/javascriv-api/internal/domain/file"

// BuildTree nests flat rows under their parents. Rows are attached from a
// queue seeded with the roots, so input order does not matter. Rows whose
// parent is missing, and rows on a parent cycle, are dropped.
func BuildTree(files []*file.File) []*file.Node {
	nodes := make(map[int64]*file.Node, len(files))
	order := make([]int64, 0, len(files))
	for _, f := range files {
		if f == nil {
			continue
		}
		if _, dup := nodes[f.ID]; dup {
			continue
		}
		nodes[f.ID] = f.Node()
		order = append(order, f.ID)
	}

	roots := make([]*file.Node, 0)
	queue := make([]*file.Node, 0, len(order))
	children := make(map[int64][]int64)

	for _, id := range order {
		n := nodes[id]
		parentID, ok := n.Parent.Value()
		if !ok {
			n.Parent = nil
			roots = append(roots, n)
			queue = append(queue, n)
			continue
		}
		children[parentID] = append(children[parentID], id)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		id := *n.ID
		for _, childID := range children[id] {
			child := nodes[childID]
			child.Parent = nil
			n.Children = append(n.Children, child)
			queue = append(queue, child)
		}
		delete(children, id)
	}

	return roots
}
