package filetree

import (
	"strings"

	"github.com/LDK/javascriv-api/internal/domain/file"
)

// FlatNode is a node stripped of its children. Parent links the structural
// parent from the nested input, which may not have a storage id yet.
type FlatNode struct {
	Key    NodeKey
	File   file.File
	Parent *FlatNode

	source *file.Node
	stored *file.File
}

// ParentID resolves the node's parent to a storage id. The structural parent
// wins over any parent id submitted with the node.
func (n *FlatNode) ParentID() *int64 {
	if n.Parent != nil {
		if n.Parent.File.ID == 0 {
			return nil
		}
		id := n.Parent.File.ID
		return &id
	}
	return n.File.ParentID
}

// Index is the keyed result of Flatten. Iteration follows input order.
type Index struct {
	order  []*FlatNode
	byKey  map[NodeKey]*FlatNode
	byNode map[*file.Node]*FlatNode
	byPath map[string]*FlatNode
	seq    int
}

func newIndex() *Index {
	return &Index{
		byKey:  make(map[NodeKey]*FlatNode),
		byNode: make(map[*file.Node]*FlatNode),
		byPath: make(map[string]*FlatNode),
	}
}

// Flatten walks nested nodes depth-first and returns every node keyed by its
// storage id, or by a pending key when it has none.
func Flatten(projectID int64, nodes []*file.Node) *Index {
	idx := newIndex()
	idx.seq = flatten(idx, projectID, nodes, 0, nil)

	for _, n := range idx.Nodes() {
		if _, seen := idx.byPath[n.File.Path]; !seen {
			idx.byPath[n.File.Path] = n
		}
	}

	return idx
}

func flatten(idx *Index, projectID int64, nodes []*file.Node, counter int, parent *FlatNode) int {
	for _, n := range nodes {
		if n == nil {
			continue
		}

		counter++
		fn := &FlatNode{
			Key:    Pending(counter),
			File:   toFile(n, projectID),
			source: n,
		}
		if id, ok := n.PersistedID(); ok {
			fn.Key = Persisted(id)
		}
		if parent != nil {
			fn.Parent = parent
			fn.File.ParentID = nil
		}

		idx.put(fn)

		if len(n.Children) > 0 {
			counter = flatten(idx, projectID, n.Children, counter, fn)
		}
	}

	return counter
}

func toFile(n *file.Node, projectID int64) file.File {
	f := file.File{
		ProjectID:    projectID,
		ParentID:     n.Parent.Ptr(),
		Type:         n.Type,
		Name:         n.Name,
		Path:         n.Path,
		SubType:      n.SubType,
		Content:      n.Content,
		Attachment:   n.Attachment,
		CreatorID:    n.Creator.Ptr(),
		LastEditorID: n.LastEditor.Ptr(),
		EditingID:    n.Editing.Ptr(),
		LastActive:   n.LastActive,
	}
	if id, ok := n.PersistedID(); ok {
		f.ID = id
	}
	if n.LastEdited != nil {
		f.LastEdited = *n.LastEdited
	}
	return f
}

func (idx *Index) put(n *FlatNode) {
	idx.order = append(idx.order, n)
	idx.byKey[n.Key] = n
	idx.byNode[n.source] = n
}

func (idx *Index) live(n *FlatNode) bool {
	return n != nil && idx.byKey[n.Key] == n
}

func (idx *Index) Get(key NodeKey) *FlatNode {
	return idx.byKey[key]
}

func (idx *Index) Has(key NodeKey) bool {
	_, ok := idx.byKey[key]
	return ok
}

func (idx *Index) Len() int {
	return len(idx.byKey)
}

// Lookup returns the flat node produced from a nested input node. Nodes whose
// key was taken over by a later node with the same id are not returned.
func (idx *Index) Lookup(n *file.Node) *FlatNode {
	fn := idx.byNode[n]
	if !idx.live(fn) {
		return nil
	}
	return fn
}

// ByPath returns the first node in input order with the given path.
func (idx *Index) ByPath(path string) *FlatNode {
	fn := idx.byPath[path]
	if !idx.live(fn) {
		return nil
	}
	return fn
}

// Rekey moves a node to a new key, typically Persisted(id) once it is saved.
func (idx *Index) Rekey(n *FlatNode, key NodeKey) {
	if idx.byKey[n.Key] == n {
		delete(idx.byKey, n.Key)
	}
	n.Key = key
	idx.byKey[key] = n
}

// Forget drops the node's storage id and moves it to a fresh pending key, so
// an id assigned to another node later cannot shadow it.
func (idx *Index) Forget(n *FlatNode) {
	idx.seq++
	n.File.ID = 0
	idx.Rekey(n, Pending(idx.seq))
}

func (idx *Index) Keys() []NodeKey {
	keys := make([]NodeKey, 0, len(idx.byKey))
	for _, n := range idx.Nodes() {
		keys = append(keys, n.Key)
	}
	return keys
}

// Nodes returns the live flat nodes in input order.
func (idx *Index) Nodes() []*FlatNode {
	nodes := make([]*FlatNode, 0, len(idx.byKey))
	for _, n := range idx.order {
		if idx.live(n) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// parentPath strips the last slash-delimited segment from path.
func parentPath(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return ""
	}
	return path[:i]
}
