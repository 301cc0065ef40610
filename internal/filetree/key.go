package filetree

import "strconv"

// NodeKey identifies a node in a flattened tree. Saved nodes are keyed by
// their storage id; unsaved ones by a local index unique within one flatten.
type NodeKey struct {
	value   int64
	pending bool
}

func Persisted(id int64) NodeKey {
	return NodeKey{value: id}
}

func Pending(index int) NodeKey {
	return NodeKey{value: int64(index), pending: true}
}

func (k NodeKey) IsPending() bool {
	return k.pending
}

// ID returns the storage id for persisted keys.
func (k NodeKey) ID() (int64, bool) {
	if k.pending {
		return 0, false
	}
	return k.value, true
}

func (k NodeKey) String() string {
	if k.pending {
		return "pending:" + strconv.FormatInt(k.value, 10)
	}
	return strconv.FormatInt(k.value, 10)
}
