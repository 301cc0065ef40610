package file

import (
	"time"
)

type Type string

const (
	TypeFolder Type = "folder"
	TypeFile   Type = "file"
)

type SubType string

const (
	SubTypeDocument SubType = "document"
	SubTypeImage    SubType = "image"
	SubTypeOther    SubType = "other"
)

// File is the persisted, flat form of a project node.
type File struct {
	ID           int64      `json:"id"`
	ProjectID    int64      `json:"project"`
	ParentID     *int64     `json:"parent"`
	Type         Type       `json:"type"`
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	SubType      *SubType   `json:"subType"`
	Content      *string    `json:"content"`
	Attachment   *string    `json:"attachment"`
	CreatorID    *int64     `json:"creator"`
	LastEditorID *int64     `json:"lastEditor"`
	EditingID    *int64     `json:"editing"`
	LastActive   *time.Time `json:"lastActive"`
	LastEdited   time.Time  `json:"lastEdited"`
}

// Node is the nested form exchanged with clients. Children exist only here.
type Node struct {
	ID         *int64     `json:"id,omitempty"`
	Type       Type       `json:"type"`
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	SubType    *SubType   `json:"subType,omitempty"`
	Content    *string    `json:"content,omitempty"`
	Attachment *string    `json:"attachment,omitempty"`
	Parent     *Ref       `json:"parent,omitempty"`
	Creator    *Ref       `json:"creator,omitempty"`
	LastEditor *Ref       `json:"lastEditor,omitempty"`
	Editing    *Ref       `json:"editing,omitempty"`
	LastActive *time.Time `json:"lastActive,omitempty"`
	LastEdited *time.Time `json:"lastEdited,omitempty"`
	Children   []*Node    `json:"children,omitempty"`
}

// PersistedID returns the node's storage id. Absent, null and non-positive ids
// all mean the node has not been saved yet.
func (n *Node) PersistedID() (int64, bool) {
	if n.ID == nil || *n.ID <= 0 {
		return 0, false
	}
	return *n.ID, true
}

// Node converts a stored row into a childless nested node.
func (f *File) Node() *Node {
	id := f.ID
	lastEdited := f.LastEdited

	return &Node{
		ID:         &id,
		Type:       f.Type,
		Name:       f.Name,
		Path:       f.Path,
		SubType:    f.SubType,
		Content:    f.Content,
		Attachment: f.Attachment,
		Parent:     RefTo(f.ParentID),
		Creator:    RefTo(f.CreatorID),
		LastEditor: RefTo(f.LastEditorID),
		Editing:    RefTo(f.EditingID),
		LastActive: f.LastActive,
		LastEdited: &lastEdited,
	}
}

// IsImage reports whether the node can hold an uploaded attachment.
func (f *File) IsImage() bool {
	return f.Type == TypeFile && f.SubType != nil && *f.SubType == SubTypeImage
}

func (t Type) Valid() bool {
	return t == TypeFolder || t == TypeFile
}

func (s SubType) Valid() bool {
	switch s {
	case SubTypeDocument, SubTypeImage, SubTypeOther:
		return true
	default:
		return false
	}
}
