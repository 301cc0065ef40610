package filetree

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/repository"
)

var errInjected = errors.New("injected failure")

// memStore mimics the files table: a missing parent is a foreign key
// violation and deleting a row nulls its children's parent.
type memStore struct {
	nextID         int64
	rows           map[int64]*file.File
	ops            []string
	projectUpdates int
	failOnPath     string
}

func newMemStore(rows ...*file.File) *memStore {
	s := &memStore{rows: make(map[int64]*file.File)}
	for _, r := range rows {
		cp := *r
		s.rows[r.ID] = &cp
		if r.ID > s.nextID {
			s.nextID = r.ID
		}
	}
	return s
}

func (s *memStore) CreateFile(_ context.Context, _ repository.Tx, f *file.File) error {
	if f.Path == s.failOnPath {
		return errInjected
	}
	if f.ParentID != nil && s.rows[*f.ParentID] == nil {
		return fmt.Errorf("parent %d does not exist", *f.ParentID)
	}
	s.nextID++
	f.ID = s.nextID
	cp := *f
	s.rows[f.ID] = &cp
	s.ops = append(s.ops, "create:"+f.Path)
	return nil
}

func (s *memStore) UpdateFile(_ context.Context, _ repository.Tx, f *file.File) error {
	if s.rows[f.ID] == nil {
		return fmt.Errorf("row %d does not exist", f.ID)
	}
	if f.ParentID != nil && s.rows[*f.ParentID] == nil {
		return fmt.Errorf("parent %d does not exist", *f.ParentID)
	}
	cp := *f
	s.rows[f.ID] = &cp
	s.ops = append(s.ops, fmt.Sprintf("update:%d", f.ID))
	return nil
}

func (s *memStore) DeleteFile(_ context.Context, _ repository.Tx, id int64) error {
	if s.rows[id] == nil {
		return fmt.Errorf("row %d does not exist", id)
	}
	delete(s.rows, id)
	for _, r := range s.rows {
		if r.ParentID != nil && *r.ParentID == id {
			r.ParentID = nil
		}
	}
	s.ops = append(s.ops, fmt.Sprintf("delete:%d", id))
	return nil
}

func (s *memStore) Update(_ context.Context, _ repository.Tx, _ *project.Project) error {
	s.projectUpdates++
	return nil
}

func (s *memStore) list() []*file.File {
	out := make([]*file.File, 0, len(s.rows))
	for id := int64(1); id <= s.nextID; id++ {
		if r, ok := s.rows[id]; ok {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

func folder(path string, children ...*file.Node) *file.Node {
	return &file.Node{Type: file.TypeFolder, Name: baseName(path), Path: path, Children: children}
}

func doc(path, content string) *file.Node {
	return &file.Node{
		Type:    file.TypeFile,
		Name:    baseName(path),
		Path:    path,
		SubType: ptr(file.SubTypeDocument),
		Content: ptr(content),
	}
}

func withID(id int64, n *file.Node) *file.Node {
	n.ID = ptr(id)
	return n
}

func row(id int64, p string, parent *int64) *file.File {
	return &file.File{
		ID:        id,
		ProjectID: 1,
		ParentID:  parent,
		Type:      file.TypeFolder,
		Name:      baseName(p),
		Path:      p,
	}
}

func baseName(p string) string {
	return path.Base(p)
}

// rowByPath returns the last stored row with the given path.
func (s *memStore) rowByPath(p string) *file.File {
	var found *file.File
	for _, r := range s.list() {
		if r.Path == p {
			found = r
		}
	}
	return found
}
