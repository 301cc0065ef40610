package filetree

import (
	"context"
	"fmt"
	"time"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/repository"
)

// FileStore is the node persistence used by reconciliation.
type FileStore interface {
	CreateFile(ctx context.Context, tx repository.Tx, f *file.File) error
	UpdateFile(ctx context.Context, tx repository.Tx, f *file.File) error
	DeleteFile(ctx context.Context, tx repository.Tx, id int64) error
}

// ProjectStore persists the project row once its nodes are reconciled.
type ProjectStore interface {
	Update(ctx context.Context, tx repository.Tx, p *project.Project) error
}

// SyncInput is the client's full view of a project.
type SyncInput struct {
	Title        string
	Settings     project.Settings
	OpenFilePath string
	Files        []*file.Node
}

type SyncResult struct {
	Project *project.Project
	Files   []*file.File
	Created []int64
	Updated []int64
	Deleted []int64
}

// Changed reports whether any node was written.
func (r *SyncResult) Changed() bool {
	return len(r.Created)+len(r.Updated)+len(r.Deleted) > 0
}

type Reconciler struct {
	files    FileStore
	projects ProjectStore
	now      func() time.Time
}

func NewReconciler(files FileStore, projects ProjectStore) *Reconciler {
	return &Reconciler{
		files:    files,
		projects: projects,
		now:      time.Now,
	}
}

// Reconcile brings the stored nodes of p in line with the submitted tree and
// saves the project. Nodes missing from the tree are deleted, changed nodes
// are updated and new nodes are created, level by level so that parents
// always exist before their children. It must run inside tx; any error
// leaves partial writes that the caller is expected to roll back.
func (r *Reconciler) Reconcile(ctx context.Context, tx repository.Tx, p *project.Project, existing []*file.File, in SyncInput, actorID int64) (*SyncResult, error) {
	levels := IndexByDepth(in.Files)
	idx := Flatten(p.ID, in.Files)
	now := r.now()

	result := &SyncResult{Project: p}

	existingByID := make(map[int64]*file.File, len(existing))
	for _, f := range existing {
		existingByID[f.ID] = f
	}

	deleted := make(map[int64]bool)
	for _, f := range existing {
		if idx.Has(Persisted(f.ID)) {
			continue
		}
		if err := r.files.DeleteFile(ctx, tx, f.ID); err != nil {
			return nil, errFailedDeleteNode(f.ID, err)
		}
		deleted[f.ID] = true
		result.Deleted = append(result.Deleted, f.ID)
	}

	// Survivors of a deleted parent lose the link, as the storage layer does.
	for _, f := range existing {
		if f.ParentID != nil && deleted[*f.ParentID] {
			f.ParentID = nil
		}
	}

	// Ids this project does not own are created afresh.
	for _, fn := range idx.Nodes() {
		if id, ok := fn.Key.ID(); ok && existingByID[id] == nil {
			idx.Forget(fn)
		}
	}

	for _, level := range levels {
		for _, n := range level {
			fn := idx.Lookup(n)
			if fn == nil {
				continue
			}

			if id, ok := fn.Key.ID(); ok {
				if current, found := existingByID[id]; found {
					changed, err := r.update(ctx, tx, idx, fn, current, p.ID, actorID, now)
					if err != nil {
						return nil, err
					}
					if changed {
						result.Updated = append(result.Updated, current.ID)
					}
					continue
				}
			}

			if err := r.create(ctx, tx, idx, fn, p.ID, actorID, now); err != nil {
				return nil, err
			}
			result.Created = append(result.Created, fn.File.ID)
		}
	}

	projectChanged := p.Title != in.Title || p.OpenFilePath != in.OpenFilePath
	p.Title = in.Title
	p.OpenFilePath = in.OpenFilePath
	if equal, ok := DeepEqual(p.Settings, in.Settings); !ok || !equal {
		p.Settings = in.Settings
		projectChanged = true
	}
	if projectChanged || result.Changed() {
		p.LastEdited = now
		p.LastEditorID = &actorID
	}

	if err := r.projects.Update(ctx, tx, p); err != nil {
		return nil, err
	}

	for _, fn := range idx.Nodes() {
		if fn.stored != nil {
			result.Files = append(result.Files, fn.stored)
		}
	}

	return result, nil
}

func (r *Reconciler) update(ctx context.Context, tx repository.Tx, idx *Index, fn *FlatNode, current *file.File, projectID, actorID int64, now time.Time) (bool, error) {
	fn.stored = current

	parentID := resolveParent(idx, fn)
	next := &fn.File

	if !nodeChanged(current, next, parentID) {
		return false, nil
	}

	current.Name = next.Name
	current.Path = next.Path
	if next.Content != nil {
		current.Content = next.Content
	}
	if next.SubType != nil {
		current.SubType = next.SubType
	}
	if next.Attachment != nil {
		current.Attachment = next.Attachment
	}
	current.ParentID = parentID
	current.ProjectID = projectID
	current.LastEdited = now
	current.LastEditorID = &actorID

	if err := r.files.UpdateFile(ctx, tx, current); err != nil {
		return false, errFailedUpdateNode(current.Path, err)
	}

	return true, nil
}

func (r *Reconciler) create(ctx context.Context, tx repository.Tx, idx *Index, fn *FlatNode, projectID, actorID int64, now time.Time) error {
	f := fn.File
	f.ID = 0
	f.ProjectID = projectID
	f.ParentID = resolveParent(idx, fn)
	if f.CreatorID == nil {
		f.CreatorID = &actorID
	}
	f.LastEditorID = &actorID
	f.LastEdited = now
	f.EditingID = nil
	f.LastActive = nil

	if err := r.files.CreateFile(ctx, tx, &f); err != nil {
		return errFailedCreateNode(f.Path, err)
	}

	fn.File.ID = f.ID
	fn.stored = &f
	idx.Rekey(fn, Persisted(f.ID))

	return nil
}

// resolveParent returns the node's parent id, falling back to the node whose
// path is the directory of this node's path.
func resolveParent(idx *Index, fn *FlatNode) *int64 {
	if id := fn.ParentID(); id != nil {
		return id
	}

	dir := parentPath(fn.File.Path)
	if dir == "" {
		return nil
	}

	candidate := idx.ByPath(dir)
	if candidate == nil || candidate == fn || candidate.File.ID == 0 {
		return nil
	}

	id := candidate.File.ID
	return &id
}

func nodeChanged(current, next *file.File, parentID *int64) bool {
	if current.Name != next.Name || current.Path != next.Path {
		return true
	}
	if !sameID(current.ParentID, parentID) {
		return true
	}
	if next.Content != nil && !sameString(current.Content, next.Content) {
		return true
	}
	if next.SubType != nil && (current.SubType == nil || *current.SubType != *next.SubType) {
		return true
	}
	if next.Attachment != nil && !sameString(current.Attachment, next.Attachment) {
		return true
	}
	return false
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

const (
	errFailedDeleteNodeFmt = "failed to delete node %d: %w"
	errFailedUpdateNodeFmt = "failed to update node %s: %w"
	errFailedCreateNodeFmt = "failed to create node %s: %w"
)

var (
	errFailedDeleteNode = func(id int64, err error) error { return fmt.Errorf(errFailedDeleteNodeFmt, id, err) }
	errFailedUpdateNode = func(path string, err error) error { return fmt.Errorf(errFailedUpdateNodeFmt, path, err) }
	errFailedCreateNode = func(path string, err error) error { return fmt.Errorf(errFailedCreateNodeFmt, path, err) }
)
