package filetree

import (
	"context"
	"time"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/repository"
)

// FileCreator inserts a single node and assigns its id.
type FileCreator interface {
	CreateFile(ctx context.Context, tx repository.Tx, f *file.File) error
}

// Creator persists brand-new subtrees, parents before children.
type Creator struct {
	files FileCreator
	now   func() time.Time
}

func NewCreator(files FileCreator) *Creator {
	return &Creator{files: files, now: time.Now}
}

// SaveTree inserts node under parentID and then every descendant, returning
// the childless stored form of node. A node without a creator is credited
// to the acting user.
func (c *Creator) SaveTree(ctx context.Context, tx repository.Tx, node *file.Node, parentID *int64, projectID, actorID int64) (*file.File, error) {
	return c.save(ctx, tx, node, parentID, projectID, actorID, false)
}

// DuplicateTree is SaveTree for copies: submitted ids and parents are ignored,
// every node is owned by the acting user and attachments are not carried over.
func (c *Creator) DuplicateTree(ctx context.Context, tx repository.Tx, node *file.Node, parentID *int64, projectID, actorID int64) (*file.File, error) {
	return c.save(ctx, tx, node, parentID, projectID, actorID, true)
}

func (c *Creator) save(ctx context.Context, tx repository.Tx, node *file.Node, parentID *int64, projectID, actorID int64, duplicate bool) (*file.File, error) {
	f := toFile(node, projectID)
	f.ID = 0
	f.ParentID = parentID
	f.LastEditorID = &actorID
	f.LastEdited = c.now()
	f.EditingID = nil
	f.LastActive = nil
	if duplicate || f.CreatorID == nil {
		f.CreatorID = &actorID
	}
	// Stored objects live under the source project's prefix and go with it.
	if duplicate {
		f.Attachment = nil
	}

	if err := c.files.CreateFile(ctx, tx, &f); err != nil {
		return nil, errFailedCreateNode(f.Path, err)
	}

	for _, child := range node.Children {
		if child == nil {
			continue
		}
		id := f.ID
		if _, err := c.save(ctx, tx, child, &id, projectID, actorID, duplicate); err != nil {
			return nil, err
		}
	}

	return &f, nil
}
