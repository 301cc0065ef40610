package repository

import (
	"context"
	"time"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// Tx is the transaction handle threaded through every repository call.
// A nil Tx runs the statement directly on the connection pool.
type Tx = pgx.Tx

// TxManager runs fn inside a single transaction, committing when fn returns
// nil and rolling back otherwise.
type TxManager interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, tx Tx, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, tx Tx, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, tx Tx, username string) (*user.User, error)
	GetByEmail(ctx context.Context, tx Tx, email string) (*user.User, error)
	UpdateOptions(ctx context.Context, tx Tx, id int64, input user.UpdateOptionsInput) (*user.User, error)
}

// ProjectRepository defines project data access operations
type ProjectRepository interface {
	Create(ctx context.Context, tx Tx, input project.CreateProjectInput) (*project.Project, error)
	GetByID(ctx context.Context, tx Tx, id int64) (*project.Project, error)
	ListCreatedBy(ctx context.Context, tx Tx, userID int64) ([]project.Listing, error)
	ListCollaborating(ctx context.Context, tx Tx, userID int64) ([]project.Listing, error)
	Update(ctx context.Context, tx Tx, p *project.Project) error
	Delete(ctx context.Context, tx Tx, id int64) error

	AddCollaborator(ctx context.Context, tx Tx, projectID, userID int64) error
	RemoveCollaborator(ctx context.Context, tx Tx, projectID, userID int64) error
}

// EditingGuard admits a presence write when the file is unclaimed, claimed by
// Holder, or its claim was last active before StaleBefore.
type EditingGuard struct {
	Holder      int64
	StaleBefore time.Time
}

// Allows reports whether the guard admits a write over the given claim.
func (g EditingGuard) Allows(editingID *int64, lastActive *time.Time) bool {
	return editingID == nil || *editingID == g.Holder || lastActive == nil || lastActive.Before(g.StaleBefore)
}

// FileRepository defines project node data access operations
type FileRepository interface {
	CreateFile(ctx context.Context, tx Tx, f *file.File) error
	GetByID(ctx context.Context, tx Tx, id int64) (*file.File, error)
	ListByProject(ctx context.Context, tx Tx, projectID int64) ([]*file.File, error)
	UpdateFile(ctx context.Context, tx Tx, f *file.File) error
	DeleteFile(ctx context.Context, tx Tx, id int64) error

	// SetEditing writes the presence fields only while guard allows it and
	// returns a Conflict error otherwise.
	SetEditing(ctx context.Context, tx Tx, id int64, editingID *int64, lastActive *time.Time, guard EditingGuard) error
	SetAttachment(ctx context.Context, tx Tx, id int64, key string) error
}
