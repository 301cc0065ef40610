package handler

import (
	"context"

	"github.com/LDK/javascriv-api/internal/audit"
	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/domain/user"
	"github.com/LDK/javascriv-api/internal/filetree"
	"github.com/LDK/javascriv-api/internal/projects"
	"github.com/LDK/javascriv-api/internal/repository"

	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces defined by handlers
// Each interface contains only the methods needed by the specific handler

// AuthHandler and UserHandler interfaces
type UserRepository interface {
	Create(ctx context.Context, tx repository.Tx, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, tx repository.Tx, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, tx repository.Tx, username string) (*user.User, error)
	GetByEmail(ctx context.Context, tx repository.Tx, email string) (*user.User, error)
	UpdateOptions(ctx context.Context, tx repository.Tx, id int64, input user.UpdateOptionsInput) (*user.User, error)
}

type TokenGenerator interface {
	Generate(userID int64, username string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
	BurnCompare(password string)
}

type ProjectLister interface {
	ListForUser(ctx context.Context, userID int64) (*projects.Listings, error)
}

// ProjectHandler interfaces
type ProjectService interface {
	ProjectLister
	Create(ctx context.Context, actorID int64, in projects.CreateInput) (*projects.View, error)
	Get(ctx context.Context, projectID, actorID int64) (*projects.View, error)
	Sync(ctx context.Context, projectID, actorID int64, in filetree.SyncInput) (*projects.View, error)
	Delete(ctx context.Context, projectID, actorID int64) error
	Duplicate(ctx context.Context, projectID, actorID int64, title string) (*projects.View, error)
	AddCollaborator(ctx context.Context, projectID, actorID int64, identifier string) (*project.Project, error)
	RemoveCollaborator(ctx context.Context, projectID, actorID, collaboratorID int64) (*project.Project, error)
	Authorize(ctx context.Context, projectID, actorID int64) (*project.Project, error)
}

type UserLookup interface {
	GetByUsername(ctx context.Context, tx repository.Tx, username string) (*user.User, error)
}

// FileHandler interfaces
type FileService interface {
	ClaimEditing(ctx context.Context, fileID, actorID int64) (*file.File, error)
	ReleaseEditing(ctx context.Context, fileID, actorID int64) (*file.File, error)
	AttachmentUploadURL(ctx context.Context, fileID, actorID int64, contentType string) (*projects.PresignedURL, error)
	AttachmentDownloadURL(ctx context.Context, fileID, actorID int64) (*projects.PresignedURL, error)
}

// ProjectAuthorizer is used by handlers that only need an access check.
type ProjectAuthorizer interface {
	Authorize(ctx context.Context, projectID, actorID int64) (*project.Project, error)
}

// Activity interfaces (used by multiple handlers)
type ActivityRecorder interface {
	Record(c echo.Context, entry audit.Entry)
}

type ActivityReader interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]*audit.Event, error)
}

type nopRecorder struct{}

func (nopRecorder) Record(echo.Context, audit.Entry) {}

func recorderOrNop(r ActivityRecorder) ActivityRecorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
