package projects

import (
	"context"
	"time"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/domain/user"
	"github.com/LDK/javascriv-api/internal/filetree"
	"github.com/LDK/javascriv-api/internal/repository"
)

// Publisher pushes events to the project's live subscribers.
type Publisher interface {
	Publish(projectID, actorID int64, eventType string, payload any)
	Disconnect(projectID, userID int64)
}

// Notifier tells users about changes to their access. Implementations must
// not block the caller.
type Notifier interface {
	CollaboratorAdded(p *project.Project, actor, target *user.User)
	CollaboratorRemoved(p *project.Project, actor, target *user.User)
}

// AttachmentStore holds uploaded images outside the database.
type AttachmentStore interface {
	AttachmentKey(projectID, fileID int64, nonce string) string
	ProjectPrefix(projectID int64) string
	PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error)
	PresignDownload(ctx context.Context, key string) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type Dependencies struct {
	Tx              repository.TxManager
	Users           repository.UserRepository
	Projects        repository.ProjectRepository
	Files           repository.FileRepository
	Attachments     AttachmentStore
	Notifier        Notifier
	Publisher       Publisher
	PresenceTimeout time.Duration
}

type Service struct {
	tx          repository.TxManager
	users       repository.UserRepository
	projects    repository.ProjectRepository
	files       repository.FileRepository
	reconciler  *filetree.Reconciler
	creator     *filetree.Creator
	attachments AttachmentStore
	notifier    Notifier
	publisher   Publisher
	presenceTTL time.Duration
	now         func() time.Time
}

// New wires the service. Attachments, Notifier and Publisher are optional.
func New(deps Dependencies) *Service {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = nopPublisher{}
	}
	ttl := deps.PresenceTimeout
	if ttl <= 0 {
		ttl = defaultPresenceTimeout
	}

	return &Service{
		tx:          deps.Tx,
		users:       deps.Users,
		projects:    deps.Projects,
		files:       deps.Files,
		reconciler:  filetree.NewReconciler(deps.Files, deps.Projects),
		creator:     filetree.NewCreator(deps.Files),
		attachments: deps.Attachments,
		notifier:    notifier,
		publisher:   publisher,
		presenceTTL: ttl,
		now:         time.Now,
	}
}

// View is a project together with its file tree, the shape every project
// endpoint responds with.
type View struct {
	*project.Project
	Files []*file.Node `json:"files"`
}

// Listings groups the projects a user can open.
type Listings struct {
	Created       []project.Listing `json:"createdProjects"`
	Collaborating []project.Listing `json:"collaboratorProjects"`
}

type nopNotifier struct{}

func (nopNotifier) CollaboratorAdded(*project.Project, *user.User, *user.User)   {}
func (nopNotifier) CollaboratorRemoved(*project.Project, *user.User, *user.User) {}

type nopPublisher struct{}

func (nopPublisher) Publish(int64, int64, string, any) {}
func (nopPublisher) Disconnect(int64, int64)           {}
