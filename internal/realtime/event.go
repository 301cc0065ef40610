package realtime

import (
	"encoding/json"
	"time"
)

const (
	EventProjectUpdated       = "project_updated"
	EventProjectDeleted       = "project_deleted"
	EventFileEditing          = "file_editing"
	EventCollaboratorsChanged = "collaborators_changed"
	EventPresence             = "presence"
)

// Event is the envelope written to every websocket subscriber of a project.
type Event struct {
	Type      string          `json:"type"`
	ProjectID int64           `json:"projectId"`
	ActorID   int64           `json:"actorId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	SentAt    time.Time       `json:"sentAt"`
}

// PresenceUser is one connected user in a presence event.
type PresenceUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type envelope struct {
	projectID int64
	data      []byte
}

type kick struct {
	projectID int64
	userID    int64
}
