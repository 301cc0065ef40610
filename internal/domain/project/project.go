package project

import (
	"time"

	"github.com/LDK/javascriv-api/internal/domain/user"
)

// Settings is the opaque editor configuration stored with a project.
type Settings map[string]any

type Project struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Settings      Settings       `json:"settings"`
	OpenFilePath  string         `json:"openFilePath"`
	Creator       user.Summary   `json:"creator"`
	Collaborators []user.Summary `json:"collaborators"`
	LastEdited    time.Time      `json:"lastEdited"`
	LastEditorID  *int64         `json:"lastEditor,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (p *Project) IsCreator(userID int64) bool {
	return p.Creator.ID == userID
}

func (p *Project) IsCollaborator(userID int64) bool {
	for _, c := range p.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}

// CanAccess reports whether the user may read or write the project.
func (p *Project) CanAccess(userID int64) bool {
	return p.IsCreator(userID) || p.IsCollaborator(userID)
}

// Listing is the compact form returned by project listings.
type Listing struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type CreateProjectInput struct {
	Title        string
	Settings     Settings
	OpenFilePath string
	CreatorID    int64
}
