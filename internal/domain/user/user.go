package user

import (
	"encoding/json"
	"time"
)

type User struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"-"`
	PublishOptions json.RawMessage `json:"publishOptions,omitempty"`
	FontOptions    json.RawMessage `json:"fontOptions,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Summary is the public projection of a user embedded in projects.
type Summary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username}
}

type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
}

// UpdateOptionsInput carries editor preferences. A nil field is left untouched.
type UpdateOptionsInput struct {
	PublishOptions json.RawMessage
	FontOptions    json.RawMessage
}
