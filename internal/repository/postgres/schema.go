package postgres

import _ "embed"

// Schema creates every table the service uses. It is idempotent.
//
//go:embed schema.sql
var Schema string

// Tables lists the tables created by Schema.
var Tables = []string{"users", "projects", "project_collaborators", "files", "activity_events"}
