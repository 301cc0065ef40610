package templates

import (
	"net/url"
	"strings"

	"github.com/LDK/javascriv-api/pkg/mailer/registry"
)

// CollaboratorContext describes a change to a project's collaborator list.
type CollaboratorContext struct {
	AppName       string
	RecipientName string
	ActorName     string
	ProjectTitle  string
	ProjectURL    string
}

func validateCollaborator(c CollaboratorContext) error {
	if strings.TrimSpace(c.RecipientName) == "" {
		return registry.ErrRecipientRequired
	}
	if strings.TrimSpace(c.ProjectTitle) == "" {
		return registry.ErrProjectTitleRequired
	}
	if c.ProjectURL != "" {
		u, err := url.Parse(c.ProjectURL)
		if err != nil || u.Host == "" || (u.Scheme != registry.URLSchemeHTTP && u.Scheme != registry.URLSchemeHTTPS) {
			return registry.ErrProjectURLInvalid
		}
	}
	return nil
}

const collaboratorAddedHTML = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <p>Hi {{.RecipientName}},</p>
  <p>{{.ActorName}} added you as a collaborator on <strong>{{.ProjectTitle}}</strong> in {{.AppName}}.</p>
  {{if .ProjectURL}}<p><a href="{{.ProjectURL}}">Open the project</a></p>{{end}}
</body>
</html>`

const collaboratorAddedText = `Hi {{.RecipientName}},

{{.ActorName}} added you as a collaborator on "{{.ProjectTitle}}" in {{.AppName}}.
{{if .ProjectURL}}
Open the project: {{.ProjectURL}}
{{end}}`

const collaboratorRemovedHTML = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <p>Hi {{.RecipientName}},</p>
  <p>{{.ActorName}} removed you from <strong>{{.ProjectTitle}}</strong> in {{.AppName}}. You no longer have access to it.</p>
</body>
</html>`

const collaboratorRemovedText = `Hi {{.RecipientName}},

{{.ActorName}} removed you from "{{.ProjectTitle}}" in {{.AppName}}. You no longer have access to it.
`

var (
	CollaboratorAdded = Must(New(
		registry.TemplateNameCollaboratorAdded,
		`You were added to "{{.ProjectTitle}}"`,
		collaboratorAddedHTML,
		collaboratorAddedText,
		validateCollaborator,
	))

	CollaboratorRemoved = Must(New(
		registry.TemplateNameCollaboratorRemoved,
		`You were removed from "{{.ProjectTitle}}"`,
		collaboratorRemovedHTML,
		collaboratorRemovedText,
		validateCollaborator,
	))
)
