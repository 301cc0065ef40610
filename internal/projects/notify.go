package projects

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/domain/user"
	"github.com/LDK/javascriv-api/pkg/mailer"
	"github.com/LDK/javascriv-api/pkg/mailer/providers"
	"github.com/LDK/javascriv-api/pkg/mailer/templates"
)

const (
	notifyTimeout   = 30 * time.Second
	projectURLFmt   = "%s/project/%d"
	notifyLogPrefix = "[notify]"
)

// MailNotifier emails users when they gain or lose access to a project.
// Mail is sent in the background; Wait blocks until pending sends finish.
type MailNotifier struct {
	mail    *mailer.EmailService
	appName string
	appURL  string
	wg      sync.WaitGroup
}

func NewMailNotifier(mail *mailer.EmailService, appName, appURL string) *MailNotifier {
	return &MailNotifier{mail: mail, appName: appName, appURL: appURL}
}

func (n *MailNotifier) CollaboratorAdded(p *project.Project, actor, target *user.User) {
	n.send(templates.CollaboratorAdded, p, actor, target)
}

func (n *MailNotifier) CollaboratorRemoved(p *project.Project, actor, target *user.User) {
	n.send(templates.CollaboratorRemoved, p, actor, target)
}

func (n *MailNotifier) Wait() {
	n.wg.Wait()
}

func (n *MailNotifier) send(tmpl *templates.Template[templates.CollaboratorContext], p *project.Project, actor, target *user.User) {
	if n.mail == nil || p == nil || actor == nil || target == nil || target.Email == "" {
		return
	}

	data := templates.CollaboratorContext{
		AppName:       n.appName,
		RecipientName: target.Username,
		ActorName:     actor.Username,
		ProjectTitle:  p.Title,
	}
	if n.appURL != "" {
		data.ProjectURL = fmt.Sprintf(projectURLFmt, n.appURL, p.ID)
	}
	msg := &providers.Message{To: []string{target.Email}}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if _, err := mailer.SendTemplate(ctx, n.mail, tmpl, data, msg); err != nil {
			log.Printf("%s failed to email user %d about project %d: %v", notifyLogPrefix, target.ID, p.ID, err)
		}
	}()
}
