package mailer

import (
	"context"

	"github.com/LDK/javascriv-api/pkg/mailer/providers"
	"github.com/LDK/javascriv-api/pkg/mailer/registry"
	"github.com/LDK/javascriv-api/pkg/mailer/strategies"
	"github.com/LDK/javascriv-api/pkg/mailer/templates"
)

type EmailService struct {
	providers   []providers.EmailProvider
	strategy    strategies.Strategy
	defaultFrom string
}

type Config struct {
	Providers   []providers.EmailProvider
	Strategy    strategies.Strategy
	DefaultFrom string
}

func NewEmailService(cfg Config) (*EmailService, error) {
	if len(cfg.Providers) == 0 {
		return nil, registry.ErrAtLeastOneProviderRequired
	}
	for _, p := range cfg.Providers {
		if p == nil {
			return nil, registry.ErrProviderCannotBeNil
		}
	}
	if cfg.DefaultFrom != "" && ValidateEmail(cfg.DefaultFrom) != nil {
		return nil, registry.ErrInvalidDefaultFromEmail
	}

	strategy := cfg.Strategy
	if strategy == nil {
		strategy = &strategies.Single{}
	}

	return &EmailService{
		providers:   append([]providers.EmailProvider(nil), cfg.Providers...),
		strategy:    strategy,
		defaultFrom: cfg.DefaultFrom,
	}, nil
}

func (s *EmailService) Send(ctx context.Context, msg *providers.Message) (*providers.Receipt, error) {
	if msg == nil {
		return &providers.Receipt{Error: registry.ErrEmailDataRequired.Error(), Provider: registry.ProviderLabelValidation}, registry.ErrEmailDataRequired
	}

	out := msg.Clone()
	if out.From == "" {
		out.From = s.defaultFrom
	}
	if err := ValidateMessage(out); err != nil {
		return &providers.Receipt{Error: err.Error(), Provider: registry.ProviderLabelValidation}, err
	}

	return s.strategy.Deliver(ctx, out, s.providers)
}

// SendTemplate renders tmpl with data and sends the result to the recipients
// in msg. A subject already set on msg wins over the template's.
func SendTemplate[T any](ctx context.Context, s *EmailService, tmpl *templates.Template[T], data T, msg *providers.Message) (*providers.Receipt, error) {
	if s == nil {
		return &providers.Receipt{Error: registry.ErrEmailServiceRequired.Error(), Provider: registry.ProviderLabelTemplate}, registry.ErrEmailServiceRequired
	}
	if tmpl == nil {
		return &providers.Receipt{Error: registry.ErrEmailTemplateRequired.Error(), Provider: registry.ProviderLabelTemplate}, registry.ErrEmailTemplateRequired
	}

	rendered, err := tmpl.Render(data)
	if err != nil {
		return &providers.Receipt{Error: err.Error(), Provider: registry.ProviderLabelTemplate}, err
	}

	out := &providers.Message{}
	if msg != nil {
		out = msg.Clone()
	}
	if out.Subject == "" {
		out.Subject = rendered.Subject
	}
	out.HTML = rendered.HTML
	out.Text = rendered.Text

	return s.Send(ctx, out)
}

// Verify checks every provider's credentials against its API.
func (s *EmailService) Verify(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(s.providers))
	for _, p := range s.providers {
		ok, _ := p.Verify(ctx)
		results[p.Name()] = ok
	}
	return results
}

// ProviderNames lists the configured providers in delivery order.
func (s *EmailService) ProviderNames() []string {
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}
	return names
}
