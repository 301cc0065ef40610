package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/LDK/javascriv-api/pkg/mailer/providers"
	"github.com/LDK/javascriv-api/pkg/mailer/registry"
)

// Failover tries providers in order until one accepts the message.
type Failover struct{}

func (s *Failover) Deliver(ctx context.Context, msg *providers.Message, list []providers.EmailProvider) (*providers.Receipt, error) {
	if len(list) == 0 {
		return noProviders()
	}

	var reasons []string
	for _, p := range list {
		if p == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return &providers.Receipt{Error: err.Error(), Provider: registry.ProviderLabelFailover}, err
		}

		receipt, err := p.Send(ctx, msg)
		if succeeded(receipt) {
			return receipt, nil
		}
		reasons = append(reasons, fmt.Sprintf(registry.MsgProviderErrorFmt, p.Name(), failureText(receipt, err)))
	}

	return &providers.Receipt{
		Success:  false,
		Error:    fmt.Sprintf(registry.MsgProviderErrorFmt, registry.ErrAllProvidersFailed, strings.Join(reasons, registry.MessageSeparator)),
		Provider: registry.ProviderLabelFailover,
	}, registry.ErrAllProvidersFailed
}
