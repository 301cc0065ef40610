package strategies

import (
	"context"

	"github.com/LDK/javascriv-api/pkg/mailer/providers"
)

// Single always uses the first provider.
type Single struct{}

func (s *Single) Deliver(ctx context.Context, msg *providers.Message, list []providers.EmailProvider) (*providers.Receipt, error) {
	if len(list) == 0 || list[0] == nil {
		return noProviders()
	}
	return list[0].Send(ctx, msg)
}
