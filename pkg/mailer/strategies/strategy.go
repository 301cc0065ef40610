package strategies

import (
	"context"
	"fmt"

	"github.com/LDK/javascriv-api/pkg/mailer/providers"
	"github.com/LDK/javascriv-api/pkg/mailer/registry"
)

// Strategy picks which of the configured providers carries a message.
type Strategy interface {
	Deliver(ctx context.Context, msg *providers.Message, list []providers.EmailProvider) (*providers.Receipt, error)
}

// New resolves a strategy by its configured name. An empty name means single.
func New(name string, limits map[string]int) (Strategy, error) {
	switch name {
	case "", registry.StrategySingle:
		return &Single{}, nil
	case registry.StrategyFailover:
		return &Failover{}, nil
	case registry.StrategyPriority:
		return NewPriority(limits), nil
	case registry.StrategyRoundRobin:
		return &RoundRobin{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", registry.ErrUnknownStrategy, name)
	}
}

func noProviders() (*providers.Receipt, error) {
	return &providers.Receipt{
		Success:  false,
		Error:    registry.ErrNoProvidersConfigured.Error(),
		Provider: registry.ProviderLabelNone,
	}, registry.ErrNoProvidersConfigured
}

// failureText extracts the most specific reason a provider attempt failed.
func failureText(receipt *providers.Receipt, err error) string {
	switch {
	case receipt != nil && receipt.Error != "":
		return receipt.Error
	case err != nil:
		return err.Error()
	default:
		return registry.StrategySendFailedText
	}
}

func succeeded(receipt *providers.Receipt) bool {
	return receipt != nil && receipt.Success
}
