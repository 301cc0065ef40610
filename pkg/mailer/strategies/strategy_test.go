package strategies

import (
	"context"
	"errors"
	"testing"

	"github.com/LDK/javascriv-api/pkg/mailer/providers"
	"github.com/LDK/javascriv-api/pkg/mailer/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	fail  bool
	calls int
}

func (f *fakeProvider) Send(_ context.Context, _ *providers.Message) (*providers.Receipt, error) {
	f.calls++
	if f.fail {
		return &providers.Receipt{Error: f.name + " down", Provider: f.name}, errors.New(f.name + " down")
	}
	return &providers.Receipt{Success: true, MessageID: f.name + "-id", Provider: f.name}, nil
}

func (f *fakeProvider) Verify(context.Context) (bool, error) { return !f.fail, nil }
func (f *fakeProvider) Name() string                        { return f.name }

var msg = &providers.Message{To: []string{"a@example.com"}, From: "b@example.com", Subject: "s", HTML: "<p>h</p>"}

func TestSingle_UsesFirstProviderOnly(t *testing.T) {
	a := &fakeProvider{name: "a", fail: true}
	b := &fakeProvider{name: "b"}

	receipt, err := (&Single{}).Deliver(context.Background(), msg, []providers.EmailProvider{a, b})

	require.Error(t, err)
	assert.False(t, receipt.Success)
	assert.Equal(t, 1, a.calls)
	assert.Zero(t, b.calls)
}

func TestSingle_NoProviders(t *testing.T) {
	_, err := (&Single{}).Deliver(context.Background(), msg, nil)
	assert.ErrorIs(t, err, registry.ErrNoProvidersConfigured)
}

func TestFailover_FallsThroughToHealthyProvider(t *testing.T) {
	a := &fakeProvider{name: "a", fail: true}
	b := &fakeProvider{name: "b"}

	receipt, err := (&Failover{}).Deliver(context.Background(), msg, []providers.EmailProvider{a, b})

	require.NoError(t, err)
	assert.Equal(t, "b", receipt.Provider)
	assert.Equal(t, 1, a.calls)
}

func TestFailover_AllFail(t *testing.T) {
	a := &fakeProvider{name: "a", fail: true}
	b := &fakeProvider{name: "b", fail: true}

	receipt, err := (&Failover{}).Deliver(context.Background(), msg, []providers.EmailProvider{a, b})

	assert.ErrorIs(t, err, registry.ErrAllProvidersFailed)
	assert.Contains(t, receipt.Error, "a: a down")
	assert.Contains(t, receipt.Error, "b: b down")
}

func TestPriority_RespectsLimits(t *testing.T) {
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b"}
	s := NewPriority(map[string]int{"a": 1})
	list := []providers.EmailProvider{a, b}

	first, err := s.Deliver(context.Background(), msg, list)
	require.NoError(t, err)
	second, err := s.Deliver(context.Background(), msg, list)
	require.NoError(t, err)

	assert.Equal(t, "a", first.Provider)
	assert.Equal(t, "b", second.Provider)
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, s.Usage())

	s.Reset()
	assert.Empty(t, s.Usage())
}

func TestPriority_FailureReleasesReservation(t *testing.T) {
	a := &fakeProvider{name: "a", fail: true}
	s := NewPriority(map[string]int{"a": 5})

	_, err := s.Deliver(context.Background(), msg, []providers.EmailProvider{a})

	assert.ErrorIs(t, err, registry.ErrAllProvidersExhausted)
	assert.Empty(t, s.Usage())
}

func TestRoundRobin_Rotates(t *testing.T) {
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b"}
	s := &RoundRobin{}
	list := []providers.EmailProvider{a, b}

	var got []string
	for i := 0; i < 4; i++ {
		receipt, err := s.Deliver(context.Background(), msg, list)
		require.NoError(t, err)
		got = append(got, receipt.Provider)
	}

	assert.Equal(t, []string{"a", "b", "a", "b"}, got)
}

func TestRoundRobin_SkipsFailingProvider(t *testing.T) {
	a := &fakeProvider{name: "a", fail: true}
	b := &fakeProvider{name: "b"}

	receipt, err := (&RoundRobin{}).Deliver(context.Background(), msg, []providers.EmailProvider{a, b})

	require.NoError(t, err)
	assert.Equal(t, "b", receipt.Provider)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", registry.StrategySingle, registry.StrategyFailover, registry.StrategyPriority, registry.StrategyRoundRobin} {
		s, err := New(name, nil)
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}

	_, err := New("carrier-pigeon", nil)
	assert.ErrorIs(t, err, registry.ErrUnknownStrategy)
}
