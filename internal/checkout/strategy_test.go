package checkout_test

import (
	"errors"
	"strings"
	"testing"

	"ms-marketplace/internal/checkout"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingGateway struct{}

func (failingGateway) Charge(amount decimal.Decimal, currency, reference string) (string, error) {
	return "", errors.New("gateway timeout")
}

func TestOfflineStrategy_SynthesizesReference(t *testing.T) {
	strategy := checkout.NewOfflineStrategy(logger.NewLogger())

	result := strategy.Process(decimal.RequireFromString("10.00"), "")

	assert.True(t, result.Success)
	assert.Equal(t, models.TransactionSuccess, result.Status)
	assert.True(t, strings.HasPrefix(result.ExternalReference, "offline-"),
		"reference %q should start with offline-", result.ExternalReference)
}

func TestOfflineStrategy_PassesReferenceThrough(t *testing.T) {
	strategy := checkout.NewOfflineStrategy(logger.NewLogger())

	result := strategy.Process(decimal.RequireFromString("10.00"), "cheque-991")

	assert.True(t, result.Success)
	assert.Equal(t, "cheque-991", result.ExternalReference)
}

func TestOfflineStrategy_UniqueReferences(t *testing.T) {
	strategy := checkout.NewOfflineStrategy(logger.NewLogger())

	first := strategy.Process(decimal.RequireFromString("10.00"), "")
	second := strategy.Process(decimal.RequireFromString("10.00"), "")

	assert.NotEqual(t, first.ExternalReference, second.ExternalReference)
}

func TestOnlineStrategy_StubGatewaySucceeds(t *testing.T) {
	strategy := checkout.NewOnlineStrategy(checkout.StubGateway{}, "usd", logger.NewLogger())

	result := strategy.Process(decimal.RequireFromString("25.00"), "")

	assert.True(t, result.Success)
	assert.Equal(t, models.TransactionSuccess, result.Status)
	assert.True(t, strings.HasPrefix(result.ExternalReference, "online-"))
}

func TestOnlineStrategy_GatewayFailureBecomesFailedResult(t *testing.T) {
	strategy := checkout.NewOnlineStrategy(failingGateway{}, "usd", logger.NewLogger())

	result := strategy.Process(decimal.RequireFromString("25.00"), "ref-1")

	assert.False(t, result.Success)
	assert.Equal(t, models.TransactionFailed, result.Status)
	assert.Equal(t, "ref-1", result.ExternalReference)
	assert.Contains(t, result.Message, "gateway timeout")
}

func TestRegistry_ResolveKnownMethods(t *testing.T) {
	log := logger.NewLogger()
	registry := checkout.NewRegistry(
		checkout.NewOfflineStrategy(log),
		checkout.NewOnlineStrategy(checkout.StubGateway{}, "usd", log),
	)

	offline, err := registry.Resolve(models.MethodOffline)
	require.NoError(t, err)
	assert.Equal(t, models.MethodOffline, offline.Method())

	online, err := registry.Resolve(models.MethodOnline)
	require.NoError(t, err)
	assert.Equal(t, models.MethodOnline, online.Method())
}

func TestRegistry_UnknownMethod(t *testing.T) {
	registry := checkout.NewRegistry(checkout.NewOfflineStrategy(logger.NewLogger()))

	_, err := registry.Resolve(models.PaymentMethod("CRYPTO"))
	assert.ErrorIs(t, err, checkout.ErrUnsupportedMethod)
}
