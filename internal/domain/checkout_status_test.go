package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo_HappyPath(t *testing.T) {
	path := []CheckoutStatus{
		CheckoutStatusIdle,
		CheckoutStatusSelecting,
		CheckoutStatusAwaitingProvider,
		CheckoutStatusConfirming,
		CheckoutStatusCleanup,
		CheckoutStatusIdle,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransitionTo(path[i], path[i+1]),
			"%s -> %s should be legal", path[i], path[i+1])
	}
}

func TestCanTransitionTo_ErrorExits(t *testing.T) {
	assert.True(t, CanTransitionTo(CheckoutStatusAwaitingProvider, CheckoutStatusIdle))
	assert.True(t, CanTransitionTo(CheckoutStatusConfirming, CheckoutStatusIdle))
}

func TestCanTransitionTo_Illegal(t *testing.T) {
	assert.False(t, CanTransitionTo(CheckoutStatusIdle, CheckoutStatusConfirming))
	assert.False(t, CanTransitionTo(CheckoutStatusCleanup, CheckoutStatusAwaitingProvider))
	assert.False(t, CanTransitionTo(CheckoutStatusIdle, CheckoutStatusCleanup))
}

func TestProviderStatusFrom(t *testing.T) {
	assert.Equal(t, ProviderSuccess, ProviderStatusFrom("success"))
	assert.Equal(t, ProviderFailed, ProviderStatusFrom("failed"))
	assert.Equal(t, ProviderAbandoned, ProviderStatusFrom(""))
	assert.Equal(t, ProviderAbandoned, ProviderStatusFrom("something-new"))
}

func TestProviderStatusCode(t *testing.T) {
	assert.Equal(t, "s", ProviderSuccess.Code())
	assert.Equal(t, "f", ProviderFailed.Code())
	assert.Equal(t, "a", ProviderAbandoned.Code())
}
