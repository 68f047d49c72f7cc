package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderErrorCarriesStatus(t *testing.T) {
	err := NewProviderError("Gemini", 500, `{"error":"boom"}`)

	assert.Equal(t, 500, err.StatusCode)
	assert.Equal(t, CodeProvider, err.Code)
	assert.Equal(t, `{"error":"boom"}`, err.Body)
	assert.Contains(t, err.Error(), "status 500")
}

func TestIsFetchError(t *testing.T) {
	wrappedProvider := fmt.Errorf("ask: %w", NewProviderError("Gemini", 429, ""))
	wrappedTransport := fmt.Errorf("ask: %w", NewTransportError("Gemini", "request failed", context.DeadlineExceeded))

	assert.True(t, IsFetchError(wrappedProvider))
	assert.True(t, IsFetchError(wrappedTransport))
	assert.False(t, IsFetchError(stderrors.New("plain")))
	assert.False(t, IsFetchError(nil))
}

func TestTransportErrorUnwrapsCause(t *testing.T) {
	err := NewTransportError("Gemini", "request failed", context.DeadlineExceeded)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "Gemini transport error: request failed: context deadline exceeded", err.Error())
}

func TestConfigErrorListsProblems(t *testing.T) {
	err := NewConfigError([]string{"DISCORD_TOKEN is a required field", "CLIENT_ID is a required field"})

	assert.Equal(t, CodeConfig, err.Code)
	assert.Len(t, err.Problems, 2)
	assert.Equal(t, "invalid configuration: DISCORD_TOKEN is a required field; CLIENT_ID is a required field", err.Error())
}

func TestDeliveryErrorRecordsStage(t *testing.T) {
	cause := stderrors.New("unknown webhook")
	err := NewDeliveryError("followup", 2, cause)

	var target *DeliveryError
	require.True(t, stderrors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Equal(t, "followup", target.Stage)
	assert.Equal(t, 2, target.Index)
	assert.ErrorIs(t, err, cause)
}
