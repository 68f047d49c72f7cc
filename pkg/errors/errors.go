package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes
const (
	CodeBotError     = "BOT_ERROR"
	CodeAPIError     = "API_ERROR"
	CodeConfig       = "CONFIG_ERROR"
	CodeRegistration = "REGISTRATION_ERROR"
	CodeProvider     = "PROVIDER_ERROR"
	CodeTransport    = "TRANSPORT_ERROR"
	CodeDelivery     = "DELIVERY_ERROR"
	CodeCache        = "CACHE_ERROR"
	CodeService      = "SERVICE_ERROR"
)

type BotError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BotError) Unwrap() error {
	return e.Cause
}

func NewBotError(message, code string, statusCode int, context map[string]any) *BotError {
	return &BotError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *BotError) WithCause(cause error) *BotError {
	e.Cause = cause
	return e
}

// APIError is a non-2xx or failed call against the Discord REST API.
type APIError struct {
	*BotError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

// ConfigError is fatal: the process exits when startup configuration is invalid.
type ConfigError struct {
	*BotError
	Problems []string
}

func NewConfigError(problems []string) *ConfigError {
	return &ConfigError{
		BotError: &BotError{
			Message: "invalid configuration: " + strings.Join(problems, "; "),
			Code:    CodeConfig,
			Context: map[string]any{
				"problems": problems,
			},
		},
		Problems: problems,
	}
}

// RegistrationError reports a failed slash-command registration. The bot keeps
// running after it.
type RegistrationError struct {
	*BotError
	ApplicationID string
}

func NewRegistrationError(applicationID string, cause error) *RegistrationError {
	return &RegistrationError{
		BotError: &BotError{
			Message: "failed to register application commands",
			Code:    CodeRegistration,
			Context: map[string]any{
				"application_id": applicationID,
			},
			Cause: cause,
		},
		ApplicationID: applicationID,
	}
}

// ProviderError is returned when the AI provider answered with a non-success
// HTTP status.
type ProviderError struct {
	*BotError
	Provider string
	Body     string
}

func NewProviderError(provider string, statusCode int, body string) *ProviderError {
	return &ProviderError{
		BotError: &BotError{
			Message:    fmt.Sprintf("%s API error: status %d", provider, statusCode),
			Code:       CodeProvider,
			StatusCode: statusCode,
			Context: map[string]any{
				"provider": provider,
				"body":     body,
			},
		},
		Provider: provider,
		Body:     body,
	}
}

// TransportError wraps connection failures, timeouts and undecodable
// provider responses.
type TransportError struct {
	*BotError
	Provider string
}

func NewTransportError(provider, message string, cause error) *TransportError {
	return &TransportError{
		BotError: &BotError{
			Message: fmt.Sprintf("%s transport error: %s", provider, message),
			Code:    CodeTransport,
			Context: map[string]any{
				"provider": provider,
			},
			Cause: cause,
		},
		Provider: provider,
	}
}

// IsFetchError reports whether err came from the answer fetcher, either as a
// provider status failure or a transport failure.
func IsFetchError(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return true
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// DeliveryError records which send of a multi-message reply failed.
type DeliveryError struct {
	*BotError
	Stage string
	Index int
}

func NewDeliveryError(stage string, index int, cause error) *DeliveryError {
	return &DeliveryError{
		BotError: &BotError{
			Message: fmt.Sprintf("failed to deliver chunk %d (%s)", index, stage),
			Code:    CodeDelivery,
			Context: map[string]any{
				"stage": stage,
				"index": index,
			},
			Cause: cause,
		},
		Stage: stage,
		Index: index,
	}
}

type CacheError struct {
	*BotError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*BotError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}
