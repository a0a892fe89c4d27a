// Package llm talks to text-generation APIs.
package llm

import (
	"context"
	"fmt"
)

// Provider is implemented by text-generation backends.
type Provider interface {
	// Complete sends a request and blocks until the full response is available.
	Complete(ctx context.Context, request Request) (*Response, error)
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is provider-neutral. System, when set, is sent before Messages.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Temperature *float64
}

type Response struct {
	Model   string
	Content string
}

// APIError is a non-2xx reply from the provider.
type APIError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s: %s", e.Provider, e.StatusCode, e.Type, e.Message)
}
