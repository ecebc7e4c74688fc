package repo

import (
	"context"
	"fmt"
)

// Message is one turn handed to the completion provider.
type Message struct {
	Role    string
	Content string
}

// Completion is a provider response.
type Completion struct {
	Text       string
	TokensUsed int
}

// CompletionRepo is the black-box completion provider interface. The core
// only picks the model name and hands over the message list.
type CompletionRepo interface {
	Complete(ctx context.Context, model string, messages []Message) (*Completion, error)
}

// ProviderError wraps a completion backend failure. It is transient: the
// dispatch boundary logs it and apologizes to the user.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("completion provider (%s): %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
