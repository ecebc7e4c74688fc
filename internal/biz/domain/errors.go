package domain

import "errors"

// ErrAllModelsExhausted means no completion backend has capacity left. It is
// a transient condition: callers tell the user to retry later, they never
// crash on it.
var ErrAllModelsExhausted = errors.New("all models exhausted")

// ErrEmptyFilterContent means a stored filter has neither text nor media.
// That is a data-integrity bug in filter creation and must surface loudly
// rather than produce a silent no-op send.
var ErrEmptyFilterContent = errors.New("filter has no content")
