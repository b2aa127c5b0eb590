package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrImageUnsupported indicates the configured provider cannot accept image input.
var ErrImageUnsupported = errors.New("ai provider does not support image input")
