package ai

import "context"

// Provider is the generative backend the pipeline treats as an opaque oracle.
// Implementations may be text-only; those return ErrImageUnsupported from
// SummarizeImage.
type Provider interface {
	SummarizeText(ctx context.Context, prompt string) (string, error)
	SummarizeImage(ctx context.Context, instruction string, image []byte, mimeType string) (string, error)
}
