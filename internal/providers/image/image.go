package image

import "context"

// Options carries the knobs supported by every image provider.
type Options struct {
	Size    string
	Quality string
}

// Generator is the image-generation capability port. Implementations classify
// upstream failures with domain.ErrUnavailable and domain.ErrSafetyRefused.
// The returned bytes are the encoded image; persistence is the caller's job.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) ([]byte, error)
}
