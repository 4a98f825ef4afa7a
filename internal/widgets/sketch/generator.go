// Package sketch turns diary text into a "memory sketch" through an
// image-generation API. Generation runs on a bounded worker pool so saving
// an entry never waits for the provider, and a cron backfill retries
// entries whose sketch failed or never started.
package sketch

import (
	"context"
	"errors"
	"fmt"

	"github.com/keyxmakerx/reverie/internal/config"
	"github.com/keyxmakerx/reverie/internal/plugins/media"
)

// ErrDisabled is returned by the "none" provider.
var ErrDisabled = errors.New("sketch generation is disabled")

// Image is a generated picture.
type Image struct {
	Data     []byte
	MimeType string
}

// Generator produces an image for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Image, error)
}

// Prompt wraps diary text in the illustration prompt sent to providers.
func Prompt(text string) string {
	return fmt.Sprintf("A beautiful, gentle, artistic sketch illustration representing this diary entry: \"%s\". Make it look like a memory drawing in a journal.", text)
}

// NewGenerator builds the provider named in cfg.
func NewGenerator(cfg config.SketchConfig) (Generator, error) {
	switch cfg.Provider {
	case config.SketchHuggingFace:
		return NewHuggingFace(cfg.APIURL, cfg.APIKey, cfg.Timeout), nil
	case config.SketchImagen:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("SKETCH_API_KEY is required for the imagen provider")
		}
		return NewImagen(cfg.APIURL, cfg.APIKey, cfg.Timeout), nil
	case config.SketchNone, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown sketch provider %q", cfg.Provider)
	}
}

// Disabled is the "none" provider: entries are saved as text only.
type Disabled struct{}

// Generate always fails with ErrDisabled.
func (Disabled) Generate(context.Context, string) (Image, error) {
	return Image{}, ErrDisabled
}

// toImage checks that a provider really returned an image.
func toImage(data []byte) (Image, error) {
	mimeType, ok := media.DetectMIME(data)
	if !ok {
		return Image{}, errors.New("provider returned something that is not an image")
	}
	return Image{Data: data, MimeType: mimeType}, nil
}
