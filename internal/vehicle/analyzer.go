package vehicle

import (
	"context"
	"errors"

	"github.com/Simplici0/importcalc/internal/apperr"
	"github.com/Simplici0/importcalc/internal/llm"
)

// MaxImages is the number of photos accepted per analysis.
const MaxImages = 5

// ErrNoImages is returned when an analysis is requested without photos.
var ErrNoImages = apperr.Invalid("no image provided")

// Analyzer resolves vehicle attributes and market prices through a language model.
type Analyzer struct {
	client llm.Client
}

// NewAnalyzer returns an Analyzer backed by client.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze sends the photos to the vision model and parses its answer. A reply that
// cannot be read is returned as an error; substituting a placeholder is up to the caller.
func (a *Analyzer) Analyze(ctx context.Context, payloads []string) (Analysis, error) {
	if len(payloads) == 0 {
		return Analysis{}, ErrNoImages
	}
	if len(payloads) > MaxImages {
		return Analysis{}, apperr.Invalid("at most %d images are accepted, got %d", MaxImages, len(payloads))
	}

	images := make([]llm.Image, 0, len(payloads))
	for _, p := range payloads {
		img, err := DecodeImage(p)
		if err != nil {
			return Analysis{}, err
		}
		images = append(images, img)
	}

	text, err := a.complete(ctx, llm.Request{Images: images, Prompt: analysisPrompt})
	if err != nil {
		return Analysis{}, err
	}
	return ParseAnalysis(text)
}

func (a *Analyzer) complete(ctx context.Context, req llm.Request) (string, error) {
	if a == nil || a.client == nil {
		return "", apperr.NotConfigured("vision model is not configured")
	}
	text, err := a.client.Complete(ctx, req)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return "", err
		}
		return "", apperr.Unavailable("vision model request failed", err)
	}
	return text, nil
}
