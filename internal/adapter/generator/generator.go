// Package generator talks to the poem and image generation capability.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyResult indicates the generator answered without content.
var ErrEmptyResult = errors.New("generator returned empty result")

// TooManyRequestsError represents rate limiting signal from the generator.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// TextRequest carries the order inputs used to compose a poem.
type TextRequest struct {
	Recipient    string  `json:"recipient"`
	Date         string  `json:"date"`
	Mood         string  `json:"mood"`
	CoreSentence string  `json:"core_sentence"`
	Name         *string `json:"name,omitempty"`
	Keywords     *string `json:"keywords,omitempty"`
}

// ImageRequest describes the image to render for a poem.
type ImageRequest struct {
	Recipient string `json:"recipient"`
	Mood      string `json:"mood"`
	Text      string `json:"text"`
}

// ContentGenerator produces poem text and an image URL.
type ContentGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}
