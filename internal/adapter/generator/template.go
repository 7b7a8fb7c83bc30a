package generator

import (
	"context"
	"strings"
)

// PlaceholderImageURL is returned by TemplateGenerator for every image.
const PlaceholderImageURL = "https://via.placeholder.com/800x600/ffffff/000000?text=HeartFrame"

// TemplateGenerator composes a fixed-layout message locally.
// It is used when no generator service is configured.
type TemplateGenerator struct{}

// NewTemplateGenerator returns TemplateGenerator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// GenerateText lays the inputs out as a short dedication.
func (TemplateGenerator) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lines := []string{req.CoreSentence, ""}
	if req.Name != nil && *req.Name != "" {
		lines = append(lines, *req.Name+"님께")
	}
	lines = append(lines,
		req.Recipient+"께",
		req.Date+"에",
		req.Mood+" 마음으로",
		"전하는 메시지입니다.",
	)
	return strings.Join(lines, "\n"), nil
}

// GenerateImage returns the placeholder image.
func (TemplateGenerator) GenerateImage(ctx context.Context, _ ImageRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return PlaceholderImageURL, nil
}
