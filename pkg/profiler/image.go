package profiler

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ekaya-inc/profile-engine/pkg/llm"
	"github.com/ekaya-inc/profile-engine/pkg/models"
	"github.com/ekaya-inc/profile-engine/pkg/prompts"
)

func (p *Profiler) profileImage(ctx context.Context, src Source) (*models.Profile, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", src.Path, err)
	}

	prompt, err := prompts.Render(prompts.KeyProfileImage, nil)
	if err != nil {
		return nil, err
	}

	// Two-part payload: the instruction text plus the image itself, sent to
	// the vision model.
	msg := llm.Message{
		Role: llm.RoleUser,
		Parts: []llm.ContentPart{
			{Type: llm.ContentText, Text: prompt},
			{Type: llm.ContentImage, ImageURL: dataURL(src.Path, data)},
		},
	}

	raw, err := p.callModel(ctx, p.visionModel(), []llm.Message{msg})
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", src.Name, err)
	}
	resp, err := llm.ParseJSONResponse[profileResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", src.Name, err)
	}

	return &models.Profile{
		Name:        src.Name,
		Description: resp.Description,
		Details:     resp.Details,
	}, nil
}

func dataURL(path string, data []byte) string {
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".gif":
		mime = "image/gif"
	case ".webp":
		mime = "image/webp"
	case ".bmp":
		mime = "image/bmp"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
