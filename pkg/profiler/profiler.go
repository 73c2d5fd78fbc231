// Package profiler turns prepared sources into semantic profiles: it reads
// each source's structure, asks the model to describe it, and merges the
// response back onto the extracted schema.
package profiler

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/profile-engine/pkg/config"
	"github.com/ekaya-inc/profile-engine/pkg/llm"
	"github.com/ekaya-inc/profile-engine/pkg/logging"
	"github.com/ekaya-inc/profile-engine/pkg/models"
	"github.com/ekaya-inc/profile-engine/pkg/retry"
)

// Source is the profiler's view of one prepared source: its derived name,
// detected type, the staged local path for direct sources, and the original
// endpoint for database sources.
type Source struct {
	Name     string
	Type     models.SourceType
	Path     string
	Endpoint string
}

// Profiler orchestrates schema extraction and LLM enrichment.
type Profiler struct {
	gateway llm.Gateway
	cfg     config.LLMConfig
	logger  *zap.Logger
}

// New creates a Profiler backed by the given gateway.
func New(gateway llm.Gateway, cfg config.LLMConfig, logger *zap.Logger) *Profiler {
	return &Profiler{
		gateway: gateway,
		cfg:     cfg,
		logger:  logger.Named("profiler"),
	}
}

// GenerateProfile profiles one source. This is the pipeline's only error
// boundary: any failure inside (read, model call, parse) is logged and
// degrades to an empty profile, so one bad source never aborts a batch.
func (p *Profiler) GenerateProfile(ctx context.Context, src Source) *models.Profile {
	profile, err := p.generate(ctx, src)
	if err != nil {
		p.logger.Error("profiling failed",
			zap.String("source", src.Name),
			zap.String("type", string(src.Type)),
			zap.String("error", logging.SanitizeError(err)))
		return &models.Profile{}
	}
	return profile
}

func (p *Profiler) generate(ctx context.Context, src Source) (*models.Profile, error) {
	switch src.Type {
	case models.SourceTypeCSV:
		return p.profileCSV(ctx, src)
	case models.SourceTypeExcel:
		return p.profileExcel(ctx, src)
	case models.SourceTypeImage:
		return p.profileImage(ctx, src)
	case models.SourceTypeRelationalDB:
		return p.profileRelationalDB(ctx, src)
	default:
		return nil, fmt.Errorf("source type %q is not profiled", src.Type)
	}
}

// callModel issues one gateway call under the configured retry policy, with a
// per-attempt timeout.
func (p *Profiler) callModel(ctx context.Context, model string, messages []llm.Message) (string, error) {
	retryCfg := &retry.Config{
		MaxAttempts: p.cfg.MaxAttempts,
		Delay:       p.cfg.RetryDelay(),
	}
	return retry.DoWithResult(ctx, retryCfg, func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout())
		defer cancel()
		return p.gateway.Call(callCtx, model, messages)
	})
}

// visionModel returns the model used for image profiling, falling back to the
// base model when no dedicated vision model is configured.
func (p *Profiler) visionModel() string {
	if p.cfg.VisionModel != "" {
		return p.cfg.VisionModel
	}
	return p.cfg.Model
}

// schemaYAML renders an extracted schema as the text block embedded in
// profiling prompts.
func schemaYAML(v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("render schema: %w", err)
	}
	return string(out), nil
}
