package profiler

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/profile-engine/pkg/introspect"
	"github.com/ekaya-inc/profile-engine/pkg/llm"
	"github.com/ekaya-inc/profile-engine/pkg/models"
	"github.com/ekaya-inc/profile-engine/pkg/prompts"
)

func (p *Profiler) profileRelationalDB(ctx context.Context, src Source) (*models.Profile, error) {
	intro, err := introspect.Open(ctx, src.Endpoint, p.logger)
	if err != nil {
		return nil, err
	}
	defer intro.Close()

	schema, err := introspect.Snapshot(ctx, intro, src.Name, p.logger)
	if err != nil {
		return nil, err
	}
	if len(schema.Tables) == 0 {
		return nil, fmt.Errorf("database %s has no visible tables", src.Name)
	}

	data, err := schemaYAML(schema)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Render(prompts.KeyProfileRelationalDB, map[string]string{"data": data})
	if err != nil {
		return nil, err
	}

	raw, err := p.callModel(ctx, p.cfg.Model, []llm.Message{llm.TextMessage(llm.RoleUser, prompt)})
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", src.Name, err)
	}
	resp, err := llm.ParseJSONResponse[profileResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", src.Name, err)
	}

	return mergeTables(resp, schema), nil
}
