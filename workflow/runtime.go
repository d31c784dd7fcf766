package workflow

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/counsel/internal/extracted"
	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/graph"
)

// Toolbox is the tool catalog offered to the parse step.
type Toolbox interface {
	Tools() []generation.Tool
	Invoke(ctx context.Context, call generation.ToolCall) extracted.Output
}

// Runtime holds the dependencies shared by every node.
type Runtime struct {
	Generation generation.Client
	Tools      Toolbox
	Prompts    *prompts.Catalog
	Config     Config
	Logger     *slog.Logger
	Observer   graph.Observer
}

func (rt *Runtime) systemPrompt(stage prompts.Stage) (string, error) {
	if rt.Prompts == nil {
		catalog, err := prompts.NewCatalog(nil)
		if err != nil {
			return "", err
		}
		return catalog.Compose(stage)
	}
	return rt.Prompts.Compose(stage)
}
