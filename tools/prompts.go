package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/volcano-mcp-server/internal/volcano"
	"github.com/olgasafonova/volcano-mcp-server/metrics"
)

// registerPrompts advertises every prompt template in volcano.Prompts.
func (h *HandlerRegistry) registerPrompts(server *mcp.Server) {
	for _, p := range volcano.Prompts {
		args := make([]*mcp.PromptArgument, 0, len(p.Arguments))
		for _, a := range p.Arguments {
			args = append(args, &mcp.PromptArgument{
				Name:        a.Name,
				Description: a.Description,
				Required:    a.Required,
			})
		}

		server.AddPrompt(&mcp.Prompt{
			Name:        p.Name,
			Description: p.Description,
			Arguments:   args,
		}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			return h.GetPrompt(ctx, req.Params.Name, req.Params.Arguments)
		})
	}
}

// GetPrompt renders the named prompt as a single user message.
// Unknown prompts and missing required arguments are returned as errors.
func (h *HandlerRegistry) GetPrompt(_ context.Context, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	text, err := volcano.RenderPrompt(name, args)
	metrics.RecordPrompt(name, err == nil)
	if err != nil {
		h.logger.Warn("Prompt failed", "prompt", name, "error", err)
		return nil, err
	}

	h.logger.Debug("Prompt rendered", "prompt", name)
	p, _ := volcano.FindPrompt(name)
	return &mcp.GetPromptResult{
		Description: p.Description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}, nil
}
