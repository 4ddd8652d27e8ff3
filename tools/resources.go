package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/volcano-mcp-server/internal/volcano"
)

// registerResources advertises the static schema documents.
func (h *HandlerRegistry) registerResources(server *mcp.Server) {
	for _, s := range volcano.Schemas {
		server.AddResource(&mcp.Resource{
			URI:         s.URI,
			Name:        s.Name,
			Description: s.Description,
			MIMEType:    volcano.SchemaMIMEType,
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return h.ReadResource(ctx, req.Params.URI)
		})
	}
}

// ReadResource returns the schema document at uri.
func (h *HandlerRegistry) ReadResource(_ context.Context, uri string) (*mcp.ReadResourceResult, error) {
	text, err := volcano.ReadSchema(uri)
	if err != nil {
		h.logger.Warn("Resource read failed", "uri", uri, "error", err)
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: volcano.SchemaMIMEType, Text: text},
		},
	}, nil
}
