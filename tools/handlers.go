package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
	"github.com/olgasafonova/volcano-mcp-server/internal/volcano"
	"github.com/olgasafonova/volcano-mcp-server/internal/wfs"
	"github.com/olgasafonova/volcano-mcp-server/metrics"
	"github.com/olgasafonova/volcano-mcp-server/tracing"
)

// callFunc decodes raw arguments, runs the tool and returns the payload
// together with log attributes describing the call.
type callFunc func(ctx context.Context, raw json.RawMessage) (any, []any, error)

// toolHandler binds a ToolSpec to its input schema and implementation.
type toolHandler struct {
	spec  ToolSpec
	input *jsonschema.Schema
	call  callFunc
}

// HandlerRegistry maps tool names to their handlers and owns the
// dispatch boundary: every failure leaves Dispatch as error text.
type HandlerRegistry struct {
	client   *volcano.Client
	logger   *slog.Logger
	handlers map[string]*toolHandler
}

// NewHandlerRegistry creates a new handler registry for every spec in AllTools.
func NewHandlerRegistry(client *volcano.Client, logger *slog.Logger) *HandlerRegistry {
	h := &HandlerRegistry{
		client:   client,
		logger:   logger,
		handlers: make(map[string]*toolHandler, len(AllTools)),
	}
	for _, spec := range AllTools {
		th, err := h.handlerFor(spec)
		if err != nil {
			logger.Error("Tool not registered", "tool", spec.Name, "method", spec.Method, "error", err)
			continue
		}
		h.handlers[spec.Name] = th
	}
	return h
}

// RegisterAll registers all tools, prompts and resources with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	count := 0
	for _, spec := range AllTools {
		th, ok := h.handlers[spec.Name]
		if !ok {
			continue
		}
		server.AddTool(h.buildTool(spec, th.input), h.toolHandlerFunc())
		count++
	}
	server.AddReceivingMiddleware(h.unknownToolMiddleware)
	h.registerPrompts(server)
	h.registerResources(server)
	h.logger.Info("Registered all tools",
		"tools", count,
		"prompts", len(volcano.Prompts),
		"resources", len(volcano.Schemas))
}

// ArgumentNames returns the sorted argument names a tool accepts,
// or nil when name is not registered.
func (h *HandlerRegistry) ArgumentNames(name string) []string {
	th, ok := h.handlers[name]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(th.input.Properties))
	for prop := range th.input.Properties {
		names = append(names, prop)
	}
	sort.Strings(names)
	return names
}

// toolHandlerFunc adapts Dispatch to the SDK's raw tool handler. It never
// returns a protocol error.
func (h *HandlerRegistry) toolHandlerFunc() mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return h.Dispatch(ctx, req.Params.Name, req.Params.Arguments), nil
	}
}

// unknownToolMiddleware answers tools/call for unregistered names with
// error text. The SDK would otherwise reply with a protocol error.
func (h *HandlerRegistry) unknownToolMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method == "tools/call" {
			if call, ok := req.(*mcp.CallToolRequest); ok && call.Params != nil {
				if _, known := h.handlers[call.Params.Name]; !known {
					return h.Dispatch(ctx, call.Params.Name, call.Params.Arguments), nil
				}
			}
		}
		return next(ctx, method, req)
	}
}

// handlerFor dispatches to the correct typed handler constructor.
func (h *HandlerRegistry) handlerFor(spec ToolSpec) (*toolHandler, error) {
	c := h.client

	switch spec.Method {
	case "SearchVolcanoes":
		return newHandler(spec, c.SearchVolcanoes, func(a volcano.SearchVolcanoesArgs, r *wfs.Response) []any {
			return []any{"country", a.Country, "volcano_type", a.VolcanoType, "features", r.Count()}
		})
	case "SearchEruptions":
		return newHandler(spec, c.SearchEruptions, func(a volcano.SearchEruptionsArgs, r *wfs.Response) []any {
			return []any{"volcano_name", a.VolcanoName, "country", a.Country, "features", r.Count()}
		})
	case "FindRecentActivity":
		return newHandler(spec, c.FindRecentActivity, func(a volcano.FindRecentActivityArgs, r *wfs.Response) []any {
			return []any{"years_back", a.YearsBack, "country", a.Country, "features", r.Count()}
		})
	case "AssessVolcanicRisk":
		return newHandler(spec, c.AssessVolcanicRisk, func(a volcano.AssessVolcanicRiskArgs, r *wfs.Response) []any {
			return []any{"country", a.Country, "features", r.Count()}
		})
	case "GetVolcanoDetails":
		return newHandler(spec, c.GetVolcanoDetails, func(a volcano.GetVolcanoDetailsArgs, r volcano.VolcanoDetailsResult) []any {
			attrs := []any{"volcano_name", a.VolcanoName, "profiles", r.Profile.Count()}
			if r.WithEruptions {
				attrs = append(attrs, "eruptions", r.EruptionHistory.Count())
			}
			return attrs
		})
	case "FindLargeEruptions":
		return newHandler(spec, c.FindLargeEruptions, func(a volcano.FindLargeEruptionsArgs, r *wfs.Response) []any {
			return []any{"min_vei", a.MinVEI, "features", r.Count()}
		})
	default:
		return nil, fmt.Errorf("unknown method %q", spec.Method)
	}
}

// newHandler builds a toolHandler whose input schema is inferred from Args.
// Arguments are validated against the schema before they are decoded.
// Arguments the schema does not name are ignored.
func newHandler[Args, Result any](
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
	describe func(Args, Result) []any,
) (*toolHandler, error) {
	input, err := jsonschema.For[Args](nil)
	if err != nil {
		return nil, fmt.Errorf("input schema: %w", err)
	}
	input.AdditionalProperties = nil
	resolved, err := input.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve input schema: %w", err)
	}

	return &toolHandler{
		spec:  spec,
		input: input,
		call: func(ctx context.Context, raw json.RawMessage) (any, []any, error) {
			args, err := decodeArgs[Args](resolved, raw)
			if err != nil {
				return nil, nil, err
			}
			result, err := method(ctx, args)
			if err != nil {
				return nil, nil, err
			}
			return result, describe(args, result), nil
		},
	}, nil
}

// decodeArgs validates raw against schema and unmarshals it into Args.
// Missing or null arguments are treated as an empty object.
func decodeArgs[Args any](schema *jsonschema.Resolved, raw json.RawMessage) (Args, error) {
	var args Args

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	var instance map[string]any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec, input *jsonschema.Schema) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.ReadOnly {
		annotations.DestructiveHint = ptr(false)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		InputSchema: input,
		Annotations: annotations,
	}
}

// Dispatch runs the named tool with raw JSON arguments. The result is
// always a single text item: the indented JSON payload, or "Error: <msg>".
func (h *HandlerRegistry) Dispatch(ctx context.Context, name string, raw json.RawMessage) (result *mcp.CallToolResult) {
	th, ok := h.handlers[name]
	if !ok {
		err := apierrors.NewNotFoundError(apierrors.KindTool, name)
		h.logger.Warn("Tool call rejected", "tool", name, "error", err)
		return errorResult(err)
	}
	spec := th.spec

	defer func() {
		if rec := recover(); rec != nil {
			h.recordPanic(spec.Name, rec)
			result = errorResult(fmt.Errorf("internal error in %s: %v", spec.Name, rec))
		}
	}()

	ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
	defer span.End()

	tracing.AddToolAttributes(span, spec.Name, spec.Category)
	span.SetAttributes(
		attribute.StringSlice("mcp.tool.layers", spec.Layers),
		attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
	)

	metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
	defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

	start := time.Now()
	payload, attrs, err := th.call(ctx, raw)
	var text []byte
	if err == nil {
		text, err = json.MarshalIndent(payload, "", "  ")
	}
	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordRequest(spec.Name, duration, false)
		h.logger.Warn("Tool failed", "tool", spec.Name, "duration_seconds", duration, "error", err)
		return errorResult(err)
	}

	span.SetStatus(codes.Ok, "")
	metrics.RecordRequest(spec.Name, duration, true)
	h.logExecution(spec, duration, attrs)
	return textResult(string(text))
}

// recordPanic counts and logs a panic recovered in a tool handler.
func (h *HandlerRegistry) recordPanic(toolName string, rec any) {
	metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
	h.logger.Error("Panic recovered",
		"tool", toolName,
		"panic", rec,
		"stack", string(debug.Stack()))
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, duration float64, extra []any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category, "duration_seconds", duration}
	attrs = append(attrs, extra...)
	h.logger.Info("Tool executed", attrs...)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return textResult("Error: " + err.Error())
}
