package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/mediawiki-api-client/metrics"
	"github.com/olgasafonova/mediawiki-api-client/tracing"
	"github.com/olgasafonova/mediawiki-api-client/wiki"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to session methods.
type HandlerRegistry struct {
	session *wiki.Session
	logger  *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(session *wiki.Session, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		session: session,
		logger:  logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	registered := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			registered++
		}
	}
	h.logger.Info("Registered all tools", "count", registered)
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	tool := h.buildTool(spec)
	s := h.session

	switch spec.Method {
	case "GetArticle":
		register(h, server, tool, spec, s.GetArticleMCP)
	case "CategoryMembers":
		register(h, server, tool, spec, s.CategoryMembersMCP)
	case "EditPage":
		register(h, server, tool, spec, s.EditPageMCP)
	case "Login":
		register(h, server, tool, spec, s.LoginMCP)
	case "Logout":
		register(h, server, tool, spec, s.LogoutMCP)
	case "SessionStatus":
		register(h, server, tool, spec, s.SessionStatusMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
	return true
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the session method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, wrap(h, spec, method))
}

// wrap builds the instrumented handler for one tool
func wrap[Args, Result any](h *HandlerRegistry, spec ToolSpec, method func(context.Context, Args) (Result, error)) mcp.ToolHandlerFor[Args, Result] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args Args) (_ *mcp.CallToolResult, result Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err = method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	}
}

// recoverPanic recovers from panics in tool handlers and reports them as
// tool errors.
func (h *HandlerRegistry) recoverPanic(toolName string, errp *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("%s failed: internal error", toolName)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	switch a := args.(type) {
	case wiki.GetArticleArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.CategoryMembersArgs:
		attrs = append(attrs, "category_name", a.Category)
	case wiki.EditPageArgs:
		inputChars := len(a.Text) + len(a.AppendText) + len(a.PrependText)
		attrs = append(attrs, "title", a.Title, "page_id", a.PageID, "input_chars", inputChars)
	}

	switch r := result.(type) {
	case wiki.GetArticleResult:
		attrs = append(attrs, "found", r.Found, "output_chars", r.Length)
	case wiki.CategoryMembersResult:
		attrs = append(attrs, "members_returned", len(r.Members), "has_more", r.Continue != "")
	case wiki.EditPageResult:
		attrs = append(attrs, "result", r.Result, "new_revision_id", r.NewRevID)
	case wiki.LoginStatus:
		attrs = append(attrs, "logged_in", r.LoggedIn, "incomplete", r.Incomplete)
	case wiki.SessionStatus:
		attrs = append(attrs, "logged_in", r.LoggedIn)
	}

	h.logger.Info("Tool executed", attrs...)
}
