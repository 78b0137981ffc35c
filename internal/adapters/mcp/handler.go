// Package mcpadapter exposes read-only dashboard tools over stateless MCP streamable HTTP.
package mcpadapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/ports"
)

type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// ToolCallRecorder counts tool invocations by outcome.
type ToolCallRecorder interface {
	RecordToolCall(tool, status string)
}

type Handler struct {
	httpHandler http.Handler
}

func NewHandler(cfg Config, dashboard ports.DashboardReader, recorder ToolCallRecorder) (*Handler, error) {
	if dashboard == nil {
		return nil, fmt.Errorf("dashboard reader is required")
	}
	cfg = normalizeConfig(cfg)

	srv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	tools := &toolSet{dashboard: dashboard, recorder: recorder}
	tools.register(srv)

	streamable := mcpserver.NewStreamableHTTPServer(
		srv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "shipdocs"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = "/" + strings.Trim(strings.TrimSpace(cfg.EndpointPath), "/")
	if cfg.EndpointPath == "/" {
		cfg.EndpointPath = "/mcp"
	}
	return cfg
}

type toolHandler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

type toolSet struct {
	dashboard ports.DashboardReader
	recorder  ToolCallRecorder
}

func (ts *toolSet) register(srv *mcpserver.MCPServer) {
	srv.AddTool(
		mcp.NewTool(
			"shipdocs.get_summary",
			mcp.WithDescription("Return dashboard totals: documents expected, uploaded, missing, total value and completion rate."),
		),
		ts.instrument("shipdocs.get_summary", ts.getSummary),
	)
	srv.AddTool(
		mcp.NewTool(
			"shipdocs.list_shipments",
			mcp.WithDescription("List shipments with their six document slots in display order."),
			mcp.WithString("q", mcp.Description("Optional case-insensitive substring of invoice number or shipment id")),
		),
		ts.instrument("shipdocs.list_shipments", ts.listShipments),
	)
	srv.AddTool(
		mcp.NewTool(
			"shipdocs.get_shipment",
			mcp.WithDescription("Return one shipment with its document slots."),
			mcp.WithString("shipment_id", mcp.Required(), mcp.Description("Shipment identifier")),
		),
		ts.instrument("shipdocs.get_shipment", ts.getShipment),
	)
	srv.AddTool(
		mcp.NewTool(
			"shipdocs.list_activity",
			mcp.WithDescription("List upload activity, newest first."),
			mcp.WithString("shipment_id", mcp.Description("Only entries for this shipment")),
			mcp.WithString("document_type", mcp.Description("Display name or abbreviation such as BL")),
			mcp.WithNumber("limit", mcp.Description("Maximum entries to return, 0 for all")),
		),
		ts.instrument("shipdocs.list_activity", ts.listActivity),
	)
	srv.AddTool(
		mcp.NewTool(
			"shipdocs.list_document_types",
			mcp.WithDescription("List the recognized document types with abbreviations."),
		),
		ts.instrument("shipdocs.list_document_types", ts.listDocumentTypes),
	)
}

func (ts *toolSet) instrument(name string, next toolHandler) toolHandler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := next(ctx, req)
		if ts.recorder != nil {
			status := "ok"
			if err != nil || (result != nil && result.IsError) {
				status = "error"
			}
			ts.recorder.RecordToolCall(name, status)
		}
		return result, err
	}
}

func (ts *toolSet) getSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := ts.dashboard.Summary(ctx)
	if err != nil {
		return toolResultFromError(err), nil
	}
	return jsonResult("get_summary", summary)
}

func (ts *toolSet) listShipments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	shipments, err := ts.dashboard.ListShipments(ctx, req.GetString("q", ""))
	if err != nil {
		return toolResultFromError(err), nil
	}
	return jsonResult("list_shipments", map[string]any{"shipments": domain.ShipmentViews(shipments)})
}

func (ts *toolSet) getShipment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("shipment_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sh, err := ts.dashboard.GetShipment(ctx, id)
	if err != nil {
		return toolResultFromError(err), nil
	}
	return jsonResult("get_shipment", sh.View())
}

func (ts *toolSet) listActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := domain.ActivityFilter{
		ShipmentID: strings.TrimSpace(req.GetString("shipment_id", "")),
		Limit:      req.GetInt("limit", 0),
	}
	if raw := req.GetString("document_type", ""); raw != "" {
		docType, err := domain.ParseDocumentType(raw)
		if err != nil {
			return toolResultFromError(err), nil
		}
		filter.DocumentType = docType
	}
	entries, err := ts.dashboard.ListActivity(ctx, filter)
	if err != nil {
		return toolResultFromError(err), nil
	}
	return jsonResult("list_activity", map[string]any{"entries": entries})
}

func (ts *toolSet) listDocumentTypes(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult("list_document_types", map[string]any{"documentTypes": domain.DocumentTypeCatalogue()})
}

func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case domain.IsKind(err, domain.ErrShipmentNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
