// Package mcp exposes workflows over the Model Context Protocol so agent
// tooling can read, edit, and interrogate the same canvas a human edits.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/geometry"
	"github.com/aretw0/lattice/pkg/index"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps a workflow store and exposes it as an MCP server.
type Server struct {
	store     ports.WorkflowStore
	resolver  domain.PortResolver
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server backed by the given store.
func NewServer(store ports.WorkflowStore) *Server {
	s := &Server{
		store:     store,
		resolver:  geometry.BoxResolver,
		mcpServer: server.NewMCPServer("lattice-mcp", strings.TrimSpace(lattice.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: list_workflows
	s.mcpServer.AddTool(mcp.NewTool("list_workflows",
		mcp.WithDescription("List the IDs of all stored workflows."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.store.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: get_workflow
	getTool := mcp.NewTool("get_workflow",
		mcp.WithDescription("Get the full definition of a workflow: nodes, positions, and connections."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
	)
	s.mcpServer.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		wf, result := s.loadWorkflow(ctx, request)
		if result != nil {
			return result, nil
		}
		jsonBytes, _ := json.Marshal(wf)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: save_workflow
	saveTool := mcp.NewTool("save_workflow",
		mcp.WithDescription("Validate and persist a workflow definition. The definition must be a complete workflow JSON object."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID to store the workflow under")),
		mcp.WithString("definition", mcp.Required(), mcp.Description("JSON object with nodes and connections")),
	)
	s.mcpServer.AddTool(saveTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		id, _ := args["workflow_id"].(string)
		definition, _ := args["definition"].(string)

		var wf domain.Workflow
		if err := json.Unmarshal([]byte(definition), &wf); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid definition: %v", err)), nil
		}
		wf.ID = id
		if err := wf.Validate(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
		}
		if err := s.store.Save(ctx, &wf); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("workflow %q saved (%d nodes, %d connections)", id, len(wf.Nodes), len(wf.Connections))), nil
	})

	// TOOL: nearest_port
	nearestTool := mcp.NewTool("nearest_port",
		mcp.WithDescription("Find the port closest to a canvas coordinate, within a snap radius."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
		mcp.WithString("x", mcp.Required(), mcp.Description("Canvas X coordinate")),
		mcp.WithString("y", mcp.Required(), mcp.Description("Canvas Y coordinate")),
		mcp.WithString("radius", mcp.Description("Snap radius in canvas units (default 32)")),
	)
	s.mcpServer.AddTool(nearestTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		wf, result := s.loadWorkflow(ctx, request)
		if result != nil {
			return result, nil
		}
		args := request.GetArguments()

		x, errX := parseFloatArg(args, "x")
		y, errY := parseFloatArg(args, "y")
		if errX != nil || errY != nil {
			return mcp.NewToolResultError("x and y must be numbers"), nil
		}
		radius := 32.0
		if _, ok := args["radius"]; ok {
			var err error
			if radius, err = parseFloatArg(args, "radius"); err != nil {
				return mcp.NewToolResultError("radius must be a number"), nil
			}
		}

		cell := radius
		if cell < 1 {
			cell = 1
		}
		idx := index.BuildSpatial(wf.Nodes, s.resolver, cell)
		loc, found := idx.Nearest(x, y, radius)
		if !found {
			return mcp.NewToolResultText(`{"found":false}`), nil
		}
		jsonBytes, _ := json.Marshal(map[string]any{
			"found":     true,
			"node":      loc.NodeID,
			"port":      loc.Port,
			"direction": loc.Direction,
			"x":         loc.X,
			"y":         loc.Y,
		})
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: connection_path
	pathTool := mcp.NewTool("connection_path",
		mcp.WithDescription("Compute the SVG path and midpoint for one connection of a workflow."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
		mcp.WithString("connection_id", mcp.Required(), mcp.Description("The ID of the connection")),
	)
	s.mcpServer.AddTool(pathTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		wf, result := s.loadWorkflow(ctx, request)
		if result != nil {
			return result, nil
		}
		connID, _ := request.GetArguments()["connection_id"].(string)

		lookup := index.NodeLookup(wf.Nodes)
		for _, c := range wf.Connections {
			if c.ID != connID {
				continue
			}
			src, okSrc := lookup[c.From.NodeID]
			dst, okDst := lookup[c.To.NodeID]
			if !okSrc || !okDst {
				return mcp.NewToolResultError(fmt.Sprintf("connection %q references a missing node", connID)), nil
			}
			spec := geometry.ConnectionPath(
				s.resolver(src, c.From.Port, domain.DirectionOutput),
				s.resolver(dst, c.To.Port, domain.DirectionInput),
			)
			jsonBytes, _ := json.Marshal(spec)
			return mcp.NewToolResultText(string(jsonBytes)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("connection %q not found", connID)), nil
	})
}

// loadWorkflow resolves the workflow_id argument against the store. A non-nil
// result is the error to return to the client.
func (s *Server) loadWorkflow(ctx context.Context, request mcp.CallToolRequest) (*domain.Workflow, *mcp.CallToolResult) {
	id, _ := request.GetArguments()["workflow_id"].(string)
	wf, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err))
	}
	return wf, nil
}

func parseFloatArg(args map[string]any, key string) (float64, error) {
	switch v := args[key].(type) {
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("argument %q is not a number", key)
	}
}

func (s *Server) registerResources() {
	// EXPOSE: lattice://workflows
	s.mcpServer.AddResource(mcp.NewResource("lattice://workflows", "Stored Workflow IDs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list workflows: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "lattice://workflows",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
