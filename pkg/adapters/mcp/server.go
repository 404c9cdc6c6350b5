package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/launchplan/internal/presentation/graph"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/lifecycle"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PlansURI is the resource listing every plan.
const PlansURI = "launchplan://plans"

// Engine defines what the MCP server needs from the launchplan core.
type Engine interface {
	Plans() ([]string, error)
	Describe(name string) (*domain.Plan, error)
	Build(ctx context.Context, name string, overrides map[string]string) (*domain.LaunchPlan, error)
}

// PlanArgs selects a plan and its argument overrides.
type PlanArgs struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// DescribeResponse lists the arguments a plan declares.
type DescribeResponse struct {
	Name        string            `json:"name" jsonschema_description:"Plan name"`
	Description string            `json:"description,omitempty" jsonschema_description:"What the plan launches"`
	Arguments   []domain.Argument `json:"arguments" jsonschema_description:"Declared arguments with defaults"`
}

// BuildResponse summarizes a built plan.
type BuildResponse struct {
	Plan      string                  `json:"plan" jsonschema_description:"Plan name"`
	Arguments map[string]string       `json:"arguments" jsonschema_description:"Resolved argument values"`
	Nodes     []domain.NodeDescriptor `json:"nodes" jsonschema_description:"Nodes in start order, included plans inlined"`
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("launchplan-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
		return nil
	})

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_plans",
		mcp.WithDescription("List the names of every launch plan that can be built."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.engine.Plans()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(names)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	describeTool := mcp.NewTool("describe_plan",
		mcp.WithDescription("Show the arguments a launch plan declares, with defaults and descriptions."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Plan name")),
		mcp.WithOutputSchema[DescribeResponse](),
	)
	s.mcpServer.AddTool(describeTool, mcp.NewStructuredToolHandler(s.handleDescribe))

	buildTool := mcp.NewTool("build_plan",
		mcp.WithDescription("Resolve a launch plan with argument overrides and return the nodes it would start. Nothing is started."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Plan name")),
		mcp.WithObject("arguments", mcp.Description("Argument overrides, name to string value")),
		mcp.WithOutputSchema[BuildResponse](),
	)
	s.mcpServer.AddTool(buildTool, mcp.NewStructuredToolHandler(s.handleBuild))

	s.mcpServer.AddTool(mcp.NewTool("graph_plan",
		mcp.WithDescription("Render a resolved launch plan as a Mermaid flowchart."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Plan name")),
		mcp.WithObject("arguments", mcp.Description("Argument overrides, name to string value")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args PlanArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		lp, err := s.engine.Build(ctx, args.Name, args.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
		}
		return mcp.NewToolResultText(graph.GenerateMermaid(lp)), nil
	})
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest, args PlanArgs) (DescribeResponse, error) {
	def, err := s.engine.Describe(args.Name)
	if err != nil {
		return DescribeResponse{}, fmt.Errorf("describe failed: %w", err)
	}
	resp := DescribeResponse{Name: def.Name(), Description: def.Description(), Arguments: def.Arguments()}
	if resp.Arguments == nil {
		resp.Arguments = []domain.Argument{}
	}
	return resp, nil
}

func (s *Server) handleBuild(ctx context.Context, request mcp.CallToolRequest, args PlanArgs) (BuildResponse, error) {
	lp, err := s.engine.Build(ctx, args.Name, args.Arguments)
	if err != nil {
		slog.Warn("MCP build failed", "plan", args.Name, "error", err)
		return BuildResponse{}, fmt.Errorf("build failed: %w", err)
	}
	return BuildResponse{
		Plan:      lp.Name,
		Arguments: lp.Arguments.Map(),
		Nodes:     lp.Nodes(),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(PlansURI, "Launch plans",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		var out []DescribeResponse
		names, err := s.engine.Plans()
		if err != nil {
			return nil, fmt.Errorf("failed to list plans: %w", err)
		}
		for _, name := range names {
			def, err := s.engine.Describe(name)
			if err != nil {
				return nil, fmt.Errorf("failed to describe %s: %w", name, err)
			}
			out = append(out, DescribeResponse{Name: def.Name(), Description: def.Description(), Arguments: def.Arguments()})
		}
		jsonBytes, _ := json.Marshal(out)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      PlansURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
