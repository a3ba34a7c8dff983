package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/internal/engine"
	"github.com/rendis/agentflow/internal/pipeline"
	"github.com/rendis/agentflow/internal/streaming"
)

// ServerDeps holds the dependencies for creating a Server. Zero values are
// replaced by defaults.
type ServerDeps struct {
	Synthesizer *pipeline.Synthesizer
	Catalog     *catalog.Catalog
	// SimulatorOptions are applied to every simulate call before the
	// per-call overrides.
	SimulatorOptions []engine.SimulatorOption
	Hub              streaming.Hub
	Strict           bool
	Logger           *slog.Logger
	Version          string
}

// Server wraps an MCP server with the agentflow tool handlers.
type Server struct {
	synth     *pipeline.Synthesizer
	catalog   *catalog.Catalog
	simOpts   []engine.SimulatorOption
	hub       streaming.Hub
	strict    bool
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a Server with all 6 tools registered.
func NewServer(deps ServerDeps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	synth := deps.Synthesizer
	if synth == nil {
		var err error
		synth, err = pipeline.NewSynthesizer(pipeline.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}
	cat := deps.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		synth:   synth,
		catalog: cat,
		simOpts: deps.SimulatorOptions,
		hub:     deps.Hub,
		strict:  deps.Strict,
		logger:  logger,
	}

	mcpSrv := server.NewMCPServer(
		"agentflow",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("agentflow builds multi-agent pipelines. Use agentflow.generate to turn a task description into an agent graph, agentflow.schedule to order a graph into parallel steps, agentflow.simulate to replay the plan, agentflow.query to run jq over a plan, and agentflow.presets / agentflow.agents to browse built-in pipelines and agent types."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s, nil
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: generateTool(), Handler: s.handleGenerate},
		{Tool: scheduleTool(), Handler: s.handleSchedule},
		{Tool: simulateTool(), Handler: s.handleSimulate},
		{Tool: queryTool(), Handler: s.handleQuery},
		{Tool: presetsTool(), Handler: s.handlePresets},
		{Tool: agentsTool(), Handler: s.handleAgents},
	}
}

// --- Tool definitions ---

// Every graph-consuming tool takes exactly one of text, preset or document.
func graphSource() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("text", mcp.Description("Task description to synthesize a pipeline from")),
		mcp.WithString("preset", mcp.Description("ID of a built-in preset pipeline")),
		mcp.WithObject("document", mcp.Description("Pipeline document: {name, nodes:[{agentType, model, prompt}], edges:[[source, target]]}")),
		mcp.WithString("name", mcp.Description("Pipeline name")),
		mcp.WithString("ids", mcp.Enum("sequential", "uuid"), mcp.Description("Node id style (default: sequential)")),
	}
}

func generateTool() mcp.Tool {
	return mcp.NewTool("agentflow.generate",
		mcp.WithDescription("Synthesize an agent graph from a task description"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Task description")),
		mcp.WithString("name", mcp.Description("Pipeline name")),
		mcp.WithString("ids", mcp.Enum("sequential", "uuid"), mcp.Description("Node id style (default: sequential)")),
	)
}

func scheduleTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Order a pipeline into parallel execution steps and return the plan document"),
		mcp.WithBoolean("strict", mcp.Description("Fail on dependency cycles instead of using an overflow step")),
	}, graphSource()...)
	return mcp.NewTool("agentflow.schedule", opts...)
}

func simulateTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Simulate a timed run of a pipeline and return the final execution state"),
		mcp.WithNumber("seed", mcp.Description("Seed for reproducible durations")),
		mcp.WithNumber("time_scale", mcp.Description("Multiplier for simulated durations (0 runs instantly)")),
		mcp.WithString("fail_when", mcp.Description("CEL predicate over agent and attempt marking an attempt as failed")),
	}, graphSource()...)
	return mcp.NewTool("agentflow.simulate", opts...)
}

func queryTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Run a jq expression over the plan document of a pipeline"),
		mcp.WithString("expression", mcp.Required(), mcp.Description("jq expression, e.g. .steps[] | select(.parallel) | .step")),
	}, graphSource()...)
	return mcp.NewTool("agentflow.query", opts...)
}

func presetsTool() mcp.Tool {
	return mcp.NewTool("agentflow.presets",
		mcp.WithDescription("List the built-in preset pipelines"),
	)
}

func agentsTool() mcp.Tool {
	return mcp.NewTool("agentflow.agents",
		mcp.WithDescription("List the agent types available to pipelines"),
		mcp.WithString("category", mcp.Description("Only list agents of this category")),
	)
}
