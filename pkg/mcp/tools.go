package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rendis/agentflow/internal/analysis"
	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/internal/engine"
	"github.com/rendis/agentflow/internal/export"
	"github.com/rendis/agentflow/internal/graphio"
	"github.com/rendis/agentflow/internal/identity"
	"github.com/rendis/agentflow/internal/pipeline"
	"github.com/rendis/agentflow/pkg/schema"
)

// handleGenerate synthesizes a graph from task text.
func (s *Server) handleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil || text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	graph, res := s.synth.Synthesize(generator(req), text, req.GetString("name", ""))

	return marshalResult(map[string]any{
		"graph":    graph,
		"analysis": summarize(res),
	})
}

// handleSchedule orders a graph into steps and returns the plan document.
func (s *Server) handleSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, errResult := s.resolveGraph(req)
	if errResult != nil {
		return errResult, nil
	}
	steps, err := s.schedule(src.graph, req.GetBool("strict", s.strict))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schedule failed: %v", err)), nil
	}

	return marshalResult(map[string]any{
		"plan":     export.BuildPlan(req.GetString("name", ""), src.graph, steps),
		"warnings": src.warnings,
	})
}

// handleSimulate schedules a graph and simulates a full run.
func (s *Server) handleSimulate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, errResult := s.resolveGraph(req)
	if errResult != nil {
		return errResult, nil
	}
	steps, err := s.schedule(src.graph, s.strict)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schedule failed: %v", err)), nil
	}

	opts := append([]engine.SimulatorOption{
		engine.WithLogger(s.logger),
		engine.WithHub(newProgressNotifier(s.mcpServer, s.hub)),
	}, s.simOpts...)
	args := req.GetArguments()
	if _, ok := args["seed"]; ok {
		opts = append(opts, engine.WithSeed(uint64(req.GetInt("seed", 0))))
	}
	if _, ok := args["time_scale"]; ok {
		opts = append(opts, engine.WithTimeScale(req.GetFloat("time_scale", 1)))
	}
	if expr := req.GetString("fail_when", ""); expr != "" {
		opts = append(opts, engine.WithFailWhen(expr))
	}

	sim, err := engine.NewSimulator(opts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid simulation settings: %v", err)), nil
	}

	state, runErr := sim.Run(ctx, steps, nil)
	out := map[string]any{"state": state, "completed": state != nil && state.Completed()}
	if runErr != nil {
		out["error"] = runErr.Error()
	}
	return marshalResult(out)
}

// handleQuery runs a jq expression over the plan document of a graph.
func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expression, err := req.RequireString("expression")
	if err != nil || expression == "" {
		return mcp.NewToolResultError("expression is required"), nil
	}
	src, errResult := s.resolveGraph(req)
	if errResult != nil {
		return errResult, nil
	}
	steps, err := s.schedule(src.graph, s.strict)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schedule failed: %v", err)), nil
	}

	result, err := export.Query(ctx, export.BuildPlan(req.GetString("name", ""), src.graph, steps), expression)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return marshalResult(map[string]any{"result": result})
}

// handlePresets lists the built-in pipelines.
func (s *Server) handlePresets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs := pipeline.Presets()
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		out[i] = map[string]any{
			"id":          d.ID,
			"name":        d.Name,
			"description": d.Description,
			"agents":      len(d.Nodes),
		}
	}
	return marshalResult(map[string]any{"presets": out})
}

// handleAgents lists the catalog, optionally filtered by category.
func (s *Server) handleAgents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kinds := s.catalog.List()
	if cat := req.GetString("category", ""); cat != "" {
		kinds = s.catalog.ByCategory(catalog.Category(cat))
		if len(kinds) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s", cat)), nil
		}
	}
	return marshalResult(map[string]any{"agents": kinds, "count": len(kinds)})
}

// --- Helpers ---

type graphSourceResult struct {
	graph    *schema.Graph
	warnings []schema.ValidationIssue
}

// resolveGraph builds the graph named by exactly one of text, preset or
// document. A non-nil CallToolResult is the error to return to the client.
func (s *Server) resolveGraph(req mcp.CallToolRequest) (*graphSourceResult, *mcp.CallToolResult) {
	args := req.GetArguments()
	text := req.GetString("text", "")
	preset := req.GetString("preset", "")
	document, hasDocument := args["document"]

	given := 0
	for _, ok := range []bool{text != "", preset != "", hasDocument && document != nil} {
		if ok {
			given++
		}
	}
	if given != 1 {
		return nil, mcp.NewToolResultError("exactly one of text, preset or document is required")
	}

	gen := generator(req)
	switch {
	case text != "":
		graph, _ := s.synth.Synthesize(gen, text, req.GetString("name", ""))
		return &graphSourceResult{graph: graph}, nil

	case preset != "":
		doc, err := pipeline.Preset(preset)
		if err != nil {
			return nil, mcp.NewToolResultError(err.Error())
		}
		return materialize(gen, &doc)

	default:
		var data []byte
		if raw, ok := document.(string); ok {
			data = []byte(raw)
		} else {
			var err error
			if data, err = json.Marshal(document); err != nil {
				return nil, mcp.NewToolResultError(fmt.Sprintf("invalid document: %v", err))
			}
		}
		doc, err := graphio.Parse(data)
		if err != nil {
			return nil, mcp.NewToolResultError(fmt.Sprintf("invalid document: %v", err))
		}
		return materialize(gen, doc)
	}
}

func materialize(gen identity.Generator, doc *schema.PipelineDocument) (*graphSourceResult, *mcp.CallToolResult) {
	graph, result, err := graphio.Materialize(gen, doc)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err))
	}
	return &graphSourceResult{graph: graph, warnings: result.Warnings}, nil
}

func (s *Server) schedule(g *schema.Graph, strict bool) ([]schema.Step, error) {
	if strict {
		return engine.ScheduleStrict(g.Nodes, g.Edges)
	}
	return engine.Schedule(g.Nodes, g.Edges), nil
}

func generator(req mcp.CallToolRequest) identity.Generator {
	if req.GetString("ids", "") == "uuid" {
		return identity.NewUUID()
	}
	return identity.NewSequential()
}

func summarize(res *analysis.Result) map[string]any {
	return map[string]any{
		"taskType":            res.TaskType,
		"complexity":          res.Complexity,
		"scores":              res.Scores,
		"flags":               res.Flags,
		"suggestedAgentCount": res.SuggestedAgentCount,
	}
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
