package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/internal/engine"
	"github.com/rendis/agentflow/internal/export"
	"github.com/rendis/agentflow/internal/logging"
	"github.com/rendis/agentflow/internal/pipeline"
	"github.com/rendis/agentflow/internal/streaming"
	"github.com/rendis/agentflow/pkg/mcp"
	"github.com/rendis/agentflow/pkg/schema"
)

// env is the state every command starts from.
type env struct {
	cfg    Config
	logger *slog.Logger
	synth  *pipeline.Synthesizer
}

func setup(configFile string) (*env, error) {
	if configFile == "" {
		configFile = configPath()
	}
	cfg, err := loadConfig(configFile)
	if err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(os.Stderr, level, cfg.LogFormat)

	synth, err := pipeline.NewSynthesizer(pipeline.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("init synthesizer: %w", err)
	}
	return &env{cfg: cfg, logger: logger, synth: synth}, nil
}

func (e *env) schedule(g *schema.Graph, strict bool) ([]schema.Step, error) {
	if strict || e.cfg.StrictSchedule {
		return engine.ScheduleStrict(g.Nodes, g.Edges)
	}
	return engine.Schedule(g.Nodes, g.Edges), nil
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configFile := fs.String("config", "", "config file path")
	name := fs.String("name", "", "pipeline name")
	ids := fs.String("ids", "sequential", "node id style: sequential or uuid")
	showAnalysis := fs.Bool("analysis", false, "include the classification in the output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")
	if text == "" {
		return fmt.Errorf("usage: agentflow generate [flags] <task description>")
	}

	e, err := setup(*configFile)
	if err != nil {
		return err
	}
	src := &sourceFlags{ids: ids}
	gen, err := src.generator()
	if err != nil {
		return err
	}

	graph, res := e.synth.Synthesize(gen, text, *name)
	if *showAnalysis {
		return writeJSON(os.Stdout, map[string]any{"graph": graph, "analysis": res})
	}
	return writeJSON(os.Stdout, graph)
}

func runSchedule(args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	configFile := fs.String("config", "", "config file path")
	src := addSourceFlags(fs)
	strict := fs.Bool("strict", false, "fail on dependency cycles instead of using an overflow step")
	query := fs.String("query", "", "jq expression to run over the plan")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := setup(*configFile)
	if err != nil {
		return err
	}
	graph, err := src.load(fs.Args(), e.synth, os.Stderr)
	if err != nil {
		return err
	}
	steps, err := e.schedule(graph, *strict)
	if err != nil {
		return err
	}

	plan := export.BuildPlan(*src.name, graph, steps)
	if *query == "" {
		return writeJSON(os.Stdout, plan)
	}
	out, err := export.Query(context.Background(), plan, *query)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, out)
}

func runSimulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	configFile := fs.String("config", "", "config file path")
	src := addSourceFlags(fs)
	strict := fs.Bool("strict", false, "fail on dependency cycles instead of using an overflow step")
	seed := fs.Int64("seed", -1, "seed for reproducible durations (-1: config or random)")
	timeScale := fs.Float64("time-scale", -1, "multiplier for simulated durations (-1: config)")
	failWhen := fs.String("fail-when", "", "CEL predicate marking an attempt as failed")
	quiet := fs.Bool("quiet", false, "do not print progress lines")
	events := fs.Bool("events", false, "write run events to stderr as JSON lines instead of progress lines")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := setup(*configFile)
	if err != nil {
		return err
	}
	graph, err := src.load(fs.Args(), e.synth, os.Stderr)
	if err != nil {
		return err
	}
	steps, err := e.schedule(graph, *strict)
	if err != nil {
		return err
	}

	hub, closeHub, err := connectHub(e.cfg.NATS, e.logger)
	if err != nil {
		return err
	}
	defer closeHub()

	if hub == nil && *events {
		hub = streaming.NewMemoryHubSize(eventBuffer)
	}

	opts := append(e.cfg.simulatorOptions(), engine.WithLogger(e.logger))
	if hub != nil {
		opts = append(opts, engine.WithHub(hub))
	}
	if *seed >= 0 {
		opts = append(opts, engine.WithSeed(uint64(*seed)))
	}
	if *timeScale >= 0 {
		opts = append(opts, engine.WithTimeScale(*timeScale))
	}
	if *failWhen != "" {
		opts = append(opts, engine.WithFailWhen(*failWhen))
	}
	sim, err := engine.NewSimulator(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress func(schema.ExecutionState)
	switch {
	case *events:
		stopEvents, err := streamEvents(ctx, hub, os.Stderr)
		if err != nil {
			return err
		}
		defer stopEvents()
	case !*quiet:
		progress = newProgressPrinter(os.Stderr).update
	}
	ctl := engine.NewRunController(sim)
	res := <-ctl.Start(ctx, steps, progress)
	if res.State != nil {
		if err := writeJSON(os.Stdout, res.State); err != nil {
			return err
		}
	}
	if res.Err == nil && res.State != nil && res.State.Cancelled {
		return fmt.Errorf("simulation cancelled")
	}
	return res.Err
}

func runPresets(args []string) error {
	fs := flag.NewFlagSet("presets", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if id := fs.Arg(0); id != "" {
		doc, err := pipeline.Preset(id)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, doc)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAGENTS\tDESCRIPTION")
	for _, d := range pipeline.Presets() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.ID, d.Name, len(d.Nodes), d.Description)
	}
	return w.Flush()
}

func runAgents(args []string) error {
	fs := flag.NewFlagSet("agents", flag.ExitOnError)
	category := fs.String("category", "", "only list agents of this category")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat := catalog.Default()
	kinds := cat.List()
	if *category != "" {
		kinds = cat.ByCategory(catalog.Category(*category))
		if len(kinds) == 0 {
			return fmt.Errorf("unknown category %q", *category)
		}
	}
	if *asJSON {
		return writeJSON(os.Stdout, kinds)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tMODEL\tDESCRIPTION")
	for _, k := range kinds {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", k.ID, k.Category, k.DefaultModel, k.Description)
	}
	return w.Flush()
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFile := fs.String("config", "", "config file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := setup(*configFile)
	if err != nil {
		return err
	}
	hub, closeHub, err := connectHub(e.cfg.NATS, e.logger)
	if err != nil {
		return err
	}
	defer closeHub()

	srv, err := mcp.NewServer(mcp.ServerDeps{
		Synthesizer:      e.synth,
		SimulatorOptions: e.cfg.simulatorOptions(),
		Hub:              hub,
		Strict:           e.cfg.StrictSchedule,
		Logger:           e.logger,
		Version:          version,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.logger.Info("mcp server listening on stdio", slog.String("version", version))
	return srv.Serve(ctx)
}
