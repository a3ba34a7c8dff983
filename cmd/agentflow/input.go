package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rendis/agentflow/internal/graphio"
	"github.com/rendis/agentflow/internal/identity"
	"github.com/rendis/agentflow/internal/pipeline"
	"github.com/rendis/agentflow/pkg/schema"
)

// sourceFlags are the graph input flags shared by schedule and simulate.
type sourceFlags struct {
	text   *string
	preset *string
	file   *string
	name   *string
	ids    *string
}

func addSourceFlags(fs *flag.FlagSet) *sourceFlags {
	return &sourceFlags{
		text:   fs.String("text", "", "task description to synthesize a pipeline from"),
		preset: fs.String("preset", "", "built-in preset id"),
		file:   fs.String("file", "", `pipeline document (JSON or YAML), "-" for stdin`),
		name:   fs.String("name", "", "pipeline name"),
		ids:    fs.String("ids", "sequential", "node id style: sequential or uuid"),
	}
}

func (f *sourceFlags) generator() (identity.Generator, error) {
	switch *f.ids {
	case "sequential", "":
		return identity.NewSequential(), nil
	case "uuid":
		return identity.NewUUID(), nil
	default:
		return nil, fmt.Errorf("--ids must be sequential or uuid, got %q", *f.ids)
	}
}

// load builds the graph from exactly one source. Positional arguments are
// taken as task text when no flag is given. Import warnings go to warn.
func (f *sourceFlags) load(args []string, synth *pipeline.Synthesizer, warn io.Writer) (*schema.Graph, error) {
	text := *f.text
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}
	given := 0
	for _, s := range []string{text, *f.preset, *f.file} {
		if s != "" {
			given++
		}
	}
	if given != 1 {
		return nil, errors.New("exactly one of --text, --preset or --file is required")
	}

	gen, err := f.generator()
	if err != nil {
		return nil, err
	}

	var graph *schema.Graph
	var result *schema.ValidationResult
	switch {
	case text != "":
		graph, _ = synth.Synthesize(gen, text, *f.name)
		return graph, nil
	case *f.preset != "":
		doc, err := pipeline.Preset(*f.preset)
		if err != nil {
			return nil, err
		}
		graph, result, err = graphio.Materialize(gen, &doc)
		if err != nil {
			return nil, err
		}
	default:
		data, err := readInput(*f.file)
		if err != nil {
			return nil, err
		}
		graph, result, err = graphio.Import(gen, data)
		if err != nil {
			return nil, err
		}
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(warn, "warning: %s\n", w)
	}
	if *f.name != "" {
		graph.Name = *f.name
	}
	return graph, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
