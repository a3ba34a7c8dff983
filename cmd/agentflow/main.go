package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(os.Args[2:])
	case "schedule":
		err = runSchedule(os.Args[2:])
	case "simulate":
		err = runSimulate(os.Args[2:])
	case "presets":
		err = runPresets(os.Args[2:])
	case "agents":
		err = runAgents(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "version", "--version", "-v":
		printVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: agentflow <command> [flags]

Commands:
  generate   Synthesize an agent pipeline from a task description
  schedule   Order a pipeline into parallel steps and print the plan
  simulate   Simulate a timed run of a pipeline
  presets    List built-in pipelines, or print one by id
  agents     List the available agent types
  serve      Run the MCP server on stdio
  version    Print version

Pipelines are read from --text, --preset or --file (JSON or YAML, "-" for stdin).
Configuration: ~/.agentflow/config.yaml or $AGENTFLOW_CONFIG.
`)
}
