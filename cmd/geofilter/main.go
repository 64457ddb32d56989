package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	// optional, env vars back every flag
	_ = godotenv.Load()

	args := os.Args[1:]
	cmd := "run"
	if len(args) > 0 {
		switch args[0] {
		case "run", "filter", "history":
			cmd, args = args[0], args[1:]
		case "version":
			fmt.Println("geofilter " + version)
			return
		case "help":
			printUsage()
			return
		}
	}

	var err error
	switch cmd {
	case "run":
		err = runPipelines(args)
	case "filter":
		err = runFilter(args)
	case "history":
		err = runHistory(args)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, errHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		return 1
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `geofilter - keep GeoJSON features that relate to a boundary polygon

Usage:
  geofilter [run] [flags]     Run the pipelines from the config file (default)
  geofilter filter [flags]    Filter one feature file against a boundary
  geofilter history [flags]   Show recorded runs (-i for the interactive browser)
  geofilter version           Show version

Run 'geofilter <command> --help' for flags.
`)
}
