package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/olehluchkiv/lessons/internal/checker"
	"github.com/olehluchkiv/lessons/internal/diagram"
	"github.com/olehluchkiv/lessons/internal/feed"
	"github.com/olehluchkiv/lessons/internal/list"
	"github.com/olehluchkiv/lessons/internal/logging"
	"github.com/olehluchkiv/lessons/internal/resolver"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Flags may follow the positional arguments ("lessons check ./dir -mermaid"),
	// which the flag package does not allow, so split them up front.
	flags, positional := reorderArgs(args)

	fs := flag.NewFlagSet("lessons", flag.ContinueOnError)
	fs.SetOutput(stderr)
	demo := fs.String("demo", "all", "demo to run when no command is given (all, feed, list)")
	mermaid := fs.Bool("mermaid", false, "check: print a Mermaid classDiagram instead of a text report")
	showRejected := fs.Bool("show-rejected", false, "check: draw bindings that neither assign nor adapt in the Mermaid diagram")
	strict := fs.Bool("strict", false, "check: exit 1 when the analysed module has build-time rejections")
	filter := fs.String("filter", "", "check: package path prefix filter")
	includeStdlib := fs.Bool("include-stdlib", false, "check: also match against common stdlib interfaces (fmt, io, sort, context)")
	includeUnexported := fs.Bool("include-unexported", false, "check: include unexported declarations")
	logFile := fs.String("log-file", "logs/lessons.log", "log file path")
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")

	if err := fs.Parse(flags); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	positional = append(positional, fs.Args()...)

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid log level %q: %v\n", *logLevel, err)
		return 1
	}

	logger, logCleanup, err := logging.Setup(*logFile, level)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to setup logging: %v\n", err)
		return 1
	}
	defer logCleanup()

	if len(positional) == 0 {
		return runDemo(*demo, stdout, stderr, logger)
	}

	switch positional[0] {
	case "check":
		if len(positional) < 2 {
			fmt.Fprintln(stderr, "Usage: lessons [flags] check <path>")
			return 1
		}
		opts := checker.Options{
			Filter:            *filter,
			IncludeStdlib:     *includeStdlib,
			IncludeUnexported: *includeUnexported,
		}
		var diagramOpts *diagram.Options
		if *mermaid {
			d := diagram.DefaultOptions()
			d.ShowRejected = *showRejected
			diagramOpts = &d
		}
		return runCheck(positional[1], opts, diagramOpts, *strict, stdout, stderr, logger)
	default:
		fmt.Fprintf(stderr, "Unknown command %q\n", positional[0])
		fmt.Fprintln(stderr, "Usage: lessons [flags] [check <path>]")
		fs.PrintDefaults()
		return 1
	}
}

func runDemo(name string, stdout, stderr io.Writer, logger *slog.Logger) int {
	switch name {
	case "all", "feed", "list":
	default:
		fmt.Fprintf(stderr, "Unknown demo %q (valid: all, feed, list)\n", name)
		return 1
	}

	if name == "all" || name == "list" {
		l := list.New()
		l.Push(1)
		l.Push(2)
		logger.Info("list built", "values", l.Values(), "len", l.Len())
	}

	if name == "all" || name == "feed" {
		keeper := feed.NewKeeper(stdout, logger)
		keeper.Run()
		if err := keeper.Err(); err != nil {
			logger.Error("feed demo failed", "error", err)
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

// runCheck prints a text report, or a Mermaid diagram when diagramOpts is set.
func runCheck(input string, opts checker.Options, diagramOpts *diagram.Options, strict bool, stdout, stderr io.Writer, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir, err := resolver.Resolve(input, logger)
	if err != nil {
		logger.Error("failed to resolve input", "error", err)
		fmt.Fprintf(stderr, "Error resolving input: %v\n", err)
		return 1
	}

	report, err := checker.Analyze(ctx, dir, opts, logger)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		fmt.Fprintf(stderr, "Error analyzing packages: %v\n", err)
		return 1
	}
	report = checker.Filter(report, opts)

	if diagramOpts != nil {
		_, err = fmt.Fprintln(stdout, diagram.GenerateMermaid(report, *diagramOpts))
	} else {
		err = checker.WriteText(stdout, report)
	}
	if err != nil {
		logger.Error("failed to write report", "error", err)
		return 1
	}

	if rejections := report.Rejections(); strict && len(rejections) > 0 {
		logger.Warn("module has build-time rejections", "count", len(rejections))
		return 1
	}
	return 0
}

// reorderArgs separates flags and positional arguments so flags can appear
// in any position. Flags that take a value (e.g., -demo feed) consume the
// next arg.
func reorderArgs(args []string) (flags, positional []string) {
	valueFlagSet := map[string]bool{
		"-demo": true, "-filter": true, "-log-file": true, "-log-level": true,
		"--demo": true, "--filter": true, "--log-file": true, "--log-level": true,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			if !strings.Contains(arg, "=") && valueFlagSet[arg] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}
	return flags, positional
}
