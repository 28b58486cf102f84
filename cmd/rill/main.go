package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"

	"github.com/rill-lang/rill/internal/analyzer"
	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/evaluator"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/pipeline"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("rill")

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	configPath := flag.String("c", "", "path to YAML config file")
	noCapture := flag.Bool("no-capture", false, "disable variable capture in anonymous functions")
	syncCells := flag.Bool("sync-cells", false, "mutex-guard shared cells for multi-goroutine hosts")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	// Flags override file values
	if *noCapture {
		cfg.DisableCapture = true
	}
	if *syncCells {
		cfg.SyncCells = true
	}

	args := flag.Args()
	if len(args) == 0 {
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			runREPL(cfg)
			return
		}
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			os.Exit(1)
		}
		runSource(string(source), "<stdin>", cfg)
		return
	}

	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(1)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	runSource(string(source), path, cfg)
}

func runSource(source, filePath string, cfg *config.Config) {
	log.Debugf("running %s (%d bytes)", filePath, len(source))

	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = filePath
	ctx.Config = cfg

	eval := evaluator.NewWithConfig(cfg)
	env := evaluator.NewEnvironment()

	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.AnalyzerProcessor{},
		evaluator.NewEvalProcessor(eval, env),
	)
	finalCtx := p.Run(ctx)

	if len(finalCtx.Errors) > 0 {
		fmt.Fprintln(os.Stderr, "Processing failed with errors:")
		for _, err := range finalCtx.Errors {
			fmt.Fprintf(os.Stderr, "- %s\n", err.Error())
		}
		os.Exit(1)
	}

	if obj, ok := finalCtx.Result.(evaluator.Object); ok && obj != nil {
		if obj.Type() == evaluator.ERROR_OBJ {
			fmt.Fprintln(os.Stderr, obj.Inspect())
			os.Exit(1)
		}
	}
}
