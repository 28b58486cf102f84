package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/rill-lang/rill/internal/analyzer"
	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/evaluator"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/pipeline"
)

// runREPL reads and evaluates lines against one persistent scope, so
// variables, functions and captured cells survive between entries.
func runREPL(cfg *config.Config) {
	fmt.Println("rill repl (Ctrl-D to exit)")

	rl, err := readline.New(">> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer rl.Close()

	eval := evaluator.NewWithConfig(cfg)
	env := evaluator.NewEnvironment()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err != io.EOF {
				fmt.Fprintln(os.Stderr, err)
			}
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		ctx := pipeline.NewPipelineContext(line)
		ctx.FilePath = "<repl>"
		ctx.Config = cfg

		p := pipeline.New(
			&lexer.LexerProcessor{},
			&parser.ParserProcessor{},
			&analyzer.AnalyzerProcessor{Predeclared: append(env.Names(), eval.FunctionNames()...)},
			evaluator.NewEvalProcessor(eval, env),
		)
		ctx = p.Run(ctx)

		if len(ctx.Errors) > 0 {
			for _, e := range ctx.Errors {
				fmt.Fprintf(os.Stderr, "- %s\n", e.Error())
			}
			continue
		}
		if obj, ok := ctx.Result.(evaluator.Object); ok && obj != nil && obj.Type() != evaluator.NIL_OBJ {
			fmt.Println(obj.Inspect())
		}
	}
	fmt.Println()
}
