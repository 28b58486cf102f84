package analyzer

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/pipeline"
)

// AnalyzerProcessor is the resolution stage of the pipeline.
type AnalyzerProcessor struct {
	// Predeclared names are treated as existing script variables
	// (REPL session state, host bindings).
	Predeclared []string
}

func (ap *AnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		return ctx
	}
	a := New(ctx.Config)
	if len(ap.Predeclared) > 0 {
		a.Predeclare(ap.Predeclared)
	}
	a.Analyze(program)
	ctx.Errors = append(ctx.Errors, a.Errors()...)
	return ctx
}
