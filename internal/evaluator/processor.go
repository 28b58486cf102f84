package evaluator

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/pipeline"
)

// EvalProcessor is the execution stage of the pipeline. It runs only when
// the earlier stages produced no diagnostics.
type EvalProcessor struct {
	Eval *Evaluator
	Env  *Environment
}

func NewEvalProcessor(e *Evaluator, env *Environment) *EvalProcessor {
	return &EvalProcessor{Eval: e, Env: env}
}

func (ep *EvalProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Errors) > 0 {
		return ctx
	}
	program, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		return ctx
	}
	if ctx.Config != nil {
		ep.Eval.Config = ctx.Config
	}
	ep.Eval.CurrentFile = ctx.FilePath
	ctx.Result = ep.Eval.Eval(program, ep.Env)
	return ctx
}
