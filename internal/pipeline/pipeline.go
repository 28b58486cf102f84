package pipeline

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/diagnostics"
	"github.com/rill-lang/rill/internal/token"
)

// PipelineContext carries the intermediate state between processing stages.
type PipelineContext struct {
	Source   string
	FilePath string
	Config   *config.Config

	Tokens  []token.Token
	AstRoot ast.Node
	Errors  []*diagnostics.DiagnosticError

	// Result is the final value produced by the execution stage, if any.
	// It is declared as interface{} so the pipeline package does not depend
	// on the evaluator's object model.
	Result interface{}
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{Source: source, Config: config.Default()}
}

// Processor is a single stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages run even after earlier errors so that
// diagnostics from all stages are collected; the execution stage itself is
// expected to bail out when ctx.Errors is non-empty.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
