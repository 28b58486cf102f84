package parser

import (
	"github.com/rill-lang/rill/internal/pipeline"
)

// ParserProcessor is the parsing stage of the pipeline.
type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	p := New(ctx.Tokens)
	program := p.ParseProgram()
	program.File = ctx.FilePath
	ctx.AstRoot = program
	ctx.Errors = append(ctx.Errors, p.Errors()...)
	return ctx
}
