package lexer

import (
	"github.com/rill-lang/rill/internal/diagnostics"
	"github.com/rill-lang/rill/internal/pipeline"
	"github.com/rill-lang/rill/internal/token"
)

// LexerProcessor is the tokenizing stage of the pipeline.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	tokens := Tokenize(ctx.Source)
	for _, tok := range tokens {
		if tok.Type == token.ILLEGAL {
			ctx.Errors = append(ctx.Errors, diagnostics.NewError(
				diagnostics.ErrL001, tok, "illegal character %q", tok.Lexeme,
			))
		}
	}
	ctx.Tokens = tokens
	return ctx
}
