package diagnostics

import (
	"fmt"

	"github.com/rill-lang/rill/internal/token"
)

// Code identifies a diagnostic kind. The letter names the producing stage:
// L = lexer, P = parser, A = analyzer.
type Code string

const (
	ErrL001 Code = "L001" // illegal character
	ErrP001 Code = "P001" // unexpected token
	ErrP002 Code = "P002" // no prefix parse rule for token
	ErrP003 Code = "P003" // invalid assignment target
	ErrP006 Code = "P006" // structural limit exceeded / misplaced statement
	ErrA001 Code = "A001" // unresolved identifier
	ErrA002 Code = "A002" // unresolved capture in anonymous function
	ErrA003 Code = "A003" // variable capture disabled by configuration
)

// DiagnosticError is a positioned, coded error from the compile stages.
type DiagnosticError struct {
	Code    Code
	Line    int
	Column  int
	Message string
}

func NewError(code Code, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *DiagnosticError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %d:%d: %s", e.Code, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
