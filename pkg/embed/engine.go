package rill

import (
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/rill-lang/rill/internal/analyzer"
	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/evaluator"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/pipeline"
)

var log = commonlog.GetLogger("rill.engine")

// Engine is the host embedding API. One Engine holds one global scope:
// variables persist across Eval calls, and values bound from Go are
// visible to scripts as globals.
type Engine struct {
	cfg        *config.Config
	eval       *evaluator.Evaluator
	env        *evaluator.Environment
	marshaller *Marshaller
}

func New() *Engine {
	return NewWithConfig(config.Default())
}

func NewWithConfig(cfg *config.Config) *Engine {
	return &Engine{
		cfg:        cfg,
		eval:       evaluator.NewWithConfig(cfg),
		env:        evaluator.NewEnvironment(),
		marshaller: NewMarshaller(),
	}
}

// SetStdout redirects the script's print output.
func (eng *Engine) SetStdout(w interface{ Write([]byte) (int, error) }) {
	eng.eval.Stdout = w
}

// Bind makes a Go value or function available to scripts under the given
// name. Functions are wrapped so that script values are converted to the
// function's parameter types on each call and the result converted back.
func (eng *Engine) Bind(name string, val interface{}) error {
	var obj evaluator.Object
	if fn, ok := bindableFunc(val); ok {
		obj = eng.wrapFunc(name, fn)
	} else {
		var err error
		obj, err = eng.marshaller.ToValue(val)
		if err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	eng.env.Declare(name, obj)
	log.Debugf("bound %s", name)
	return nil
}

// Get reads a global variable and converts it to a Go value. A *FnPtr
// comes back as a *Closure handle.
func (eng *Engine) Get(name string) (interface{}, error) {
	obj, ok := eng.env.Get(name)
	if !ok {
		return nil, fmt.Errorf("variable '%s' not found", name)
	}
	return eng.export(obj)
}

// Eval runs a chunk of source against the engine's global scope and
// returns the value of the last expression.
func (eng *Engine) Eval(source string) (interface{}, error) {
	return eng.evalNamed(source, "<eval>")
}

// EvalFile runs a script file.
func (eng *Engine) EvalFile(path string) (interface{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return eng.evalNamed(string(content), path)
}

func (eng *Engine) evalNamed(source, name string) (interface{}, error) {
	log.Debugf("evaluating %s (%d bytes)", name, len(source))

	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = name
	ctx.Config = eng.cfg

	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.AnalyzerProcessor{Predeclared: append(eng.env.Names(), eng.eval.FunctionNames()...)},
		evaluator.NewEvalProcessor(eng.eval, eng.env),
	)
	ctx = p.Run(ctx)

	if len(ctx.Errors) > 0 {
		var sb strings.Builder
		sb.WriteString("errors during compilation:")
		for _, e := range ctx.Errors {
			sb.WriteString("\n")
			sb.WriteString(e.Error())
		}
		return nil, fmt.Errorf("%s", sb.String())
	}

	obj, ok := ctx.Result.(evaluator.Object)
	if !ok || obj == nil {
		return nil, nil
	}
	return eng.export(obj)
}

// Call invokes a named function or a global FnPtr variable with Go
// arguments.
func (eng *Engine) Call(name string, args ...interface{}) (interface{}, error) {
	var fp *evaluator.FnPtr
	if obj, ok := eng.env.Get(name); ok {
		p, isPtr := derefObject(obj).(*evaluator.FnPtr)
		if !isPtr {
			return nil, fmt.Errorf("'%s' is not callable", name)
		}
		fp = p
	} else if fn, ok := eng.eval.LookupFunction(name); ok {
		fp = &evaluator.FnPtr{Fn: fn}
	} else {
		return nil, fmt.Errorf("function '%s' not found", name)
	}
	return eng.callFnPtr(fp, args)
}

func (eng *Engine) callFnPtr(fp *evaluator.FnPtr, args []interface{}) (interface{}, error) {
	objArgs := make([]evaluator.Object, len(args))
	for i, arg := range args {
		obj, err := eng.marshaller.ToValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		objArgs[i] = obj
	}
	return eng.export(eng.eval.CallFnPtr(fp, objArgs))
}

// export converts an evaluator result for the host. Script faults become
// Go errors; function pointers become Closure handles.
func (eng *Engine) export(obj evaluator.Object) (interface{}, error) {
	switch o := derefObject(obj).(type) {
	case *evaluator.Error:
		return nil, fmt.Errorf("%s", o.Inspect())
	case *evaluator.FnPtr:
		return &Closure{engine: eng, fp: o}, nil
	default:
		return eng.marshaller.FromValue(o, nil)
	}
}

// Closure is the host-side handle to a script function pointer. The
// pointer stays valid after the scope that produced it is gone; captured
// variables live on in its pre-bound cells.
type Closure struct {
	engine *Engine
	fp     *evaluator.FnPtr
}

// Call invokes the closure with Go arguments.
func (c *Closure) Call(args ...interface{}) (interface{}, error) {
	return c.engine.callFnPtr(c.fp, args)
}

// Arity reports how many arguments a call still needs.
func (c *Closure) Arity() int {
	return len(c.fp.Fn.Parameters) - len(c.fp.Bound)
}

func derefObject(obj evaluator.Object) evaluator.Object {
	if cell, ok := obj.(*evaluator.SharedCell); ok {
		return cell.Get()
	}
	return obj
}
