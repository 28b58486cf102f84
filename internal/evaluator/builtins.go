package evaluator

import (
	"fmt"
	"sort"
	"strings"
)

// Builtins are the global native functions. They receive dereferenced
// arguments; none of them needs cell identity.
var Builtins = map[string]*Builtin{
	"print": {
		Name: "print",
		Fn: func(e *Evaluator, args ...Object) Object {
			parts := make([]string, len(args))
			for i, arg := range args {
				parts[i] = arg.Inspect()
			}
			fmt.Fprintln(e.Stdout, strings.Join(parts, " "))
			return NIL
		},
	},
	"len": {
		Name: "len",
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("len expects 1 argument, got %d", len(args))
			}
			switch arg := args[0].(type) {
			case *String:
				return &Integer{Value: int64(len(arg.Value))}
			case *List:
				return &Integer{Value: int64(len(arg.Elements))}
			}
			return newError("len not supported on %s", args[0].Type())
		},
	},
	"push": {
		Name: "push",
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 2 {
				return newError("push expects 2 arguments, got %d", len(args))
			}
			list, ok := args[0].(*List)
			if !ok {
				return newError("push requires a list, got %s", args[0].Type())
			}
			list.Elements = append(list.Elements, args[1])
			return list
		},
	},
	"type_of": {
		Name: "type_of",
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("type_of expects 1 argument, got %d", len(args))
			}
			return &String{Value: string(args[0].Type())}
		},
	},
}

// BuiltinNames returns the builtin names in sorted order, for the
// analyzer's global scope.
func BuiltinNames() []string {
	names := make([]string, 0, len(Builtins))
	for name := range Builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
