package starlarkeval

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"
	"go.starlark.net/starlark"
)

// Call records a rule invocation made while evaluating a BUILD file.
type Call struct {
	Kind   string
	Kwargs starlark.StringDict
}

// Interpreter evaluates BUILD files.  Rule kinds given to NewInterpreter are
// predeclared as builtins that record their keyword arguments; glob() is
// predeclared to return its patterns, with excludes prefixed by "!".
type Interpreter struct {
	// Global state
	globals starlark.StringDict
	// Thread context
	thread *starlark.Thread
	// Last eval error
	evalErr *starlark.EvalError
	// recorded rule calls, in order
	calls  []*Call
	logger zerolog.Logger
	kinds  []string
}

func NewInterpreter(logger zerolog.Logger, kinds ...string) *Interpreter {
	interpreter := &Interpreter{
		logger: logger,
		kinds:  kinds,
		thread: &starlark.Thread{
			Name: "build",
			Print: func(_ *starlark.Thread, msg string) {
				logger.Info().Msg(msg)
			},
		},
		globals: starlark.StringDict{},
	}
	return interpreter
}

func (i *Interpreter) GetGlobal(name string) starlark.Value {
	return i.globals[name]
}

// Calls returns the rule calls recorded by Exec.
func (i *Interpreter) Calls() []*Call {
	return i.calls
}

// EvalError returns the last evaluation error, if any.
func (i *Interpreter) EvalError() *starlark.EvalError {
	return i.evalErr
}

func (i *Interpreter) predeclared() starlark.StringDict {
	predeclared := starlark.StringDict{
		"glob": starlark.NewBuiltin("glob", i.handleGlob),
	}
	for _, kind := range i.kinds {
		predeclared[kind] = starlark.NewBuiltin(kind, i.handleRule)
	}
	return predeclared
}

func (i *Interpreter) handleRule(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("%s() accepts keyword arguments only", b.Name())
	}
	call := &Call{Kind: b.Name(), Kwargs: make(starlark.StringDict, len(kwargs))}
	for _, kv := range kwargs {
		call.Kwargs[string(kv[0].(starlark.String))] = kv[1]
	}
	i.calls = append(i.calls, call)
	return starlark.None, nil
}

func (i *Interpreter) handleGlob(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var include, exclude *starlark.List
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "include?", &include, "exclude?", &exclude); err != nil {
		return nil, err
	}
	var values []starlark.Value
	for _, list := range []*starlark.List{include, exclude} {
		if list == nil {
			continue
		}
		patterns, err := StringList(list)
		if err != nil {
			return nil, fmt.Errorf("glob: %w", err)
		}
		for _, p := range patterns {
			if list == exclude {
				p = "!" + p
			}
			values = append(values, starlark.String(p))
		}
	}
	return starlark.NewList(values), nil
}

func (i *Interpreter) Exec(filename string, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	state, err := starlark.ExecFile(i.thread, filename, bytes.NewReader(data), i.predeclared())
	if state != nil {
		i.globals = state
	}
	if evalErr, ok := err.(*starlark.EvalError); ok {
		i.logger.Debug().Str("file", filename).Msg(evalErr.Backtrace())
		i.evalErr = evalErr
	}
	return err
}

// ExecBuildFile evaluates the data and returns its globals.
func ExecBuildFile(filename string, data []byte, kinds ...string) (starlark.StringDict, error) {
	interpreter := NewInterpreter(zerolog.Nop(), kinds...)
	if err := interpreter.Exec(filename, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return interpreter.globals, nil
}

// GlobalNames returns the sorted names of the globals.
func (i *Interpreter) GlobalNames() []string {
	names := make([]string, 0, len(i.globals))
	for name := range i.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
