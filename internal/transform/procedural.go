package transform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/robertkrimen/otto"

	"flewid/internal/api"
	"flewid/pkg/logging"
)

var errHalt = errors.New("snippet execution halted")

// libraryPrelude defines the utility functions inside the VM. Each wrapper
// hands its arguments to the Go bridge as JSON and rethrows bridge errors.
var libraryPrelude = func() string {
	var sb strings.Builder
	sb.WriteString(`var __finite = function(key, v) {
	if (typeof v === "number" && !isFinite(v) && !isNaN(v)) { return v > 0 ? Number.MAX_VALUE : -Number.MAX_VALUE; }
	return v;
};
var __call = function(name, args) {
	var out = JSON.parse(__lib(name, JSON.stringify(Array.prototype.slice.call(args), __finite)));
	if (out.error !== undefined) { throw new Error(out.error); }
	return out.value === undefined ? null : out.value;
};
`)
	names := make([]string, 0, len(library))
	for _, u := range library {
		fmt.Fprintf(&sb, "var %s = function() { return __call(%q, arguments); };\n", u.info.Name, u.info.Name)
		names = append(names, fmt.Sprintf("%s: %s", u.info.Name, u.info.Name))
	}
	// The same functions are reachable through the utils namespace.
	fmt.Fprintf(&sb, "var utils = Object.freeze({%s});\n", strings.Join(names, ", "))
	return sb.String()
}()

// runProcedural executes snippet as the body of a function receiving data.
// Every call gets a fresh VM that only sees data, the utility library and a
// console whose output goes to the debug log.
func (e *Executor) runProcedural(ctx context.Context, snippet string, input interface{}) (result interface{}, err error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, api.NewError(api.KindSnippetRuntimeError, "", "input is not JSON-serializable: %v", err)
	}

	vm := otto.New()
	// Deep recursion would otherwise exhaust the Go stack and kill the process
	vm.SetStackDepthLimit(e.maxCallDepth)
	if err := e.prepareVM(vm, string(inputJSON)); err != nil {
		return nil, err
	}

	program := "var __result = (function(data) {\n" + snippet +
		"\n})(JSON.parse(__input));\n(__result === undefined) ? undefined : JSON.stringify(__result);"
	script, err := vm.Compile("snippet.js", program)
	if err != nil {
		return nil, api.NewError(api.KindSnippetCompileError, "", "%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vm.Interrupt = make(chan func(), 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt <- func() { panic(errHalt) }
		case <-done:
		}
	}()

	defer func() {
		if caught := recover(); caught != nil {
			if caught != errHalt {
				panic(caught)
			}
			result = nil
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = api.NewError(api.KindSnippetTimeout, "", "snippet exceeded the %s execution limit", e.timeout)
			} else {
				err = api.NewError(api.KindSnippetTimeout, "", "snippet execution cancelled: %v", ctx.Err())
			}
			logging.Warn("TransformExecutor", "Procedural snippet halted: %v", err)
		}
	}()

	out, runErr := vm.Run(script)
	if runErr != nil {
		return nil, api.NewError(api.KindSnippetRuntimeError, "", "%s", runErr.Error())
	}
	if out.IsUndefined() || out.IsNull() {
		return nil, nil
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(out.String()), &decoded); err != nil {
		return nil, api.NewError(api.KindSnippetRuntimeError, "", "snippet result is not JSON-serializable: %v", err)
	}
	return decoded, nil
}

func (e *Executor) prepareVM(vm *otto.Otto, inputJSON string) error {
	if err := vm.Set("__input", inputJSON); err != nil {
		return api.NewError(api.KindSnippetRuntimeError, "", "failed to bind input: %v", err)
	}
	if err := vm.Set("__lib", libraryBridge); err != nil {
		return api.NewError(api.KindSnippetRuntimeError, "", "failed to bind utility library: %v", err)
	}
	if _, err := vm.Run(libraryPrelude); err != nil {
		return api.NewError(api.KindSnippetRuntimeError, "", "failed to load utility library: %v", err)
	}

	console, err := vm.Object(`({})`)
	if err != nil {
		return api.NewError(api.KindSnippetRuntimeError, "", "failed to create console: %v", err)
	}
	logFn := func(call otto.FunctionCall) otto.Value {
		parts := make([]string, 0, len(call.ArgumentList))
		for _, a := range call.ArgumentList {
			parts = append(parts, a.String())
		}
		logging.Debug("TransformSandbox", "%s", strings.Join(parts, " "))
		return otto.UndefinedValue()
	}
	for _, name := range []string{"log", "info", "warn", "error", "debug"} {
		if err := console.Set(name, logFn); err != nil {
			return api.NewError(api.KindSnippetRuntimeError, "", "failed to create console: %v", err)
		}
	}
	if err := vm.Set("console", console); err != nil {
		return api.NewError(api.KindSnippetRuntimeError, "", "failed to bind console: %v", err)
	}
	return nil
}

// libraryBridge receives (name, argsJSON) from the VM and answers with a
// JSON envelope of either {"value": ...} or {"error": "..."}.
func libraryBridge(call otto.FunctionCall) otto.Value {
	name := call.Argument(0).String()

	var args []interface{}
	envelope := map[string]interface{}{}
	if err := json.Unmarshal([]byte(call.Argument(1).String()), &args); err != nil {
		envelope["error"] = fmt.Sprintf("%s: invalid arguments: %v", name, err)
	} else if u, ok := libraryIndex[name]; !ok {
		envelope["error"] = fmt.Sprintf("unknown utility function %q", name)
	} else if v, err := u.fn(args); err != nil {
		envelope["error"] = err.Error()
	} else {
		envelope["value"] = v
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	out, err := call.Otto.ToValue(string(data))
	if err != nil {
		return otto.UndefinedValue()
	}
	return out
}
