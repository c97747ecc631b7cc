// Package script drives a bindings.Module from YAML call scripts and from an
// interactive line REPL.
//
// A script is a list of steps. Each step calls one operation with arguments
// written as YAML values, optionally stores the result in a variable, and
// optionally expects a failure:
//
//	steps:
//	  - call: getPlatformIDs
//	    as: platforms
//	  - call: getDeviceIDs
//	    args: [$platforms.0, DEVICE_TYPE_ALL]
//	    as: devices
//	  - call: createKernel
//	    args: [$program, i_do_not_exist]
//	    expect: CL_INVALID_KERNEL_NAME
//
// Argument values:
//   - "$name" is a variable and "$name.N" its N-th element.
//   - An upper-case word naming a module constant is that constant.
//   - {$buffer: {type: float, values: [...]}} or {$buffer: {type: int, len: N}}
//     is a new host buffer.
//   - {$callback: name} is a function that appends its arguments to the
//     variable name.
//   - {$const: NAME}, {$ref: name, $index: N} and {$str: "$literal"} are the
//     long forms.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/go-clhost/bindings"
	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/memory"
)

// Script is a parsed call script.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one call, a variable binding (let/value) or a print of a
// variable.
type Step struct {
	Call   string `yaml:"call"`
	Args   []any  `yaml:"args"`
	As     string `yaml:"as"`
	Expect string `yaml:"expect"`
	Let    string `yaml:"let"`
	Value  any    `yaml:"value"`
	Print  string `yaml:"print"`
}

func (st Step) label() string {
	switch {
	case st.Call != "":
		return st.Call
	case st.Let != "":
		return "let " + st.Let
	default:
		return "print " + st.Print
	}
}

// Parse decodes a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, st := range s.Steps {
		if st.Call == "" && st.Let == "" && st.Print == "" {
			return nil, fmt.Errorf("step %d: needs call, let or print", i+1)
		}
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// ErrUnexpectedSuccess is returned for a step whose expected failure did not
// happen.
var ErrUnexpectedSuccess = errors.New("expected failure, call succeeded")

// StepError reports the step a script stopped at.
type StepError struct {
	Step int
	Call string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Call, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Runner executes steps against a module, keeping variables between them.
type Runner struct {
	mod  *bindings.Module
	vars map[string]host.Value
	out  io.Writer
}

// NewRunner creates a runner printing to out.
func NewRunner(mod *bindings.Module, out io.Writer) *Runner {
	return &Runner{mod: mod, vars: make(map[string]host.Value), out: out}
}

// Var returns a variable's value.
func (r *Runner) Var(name string) (host.Value, bool) {
	v, ok := r.vars[name]
	return v, ok
}

// Vars lists the variable names in no particular order.
func (r *Runner) Vars() []string {
	names := make([]string, 0, len(r.vars))
	for name := range r.vars {
		names = append(names, name)
	}
	return names
}

// Run executes every step, stopping at the first one that fails
// unexpectedly.
func (r *Runner) Run(s *Script) error {
	for i, st := range s.Steps {
		if _, err := r.Exec(st); err != nil {
			return &StepError{Step: i + 1, Call: st.label(), Err: err}
		}
	}
	return nil
}

// Exec runs one step. A step with an expectation returns nil when the call
// failed the expected way.
func (r *Runner) Exec(st Step) (host.Value, error) {
	if st.Print != "" {
		v, err := r.word("$" + st.Print)
		if err != nil {
			return host.Null, err
		}
		fmt.Fprintf(r.out, "%s = %s\n", st.Print, Format(v))
		return v, nil
	}
	if st.Let != "" {
		v, err := r.value(st.Value)
		if err != nil {
			return host.Null, err
		}
		r.vars[st.Let] = v
		return v, nil
	}

	argv := make([]host.Value, len(st.Args))
	for i, a := range st.Args {
		v, err := r.value(a)
		if err != nil {
			return host.Null, fmt.Errorf("argument %d: %w", i, err)
		}
		argv[i] = v
	}

	result, err := r.mod.Call(st.Call, argv...)
	if st.Expect != "" {
		if err == nil {
			return host.Null, ErrUnexpectedSuccess
		}
		if !Matches(err, st.Expect) {
			return host.Null, fmt.Errorf("expected %s: %w", st.Expect, err)
		}
		return host.Null, nil
	}
	if err != nil {
		return host.Null, err
	}
	if st.As != "" {
		r.vars[st.As] = result
	}
	return result, nil
}

// Matches reports whether err is of the named error kind ("TagMismatch") or
// carries the named status ("CL_INVALID_VALUE" or "INVALID_VALUE").
func Matches(err error, expect string) bool {
	if kind, ok := marshal.KindOf(err); ok && string(kind) == expect {
		return true
	}
	var serr *marshal.StatusError
	if errors.As(err, &serr) {
		name := serr.Code.Name()
		return name == expect || strings.TrimPrefix(name, "CL_") == expect
	}
	return false
}

// value converts one decoded YAML value.
func (r *Runner) value(x any) (host.Value, error) {
	switch v := x.(type) {
	case nil:
		return host.Null, nil
	case bool:
		return host.Bool(v), nil
	case int:
		return host.Int(int64(v)), nil
	case int64:
		return host.Int(v), nil
	case uint64:
		return host.Num(float64(v)), nil
	case float64:
		return host.Num(v), nil
	case string:
		return r.word(v)
	case []any:
		out := make([]host.Value, len(v))
		for i, e := range v {
			ev, err := r.value(e)
			if err != nil {
				return host.Null, err
			}
			out[i] = ev
		}
		return host.Arr(out), nil
	case map[string]any:
		return r.object(v)
	}
	return host.Null, fmt.Errorf("unsupported value %v (%T)", x, x)
}

func (r *Runner) word(s string) (host.Value, error) {
	if name, ok := strings.CutPrefix(s, "$"); ok && name != "" {
		index := -1
		if base, idx, found := strings.Cut(name, "."); found {
			n, err := strconv.Atoi(idx)
			if err != nil {
				return host.Null, fmt.Errorf("bad index in %q", s)
			}
			name, index = base, n
		}
		return r.ref(name, index)
	}
	if isConstantName(s) {
		if n, ok := r.mod.Constant(s); ok {
			return host.Int(n), nil
		}
	}
	return host.Str(s), nil
}

func isConstantName(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '_' {
			return false
		}
	}
	return true
}

func (r *Runner) ref(name string, index int) (host.Value, error) {
	v, ok := r.vars[name]
	if !ok {
		return host.Null, fmt.Errorf("undefined variable %q", name)
	}
	if index < 0 {
		return v, nil
	}
	elems, ok := v.Elems()
	if !ok || index >= len(elems) {
		return host.Null, fmt.Errorf("%s has no element %d", name, index)
	}
	return elems[index], nil
}

func (r *Runner) object(m map[string]any) (host.Value, error) {
	switch {
	case m["$const"] != nil:
		name, _ := m["$const"].(string)
		n, ok := r.mod.Constant(name)
		if !ok {
			return host.Null, fmt.Errorf("unknown constant %q", name)
		}
		return host.Int(n), nil

	case m["$ref"] != nil:
		name, _ := m["$ref"].(string)
		index := -1
		if i, ok := m["$index"].(int); ok {
			index = i
		}
		return r.ref(name, index)

	case m["$str"] != nil:
		return host.Str(fmt.Sprint(m["$str"])), nil

	case m["$buffer"] != nil:
		spec, ok := m["$buffer"].(map[string]any)
		if !ok {
			return host.Null, errors.New("$buffer needs {type, values} or {type, len}")
		}
		return r.buffer(spec)

	case m["$callback"] != nil:
		name, _ := m["$callback"].(string)
		r.vars[name] = host.Arr(nil)
		return host.Fun(func(argv []host.Value) (host.Value, error) {
			calls, _ := r.vars[name].Elems()
			r.vars[name] = host.Arr(append(calls, host.Arr(argv)))
			return host.Null, nil
		}), nil
	}

	obj := host.NewMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := r.value(m[k])
		if err != nil {
			return host.Null, err
		}
		obj.Set(k, v)
	}
	return host.Obj(obj), nil
}

func (r *Runner) buffer(spec map[string]any) (host.Value, error) {
	typeName, _ := spec["type"].(string)
	dt, err := memory.ParseDataType(typeName)
	if err != nil {
		return host.Null, err
	}
	if vals, ok := spec["values"]; ok {
		seq, err := r.value(vals)
		if err != nil {
			return host.Null, err
		}
		buf, err := marshal.NewBuffer(seq, dt)
		if err != nil {
			return host.Null, err
		}
		return host.Buf(buf), nil
	}
	n, ok := spec["len"].(int)
	if !ok || n < 0 {
		return host.Null, errors.New("$buffer needs values or a non-negative len")
	}
	buf, err := host.NewBuffer(dt, n)
	if err != nil {
		return host.Null, err
	}
	return host.Buf(buf), nil
}

// Format renders a value for printing. Buffers print their elements.
func Format(v host.Value) string {
	switch v.Tag {
	case host.TArray:
		elems, _ := v.Elems()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case host.TBuffer:
		b, _ := v.AsBuffer()
		return b.Type().String() + Format(marshal.BufferValues(b))
	case host.TMap:
		m, _ := v.AsMap()
		parts := make([]string, len(m.Keys))
		for i, k := range m.Keys {
			parts[i] = k + ": " + Format(m.Entries[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return v.String()
}
