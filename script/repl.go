package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/yaml.v3"
)

const historyFile = ".clhost_history"

// ParseLine reads one REPL line into a step. The forms are
//
//	op(arg, ...)
//	name = op(arg, ...)
//	name = value
//	$name
//
// where the arguments are a YAML flow sequence using the script value forms.
func ParseLine(line string) (Step, error) {
	line = strings.TrimSpace(line)
	if name, ok := strings.CutPrefix(line, "$"); ok && !strings.ContainsAny(name, "(= ") {
		return Step{Print: name}, nil
	}

	var st Step
	if lhs, rhs, found := strings.Cut(line, "="); found && !strings.Contains(lhs, "(") {
		st.As = strings.TrimSpace(lhs)
		if st.As == "" {
			return Step{}, errors.New("missing variable name")
		}
		line = strings.TrimSpace(rhs)
	}
	open := strings.IndexByte(line, '(')
	if open < 0 && st.As != "" {
		var v any
		if err := yaml.Unmarshal([]byte(line), &v); err != nil {
			return Step{}, fmt.Errorf("bad value: %w", err)
		}
		return Step{Let: st.As, Value: v}, nil
	}
	if open < 0 || !strings.HasSuffix(line, ")") {
		return Step{}, errors.New("expected op(args...)")
	}
	st.Call = strings.TrimSpace(line[:open])
	if st.Call == "" {
		return Step{}, errors.New("missing operation name")
	}
	inner := strings.TrimSpace(line[open+1 : len(line)-1])
	if inner != "" {
		if err := yaml.Unmarshal([]byte("["+inner+"]"), &st.Args); err != nil {
			return Step{}, fmt.Errorf("bad arguments: %w", err)
		}
	}
	return st, nil
}

// Eval runs one REPL line and writes its result or error to the runner's
// output. It reports false when the line asks to quit.
func (r *Runner) Eval(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true
	case line == ":quit" || line == ":q":
		return false
	case line == ":ops":
		fmt.Fprintln(r.out, strings.Join(r.mod.Names(), " "))
		return true
	case line == ":vars":
		names := r.Vars()
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(r.out, "%s = %s\n", name, Format(r.vars[name]))
		}
		return true
	case strings.HasPrefix(line, ":sig "):
		name := strings.TrimSpace(strings.TrimPrefix(line, ":sig "))
		sig, ok := r.mod.Signature(name)
		if !ok {
			fmt.Fprintf(r.out, "unknown operation %s\n", name)
			return true
		}
		parts := make([]string, len(sig))
		for i, p := range sig {
			parts[i] = p.Kind.String()
			if !p.Required {
				parts[i] = "[" + parts[i] + "]"
			} else if p.Nullable {
				parts[i] += "|null"
			}
		}
		fmt.Fprintf(r.out, "%s(%s)\n", name, strings.Join(parts, ", "))
		return true
	case strings.HasPrefix(line, ":"):
		fmt.Fprintln(r.out, "unknown command. Type :quit to exit.")
		return true
	}

	st, err := ParseLine(line)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return true
	}
	v, err := r.Exec(st)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return true
	}
	if st.Print == "" {
		fmt.Fprintln(r.out, Format(v))
	}
	return true
}

// REPL reads lines with history and editing until EOF or :quit.
func (r *Runner) REPL(prompt string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		var out []string
		for _, name := range r.mod.Names() {
			if strings.HasPrefix(name, line) {
				out = append(out, name+"(")
			}
		}
		return out
	})

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if !r.Eval(line) {
			return nil
		}
	}
}
