// Package bindings exposes a native.Driver to the script host. Every
// operation validates its arguments with a marshal.Signature, converts them,
// makes exactly one driver call and converts the result back.
package bindings

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/memory"
	"github.com/tsawler/go-clhost/native"
)

// ErrUnknownOperation is returned by Call for names the module does not export.
var ErrUnknownOperation = errors.New("unknown operation")

// CallRecord describes one finished call.
type CallRecord struct {
	Op       string
	Args     []host.Value
	Result   host.Value
	Err      error
	Duration time.Duration
}

// Observer is notified after every call, failed or not.
type Observer interface {
	ObserveCall(rec CallRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(rec CallRecord)

func (f ObserverFunc) ObserveCall(rec CallRecord) { f(rec) }

type opFunc func(m *Module, a args) (host.Value, error)

type op struct {
	name string
	sig  marshal.Signature
	fn   opFunc
}

var operations = map[string]*op{}

// define registers an operation. Called from init functions only.
func define(name string, sig marshal.Signature, fn opFunc) {
	if _, exists := operations[name]; exists {
		panic("bindings: operation defined twice: " + name)
	}
	operations[name] = &op{name: name, sig: sig, fn: fn}
}

// Module is the set of operations bound to one driver.
type Module struct {
	drv       native.Driver
	staging   *memory.StagingManager
	observers []Observer
}

// Option configures a Module.
type Option func(*Module)

// WithObserver adds an observer. Observers run in the order added.
func WithObserver(o Observer) Option {
	return func(m *Module) { m.observers = append(m.observers, o) }
}

// WithStaging replaces the global staging manager used for by-value
// arguments.
func WithStaging(sm *memory.StagingManager) Option {
	return func(m *Module) { m.staging = sm }
}

// New binds the operations to drv.
func New(drv native.Driver, opts ...Option) *Module {
	m := &Module{drv: drv, staging: memory.GetGlobalStagingManager()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Driver returns the bound driver.
func (m *Module) Driver() native.Driver { return m.drv }

// Names lists every exported operation, sorted.
func (m *Module) Names() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Signature returns the argument descriptors of an operation.
func (m *Module) Signature(name string) (marshal.Signature, bool) {
	o, ok := operations[name]
	if !ok {
		return nil, false
	}
	return o.sig, true
}

// Call runs the named operation. Arguments are checked before anything else
// happens; a call that fails the check never reaches the driver.
func (m *Module) Call(name string, argv ...host.Value) (host.Value, error) {
	o, ok := operations[name]
	if !ok {
		return host.Null, fmt.Errorf("%s: %w", name, ErrUnknownOperation)
	}

	start := time.Now()
	result, err := m.invoke(o, argv)
	if err != nil {
		result = host.Null
		err = fmt.Errorf("%s: %w", name, err)
	}
	elapsed := time.Since(start)

	Logger().Debug("call", "op", name, "args", len(argv), "elapsed", elapsed, "error", err)
	rec := CallRecord{Op: name, Args: argv, Result: result, Err: err, Duration: elapsed}
	for _, obs := range m.observers {
		obs.ObserveCall(rec)
	}
	return result, err
}

func (m *Module) invoke(o *op, argv []host.Value) (host.Value, error) {
	if err := o.sig.Check(argv); err != nil {
		return host.Null, err
	}
	return o.fn(m, args(argv))
}

// Exports returns the module as a host object: one function per operation
// plus every constant.
func (m *Module) Exports() host.Value {
	obj := host.NewMap()
	for _, name := range m.Names() {
		name := name
		obj.Set(name, host.Fun(func(argv []host.Value) (host.Value, error) {
			return m.Call(name, argv...)
		}))
	}
	consts := m.Constants()
	for _, key := range consts.Keys {
		v, _ := consts.Get(key)
		obj.Set(key, v)
	}
	return host.Obj(obj)
}
