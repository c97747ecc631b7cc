package soft_bridge

import (
	"fmt"
	"sort"
	"sync"
	"unsafe"
)

// ArgSpec describes one kernel parameter.
type ArgSpec struct {
	Name   string
	Buffer bool // a global memory object
	Local  bool // __local scratch; only the size is passed
	Size   int  // byte size of a by-value argument
}

// BufferArg declares a global pointer parameter.
func BufferArg(name string) ArgSpec { return ArgSpec{Name: name, Buffer: true} }

// LocalArg declares a __local pointer parameter.
func LocalArg(name string) ArgSpec { return ArgSpec{Name: name, Local: true} }

// ScalarArg declares a by-value parameter of size bytes.
func ScalarArg(name string, size int) ArgSpec { return ArgSpec{Name: name, Size: size} }

// WorkItem identifies one invocation of a kernel.
type WorkItem struct {
	Dim    int
	Global [3]uint64
	Local  [3]uint64
	Group  [3]uint64
	Size   [3]uint64 // global work size
}

// GlobalID returns the item's global id along dim.
func (w WorkItem) GlobalID(dim int) uint64 { return w.Global[dim] }

// Arg is the bound value of a kernel parameter as the kernel sees it.
type Arg struct {
	data []byte
}

// Bytes returns the raw storage: buffer contents, scalar bytes or local
// scratch space.
func (a Arg) Bytes() []byte { return a.data }

func sliceOf[T any](raw []byte) []T {
	var zero T
	n := len(raw) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), n)
}

func scalarOf[T any](raw []byte) T {
	var v T
	if len(raw) >= int(unsafe.Sizeof(v)) {
		v = *(*T)(unsafe.Pointer(&raw[0]))
	}
	return v
}

func (a Arg) Float32s() []float32 { return sliceOf[float32](a.data) }
func (a Arg) Float64s() []float64 { return sliceOf[float64](a.data) }
func (a Arg) Int32s() []int32     { return sliceOf[int32](a.data) }
func (a Arg) Uint32s() []uint32   { return sliceOf[uint32](a.data) }

func (a Arg) Float32() float32 { return scalarOf[float32](a.data) }
func (a Arg) Int32() int32     { return scalarOf[int32](a.data) }
func (a Arg) Uint32() uint32   { return scalarOf[uint32](a.data) }

// KernelFunc is run once per work item.
type KernelFunc func(item WorkItem, args []Arg)

// KernelDef is a software kernel: the parameters a program's source must
// declare for it and the Go function that implements it.
type KernelDef struct {
	Name       string
	Args       []ArgSpec
	Attributes string
	Fn         KernelFunc
}

// Registry maps kernel names to their software implementations.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*KernelDef
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*KernelDef)}
}

// Register adds a kernel. Names are unique.
func (r *Registry) Register(def KernelDef) error {
	if def.Name == "" || def.Fn == nil {
		return fmt.Errorf("kernel definition needs a name and a function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("kernel %q already registered", def.Name)
	}
	r.defs[def.Name] = &def
	return nil
}

func (r *Registry) Lookup(name string) (*KernelDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the registered kernel names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in kernels.
var DefaultRegistry = NewRegistry()

func init() {
	for _, def := range builtinKernels {
		if err := DefaultRegistry.Register(def); err != nil {
			panic(err)
		}
	}
}

var builtinKernels = []KernelDef{
	{
		// __kernel void square(__global float* input, __global float* output, const unsigned int count)
		Name: "square",
		Args: []ArgSpec{BufferArg("input"), BufferArg("output"), ScalarArg("count", 4)},
		Fn: func(item WorkItem, args []Arg) {
			i := item.GlobalID(0)
			if i < uint64(args[2].Uint32()) {
				in, out := args[0].Float32s(), args[1].Float32s()
				out[i] = in[i] * in[i]
			}
		},
	},
	{
		Name: "vector_add",
		Args: []ArgSpec{BufferArg("a"), BufferArg("b"), BufferArg("c"), ScalarArg("count", 4)},
		Fn: func(item WorkItem, args []Arg) {
			i := item.GlobalID(0)
			if i < uint64(args[3].Uint32()) {
				args[2].Float32s()[i] = args[0].Float32s()[i] + args[1].Float32s()[i]
			}
		},
	},
	{
		Name: "scale",
		Args: []ArgSpec{BufferArg("data"), ScalarArg("factor", 4), ScalarArg("count", 4)},
		Fn: func(item WorkItem, args []Arg) {
			i := item.GlobalID(0)
			if i < uint64(args[2].Uint32()) {
				data := args[0].Float32s()
				data[i] *= args[1].Float32()
			}
		},
	},
	{
		// Sums each work group into partial[group] through local scratch.
		Name: "group_sum",
		Args: []ArgSpec{BufferArg("input"), BufferArg("partial"), LocalArg("scratch")},
		Fn: func(item WorkItem, args []Arg) {
			scratch := args[2].Float32s()
			lid := item.Local[0]
			if lid == 0 && len(scratch) > 0 {
				scratch[0] = 0
			}
			if len(scratch) > 0 {
				scratch[0] += args[0].Float32s()[item.GlobalID(0)]
				args[1].Float32s()[item.Group[0]] = scratch[0]
			}
		},
	},
}
