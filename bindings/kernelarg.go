package bindings

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/memory"
	"github.com/tsawler/go-clhost/native"
)

func init() {
	define("setKernelArg", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
		marshal.Req(2, marshal.String), marshal.Req(3, marshal.Any),
	}, setKernelArg)
}

type argClass int

const (
	argScalar argClass = iota
	argVector
	argMem
	argSampler
	argLocal
)

// argType is a parsed kernel argument type string.
type argType struct {
	class argClass
	elem  memory.DataType
	width int
}

var vectorWidths = []int{16, 8, 4, 3, 2}

// parseArgType reads the type grammar: a scalar name (char ... double), a
// scalar name with a vector width, "mem" or any pointer type ending in "*",
// "sampler_t", and "local".
func parseArgType(s string) (argType, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "mem" || strings.HasSuffix(s, "*"):
		return argType{class: argMem}, nil
	case s == "sampler_t":
		return argType{class: argSampler}, nil
	case s == "local":
		return argType{class: argLocal}, nil
	}
	if dt, ok := clScalar(s); ok {
		return argType{class: argScalar, elem: dt, width: 1}, nil
	}
	for _, w := range vectorWidths {
		suffix := strconv.Itoa(w)
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		if dt, ok := clScalar(strings.TrimSuffix(s, suffix)); ok {
			return argType{class: argVector, elem: dt, width: w}, nil
		}
	}
	return argType{}, fmt.Errorf("unknown kernel argument type %q", s)
}

// clScalar accepts only the OpenCL C spellings, so "int16" stays a vector.
func clScalar(name string) (memory.DataType, bool) {
	for dt := memory.Int8; dt <= memory.Float64; dt++ {
		if dt.String() == name {
			return dt, true
		}
	}
	return 0, false
}

// byteSize is the size the kernel expects. Three-element vectors occupy the
// space of four.
func (t argType) byteSize() int {
	n := t.width
	if n == 3 {
		n = 4
	}
	return n * t.elem.Size()
}

// setKernelArg(kernel, index, type, value). The value's shape depends on the
// type: a number, an array of exactly width numbers, a boxed mem or sampler,
// or a byte count for local memory.
func setKernelArg(m *Module, a args) (host.Value, error) {
	k, err := handleArg[native.Kernel](a, 0)
	if err != nil {
		return host.Null, err
	}
	index, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	typ, err := parseArgType(a.str(2))
	if err != nil {
		return host.Null, &marshal.KindError{Index: 2, Expected: marshal.String, Actual: err.Error()}
	}

	v := a[3]
	switch typ.class {
	case argMem:
		mem, err := handleArg[native.Mem](a, 3)
		if err != nil {
			return host.Null, err
		}
		return host.Null, status(m.drv.SetKernelArg(k, index, int(unsafe.Sizeof(mem)), unsafe.Pointer(&mem)))

	case argSampler:
		s, err := handleArg[native.Sampler](a, 3)
		if err != nil {
			return host.Null, err
		}
		return host.Null, status(m.drv.SetKernelArg(k, index, int(unsafe.Sizeof(s)), unsafe.Pointer(&s)))

	case argLocal:
		if !v.IsNumber() {
			return host.Null, &marshal.KindError{Index: 3, Expected: marshal.Number, Actual: v.TypeName()}
		}
		size, err := a.size(3)
		if err != nil {
			return host.Null, err
		}
		return host.Null, status(m.drv.SetKernelArg(k, index, size, nil))
	}

	seq := v
	if typ.class == argScalar {
		if !v.IsNumber() && v.Tag != host.TBool {
			return host.Null, &marshal.KindError{Index: 3, Expected: marshal.Number, Actual: v.TypeName()}
		}
		seq = host.Arr([]host.Value{v})
	} else if elems, ok := v.Elems(); !ok || len(elems) != typ.width {
		return host.Null, &marshal.KindError{Index: 3, Expected: marshal.ArrayLike, Actual: v.TypeName()}
	}

	block, err := m.staging.Acquire(typ.byteSize())
	if err != nil {
		return host.Null, err
	}
	defer m.staging.Release(block)
	if _, err := marshal.ToNativeBytes(seq, typ.elem, block); err != nil {
		return host.Null, err
	}
	return host.Null, status(m.drv.SetKernelArg(k, index, len(block), unsafe.Pointer(&block[0])))
}
