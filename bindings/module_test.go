package bindings

import (
	"errors"
	"math"
	"testing"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/memory"
	"github.com/tsawler/go-clhost/native"
	"github.com/tsawler/go-clhost/soft_bridge"
)

const squareSource = `
__kernel void square(__global float* input, __global float* output, const unsigned int count)
{
    int i = get_global_id(0);
    if (i < count)
        output[i] = input[i] * input[i];
}
`

type session struct {
	t      *testing.T
	drv    *soft_bridge.Driver
	mod    *Module
	device host.Value
	ctx    host.Value
	queue  host.Value
}

func newSession(t *testing.T, opts ...Option) *session {
	t.Helper()
	drv := soft_bridge.New(soft_bridge.Config{})
	s := &session{t: t, drv: drv, mod: New(drv, opts...)}

	platforms := s.call("getPlatformIDs")
	plats, _ := platforms.Elems()
	if len(plats) != 1 {
		t.Fatalf("Expected 1 platform, got %d", len(plats))
	}
	devices, _ := s.call("getDeviceIDs", plats[0], s.constant("DEVICE_TYPE_ALL")).Elems()
	if len(devices) != 1 {
		t.Fatalf("Expected 1 device, got %d", len(devices))
	}
	s.device = devices[0]
	props := host.Arr([]host.Value{s.constant("CONTEXT_PLATFORM"), plats[0]})
	s.ctx = s.call("createContext", props, host.Arr(devices))
	s.queue = s.call("createCommandQueue", s.ctx, s.device)
	return s
}

func (s *session) call(name string, argv ...host.Value) host.Value {
	s.t.Helper()
	v, err := s.mod.Call(name, argv...)
	if err != nil {
		s.t.Fatalf("%s failed: %v", name, err)
	}
	return v
}

func (s *session) constant(name string) host.Value {
	s.t.Helper()
	n, ok := s.mod.Constant(name)
	if !ok {
		s.t.Fatalf("Expected constant %s to exist", name)
	}
	return host.Int(n)
}

func (s *session) squareKernel() host.Value {
	s.t.Helper()
	prog := s.call("createProgramWithSource", s.ctx, host.Str(squareSource))
	s.call("buildProgram", prog)
	return s.call("createKernel", prog, host.Str("square"))
}

func floats(xs ...float64) host.Value {
	out := make([]host.Value, len(xs))
	for i, x := range xs {
		out[i] = host.Num(x)
	}
	return host.Arr(out)
}

func TestSquareKernelEndToEnd(t *testing.T) {
	s := newSession(t)
	kernel := s.squareKernel()

	input, err := marshal.NewBuffer(floats(1, 2, 3, 4), memory.Float32)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	output, _ := host.NewBuffer(memory.Float32, 4)
	size := host.Int(int64(input.ByteLen()))

	flags := host.Int(int64(native.MemReadOnly | native.MemCopyHostPtr))
	in := s.call("createBuffer", s.ctx, flags, size, host.Buf(input))
	out := s.call("createBuffer", s.ctx, s.constant("MEM_WRITE_ONLY"), size)

	s.call("setKernelArg", kernel, host.Int(0), host.Str("float*"), in)
	s.call("setKernelArg", kernel, host.Int(1), host.Str("mem"), out)
	s.call("setKernelArg", kernel, host.Int(2), host.Str("uint"), host.Int(4))

	ev := s.call("enqueueNDRangeKernel", s.queue, kernel, host.Int(1), host.Null, floats(4), host.Null)
	s.call("waitForEvents", host.Arr([]host.Value{ev}))
	st := s.call("getEventInfo", ev, s.constant("EVENT_COMMAND_EXECUTION_STATUS"))
	if n, _ := st.AsInt(); n != int64(native.Complete) {
		t.Errorf("Expected COMPLETE, got %v", st)
	}

	s.call("enqueueReadBuffer", s.queue, out, host.Bool(true), host.Int(0), size, host.Buf(output))
	got, _ := marshal.BufferValues(output).Elems()
	want := []float64{1, 4, 9, 16}
	for i, w := range want {
		if f, _ := got[i].AsFloat(); f != w {
			t.Errorf("Expected output[%d] = %v, got %v", i, w, got[i])
		}
	}
}

func TestGuardFailureNeverReachesDriver(t *testing.T) {
	s := newSession(t)
	before := s.drv.Calls()

	_, err := s.mod.Call("getPlatformInfo", host.Str("ok"), host.Int(42))
	var kerr *marshal.KindError
	if !errors.As(err, &kerr) {
		t.Fatalf("Expected KindError, got %v", err)
	}
	if kerr.Index != 0 || kerr.Expected != marshal.OpaqueHandleRef {
		t.Errorf("Expected index 0 handle error, got %+v", kerr)
	}

	// a valid handle first, then a plain number where a handle belongs
	_, err = s.mod.Call("createCommandQueue", s.ctx, host.Int(42))
	if !errors.As(err, &kerr) {
		t.Fatalf("Expected KindError, got %v", err)
	}
	if kerr.Index != 1 || kerr.Expected != marshal.OpaqueHandleRef {
		t.Errorf("Expected index 1 handle error, got %+v", kerr)
	}

	_, err = s.mod.Call("getKernelWorkGroupInfo", s.ctx, host.Str("ok"), host.Int(0))
	if !errors.As(err, &kerr) || kerr.Index != 1 {
		t.Errorf("Expected index 1 KindError, got %v", err)
	}

	_, err = s.mod.Call("createKernel", s.ctx)
	if kind, _ := marshal.KindOf(err); kind != marshal.KindArity {
		t.Errorf("Expected ArityError, got %v", err)
	}

	if after := s.drv.Calls(); after != before {
		t.Errorf("Expected no driver calls, got %d", after-before)
	}
}

func TestTagMismatch(t *testing.T) {
	s := newSession(t)
	// a context where a command queue belongs
	_, err := s.mod.Call("finish", s.ctx)
	if kind, _ := marshal.KindOf(err); kind != marshal.KindTagMismatch {
		t.Errorf("Expected TagMismatch, got %v", err)
	}

	fake := host.NewMap()
	fake.Set("handle", host.Int(1))
	_, err = s.mod.Call("finish", host.Obj(fake))
	if kind, _ := marshal.KindOf(err); kind != marshal.KindArgument {
		t.Errorf("Expected KindError for a plain object, got %v", err)
	}
}

func TestUnknownKernelName(t *testing.T) {
	s := newSession(t)
	prog := s.call("createProgramWithSource", s.ctx, host.Str(squareSource))
	s.call("buildProgram", prog)

	_, err := s.mod.Call("createKernel", prog, host.Str("i_do_not_exist"))
	var serr *marshal.StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if serr.Code != native.InvalidKernelName {
		t.Errorf("Expected %d, got %d", native.InvalidKernelName, serr.Code)
	}
}

func TestRetainKernelIncrementsCount(t *testing.T) {
	s := newSession(t)
	kernel := s.squareKernel()
	param := s.constant("KERNEL_REFERENCE_COUNT")

	before, _ := s.call("getKernelInfo", kernel, param).AsInt()
	s.call("retainKernel", kernel)
	after, _ := s.call("getKernelInfo", kernel, param).AsInt()
	if after != before+1 {
		t.Errorf("Expected reference count %d, got %d", before+1, after)
	}
	s.call("releaseKernel", kernel)
	s.call("releaseKernel", kernel)
}

func TestUnknownOperation(t *testing.T) {
	s := newSession(t)
	_, err := s.mod.Call("clEnqueueMagic")
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Expected ErrUnknownOperation, got %v", err)
	}
}

func TestParseArgType(t *testing.T) {
	tests := []struct {
		in    string
		class argClass
		elem  memory.DataType
		width int
		size  int
	}{
		{"float", argScalar, memory.Float32, 1, 4},
		{"uint", argScalar, memory.Uint32, 1, 4},
		{"int16", argVector, memory.Int32, 16, 64},
		{"float4", argVector, memory.Float32, 4, 16},
		{"float3", argVector, memory.Float32, 3, 16},
		{"char2", argVector, memory.Int8, 2, 2},
		{"__global float*", argMem, 0, 0, 0},
		{"mem", argMem, 0, 0, 0},
		{"sampler_t", argSampler, 0, 0, 0},
		{"local", argLocal, 0, 0, 0},
	}
	for _, tt := range tests {
		got, err := parseArgType(tt.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if got.class != tt.class {
			t.Errorf("%q: Expected class %d, got %d", tt.in, tt.class, got.class)
		}
		if tt.class == argScalar || tt.class == argVector {
			if got.elem != tt.elem || got.width != tt.width || got.byteSize() != tt.size {
				t.Errorf("%q: Expected %v x%d (%d bytes), got %v x%d (%d bytes)",
					tt.in, tt.elem, tt.width, tt.size, got.elem, got.width, got.byteSize())
			}
		}
	}

	for _, bad := range []string{"", "float5", "int64_t", "quaternion"} {
		if _, err := parseArgType(bad); err == nil {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

func TestSetKernelArgErrors(t *testing.T) {
	s := newSession(t)
	kernel := s.squareKernel()

	_, err := s.mod.Call("setKernelArg", kernel, host.Int(2), host.Str("bogus"), host.Int(4))
	var kerr *marshal.KindError
	if !errors.As(err, &kerr) || kerr.Index != 2 {
		t.Errorf("Expected KindError at 2, got %v", err)
	}

	_, err = s.mod.Call("setKernelArg", kernel, host.Int(2), host.Str("uint2"), floats(1))
	if !errors.As(err, &kerr) || kerr.Index != 3 {
		t.Errorf("Expected KindError at 3, got %v", err)
	}

	// size mismatch is the driver's call
	_, err = s.mod.Call("setKernelArg", kernel, host.Int(2), host.Str("double"), host.Num(1))
	var serr *marshal.StatusError
	if !errors.As(err, &serr) || serr.Code != native.InvalidArgSize {
		t.Errorf("Expected INVALID_ARG_SIZE, got %v", err)
	}

	_, err = s.mod.Call("setKernelArg", kernel, host.Int(9), host.Str("uint"), host.Int(1))
	if !errors.As(err, &serr) || serr.Code != native.InvalidArgIndex {
		t.Errorf("Expected INVALID_ARG_INDEX, got %v", err)
	}
}

func TestFillAndCopyBuffer(t *testing.T) {
	s := newSession(t)
	a := s.call("createBuffer", s.ctx, s.constant("MEM_READ_WRITE"), host.Int(16))
	b := s.call("createBuffer", s.ctx, s.constant("MEM_READ_WRITE"), host.Int(16))

	s.call("enqueueFillBuffer", s.queue, a, host.Str("int32"), floats(7), host.Int(0), host.Int(16))
	s.call("enqueueCopyBuffer", s.queue, a, b, host.Int(0), host.Int(0), host.Int(16))

	out, _ := host.NewBuffer(memory.Int32, 4)
	s.call("enqueueReadBuffer", s.queue, b, host.Bool(true), host.Int(0), host.Int(16), host.Buf(out))
	got, _ := marshal.BufferValues(out).Elems()
	for i, v := range got {
		if n, _ := v.AsInt(); n != 7 {
			t.Errorf("Expected element %d to be 7, got %v", i, v)
		}
	}

	_, err := s.mod.Call("enqueueFillBuffer", s.queue, a, host.Str("quad"), floats(1), host.Int(0), host.Int(16))
	if kind, _ := marshal.KindOf(err); kind != marshal.KindArgument {
		t.Errorf("Expected KindError for an unknown type, got %v", err)
	}

	small, _ := host.NewBuffer(memory.Int32, 2)
	_, err = s.mod.Call("enqueueReadBuffer", s.queue, b, host.Bool(true), host.Int(0), host.Int(16), host.Buf(small))
	if kind, _ := marshal.KindOf(err); kind != marshal.KindArgument {
		t.Errorf("Expected KindError for a short buffer, got %v", err)
	}
}

func TestUserEventCallback(t *testing.T) {
	s := newSession(t)
	ev := s.call("createUserEvent", s.ctx)

	var fired []int64
	cb := host.Fun(func(argv []host.Value) (host.Value, error) {
		if !marshal.Same(argv[0], ev) {
			t.Errorf("Expected the callback to receive the event")
		}
		n, _ := argv[1].AsInt()
		fired = append(fired, n)
		return host.Null, nil
	})
	s.call("setEventCallback", ev, s.constant("COMPLETE"), cb)
	if len(fired) != 0 {
		t.Fatalf("Expected no callback before completion, got %v", fired)
	}

	s.call("setUserEventStatus", ev, s.constant("COMPLETE"))
	if len(fired) != 1 || fired[0] != int64(native.Complete) {
		t.Errorf("Expected one COMPLETE callback, got %v", fired)
	}

	_, err := s.mod.Call("setUserEventStatus", ev, s.constant("COMPLETE"))
	var serr *marshal.StatusError
	if !errors.As(err, &serr) || serr.Code != native.InvalidOperation {
		t.Errorf("Expected INVALID_OPERATION on second status, got %v", err)
	}
	s.call("releaseEvent", ev)
}

func TestObserverSeesEveryCall(t *testing.T) {
	var recs []CallRecord
	s := newSession(t, WithObserver(ObserverFunc(func(rec CallRecord) {
		recs = append(recs, rec)
	})))
	setupCalls := len(recs)

	s.mod.Call("finish", s.queue)
	s.mod.Call("finish", host.Int(3))

	if len(recs) != setupCalls+2 {
		t.Fatalf("Expected %d records, got %d", setupCalls+2, len(recs))
	}
	last := recs[len(recs)-1]
	if last.Op != "finish" || last.Err == nil {
		t.Errorf("Expected failed finish record, got %+v", last)
	}
	if recs[len(recs)-2].Err != nil {
		t.Errorf("Expected successful finish, got %v", recs[len(recs)-2].Err)
	}
}

func TestExports(t *testing.T) {
	s := newSession(t)
	obj, ok := s.mod.Exports().AsMap()
	if !ok {
		t.Fatal("Expected Exports to return an object")
	}

	fn, ok := obj.Get("getPlatformIDs")
	if !ok {
		t.Fatal("Expected getPlatformIDs to be exported")
	}
	call, _ := fn.AsFunc()
	v, err := call(nil)
	if err != nil {
		t.Fatalf("getPlatformIDs failed: %v", err)
	}
	if elems, _ := v.Elems(); len(elems) != 1 {
		t.Errorf("Expected 1 platform, got %d", len(elems))
	}

	for name, want := range map[string]int64{
		"SUCCESS":             0,
		"INVALID_KERNEL_NAME": -46,
		"MEM_READ_WRITE":      1,
		"PLATFORM_NAME":       0x0902,
	} {
		got, ok := obj.Get(name)
		if n, _ := got.AsInt(); !ok || n != want {
			t.Errorf("Expected %s = %d, got %v", name, want, got)
		}
	}
}

func TestEveryOperationHasSignature(t *testing.T) {
	m := New(soft_bridge.New(soft_bridge.Config{}))
	for _, name := range []string{
		"getPlatformIDs", "getDeviceInfo", "createContext", "createCommandQueue", "createBuffer",
		"enqueueReadBuffer", "enqueueWriteBuffer", "buildProgram", "setKernelArg",
		"enqueueNDRangeKernel", "waitForEvents", "setEventCallback",
		"getKernelArgInfo", "getKernelWorkGroupInfo",
	} {
		if _, ok := m.Signature(name); !ok {
			t.Errorf("Expected operation %s", name)
		}
	}
}

func statusOf(t *testing.T, err error) native.Status {
	t.Helper()
	var serr *marshal.StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	return serr.Code
}

func TestTransferOffsetOverflow(t *testing.T) {
	s := newSession(t)
	a := s.call("createBuffer", s.ctx, s.constant("MEM_READ_WRITE"), host.Int(16))
	b := s.call("createBuffer", s.ctx, s.constant("MEM_READ_WRITE"), host.Int(16))
	buf, _ := host.NewBuffer(memory.Uint8, 4)
	huge := host.Int(math.MaxInt64)

	_, err := s.mod.Call("enqueueWriteBuffer", s.queue, a, host.Bool(true), huge, host.Int(4), host.Buf(buf))
	if st := statusOf(t, err); st != native.InvalidValue {
		t.Errorf("Expected CL_INVALID_VALUE for write, got %s", st.Name())
	}
	_, err = s.mod.Call("enqueueReadBuffer", s.queue, a, host.Bool(true), huge, host.Int(4), host.Buf(buf))
	if st := statusOf(t, err); st != native.InvalidValue {
		t.Errorf("Expected CL_INVALID_VALUE for read, got %s", st.Name())
	}
	_, err = s.mod.Call("enqueueCopyBuffer", s.queue, a, b, huge, host.Int(0), host.Int(4))
	if st := statusOf(t, err); st != native.InvalidValue {
		t.Errorf("Expected CL_INVALID_VALUE for copy, got %s", st.Name())
	}
	_, err = s.mod.Call("enqueueFillBuffer", s.queue, a, host.Str("uchar"), floats(1), huge, host.Int(1))
	if st := statusOf(t, err); st != native.InvalidValue {
		t.Errorf("Expected CL_INVALID_VALUE for fill, got %s", st.Name())
	}

	_, err = s.mod.Call("enqueueWriteBuffer", s.queue, a, host.Bool(true), host.Int(0), huge, host.Buf(buf))
	if kind, _ := marshal.KindOf(err); kind != marshal.KindArgument {
		t.Errorf("Expected KindError for a size beyond the host buffer, got %v", err)
	}
}

const groupSumSource = "__kernel void group_sum(__global float* in, __global float* partial, __local float* scratch) {}"

func TestHugeLocalArgIsRejected(t *testing.T) {
	s := newSession(t)
	prog := s.call("createProgramWithSource", s.ctx, host.Str(groupSumSource))
	s.call("buildProgram", prog)
	kernel := s.call("createKernel", prog, host.Str("group_sum"))
	in := s.call("createBuffer", s.ctx, s.constant("MEM_READ_WRITE"), host.Int(32))
	partial := s.call("createBuffer", s.ctx, s.constant("MEM_READ_WRITE"), host.Int(8))
	s.call("setKernelArg", kernel, host.Int(0), host.Str("float*"), in)
	s.call("setKernelArg", kernel, host.Int(1), host.Str("float*"), partial)

	_, err := s.mod.Call("setKernelArg", kernel, host.Int(2), host.Str("local"), host.Int(1<<62))
	if st := statusOf(t, err); st != native.InvalidArgSize {
		t.Errorf("Expected CL_INVALID_ARG_SIZE, got %s", st.Name())
	}
	_, err = s.mod.Call("enqueueNDRangeKernel", s.queue, kernel, host.Int(1), host.Null, floats(8), floats(4))
	if st := statusOf(t, err); st != native.InvalidKernelArgs {
		t.Errorf("Expected CL_INVALID_KERNEL_ARGS, got %s", st.Name())
	}

	s.call("setKernelArg", kernel, host.Int(2), host.Str("local"), host.Int(16))
	s.call("enqueueNDRangeKernel", s.queue, kernel, host.Int(1), host.Null, floats(8), floats(4))
	s.call("finish", s.queue)
}

func TestGetKernelArgInfo(t *testing.T) {
	s := newSession(t)
	kernel := s.squareKernel()

	names := []string{"input", "output", "count"}
	types := []string{"float*", "float*", "uint"}
	for i := range names {
		name, _ := s.call("getKernelArgInfo", kernel, host.Int(int64(i)), s.constant("KERNEL_ARG_NAME")).AsString()
		if name != names[i] {
			t.Errorf("Arg %d: expected name %s, got %s", i, names[i], name)
		}
		typ, _ := s.call("getKernelArgInfo", kernel, host.Int(int64(i)), s.constant("KERNEL_ARG_TYPE_NAME")).AsString()
		if typ != types[i] {
			t.Errorf("Arg %d: expected type %s, got %s", i, types[i], typ)
		}
	}

	for _, param := range []string{"KERNEL_ARG_ADDRESS_QUALIFIER", "KERNEL_ARG_ACCESS_QUALIFIER", "KERNEL_ARG_TYPE_QUALIFIER"} {
		v := s.call("getKernelArgInfo", kernel, host.Int(0), s.constant(param))
		if v.Tag != host.TInt {
			t.Errorf("Expected %s to be an integer, got %s", param, v.TypeName())
		}
	}

	_, err := s.mod.Call("getKernelArgInfo", kernel, host.Int(9), s.constant("KERNEL_ARG_NAME"))
	if st := statusOf(t, err); st != native.InvalidArgIndex {
		t.Errorf("Expected CL_INVALID_ARG_INDEX, got %s", st.Name())
	}
}

func TestGetKernelWorkGroupInfo(t *testing.T) {
	s := newSession(t)
	kernel := s.squareKernel()

	sizes := s.call("getKernelWorkGroupInfo", kernel, s.device, s.constant("KERNEL_COMPILE_WORK_GROUP_SIZE"))
	if elems, ok := sizes.Elems(); !ok || len(elems) != 3 {
		t.Errorf("Expected a 3 element array, got %v", sizes)
	}
	for _, param := range []string{
		"KERNEL_WORK_GROUP_SIZE", "KERNEL_PREFERRED_WORK_GROUP_SIZE_MULTIPLE",
		"KERNEL_LOCAL_MEM_SIZE", "KERNEL_PRIVATE_MEM_SIZE",
	} {
		v := s.call("getKernelWorkGroupInfo", kernel, s.device, s.constant(param))
		if v.Tag != host.TInt {
			t.Errorf("Expected %s to be an integer, got %s", param, v.TypeName())
		}
	}
	s.call("getKernelWorkGroupInfo", kernel, host.Null, s.constant("KERNEL_WORK_GROUP_SIZE"))

	_, err := s.mod.Call("getKernelWorkGroupInfo", kernel, s.device, s.constant("KERNEL_GLOBAL_WORK_SIZE"))
	if st := statusOf(t, err); st != native.InvalidValue {
		t.Errorf("Expected CL_INVALID_VALUE, got %s", st.Name())
	}
}
