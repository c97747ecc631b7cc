//go:build opencl

package cl_bridge

/*
#cgo CFLAGS: -DCL_TARGET_OPENCL_VERSION=120 -DCL_USE_DEPRECATED_OPENCL_1_2_APIS
#cgo darwin LDFLAGS: -framework OpenCL
#cgo linux LDFLAGS: -lOpenCL
#cgo windows LDFLAGS: -lOpenCL
#include <stdint.h>
#include <stdlib.h>
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif

extern void clhostContextNotify(char*, void*, size_t, void*);
extern void clhostBuildNotify(cl_program, void*);
extern void clhostEventNotify(cl_event, cl_int, void*);

typedef void (CL_CALLBACK *context_notify_fn)(const char*, const void*, size_t, void*);
typedef void (CL_CALLBACK *build_notify_fn)(cl_program, void*);
typedef void (CL_CALLBACK *event_notify_fn)(cl_event, cl_int, void*);

static cl_context clhost_create_context(cl_context_properties* props, cl_uint n, const cl_device_id* devices, uintptr_t handle, cl_int* err) {
	context_notify_fn fn = handle ? (context_notify_fn)clhostContextNotify : NULL;
	return clCreateContext(props, n, devices, fn, (void*)handle, err);
}

static cl_int clhost_build_program(cl_program p, cl_uint n, const cl_device_id* devices, const char* options, uintptr_t handle) {
	build_notify_fn fn = handle ? (build_notify_fn)clhostBuildNotify : NULL;
	return clBuildProgram(p, n, devices, options, fn, (void*)handle);
}

static cl_int clhost_set_event_callback(cl_event e, cl_int type, uintptr_t handle) {
	return clSetEventCallback(e, type, (event_notify_fn)clhostEventNotify, (void*)handle);
}
*/
import "C"

import (
	"bytes"
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/tsawler/go-clhost/native"
)

// Driver forwards every call to the OpenCL ICD loader.
//
// Host memory handed to a call is Go memory and may not be retained by the
// library after the call returns, so transfers are always blocking and
// MemUseHostPtr is refused with InvalidHostPtr.
type Driver struct {
	mu       sync.Mutex
	notifies map[native.Context]cgo.Handle
}

var _ native.Driver = (*Driver)(nil)

// New checks that at least one platform is present.
func New() (native.Driver, error) {
	var n C.cl_uint
	if st := C.clGetPlatformIDs(0, nil, &n); st != C.CL_SUCCESS || n == 0 {
		return nil, ErrNoPlatform
	}
	return &Driver{notifies: make(map[native.Context]cgo.Handle)}, nil
}

// Available reports whether this binary can talk to OpenCL.
func Available() bool { return true }

func (d *Driver) Name() string { return "opencl" }

func status(st C.cl_int) native.Status { return native.Status(st) }

func cPlatform(p native.PlatformID) C.cl_platform_id {
	return C.cl_platform_id(unsafe.Pointer(uintptr(p)))
}
func cDevice(dev native.DeviceID) C.cl_device_id { return C.cl_device_id(unsafe.Pointer(uintptr(dev))) }
func cContext(c native.Context) C.cl_context     { return C.cl_context(unsafe.Pointer(uintptr(c))) }
func cQueue(q native.CommandQueue) C.cl_command_queue {
	return C.cl_command_queue(unsafe.Pointer(uintptr(q)))
}
func cMem(m native.Mem) C.cl_mem             { return C.cl_mem(unsafe.Pointer(uintptr(m))) }
func cProgram(p native.Program) C.cl_program { return C.cl_program(unsafe.Pointer(uintptr(p))) }
func cKernel(k native.Kernel) C.cl_kernel    { return C.cl_kernel(unsafe.Pointer(uintptr(k))) }
func cEvent(e native.Event) C.cl_event       { return C.cl_event(unsafe.Pointer(uintptr(e))) }

func handleBits[P any](p *P) uintptr { return uintptr(unsafe.Pointer(p)) }

func devices(list []native.DeviceID) (C.cl_uint, *C.cl_device_id) {
	if len(list) == 0 {
		return 0, nil
	}
	out := make([]C.cl_device_id, len(list))
	for i, dev := range list {
		out[i] = cDevice(dev)
	}
	return C.cl_uint(len(out)), &out[0]
}

func waitList(list []native.Event) (C.cl_uint, *C.cl_event) {
	if len(list) == 0 {
		return 0, nil
	}
	out := make([]C.cl_event, len(list))
	for i, e := range list {
		out[i] = cEvent(e)
	}
	return C.cl_uint(len(out)), &out[0]
}

func sizes(list []uint64) *C.size_t {
	if len(list) == 0 {
		return nil
	}
	out := make([]C.size_t, len(list))
	for i, v := range list {
		out[i] = C.size_t(v)
	}
	return &out[0]
}

// infoQuery is one clGet*Info call with its object and param bound.
type infoQuery func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int

// decodeInfo runs the usual size-then-value query pair and converts the
// raw result to the Go type native.ParamTypes names for param.
func decodeInfo(param uint32, query infoQuery) (any, native.Status) {
	typ, ok := native.ParamTypes[param]
	if !ok {
		return nil, native.InvalidValue
	}
	var size C.size_t
	if st := query(0, nil, &size); st != C.CL_SUCCESS {
		return nil, status(st)
	}
	raw := make([]byte, int(size)+8)
	if size > 0 {
		if st := query(size, unsafe.Pointer(&raw[0]), nil); st != C.CL_SUCCESS {
			return nil, status(st)
		}
	}
	raw = raw[:size]
	ptr := unsafe.Pointer(unsafe.SliceData(raw))
	word := unsafe.Sizeof(uintptr(0))

	words := func() []uintptr {
		out := make([]uintptr, len(raw)/int(word))
		for i := range out {
			out[i] = *(*uintptr)(unsafe.Add(ptr, uintptr(i)*word))
		}
		return out
	}

	switch typ {
	case native.InfoString:
		return string(bytes.TrimRight(raw, "\x00")), native.Success
	case native.InfoUint32:
		return *(*uint32)(ptr), native.Success
	case native.InfoUint64:
		if size == 4 {
			return uint64(*(*uint32)(ptr)), native.Success
		}
		return *(*uint64)(ptr), native.Success
	case native.InfoInt32:
		return *(*int32)(ptr), native.Success
	case native.InfoBool:
		return *(*uint32)(ptr) != 0, native.Success
	case native.InfoSizes:
		ws := words()
		out := make([]uint64, len(ws))
		for i, w := range ws {
			out[i] = uint64(w)
		}
		return out, native.Success
	case native.InfoPlatform:
		return native.PlatformID(*(*uintptr)(ptr)), native.Success
	case native.InfoDevice:
		return native.DeviceID(*(*uintptr)(ptr)), native.Success
	case native.InfoContext:
		return native.Context(*(*uintptr)(ptr)), native.Success
	case native.InfoQueue:
		return native.CommandQueue(*(*uintptr)(ptr)), native.Success
	case native.InfoProgram:
		return native.Program(*(*uintptr)(ptr)), native.Success
	case native.InfoDevices:
		ws := words()
		out := make([]native.DeviceID, len(ws))
		for i, w := range ws {
			out[i] = native.DeviceID(w)
		}
		return out, native.Success
	case native.InfoProps:
		return words(), native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) GetPlatformIDs() ([]native.PlatformID, native.Status) {
	var n C.cl_uint
	if st := C.clGetPlatformIDs(0, nil, &n); st != C.CL_SUCCESS {
		return nil, status(st)
	}
	if n == 0 {
		return nil, native.Success
	}
	ids := make([]C.cl_platform_id, n)
	if st := C.clGetPlatformIDs(n, &ids[0], nil); st != C.CL_SUCCESS {
		return nil, status(st)
	}
	out := make([]native.PlatformID, n)
	for i, id := range ids {
		out[i] = native.PlatformID(uintptr(unsafe.Pointer(id)))
	}
	return out, native.Success
}

func (d *Driver) GetPlatformInfo(p native.PlatformID, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetPlatformInfo(cPlatform(p), C.cl_platform_info(param), size, value, ret)
	})
}

func (d *Driver) GetDeviceIDs(p native.PlatformID, deviceType uint64) ([]native.DeviceID, native.Status) {
	var n C.cl_uint
	if st := C.clGetDeviceIDs(cPlatform(p), C.cl_device_type(deviceType), 0, nil, &n); st != C.CL_SUCCESS {
		return nil, status(st)
	}
	ids := make([]C.cl_device_id, n)
	if st := C.clGetDeviceIDs(cPlatform(p), C.cl_device_type(deviceType), n, &ids[0], nil); st != C.CL_SUCCESS {
		return nil, status(st)
	}
	out := make([]native.DeviceID, n)
	for i, id := range ids {
		out[i] = native.DeviceID(uintptr(unsafe.Pointer(id)))
	}
	return out, native.Success
}

func (d *Driver) GetDeviceInfo(dev native.DeviceID, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetDeviceInfo(cDevice(dev), C.cl_device_info(param), size, value, ret)
	})
}

func (d *Driver) CreateContext(props []uintptr, devs []native.DeviceID, notify native.ContextNotify) (native.Context, native.Status) {
	var cprops *C.cl_context_properties
	if len(props) > 0 {
		list := make([]C.cl_context_properties, 0, len(props)+1)
		for _, p := range props {
			list = append(list, C.cl_context_properties(p))
		}
		if props[len(props)-1] != 0 {
			list = append(list, 0)
		}
		cprops = &list[0]
	}

	var h cgo.Handle
	if notify != nil {
		h = cgo.NewHandle(notify)
	}
	n, list := devices(devs)
	var st C.cl_int
	ctx := C.clhost_create_context(cprops, n, list, C.uintptr_t(h), &st)
	if st != C.CL_SUCCESS {
		if h != 0 {
			h.Delete()
		}
		return 0, status(st)
	}
	c := native.Context(handleBits(ctx))
	if h != 0 {
		d.mu.Lock()
		d.notifies[c] = h
		d.mu.Unlock()
	}
	return c, native.Success
}

func (d *Driver) GetContextInfo(c native.Context, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetContextInfo(cContext(c), C.cl_context_info(param), size, value, ret)
	})
}

func (d *Driver) RetainContext(c native.Context) native.Status {
	return status(C.clRetainContext(cContext(c)))
}

// ReleaseContext frees the context's notify handle with the last reference.
func (d *Driver) ReleaseContext(c native.Context) native.Status {
	refs, _ := d.GetContextInfo(c, native.ContextReferenceCount)
	st := status(C.clReleaseContext(cContext(c)))
	if st == native.Success && refs == uint32(1) {
		d.mu.Lock()
		if h, ok := d.notifies[c]; ok {
			h.Delete()
			delete(d.notifies, c)
		}
		d.mu.Unlock()
	}
	return st
}

func (d *Driver) CreateCommandQueue(c native.Context, dev native.DeviceID, props uint64) (native.CommandQueue, native.Status) {
	var st C.cl_int
	q := C.clCreateCommandQueue(cContext(c), cDevice(dev), C.cl_command_queue_properties(props), &st)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.CommandQueue(handleBits(q)), native.Success
}

func (d *Driver) GetCommandQueueInfo(q native.CommandQueue, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetCommandQueueInfo(cQueue(q), C.cl_command_queue_info(param), size, value, ret)
	})
}

func (d *Driver) RetainCommandQueue(q native.CommandQueue) native.Status {
	return status(C.clRetainCommandQueue(cQueue(q)))
}

func (d *Driver) ReleaseCommandQueue(q native.CommandQueue) native.Status {
	return status(C.clReleaseCommandQueue(cQueue(q)))
}

func (d *Driver) Flush(q native.CommandQueue) native.Status  { return status(C.clFlush(cQueue(q))) }
func (d *Driver) Finish(q native.CommandQueue) native.Status { return status(C.clFinish(cQueue(q))) }

func (d *Driver) CreateBuffer(c native.Context, flags uint64, size int, hostPtr unsafe.Pointer) (native.Mem, native.Status) {
	if flags&native.MemUseHostPtr != 0 {
		return 0, native.InvalidHostPtr
	}
	var st C.cl_int
	m := C.clCreateBuffer(cContext(c), C.cl_mem_flags(flags), C.size_t(size), hostPtr, &st)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.Mem(handleBits(m)), native.Success
}

func (d *Driver) GetMemObjectInfo(m native.Mem, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetMemObjectInfo(cMem(m), C.cl_mem_info(param), size, value, ret)
	})
}

func (d *Driver) RetainMemObject(m native.Mem) native.Status {
	return status(C.clRetainMemObject(cMem(m)))
}

func (d *Driver) ReleaseMemObject(m native.Mem) native.Status {
	return status(C.clReleaseMemObject(cMem(m)))
}

func (d *Driver) EnqueueReadBuffer(q native.CommandQueue, m native.Mem, _ bool, offset, size int, dst unsafe.Pointer, wait []native.Event) (native.Event, native.Status) {
	n, list := waitList(wait)
	var ev C.cl_event
	st := C.clEnqueueReadBuffer(cQueue(q), cMem(m), C.CL_TRUE, C.size_t(offset), C.size_t(size), dst, n, list, &ev)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.Event(handleBits(ev)), native.Success
}

func (d *Driver) EnqueueWriteBuffer(q native.CommandQueue, m native.Mem, _ bool, offset, size int, src unsafe.Pointer, wait []native.Event) (native.Event, native.Status) {
	n, list := waitList(wait)
	var ev C.cl_event
	st := C.clEnqueueWriteBuffer(cQueue(q), cMem(m), C.CL_TRUE, C.size_t(offset), C.size_t(size), src, n, list, &ev)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.Event(handleBits(ev)), native.Success
}

func (d *Driver) EnqueueCopyBuffer(q native.CommandQueue, src, dst native.Mem, srcOffset, dstOffset, size int, wait []native.Event) (native.Event, native.Status) {
	n, list := waitList(wait)
	var ev C.cl_event
	st := C.clEnqueueCopyBuffer(cQueue(q), cMem(src), cMem(dst), C.size_t(srcOffset), C.size_t(dstOffset), C.size_t(size), n, list, &ev)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.Event(handleBits(ev)), native.Success
}

// EnqueueFillBuffer relies on the library copying the pattern before it
// returns, as OpenCL 1.2 requires.
func (d *Driver) EnqueueFillBuffer(q native.CommandQueue, m native.Mem, pattern unsafe.Pointer, patternSize, offset, size int, wait []native.Event) (native.Event, native.Status) {
	n, list := waitList(wait)
	var ev C.cl_event
	st := C.clEnqueueFillBuffer(cQueue(q), cMem(m), pattern, C.size_t(patternSize), C.size_t(offset), C.size_t(size), n, list, &ev)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.Event(handleBits(ev)), native.Success
}

func (d *Driver) CreateProgramWithSource(c native.Context, source string) (native.Program, native.Status) {
	csrc := C.CString(source)
	defer C.free(unsafe.Pointer(csrc))
	length := C.size_t(len(source))
	var st C.cl_int
	p := C.clCreateProgramWithSource(cContext(c), 1, &csrc, &length, &st)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.Program(handleBits(p)), native.Success
}

func (d *Driver) BuildProgram(p native.Program, devs []native.DeviceID, options string, notify native.BuildNotify) native.Status {
	copts := C.CString(options)
	defer C.free(unsafe.Pointer(copts))
	var h cgo.Handle
	if notify != nil {
		h = cgo.NewHandle(notify)
	}
	n, list := devices(devs)
	st := C.clhost_build_program(cProgram(p), n, list, copts, C.uintptr_t(h))
	// an invalid call never reaches the callback
	if h != 0 && st != C.CL_SUCCESS && st != C.CL_BUILD_PROGRAM_FAILURE {
		h.Delete()
	}
	return status(st)
}

func (d *Driver) GetProgramInfo(p native.Program, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetProgramInfo(cProgram(p), C.cl_program_info(param), size, value, ret)
	})
}

func (d *Driver) GetProgramBuildInfo(p native.Program, dev native.DeviceID, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetProgramBuildInfo(cProgram(p), cDevice(dev), C.cl_program_build_info(param), size, value, ret)
	})
}

func (d *Driver) RetainProgram(p native.Program) native.Status {
	return status(C.clRetainProgram(cProgram(p)))
}

func (d *Driver) ReleaseProgram(p native.Program) native.Status {
	return status(C.clReleaseProgram(cProgram(p)))
}

func (d *Driver) CreateKernel(p native.Program, name string) (native.Kernel, native.Status) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var st C.cl_int
	k := C.clCreateKernel(cProgram(p), cname, &st)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.Kernel(handleBits(k)), native.Success
}

func (d *Driver) CreateKernelsInProgram(p native.Program) ([]native.Kernel, native.Status) {
	var n C.cl_uint
	if st := C.clCreateKernelsInProgram(cProgram(p), 0, nil, &n); st != C.CL_SUCCESS {
		return nil, status(st)
	}
	if n == 0 {
		return nil, native.Success
	}
	ks := make([]C.cl_kernel, n)
	if st := C.clCreateKernelsInProgram(cProgram(p), n, &ks[0], nil); st != C.CL_SUCCESS {
		return nil, status(st)
	}
	out := make([]native.Kernel, n)
	for i, k := range ks {
		out[i] = native.Kernel(handleBits(k))
	}
	return out, native.Success
}

func (d *Driver) GetKernelInfo(k native.Kernel, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetKernelInfo(cKernel(k), C.cl_kernel_info(param), size, value, ret)
	})
}

func (d *Driver) GetKernelArgInfo(k native.Kernel, index uint32, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetKernelArgInfo(cKernel(k), C.cl_uint(index), C.cl_kernel_arg_info(param), size, value, ret)
	})
}

func (d *Driver) GetKernelWorkGroupInfo(k native.Kernel, dev native.DeviceID, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetKernelWorkGroupInfo(cKernel(k), cDevice(dev), C.cl_kernel_work_group_info(param), size, value, ret)
	})
}

func (d *Driver) RetainKernel(k native.Kernel) native.Status {
	return status(C.clRetainKernel(cKernel(k)))
}

func (d *Driver) ReleaseKernel(k native.Kernel) native.Status {
	return status(C.clReleaseKernel(cKernel(k)))
}

// SetKernelArg passes value through unchanged: a native.Mem has the bits of
// the cl_mem it names.
func (d *Driver) SetKernelArg(k native.Kernel, index uint32, size int, value unsafe.Pointer) native.Status {
	return status(C.clSetKernelArg(cKernel(k), C.cl_uint(index), C.size_t(size), value))
}

func (d *Driver) EnqueueNDRangeKernel(q native.CommandQueue, k native.Kernel, workDim uint32, offset, global, local []uint64, wait []native.Event) (native.Event, native.Status) {
	n, list := waitList(wait)
	var ev C.cl_event
	st := C.clEnqueueNDRangeKernel(cQueue(q), cKernel(k), C.cl_uint(workDim),
		sizes(offset), sizes(global), sizes(local), n, list, &ev)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.Event(handleBits(ev)), native.Success
}

func (d *Driver) WaitForEvents(events []native.Event) native.Status {
	n, list := waitList(events)
	return status(C.clWaitForEvents(n, list))
}

func (d *Driver) GetEventInfo(e native.Event, param uint32) (any, native.Status) {
	return decodeInfo(param, func(size C.size_t, value unsafe.Pointer, ret *C.size_t) C.cl_int {
		return C.clGetEventInfo(cEvent(e), C.cl_event_info(param), size, value, ret)
	})
}

func (d *Driver) RetainEvent(e native.Event) native.Status {
	return status(C.clRetainEvent(cEvent(e)))
}

func (d *Driver) ReleaseEvent(e native.Event) native.Status {
	return status(C.clReleaseEvent(cEvent(e)))
}

func (d *Driver) CreateUserEvent(c native.Context) (native.Event, native.Status) {
	var st C.cl_int
	e := C.clCreateUserEvent(cContext(c), &st)
	if st != C.CL_SUCCESS {
		return 0, status(st)
	}
	return native.Event(handleBits(e)), native.Success
}

func (d *Driver) SetUserEventStatus(e native.Event, execStatus int32) native.Status {
	return status(C.clSetUserEventStatus(cEvent(e), C.cl_int(execStatus)))
}

func (d *Driver) SetEventCallback(e native.Event, execType int32, notify native.EventNotify) native.Status {
	if notify == nil {
		return native.InvalidValue
	}
	h := cgo.NewHandle(notify)
	st := C.clhost_set_event_callback(cEvent(e), C.cl_int(execType), C.uintptr_t(h))
	if st != C.CL_SUCCESS {
		h.Delete()
	}
	return status(st)
}
