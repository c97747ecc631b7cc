package native

import "unsafe"

// ContextNotify receives asynchronous error reports for a context.
type ContextNotify func(errinfo string)

// BuildNotify is called when a program build completes.
type BuildNotify func(p Program)

// EventNotify is called when an event reaches the registered execution status.
type EventNotify func(e Event, status int32)

// Driver is the native compute API. Every method is one blocking native call
// that reports its outcome as a Status. Info queries return a Go value whose
// type is fixed per parameter (see ParamTypes).
//
// Pointer arguments (host pointers, kernel argument values, read and write
// destinations) are only borrowed for the duration of the call unless the
// call is non-blocking, in which case they must stay valid until the
// returned event completes.
type Driver interface {
	Name() string

	GetPlatformIDs() ([]PlatformID, Status)
	GetPlatformInfo(p PlatformID, param uint32) (any, Status)
	GetDeviceIDs(p PlatformID, deviceType uint64) ([]DeviceID, Status)
	GetDeviceInfo(d DeviceID, param uint32) (any, Status)

	CreateContext(props []uintptr, devices []DeviceID, notify ContextNotify) (Context, Status)
	GetContextInfo(c Context, param uint32) (any, Status)
	RetainContext(c Context) Status
	ReleaseContext(c Context) Status

	CreateCommandQueue(c Context, d DeviceID, props uint64) (CommandQueue, Status)
	GetCommandQueueInfo(q CommandQueue, param uint32) (any, Status)
	RetainCommandQueue(q CommandQueue) Status
	ReleaseCommandQueue(q CommandQueue) Status
	Flush(q CommandQueue) Status
	Finish(q CommandQueue) Status

	CreateBuffer(c Context, flags uint64, size int, hostPtr unsafe.Pointer) (Mem, Status)
	GetMemObjectInfo(m Mem, param uint32) (any, Status)
	RetainMemObject(m Mem) Status
	ReleaseMemObject(m Mem) Status
	EnqueueReadBuffer(q CommandQueue, m Mem, blocking bool, offset, size int, dst unsafe.Pointer, wait []Event) (Event, Status)
	EnqueueWriteBuffer(q CommandQueue, m Mem, blocking bool, offset, size int, src unsafe.Pointer, wait []Event) (Event, Status)
	EnqueueCopyBuffer(q CommandQueue, src, dst Mem, srcOffset, dstOffset, size int, wait []Event) (Event, Status)
	EnqueueFillBuffer(q CommandQueue, m Mem, pattern unsafe.Pointer, patternSize, offset, size int, wait []Event) (Event, Status)

	CreateProgramWithSource(c Context, source string) (Program, Status)
	BuildProgram(p Program, devices []DeviceID, options string, notify BuildNotify) Status
	GetProgramInfo(p Program, param uint32) (any, Status)
	GetProgramBuildInfo(p Program, d DeviceID, param uint32) (any, Status)
	RetainProgram(p Program) Status
	ReleaseProgram(p Program) Status

	CreateKernel(p Program, name string) (Kernel, Status)
	CreateKernelsInProgram(p Program) ([]Kernel, Status)
	GetKernelInfo(k Kernel, param uint32) (any, Status)
	GetKernelArgInfo(k Kernel, index uint32, param uint32) (any, Status)
	GetKernelWorkGroupInfo(k Kernel, d DeviceID, param uint32) (any, Status)
	RetainKernel(k Kernel) Status
	ReleaseKernel(k Kernel) Status
	SetKernelArg(k Kernel, index uint32, size int, value unsafe.Pointer) Status
	EnqueueNDRangeKernel(q CommandQueue, k Kernel, workDim uint32, offset, global, local []uint64, wait []Event) (Event, Status)

	WaitForEvents(events []Event) Status
	GetEventInfo(e Event, param uint32) (any, Status)
	RetainEvent(e Event) Status
	ReleaseEvent(e Event) Status
	CreateUserEvent(c Context) (Event, Status)
	SetUserEventStatus(e Event, status int32) Status
	SetEventCallback(e Event, execType int32, notify EventNotify) Status
}
