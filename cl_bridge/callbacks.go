//go:build opencl

package cl_bridge

/*
#include <stddef.h>
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/tsawler/go-clhost/native"
)

// Context callbacks live as long as their context; build and event
// callbacks fire once and free their handle.

//export clhostContextNotify
func clhostContextNotify(errinfo *C.char, privateInfo unsafe.Pointer, cb C.size_t, userData unsafe.Pointer) {
	h := cgo.Handle(uintptr(userData))
	if fn, ok := h.Value().(native.ContextNotify); ok {
		fn(C.GoString(errinfo))
	}
}

//export clhostBuildNotify
func clhostBuildNotify(p C.cl_program, userData unsafe.Pointer) {
	h := cgo.Handle(uintptr(userData))
	fn, _ := h.Value().(native.BuildNotify)
	h.Delete()
	if fn != nil {
		fn(native.Program(uintptr(unsafe.Pointer(p))))
	}
}

//export clhostEventNotify
func clhostEventNotify(e C.cl_event, status C.cl_int, userData unsafe.Pointer) {
	h := cgo.Handle(uintptr(userData))
	fn, _ := h.Value().(native.EventNotify)
	h.Delete()
	if fn != nil {
		fn(native.Event(uintptr(unsafe.Pointer(e))), int32(status))
	}
}
