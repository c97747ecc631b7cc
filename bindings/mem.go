package bindings

import (
	"unsafe"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/memory"
	"github.com/tsawler/go-clhost/native"
)

func init() {
	define("createBuffer", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number), marshal.Req(2, marshal.Number),
		marshal.Opt(3, marshal.BufferLike),
	}, createBuffer)
	define("getMemObjectInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
	}, getMemObjectInfo)
	define("retainMemObject", oneHandle, refOp(native.Driver.RetainMemObject))
	define("releaseMemObject", oneHandle, refOp(native.Driver.ReleaseMemObject))

	transfer := marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.OpaqueHandleRef), marshal.Req(2, marshal.Flag),
		marshal.Req(3, marshal.Number), marshal.Req(4, marshal.Number), marshal.Req(5, marshal.BufferLike),
		marshal.Opt(6, marshal.ArrayLike),
	}
	define("enqueueReadBuffer", transfer, enqueueReadBuffer)
	define("enqueueWriteBuffer", transfer, enqueueWriteBuffer)
	define("enqueueCopyBuffer", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.OpaqueHandleRef), marshal.Req(2, marshal.OpaqueHandleRef),
		marshal.Req(3, marshal.Number), marshal.Req(4, marshal.Number), marshal.Req(5, marshal.Number),
		marshal.Opt(6, marshal.ArrayLike),
	}, enqueueCopyBuffer)
	define("enqueueFillBuffer", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.OpaqueHandleRef), marshal.Req(2, marshal.String),
		marshal.Req(3, marshal.ArrayLike), marshal.Req(4, marshal.Number), marshal.Req(5, marshal.Number),
		marshal.Opt(6, marshal.ArrayLike),
	}, enqueueFillBuffer)
}

// createBuffer passes the host buffer's bytes as the host pointer. With
// MEM_USE_HOST_PTR the buffer must outlive the memory object.
func createBuffer(m *Module, a args) (host.Value, error) {
	c, err := handleArg[native.Context](a, 0)
	if err != nil {
		return host.Null, err
	}
	flags, err := a.u64(1)
	if err != nil {
		return host.Null, err
	}
	size, err := a.size(2)
	if err != nil {
		return host.Null, err
	}
	var hostPtr unsafe.Pointer
	if a.has(3) {
		if _, err := a.hostBuffer(3, 0, size); err != nil {
			return host.Null, err
		}
		view, err := marshal.AsView(a[3])
		if err != nil {
			return host.Null, err
		}
		hostPtr = view.Ptr
	}
	mem, st := m.drv.CreateBuffer(c, flags, size, hostPtr)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(mem), nil
}

func getMemObjectInfo(m *Module, a args) (host.Value, error) {
	mem, err := handleArg[native.Mem](a, 0)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetMemObjectInfo(mem, param))
}

type transferArgs struct {
	queue    native.CommandQueue
	mem      native.Mem
	blocking bool
	offset   int
	size     int
	view     marshal.View
	wait     []native.Event
}

// readTransfer decodes the shared shape of read and write. The host side of
// the transfer always starts at the beginning of the buffer.
func readTransfer(a args) (transferArgs, error) {
	var t transferArgs
	var err error
	if t.queue, err = handleArg[native.CommandQueue](a, 0); err != nil {
		return t, err
	}
	if t.mem, err = handleArg[native.Mem](a, 1); err != nil {
		return t, err
	}
	t.blocking = a.flag(2)
	if t.offset, err = a.size(3); err != nil {
		return t, err
	}
	if t.size, err = a.size(4); err != nil {
		return t, err
	}
	if _, err = a.hostBuffer(5, 0, t.size); err != nil {
		return t, err
	}
	if t.view, err = marshal.AsView(a[5]); err != nil {
		return t, err
	}
	t.wait, err = a.events(6)
	return t, err
}

func enqueueReadBuffer(m *Module, a args) (host.Value, error) {
	t, err := readTransfer(a)
	if err != nil {
		return host.Null, err
	}
	ev, st := m.drv.EnqueueReadBuffer(t.queue, t.mem, t.blocking, t.offset, t.size, t.view.Ptr, t.wait)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(ev), nil
}

func enqueueWriteBuffer(m *Module, a args) (host.Value, error) {
	t, err := readTransfer(a)
	if err != nil {
		return host.Null, err
	}
	ev, st := m.drv.EnqueueWriteBuffer(t.queue, t.mem, t.blocking, t.offset, t.size, t.view.Ptr, t.wait)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(ev), nil
}

func enqueueCopyBuffer(m *Module, a args) (host.Value, error) {
	q, err := handleArg[native.CommandQueue](a, 0)
	if err != nil {
		return host.Null, err
	}
	src, err := handleArg[native.Mem](a, 1)
	if err != nil {
		return host.Null, err
	}
	dst, err := handleArg[native.Mem](a, 2)
	if err != nil {
		return host.Null, err
	}
	var n [3]int
	for i := range n {
		if n[i], err = a.size(3 + i); err != nil {
			return host.Null, err
		}
	}
	wait, err := a.events(6)
	if err != nil {
		return host.Null, err
	}
	ev, st := m.drv.EnqueueCopyBuffer(q, src, dst, n[0], n[1], n[2], wait)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(ev), nil
}

// enqueueFillBuffer packs the pattern array as elements of the named type
// into a staging block.
func enqueueFillBuffer(m *Module, a args) (host.Value, error) {
	q, err := handleArg[native.CommandQueue](a, 0)
	if err != nil {
		return host.Null, err
	}
	mem, err := handleArg[native.Mem](a, 1)
	if err != nil {
		return host.Null, err
	}
	dt, err := memory.ParseDataType(a.str(2))
	if err != nil {
		return host.Null, &marshal.KindError{Index: 2, Expected: marshal.String, Actual: a.str(2)}
	}
	offset, err := a.size(4)
	if err != nil {
		return host.Null, err
	}
	size, err := a.size(5)
	if err != nil {
		return host.Null, err
	}
	wait, err := a.events(6)
	if err != nil {
		return host.Null, err
	}

	elems, _ := a[3].Elems()
	patternSize := len(elems) * dt.Size()
	block, err := m.staging.Acquire(patternSize)
	if err != nil {
		return host.Null, err
	}
	defer m.staging.Release(block)
	if _, err := marshal.ToNativeBytes(a[3], dt, block); err != nil {
		return host.Null, err
	}

	var pattern unsafe.Pointer
	if patternSize > 0 {
		pattern = unsafe.Pointer(&block[0])
	}
	ev, st := m.drv.EnqueueFillBuffer(q, mem, pattern, patternSize, offset, size, wait)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(ev), nil
}
