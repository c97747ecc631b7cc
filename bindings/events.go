package bindings

import (
	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/native"
)

func init() {
	define("enqueueNDRangeKernel", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.OpaqueHandleRef), marshal.Req(2, marshal.Number),
		marshal.Nullable(3, marshal.ArrayLike), marshal.Req(4, marshal.ArrayLike), marshal.Nullable(5, marshal.ArrayLike),
		marshal.Opt(6, marshal.ArrayLike),
	}, enqueueNDRangeKernel)

	define("waitForEvents", marshal.Signature{marshal.Req(0, marshal.ArrayLike)}, waitForEvents)
	define("getEventInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
	}, getEventInfo)
	define("retainEvent", oneHandle, refOp(native.Driver.RetainEvent))
	define("releaseEvent", oneHandle, refOp(native.Driver.ReleaseEvent))
	define("createUserEvent", oneHandle, createUserEvent)
	define("setUserEventStatus", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
	}, setUserEventStatus)
	define("setEventCallback", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number), marshal.Req(2, marshal.Callback),
	}, setEventCallback)
}

func enqueueNDRangeKernel(m *Module, a args) (host.Value, error) {
	q, err := handleArg[native.CommandQueue](a, 0)
	if err != nil {
		return host.Null, err
	}
	k, err := handleArg[native.Kernel](a, 1)
	if err != nil {
		return host.Null, err
	}
	workDim, err := a.u32(2)
	if err != nil {
		return host.Null, err
	}
	offset, err := a.sizes(3)
	if err != nil {
		return host.Null, err
	}
	global, err := a.sizes(4)
	if err != nil {
		return host.Null, err
	}
	local, err := a.sizes(5)
	if err != nil {
		return host.Null, err
	}
	wait, err := a.events(6)
	if err != nil {
		return host.Null, err
	}
	ev, st := m.drv.EnqueueNDRangeKernel(q, k, workDim, offset, global, local, wait)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(ev), nil
}

func waitForEvents(m *Module, a args) (host.Value, error) {
	events, err := a.events(0)
	if err != nil {
		return host.Null, err
	}
	return host.Null, status(m.drv.WaitForEvents(events))
}

func getEventInfo(m *Module, a args) (host.Value, error) {
	e, err := handleArg[native.Event](a, 0)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetEventInfo(e, param))
}

func createUserEvent(m *Module, a args) (host.Value, error) {
	c, err := handleArg[native.Context](a, 0)
	if err != nil {
		return host.Null, err
	}
	e, st := m.drv.CreateUserEvent(c)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(e), nil
}

func setUserEventStatus(m *Module, a args) (host.Value, error) {
	e, err := handleArg[native.Event](a, 0)
	if err != nil {
		return host.Null, err
	}
	execStatus, err := a.i32(1)
	if err != nil {
		return host.Null, err
	}
	return host.Null, status(m.drv.SetUserEventStatus(e, execStatus))
}

// setEventCallback calls back with (event, status) once the event reaches
// the given execution status.
func setEventCallback(m *Module, a args) (host.Value, error) {
	e, err := handleArg[native.Event](a, 0)
	if err != nil {
		return host.Null, err
	}
	execType, err := a.i32(1)
	if err != nil {
		return host.Null, err
	}
	fn := a.callback(2)
	notify := func(ev native.Event, st int32) {
		invokeCallback("event", fn, marshal.Wrap(ev), host.Int(int64(st)))
	}
	return host.Null, status(m.drv.SetEventCallback(e, execType, notify))
}
