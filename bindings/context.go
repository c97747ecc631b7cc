package bindings

import (
	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/native"
)

func init() {
	define("createContext", marshal.Signature{
		marshal.Req(0, marshal.ArrayLike), marshal.Req(1, marshal.ArrayLike), marshal.Opt(2, marshal.Callback),
	}, createContext)
	define("getContextInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
	}, getContextInfo)
	define("retainContext", oneHandle, retainContext)
	define("releaseContext", oneHandle, releaseContext)

	define("createCommandQueue", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.OpaqueHandleRef), marshal.Opt(2, marshal.Number),
	}, createCommandQueue)
	define("getCommandQueueInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
	}, getCommandQueueInfo)
	define("retainCommandQueue", oneHandle, retainCommandQueue)
	define("releaseCommandQueue", oneHandle, releaseCommandQueue)
	define("flush", oneHandle, flush)
	define("finish", oneHandle, finish)
}

var oneHandle = marshal.Signature{marshal.Req(0, marshal.OpaqueHandleRef)}

// contextProperties flattens [name, value, ...]. A value is a number or a
// boxed platform.
func contextProperties(a args, i int) ([]uintptr, error) {
	elems, _ := a[i].Elems()
	props := make([]uintptr, 0, len(elems)+1)
	for j, e := range elems {
		if marshal.IsBoxed(e) {
			p, err := marshal.Unwrap[native.PlatformID](e)
			if err != nil {
				return nil, err
			}
			props = append(props, uintptr(p))
			continue
		}
		n, ok := e.AsInt()
		if !ok || n < 0 {
			return nil, &marshal.ElementTypeError{Index: j, Target: marshal.DataTypeOf[uint64](), Reason: "expected a number or a platform"}
		}
		props = append(props, uintptr(n))
	}
	if len(props) > 0 && props[len(props)-1] != 0 {
		props = append(props, 0)
	}
	return props, nil
}

func createContext(m *Module, a args) (host.Value, error) {
	props, err := contextProperties(a, 0)
	if err != nil {
		return host.Null, err
	}
	devices, err := handlesArg[native.DeviceID](a, 1)
	if err != nil {
		return host.Null, err
	}
	var notify native.ContextNotify
	if fn := a.callback(2); fn != nil {
		notify = func(errinfo string) {
			invokeCallback("context", fn, host.Str(errinfo))
		}
	}
	ctx, st := m.drv.CreateContext(props, devices, notify)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(ctx), nil
}

func getContextInfo(m *Module, a args) (host.Value, error) {
	c, err := handleArg[native.Context](a, 0)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetContextInfo(c, param))
}

// refOp builds a retain or release operation for one handle kind.
func refOp[H native.Handle](call func(native.Driver, H) native.Status) opFunc {
	return func(m *Module, a args) (host.Value, error) {
		h, err := handleArg[H](a, 0)
		if err != nil {
			return host.Null, err
		}
		return host.Null, status(call(m.drv, h))
	}
}

var (
	retainContext       = refOp(native.Driver.RetainContext)
	releaseContext      = refOp(native.Driver.ReleaseContext)
	retainCommandQueue  = refOp(native.Driver.RetainCommandQueue)
	releaseCommandQueue = refOp(native.Driver.ReleaseCommandQueue)
	flush               = refOp(native.Driver.Flush)
	finish              = refOp(native.Driver.Finish)
)

func createCommandQueue(m *Module, a args) (host.Value, error) {
	c, err := handleArg[native.Context](a, 0)
	if err != nil {
		return host.Null, err
	}
	d, err := handleArg[native.DeviceID](a, 1)
	if err != nil {
		return host.Null, err
	}
	var props uint64
	if a.has(2) {
		if props, err = a.u64(2); err != nil {
			return host.Null, err
		}
	}
	q, st := m.drv.CreateCommandQueue(c, d, props)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(q), nil
}

func getCommandQueueInfo(m *Module, a args) (host.Value, error) {
	q, err := handleArg[native.CommandQueue](a, 0)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetCommandQueueInfo(q, param))
}
