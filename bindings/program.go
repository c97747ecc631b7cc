package bindings

import (
	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/native"
)

func init() {
	define("createProgramWithSource", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.String),
	}, createProgramWithSource)
	define("buildProgram", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Opt(1, marshal.ArrayLike),
		marshal.Opt(2, marshal.String), marshal.Opt(3, marshal.Callback),
	}, buildProgram)
	define("getProgramInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
	}, getProgramInfo)
	define("getProgramBuildInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.OpaqueHandleRef), marshal.Req(2, marshal.Number),
	}, getProgramBuildInfo)
	define("retainProgram", oneHandle, refOp(native.Driver.RetainProgram))
	define("releaseProgram", oneHandle, refOp(native.Driver.ReleaseProgram))

	define("createKernel", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.String),
	}, createKernel)
	define("createKernelsInProgram", oneHandle, createKernelsInProgram)
	define("getKernelInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
	}, getKernelInfo)
	define("getKernelArgInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number), marshal.Req(2, marshal.Number),
	}, getKernelArgInfo)
	define("getKernelWorkGroupInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Nullable(1, marshal.OpaqueHandleRef), marshal.Req(2, marshal.Number),
	}, getKernelWorkGroupInfo)
	define("retainKernel", oneHandle, refOp(native.Driver.RetainKernel))
	define("releaseKernel", oneHandle, refOp(native.Driver.ReleaseKernel))
}

func createProgramWithSource(m *Module, a args) (host.Value, error) {
	c, err := handleArg[native.Context](a, 0)
	if err != nil {
		return host.Null, err
	}
	p, st := m.drv.CreateProgramWithSource(c, a.str(1))
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(p), nil
}

func buildProgram(m *Module, a args) (host.Value, error) {
	p, err := handleArg[native.Program](a, 0)
	if err != nil {
		return host.Null, err
	}
	devices, err := handlesArg[native.DeviceID](a, 1)
	if err != nil {
		return host.Null, err
	}
	var notify native.BuildNotify
	if fn := a.callback(3); fn != nil {
		notify = func(p native.Program) {
			invokeCallback("build", fn, marshal.Wrap(p))
		}
	}
	return host.Null, status(m.drv.BuildProgram(p, devices, a.optStr(2), notify))
}

func getProgramInfo(m *Module, a args) (host.Value, error) {
	p, err := handleArg[native.Program](a, 0)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetProgramInfo(p, param))
}

func getProgramBuildInfo(m *Module, a args) (host.Value, error) {
	p, err := handleArg[native.Program](a, 0)
	if err != nil {
		return host.Null, err
	}
	d, err := handleArg[native.DeviceID](a, 1)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(2)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetProgramBuildInfo(p, d, param))
}

func createKernel(m *Module, a args) (host.Value, error) {
	p, err := handleArg[native.Program](a, 0)
	if err != nil {
		return host.Null, err
	}
	k, st := m.drv.CreateKernel(p, a.str(1))
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.Wrap(k), nil
}

func createKernelsInProgram(m *Module, a args) (host.Value, error) {
	p, err := handleArg[native.Program](a, 0)
	if err != nil {
		return host.Null, err
	}
	ks, st := m.drv.CreateKernelsInProgram(p)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.WrapAll(ks), nil
}

func getKernelInfo(m *Module, a args) (host.Value, error) {
	k, err := handleArg[native.Kernel](a, 0)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetKernelInfo(k, param))
}

func getKernelArgInfo(m *Module, a args) (host.Value, error) {
	k, err := handleArg[native.Kernel](a, 0)
	if err != nil {
		return host.Null, err
	}
	index, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(2)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetKernelArgInfo(k, index, param))
}

// getKernelWorkGroupInfo accepts null for the device when the kernel's
// context has a single device.
func getKernelWorkGroupInfo(m *Module, a args) (host.Value, error) {
	k, err := handleArg[native.Kernel](a, 0)
	if err != nil {
		return host.Null, err
	}
	var dev native.DeviceID
	if a.has(1) {
		if dev, err = handleArg[native.DeviceID](a, 1); err != nil {
			return host.Null, err
		}
	}
	param, err := a.u32(2)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetKernelWorkGroupInfo(k, dev, param))
}
