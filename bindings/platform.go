package bindings

import (
	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/native"
)

func init() {
	define("getPlatformIDs", nil, getPlatformIDs)
	define("getPlatformInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
	}, getPlatformInfo)
	define("getDeviceIDs", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Opt(1, marshal.Number),
	}, getDeviceIDs)
	define("getDeviceInfo", marshal.Signature{
		marshal.Req(0, marshal.OpaqueHandleRef), marshal.Req(1, marshal.Number),
	}, getDeviceInfo)
}

func getPlatformIDs(m *Module, _ args) (host.Value, error) {
	ids, st := m.drv.GetPlatformIDs()
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.WrapAll(ids), nil
}

func getPlatformInfo(m *Module, a args) (host.Value, error) {
	p, err := handleArg[native.PlatformID](a, 0)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetPlatformInfo(p, param))
}

func getDeviceIDs(m *Module, a args) (host.Value, error) {
	p, err := handleArg[native.PlatformID](a, 0)
	if err != nil {
		return host.Null, err
	}
	deviceType := native.DeviceTypeAll
	if a.has(1) {
		if deviceType, err = a.u64(1); err != nil {
			return host.Null, err
		}
	}
	ids, st := m.drv.GetDeviceIDs(p, deviceType)
	if err := status(st); err != nil {
		return host.Null, err
	}
	return marshal.WrapAll(ids), nil
}

func getDeviceInfo(m *Module, a args) (host.Value, error) {
	d, err := handleArg[native.DeviceID](a, 0)
	if err != nil {
		return host.Null, err
	}
	param, err := a.u32(1)
	if err != nil {
		return host.Null, err
	}
	return info(m.drv.GetDeviceInfo(d, param))
}
