package soft_bridge

import (
	"strings"

	"github.com/tsawler/go-clhost/native"
)

// paramInfo is what a kernel's source declares about one parameter.
type paramInfo struct {
	name      string
	typeName  string
	address   uint32
	access    uint32
	qualifier uint64
}

// scalar spellings that the API reports under their short name
var unsignedNames = map[string]string{
	"char":  "uchar",
	"short": "ushort",
	"int":   "uint",
	"long":  "ulong",
}

// parseParam reads one declaration such as "__global float* input" or
// "const unsigned int count".
func parseParam(decl string) paramInfo {
	decl = strings.ReplaceAll(decl, "*", " * ")
	info := paramInfo{
		address: native.KernelArgAddressPrivate,
		access:  native.KernelArgAccessNone,
	}

	var words []string
	stars, unsigned := 0, false
	for _, tok := range strings.Fields(decl) {
		switch strings.TrimPrefix(tok, "__") {
		case "global":
			info.address = native.KernelArgAddressGlobal
		case "local":
			info.address = native.KernelArgAddressLocal
		case "constant":
			info.address = native.KernelArgAddressConstant
		case "private":
			info.address = native.KernelArgAddressPrivate
		case "read_only":
			info.access = native.KernelArgAccessReadOnly
		case "write_only":
			info.access = native.KernelArgAccessWriteOnly
		case "read_write":
			info.access = native.KernelArgAccessReadWrite
		case "const":
			info.qualifier |= native.KernelArgTypeConst
		case "restrict":
			info.qualifier |= native.KernelArgTypeRestrict
		case "volatile":
			info.qualifier |= native.KernelArgTypeVolatile
		case "unsigned":
			unsigned = true
		case "signed":
		case "*":
			stars++
		default:
			words = append(words, tok)
		}
	}

	if n := len(words); n > 0 {
		info.name = words[n-1]
		words = words[:n-1]
	}
	if len(words) == 0 && unsigned {
		words = []string{"int"}
	}
	if unsigned && len(words) > 0 {
		if short, ok := unsignedNames[words[0]]; ok {
			words[0] = short
		}
	}
	info.typeName = strings.Join(words, " ") + strings.Repeat("*", stars)
	return info
}

// parseParams splits a kernel's parameter list. "void" and an empty list
// both mean no parameters.
func parseParams(list string) []paramInfo {
	list = strings.TrimSpace(list)
	if list == "" || list == "void" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]paramInfo, len(parts))
	for i, p := range parts {
		out[i] = parseParam(p)
	}
	return out
}

// GetKernelArgInfo answers from the parameter list in the program source.
func (d *Driver) GetKernelArgInfo(k native.Kernel, index uint32, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	kern, ok := get[kernelObj](d, uintptr(k))
	if !ok {
		return nil, native.InvalidKernel
	}
	if int(index) >= len(kern.params) {
		return nil, native.InvalidArgIndex
	}
	p := kern.params[index]
	switch param {
	case native.KernelArgAddressQualifier:
		return p.address, native.Success
	case native.KernelArgAccessQualifier:
		return p.access, native.Success
	case native.KernelArgTypeName:
		return p.typeName, native.Success
	case native.KernelArgTypeQualifier:
		return p.qualifier, native.Success
	case native.KernelArgName:
		return p.name, native.Success
	}
	return nil, native.InvalidValue
}

// GetKernelWorkGroupInfo reports the device limits for k. A zero device is
// accepted when the kernel's context has exactly one device.
func (d *Driver) GetKernelWorkGroupInfo(k native.Kernel, dev native.DeviceID, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	kern, ok := get[kernelObj](d, uintptr(k))
	if !ok {
		return nil, native.InvalidKernel
	}
	ctx, ok := get[contextObj](d, kern.ctx)
	if !ok {
		return nil, native.InvalidKernel
	}
	if dev == 0 {
		if len(ctx.devices) != 1 {
			return nil, native.InvalidDevice
		}
	} else if !hasDevice(ctx.devices, dev) {
		return nil, native.InvalidDevice
	}

	switch param {
	case native.KernelWorkGroupSize:
		return uint64(maxWorkGroupSize), native.Success
	case native.KernelCompileWorkGroupSize:
		return []uint64{0, 0, 0}, native.Success
	case native.KernelLocalMemSize:
		total := uint64(0)
		for _, a := range kern.args {
			total += uint64(a.local)
		}
		return total, native.Success
	case native.KernelPreferredWorkGroupSizeMultiple:
		return uint64(1), native.Success
	case native.KernelPrivateMemSize:
		return uint64(0), native.Success
	case native.KernelGlobalWorkSize:
		// only defined for custom devices and built-in kernels
		return nil, native.InvalidValue
	}
	return nil, native.InvalidValue
}
