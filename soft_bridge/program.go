package soft_bridge

import (
	"fmt"
	"regexp"
	"strings"
	"unsafe"

	"github.com/tsawler/go-clhost/native"
)

type programObj struct {
	rc
	ctx     uintptr
	source  string
	devices []native.DeviceID
	status  int32
	options string
	log     string
	names   []string
	params  map[string][]paramInfo
	kernels int // live kernel objects created from this program
}

type kernelObj struct {
	rc
	ctx     uintptr
	program uintptr
	def     *KernelDef
	params  []paramInfo
	args    []boundArg
}

type boundArg struct {
	set   bool
	mem   uintptr
	value []byte
	local int
}

var kernelDecl = regexp.MustCompile(`(?:__)?kernel\s+void\s+([A-Za-z_]\w*)\s*\(([^)]*)\)`)

func (d *Driver) CreateProgramWithSource(c native.Context, source string) (native.Program, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	ctx, ok := get[contextObj](d, uintptr(c))
	if !ok {
		return 0, native.InvalidContext
	}
	if source == "" {
		return 0, native.InvalidValue
	}
	p := &programObj{
		rc:      rc{refs: 1},
		ctx:     uintptr(c),
		source:  source,
		devices: append([]native.DeviceID(nil), ctx.devices...),
		status:  native.BuildNone,
	}
	return native.Program(d.register(p)), native.Success
}

// compile finds every kernel declared in source and binds it to a software
// implementation. The returned log is empty on success.
func (d *Driver) compile(source string) ([]string, map[string][]paramInfo, string) {
	if strings.Count(source, "{") != strings.Count(source, "}") {
		return nil, nil, "error: unbalanced braces"
	}
	var names []string
	params := make(map[string][]paramInfo)
	var log strings.Builder
	for _, m := range kernelDecl.FindAllStringSubmatch(source, -1) {
		name := m[1]
		def, ok := d.kernels.Lookup(name)
		if !ok {
			fmt.Fprintf(&log, "error: kernel '%s' has no software implementation\n", name)
			continue
		}
		declared := parseParams(m[2])
		if len(declared) != len(def.Args) {
			fmt.Fprintf(&log, "error: kernel '%s' declares %d parameters, implementation takes %d\n", name, len(declared), len(def.Args))
			continue
		}
		names = append(names, name)
		params[name] = declared
	}
	return names, params, log.String()
}

func validBuildOptions(options string) bool {
	for _, opt := range strings.Fields(options) {
		if !strings.HasPrefix(opt, "-") {
			return false
		}
	}
	return true
}

// BuildProgram compiles synchronously; notify, if given, runs once the build
// has finished and before BuildProgram returns.
func (d *Driver) BuildProgram(p native.Program, devices []native.DeviceID, options string, notify native.BuildNotify) native.Status {
	d.lock()
	prog, ok := get[programObj](d, uintptr(p))
	if !ok {
		d.mu.Unlock()
		return native.InvalidProgram
	}
	ctx, _ := get[contextObj](d, prog.ctx)
	for _, dev := range devices {
		if ctx == nil || !hasDevice(ctx.devices, dev) {
			d.mu.Unlock()
			return native.InvalidDevice
		}
	}
	if prog.kernels > 0 {
		d.mu.Unlock()
		return native.InvalidOperation
	}
	if !validBuildOptions(options) {
		d.mu.Unlock()
		return native.InvalidBuildOptions
	}

	if len(devices) > 0 {
		prog.devices = append([]native.DeviceID(nil), devices...)
	}
	prog.options = options
	names, params, log := d.compile(prog.source)
	st := native.Success
	if log != "" {
		prog.status, prog.log, prog.names, prog.params = native.BuildError, log, nil, nil
		st = native.BuildProgramFailure
	} else {
		prog.status, prog.log, prog.names, prog.params = native.BuildSuccess, "", names, params
	}
	d.mu.Unlock()

	Logger().Debug("soft: program built", "program", uintptr(p), "kernels", names, "status", st.Name())
	if notify != nil {
		notify(p)
	}
	return st
}

func (d *Driver) GetProgramInfo(p native.Program, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	prog, ok := get[programObj](d, uintptr(p))
	if !ok {
		return nil, native.InvalidProgram
	}
	switch param {
	case native.ProgramReferenceCount:
		return prog.refs, native.Success
	case native.ProgramContext:
		return native.Context(prog.ctx), native.Success
	case native.ProgramNumDevices:
		return uint32(len(prog.devices)), native.Success
	case native.ProgramDevices:
		return append([]native.DeviceID(nil), prog.devices...), native.Success
	case native.ProgramSource:
		return prog.source, native.Success
	case native.ProgramNumKernels, native.ProgramKernelNames:
		if prog.status != native.BuildSuccess {
			return nil, native.InvalidProgramExecutable
		}
		if param == native.ProgramNumKernels {
			return uint64(len(prog.names)), native.Success
		}
		return strings.Join(prog.names, ";"), native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) GetProgramBuildInfo(p native.Program, dev native.DeviceID, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	prog, ok := get[programObj](d, uintptr(p))
	if !ok {
		return nil, native.InvalidProgram
	}
	if !hasDevice(prog.devices, dev) {
		return nil, native.InvalidDevice
	}
	switch param {
	case native.ProgramBuildStatus:
		return prog.status, native.Success
	case native.ProgramBuildOptions:
		return prog.options, native.Success
	case native.ProgramBuildLog:
		return prog.log, native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) RetainProgram(p native.Program) native.Status {
	return retainObj[programObj](d, uintptr(p), native.InvalidProgram)
}

func (d *Driver) ReleaseProgram(p native.Program) native.Status {
	return releaseObj[programObj](d, uintptr(p), native.InvalidProgram, nil)
}

// newKernel must be called under the lock with a built program.
func (d *Driver) newKernel(p uintptr, prog *programObj, name string) (native.Kernel, native.Status) {
	found := false
	for _, n := range prog.names {
		if n == name {
			found = true
			break
		}
	}
	def, ok := d.kernels.Lookup(name)
	if !found || !ok {
		return 0, native.InvalidKernelName
	}
	k := &kernelObj{
		rc:      rc{refs: 1},
		ctx:     prog.ctx,
		program: p,
		def:     def,
		params:  prog.params[name],
		args:    make([]boundArg, len(def.Args)),
	}
	prog.kernels++
	return native.Kernel(d.register(k)), native.Success
}

func (d *Driver) CreateKernel(p native.Program, name string) (native.Kernel, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	prog, ok := get[programObj](d, uintptr(p))
	if !ok {
		return 0, native.InvalidProgram
	}
	if prog.status != native.BuildSuccess {
		return 0, native.InvalidProgramExecutable
	}
	if name == "" {
		return 0, native.InvalidValue
	}
	return d.newKernel(uintptr(p), prog, name)
}

func (d *Driver) CreateKernelsInProgram(p native.Program) ([]native.Kernel, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	prog, ok := get[programObj](d, uintptr(p))
	if !ok {
		return nil, native.InvalidProgram
	}
	if prog.status != native.BuildSuccess {
		return nil, native.InvalidProgramExecutable
	}
	out := make([]native.Kernel, 0, len(prog.names))
	for _, name := range prog.names {
		k, st := d.newKernel(uintptr(p), prog, name)
		if st != native.Success {
			return nil, st
		}
		out = append(out, k)
	}
	return out, native.Success
}

func (d *Driver) GetKernelInfo(k native.Kernel, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	kern, ok := get[kernelObj](d, uintptr(k))
	if !ok {
		return nil, native.InvalidKernel
	}
	switch param {
	case native.KernelFunctionName:
		return kern.def.Name, native.Success
	case native.KernelNumArgs:
		return uint32(len(kern.def.Args)), native.Success
	case native.KernelReferenceCount:
		return kern.refs, native.Success
	case native.KernelContext:
		return native.Context(kern.ctx), native.Success
	case native.KernelProgram:
		return native.Program(kern.program), native.Success
	case native.KernelAttributes:
		return kern.def.Attributes, native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) RetainKernel(k native.Kernel) native.Status {
	return retainObj[kernelObj](d, uintptr(k), native.InvalidKernel)
}

func (d *Driver) ReleaseKernel(k native.Kernel) native.Status {
	return releaseObj[kernelObj](d, uintptr(k), native.InvalidKernel, func(kern *kernelObj) {
		if prog, ok := get[programObj](d, kern.program); ok {
			prog.kernels--
		}
	})
}

// SetKernelArg binds argument index. A buffer argument's value points at a
// native.Mem; a local argument passes a nil value and the scratch size.
func (d *Driver) SetKernelArg(k native.Kernel, index uint32, size int, value unsafe.Pointer) native.Status {
	d.lock()
	defer d.mu.Unlock()
	kern, ok := get[kernelObj](d, uintptr(k))
	if !ok {
		return native.InvalidKernel
	}
	if int(index) >= len(kern.def.Args) {
		return native.InvalidArgIndex
	}
	spec := kern.def.Args[index]
	var arg boundArg

	switch {
	case spec.Local:
		if value != nil {
			return native.InvalidArgValue
		}
		if size <= 0 || size > localMemSize {
			return native.InvalidArgSize
		}
		arg.local = size
	case spec.Buffer:
		if size != int(unsafe.Sizeof(native.Mem(0))) {
			return native.InvalidArgSize
		}
		if value == nil {
			return native.InvalidArgValue
		}
		id := *(*uintptr)(value)
		m, ok := get[memObj](d, id)
		if !ok || m.ctx != kern.ctx {
			return native.InvalidMemObject
		}
		arg.mem = id
	default:
		if size != spec.Size {
			return native.InvalidArgSize
		}
		if value == nil {
			return native.InvalidArgValue
		}
		arg.value = append([]byte(nil), unsafe.Slice((*byte)(value), size)...)
	}
	arg.set = true
	kern.args[index] = arg
	return native.Success
}

func checkNDRange(workDim uint32, offset, global, local []uint64) native.Status {
	if workDim < 1 || workDim > 3 || len(global) != int(workDim) {
		return native.InvalidWorkDimension
	}
	if offset != nil && len(offset) != int(workDim) {
		return native.InvalidGlobalOffset
	}
	for _, g := range global {
		if g == 0 {
			return native.InvalidGlobalWorkSize
		}
	}
	if local == nil {
		return native.Success
	}
	if len(local) != int(workDim) {
		return native.InvalidWorkDimension
	}
	total := uint64(1)
	for i, l := range local {
		if l == 0 || l > maxWorkGroupSize {
			return native.InvalidWorkItemSize
		}
		if global[i]%l != 0 {
			return native.InvalidWorkGroupSize
		}
		total *= l
	}
	if total > maxWorkGroupSize {
		return native.InvalidWorkGroupSize
	}
	return native.Success
}

// EnqueueNDRangeKernel runs every work item before returning. Items execute
// one at a time, work group by work group, in row-major order.
func (d *Driver) EnqueueNDRangeKernel(q native.CommandQueue, k native.Kernel, workDim uint32, offset, global, local []uint64, wait []native.Event) (native.Event, native.Status) {
	ev, name, notify, st := d.ndRange(q, k, workDim, offset, global, local, wait)
	if notify != nil {
		notify(fmt.Sprintf("kernel %s failed", name))
	}
	return ev, st
}

// ndRange does the locked part of EnqueueNDRangeKernel. It returns the
// context callback to run once the lock is released, if the kernel failed.
func (d *Driver) ndRange(q native.CommandQueue, k native.Kernel, workDim uint32, offset, global, local []uint64, wait []native.Event) (native.Event, string, native.ContextNotify, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	queue, ok := get[queueObj](d, uintptr(q))
	if !ok {
		return 0, "", nil, native.InvalidCommandQueue
	}
	kern, ok := get[kernelObj](d, uintptr(k))
	if !ok {
		return 0, "", nil, native.InvalidKernel
	}
	if kern.ctx != queue.ctx {
		return 0, "", nil, native.InvalidContext
	}
	if st := checkNDRange(workDim, offset, global, local); st != native.Success {
		return 0, "", nil, st
	}
	if st := d.checkWaitList(queue.ctx, wait); st != native.Success {
		return 0, "", nil, st
	}

	args := make([]Arg, len(kern.args))
	scratch := 0
	for i, b := range kern.args {
		if !b.set {
			return 0, "", nil, native.InvalidKernelArgs
		}
		switch {
		case b.local > 0:
			scratch += b.local
			if scratch > localMemSize {
				return 0, "", nil, native.OutOfResources
			}
			args[i] = Arg{data: make([]byte, b.local)}
		case b.mem != 0:
			m, ok := get[memObj](d, b.mem)
			if !ok {
				return 0, "", nil, native.InvalidKernelArgs
			}
			args[i] = Arg{data: m.data}
		default:
			args[i] = Arg{data: b.value}
		}
	}

	status := native.Complete
	if err := runKernel(kern.def, int(workDim), offset, global, local, args); err != nil {
		status = int32(native.OutOfResources)
		Logger().Warn("soft: kernel failed", "kernel", kern.def.Name, "error", err)
	}
	ev := d.newEvent(queue.ctx, uintptr(q), native.CommandNDRangeKernel, status)
	var notify native.ContextNotify
	if ctx, ok := get[contextObj](d, queue.ctx); ok && status != native.Complete {
		notify = ctx.notify
	}
	return ev, kern.def.Name, notify, native.Success
}

func runKernel(def *KernelDef, dim int, offset, global, local []uint64, args []Arg) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("kernel %s panicked: %v", def.Name, r)
		}
	}()

	var item WorkItem
	item.Dim = dim
	var groups, size, base [3]uint64
	for i := 0; i < 3; i++ {
		groups[i], size[i] = 1, 1
		if i < dim {
			size[i] = global[i]
			item.Size[i] = global[i]
			if local != nil {
				groups[i] = global[i] / local[i]
			}
			if offset != nil {
				base[i] = offset[i]
			}
		}
	}
	group := func(i int) uint64 {
		if local == nil || i >= dim {
			return size[i]
		}
		return local[i]
	}

	for gz := uint64(0); gz < groups[2]; gz++ {
		for gy := uint64(0); gy < groups[1]; gy++ {
			for gx := uint64(0); gx < groups[0]; gx++ {
				item.Group = [3]uint64{gx, gy, gz}
				for lz := uint64(0); lz < group(2); lz++ {
					for ly := uint64(0); ly < group(1); ly++ {
						for lx := uint64(0); lx < group(0); lx++ {
							item.Local = [3]uint64{lx, ly, lz}
							item.Global = [3]uint64{
								base[0] + gx*group(0) + lx,
								base[1] + gy*group(1) + ly,
								base[2] + gz*group(2) + lz,
							}
							def.Fn(item, args)
						}
					}
				}
			}
		}
	}
	return nil
}
