// Package soft_bridge is a pure-Go implementation of native.Driver: one CPU
// platform with one device whose kernels are Go functions looked up by name.
// Every command executes synchronously at enqueue time, so every event it
// returns is already complete (user events excepted).
package soft_bridge

import (
	"sync"

	"github.com/tsawler/go-clhost/native"
)

// Config tunes what the software platform reports.
type Config struct {
	PlatformName string
	DeviceName   string
	Kernels      *Registry // nil means DefaultRegistry
}

const (
	defaultPlatformName = "go-clhost software platform"
	platformVersion     = "OpenCL 1.2 go-clhost"
	platformProfile     = "FULL_PROFILE"
	platformExtensions  = ""
	maxWorkGroupSize    = 1024
	localMemSize        = 32 * 1024
)

// Driver is the software native.Driver. It is safe for concurrent use; its
// callbacks always run after the driver's lock has been released.
type Driver struct {
	mu      sync.Mutex
	cfg     Config
	facts   hostFacts
	kernels *Registry
	nextID  uintptr
	objects map[uintptr]any
	calls   int

	platform uintptr
	device   uintptr
}

var _ native.Driver = (*Driver)(nil)

// New creates a software driver with its single platform and device.
func New(cfg Config) *Driver {
	if cfg.PlatformName == "" {
		cfg.PlatformName = defaultPlatformName
	}
	d := &Driver{
		cfg:     cfg,
		facts:   readHostFacts(),
		kernels: cfg.Kernels,
		nextID:  0x100,
		objects: make(map[uintptr]any),
	}
	if d.kernels == nil {
		d.kernels = DefaultRegistry
	}
	if cfg.DeviceName != "" {
		d.facts.modelName = cfg.DeviceName
	}
	d.platform = d.register(&platformObj{})
	d.device = d.register(&deviceObj{platform: d.platform})
	return d
}

// Name identifies the driver.
func (d *Driver) Name() string { return "soft" }

// Calls returns how many native calls the driver has served.
func (d *Driver) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Live returns how many objects (platform and device included) exist.
func (d *Driver) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}

// lock takes the driver lock and counts the call.
func (d *Driver) lock() {
	d.mu.Lock()
	d.calls++
}

func (d *Driver) register(obj any) uintptr {
	id := d.nextID
	d.nextID += 0x10
	d.objects[id] = obj
	return id
}

func get[T any](d *Driver, id uintptr) (*T, bool) {
	obj, ok := d.objects[id].(*T)
	return obj, ok
}

// rc is the reference count embedded in every releasable object.
type rc struct{ refs uint32 }

func (r *rc) counter() *uint32 { return &r.refs }

type counted[T any] interface {
	*T
	counter() *uint32
}

func retainObj[T any, PT counted[T]](d *Driver, id uintptr, invalid native.Status) native.Status {
	d.lock()
	defer d.mu.Unlock()
	obj, ok := d.objects[id].(PT)
	if !ok {
		return invalid
	}
	*obj.counter()++
	return native.Success
}

// releaseObj drops one reference and forgets the object when none remain.
// onFree runs under the lock.
func releaseObj[T any, PT counted[T]](d *Driver, id uintptr, invalid native.Status, onFree func(PT)) native.Status {
	d.lock()
	defer d.mu.Unlock()
	obj, ok := d.objects[id].(PT)
	if !ok {
		return invalid
	}
	*obj.counter()--
	if *obj.counter() == 0 {
		delete(d.objects, id)
		if onFree != nil {
			onFree(obj)
		}
	}
	return native.Success
}

type platformObj struct{}

type deviceObj struct {
	platform uintptr
}

type contextObj struct {
	rc
	devices []native.DeviceID
	props   []uintptr
	notify  native.ContextNotify
}

type queueObj struct {
	rc
	ctx    uintptr
	device uintptr
	props  uint64
}

func (d *Driver) GetPlatformIDs() ([]native.PlatformID, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	return []native.PlatformID{native.PlatformID(d.platform)}, native.Success
}

func (d *Driver) GetPlatformInfo(p native.PlatformID, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	if _, ok := get[platformObj](d, uintptr(p)); !ok {
		return nil, native.InvalidPlatform
	}
	switch param {
	case native.PlatformProfile:
		return platformProfile, native.Success
	case native.PlatformVersion:
		return platformVersion, native.Success
	case native.PlatformName:
		return d.cfg.PlatformName, native.Success
	case native.PlatformVendor:
		return d.facts.vendor, native.Success
	case native.PlatformExtensions:
		return platformExtensions, native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) GetDeviceIDs(p native.PlatformID, deviceType uint64) ([]native.DeviceID, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	if _, ok := get[platformObj](d, uintptr(p)); !ok {
		return nil, native.InvalidPlatform
	}
	const known = native.DeviceTypeDefault | native.DeviceTypeCPU | native.DeviceTypeGPU |
		native.DeviceTypeAccelerator | native.DeviceTypeCustom
	if deviceType != native.DeviceTypeAll && (deviceType == 0 || deviceType&^known != 0) {
		return nil, native.InvalidDeviceType
	}
	if deviceType&(native.DeviceTypeCPU|native.DeviceTypeDefault) == 0 {
		return nil, native.DeviceNotFound
	}
	return []native.DeviceID{native.DeviceID(d.device)}, native.Success
}

func (d *Driver) GetDeviceInfo(dev native.DeviceID, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	obj, ok := get[deviceObj](d, uintptr(dev))
	if !ok {
		return nil, native.InvalidDevice
	}
	switch param {
	case native.DeviceType:
		return native.DeviceTypeCPU, native.Success
	case native.DeviceVendorID:
		return uint32(0), native.Success
	case native.DeviceMaxComputeUnits:
		return d.facts.computeUnits, native.Success
	case native.DeviceMaxWorkItemDimensions:
		return uint32(3), native.Success
	case native.DeviceMaxWorkGroupSize:
		return uint64(maxWorkGroupSize), native.Success
	case native.DeviceMaxWorkItemSizes:
		return []uint64{maxWorkGroupSize, maxWorkGroupSize, maxWorkGroupSize}, native.Success
	case native.DeviceMaxClockFrequency:
		return d.facts.clockMHz, native.Success
	case native.DeviceMaxMemAllocSize:
		return d.facts.globalMem / 4, native.Success
	case native.DeviceGlobalMemSize:
		return d.facts.globalMem, native.Success
	case native.DeviceLocalMemSize:
		return uint64(localMemSize), native.Success
	case native.DeviceAvailable, native.DeviceCompilerAvailable:
		return true, native.Success
	case native.DeviceName:
		return d.facts.modelName, native.Success
	case native.DeviceVendor:
		return d.facts.vendor, native.Success
	case native.DriverVersion:
		return "1.0", native.Success
	case native.DeviceProfile:
		return platformProfile, native.Success
	case native.DeviceVersion:
		return platformVersion, native.Success
	case native.DeviceExtensions:
		return "", native.Success
	case native.DevicePlatform:
		return native.PlatformID(obj.platform), native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) CreateContext(props []uintptr, devices []native.DeviceID, notify native.ContextNotify) (native.Context, native.Status) {
	d.lock()
	defer d.mu.Unlock()

	// props is a flat name/value list, optionally zero-terminated
	for i := 0; i < len(props); i += 2 {
		if props[i] == 0 {
			break
		}
		if props[i] != native.ContextPlatform || i+1 >= len(props) {
			return 0, native.InvalidProperty
		}
		if _, ok := get[platformObj](d, props[i+1]); !ok {
			return 0, native.InvalidPlatform
		}
	}
	if len(devices) == 0 {
		return 0, native.InvalidValue
	}
	for _, dev := range devices {
		if _, ok := get[deviceObj](d, uintptr(dev)); !ok {
			return 0, native.InvalidDevice
		}
	}

	ctx := &contextObj{
		rc:      rc{refs: 1},
		devices: append([]native.DeviceID(nil), devices...),
		props:   append([]uintptr(nil), props...),
		notify:  notify,
	}
	return native.Context(d.register(ctx)), native.Success
}

func (d *Driver) GetContextInfo(c native.Context, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	ctx, ok := get[contextObj](d, uintptr(c))
	if !ok {
		return nil, native.InvalidContext
	}
	switch param {
	case native.ContextReferenceCount:
		return ctx.refs, native.Success
	case native.ContextDevices:
		return append([]native.DeviceID(nil), ctx.devices...), native.Success
	case native.ContextProperties:
		return append([]uintptr(nil), ctx.props...), native.Success
	case native.ContextNumDevices:
		return uint32(len(ctx.devices)), native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) RetainContext(c native.Context) native.Status {
	return retainObj[contextObj](d, uintptr(c), native.InvalidContext)
}

func (d *Driver) ReleaseContext(c native.Context) native.Status {
	return releaseObj[contextObj](d, uintptr(c), native.InvalidContext, nil)
}

func (d *Driver) CreateCommandQueue(c native.Context, dev native.DeviceID, props uint64) (native.CommandQueue, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	ctx, ok := get[contextObj](d, uintptr(c))
	if !ok {
		return 0, native.InvalidContext
	}
	if !hasDevice(ctx.devices, dev) {
		return 0, native.InvalidDevice
	}
	if props&^(native.QueueOutOfOrderExecModeEnable|native.QueueProfilingEnable) != 0 {
		return 0, native.InvalidValue
	}
	q := &queueObj{rc: rc{refs: 1}, ctx: uintptr(c), device: uintptr(dev), props: props}
	return native.CommandQueue(d.register(q)), native.Success
}

func (d *Driver) GetCommandQueueInfo(q native.CommandQueue, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	queue, ok := get[queueObj](d, uintptr(q))
	if !ok {
		return nil, native.InvalidCommandQueue
	}
	switch param {
	case native.QueueContext:
		return native.Context(queue.ctx), native.Success
	case native.QueueDevice:
		return native.DeviceID(queue.device), native.Success
	case native.QueueReferenceCount:
		return queue.refs, native.Success
	case native.QueueProperties:
		return queue.props, native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) RetainCommandQueue(q native.CommandQueue) native.Status {
	return retainObj[queueObj](d, uintptr(q), native.InvalidCommandQueue)
}

func (d *Driver) ReleaseCommandQueue(q native.CommandQueue) native.Status {
	return releaseObj[queueObj](d, uintptr(q), native.InvalidCommandQueue, nil)
}

// Flush and Finish only validate the queue: commands have already run.
func (d *Driver) Flush(q native.CommandQueue) native.Status {
	d.lock()
	defer d.mu.Unlock()
	if _, ok := get[queueObj](d, uintptr(q)); !ok {
		return native.InvalidCommandQueue
	}
	return native.Success
}

func (d *Driver) Finish(q native.CommandQueue) native.Status {
	return d.Flush(q)
}

func hasDevice(devices []native.DeviceID, dev native.DeviceID) bool {
	for _, x := range devices {
		if x == dev {
			return true
		}
	}
	return false
}
