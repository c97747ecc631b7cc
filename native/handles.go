// Package native describes the boundary to the compute-acceleration API:
// the opaque handle kinds it hands out, its status codes and query
// parameters, and the Driver interface every backend implements.
package native

// Handle is satisfied by every opaque handle kind. The bits are meaningful
// only to the driver that produced them; Kind is the fixed tag used when a
// handle is boxed for the script host.
type Handle interface {
	~uintptr
	Kind() string
}

// Handle kinds, one per native object type.
type (
	PlatformID   uintptr
	DeviceID     uintptr
	Context      uintptr
	CommandQueue uintptr
	Mem          uintptr
	Program      uintptr
	Kernel       uintptr
	Event        uintptr
	Sampler      uintptr
)

// Tags returned by Kind.
const (
	KindPlatform = "platform"
	KindDevice   = "device"
	KindContext  = "context"
	KindQueue    = "command_queue"
	KindMem      = "mem"
	KindProgram  = "program"
	KindKernel   = "kernel"
	KindEvent    = "event"
	KindSampler  = "sampler"
)

func (PlatformID) Kind() string   { return KindPlatform }
func (DeviceID) Kind() string     { return KindDevice }
func (Context) Kind() string      { return KindContext }
func (CommandQueue) Kind() string { return KindQueue }
func (Mem) Kind() string          { return KindMem }
func (Program) Kind() string      { return KindProgram }
func (Kernel) Kind() string       { return KindKernel }
func (Event) Kind() string        { return KindEvent }
func (Sampler) Kind() string      { return KindSampler }

// Kinds lists every handle tag.
var Kinds = []string{
	KindPlatform, KindDevice, KindContext, KindQueue, KindMem,
	KindProgram, KindKernel, KindEvent, KindSampler,
}
