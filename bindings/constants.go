package bindings

import (
	"strings"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/native"
)

type constant struct {
	name  string
	value int64
}

// constants are exported under their OpenCL names without the CL_ prefix.
var constants = []constant{
	{"DEVICE_TYPE_DEFAULT", int64(native.DeviceTypeDefault)},
	{"DEVICE_TYPE_CPU", int64(native.DeviceTypeCPU)},
	{"DEVICE_TYPE_GPU", int64(native.DeviceTypeGPU)},
	{"DEVICE_TYPE_ACCELERATOR", int64(native.DeviceTypeAccelerator)},
	{"DEVICE_TYPE_CUSTOM", int64(native.DeviceTypeCustom)},
	{"DEVICE_TYPE_ALL", int64(native.DeviceTypeAll)},

	{"MEM_READ_WRITE", int64(native.MemReadWrite)},
	{"MEM_WRITE_ONLY", int64(native.MemWriteOnly)},
	{"MEM_READ_ONLY", int64(native.MemReadOnly)},
	{"MEM_USE_HOST_PTR", int64(native.MemUseHostPtr)},
	{"MEM_ALLOC_HOST_PTR", int64(native.MemAllocHostPtr)},
	{"MEM_COPY_HOST_PTR", int64(native.MemCopyHostPtr)},
	{"MEM_OBJECT_BUFFER", int64(native.MemObjectBuffer)},

	{"QUEUE_OUT_OF_ORDER_EXEC_MODE_ENABLE", int64(native.QueueOutOfOrderExecModeEnable)},
	{"QUEUE_PROFILING_ENABLE", int64(native.QueueProfilingEnable)},

	{"CONTEXT_PLATFORM", int64(native.ContextPlatform)},

	{"COMPLETE", int64(native.Complete)},
	{"RUNNING", int64(native.Running)},
	{"SUBMITTED", int64(native.Submitted)},
	{"QUEUED", int64(native.Queued)},

	{"COMMAND_NDRANGE_KERNEL", int64(native.CommandNDRangeKernel)},
	{"COMMAND_READ_BUFFER", int64(native.CommandReadBuffer)},
	{"COMMAND_WRITE_BUFFER", int64(native.CommandWriteBuffer)},
	{"COMMAND_COPY_BUFFER", int64(native.CommandCopyBuffer)},
	{"COMMAND_USER", int64(native.CommandUser)},
	{"COMMAND_FILL_BUFFER", int64(native.CommandFillBuffer)},

	{"BUILD_SUCCESS", int64(native.BuildSuccess)},
	{"BUILD_NONE", int64(native.BuildNone)},
	{"BUILD_ERROR", int64(native.BuildError)},
	{"BUILD_IN_PROGRESS", int64(native.BuildInProgress)},

	{"PLATFORM_PROFILE", int64(native.PlatformProfile)},
	{"PLATFORM_VERSION", int64(native.PlatformVersion)},
	{"PLATFORM_NAME", int64(native.PlatformName)},
	{"PLATFORM_VENDOR", int64(native.PlatformVendor)},
	{"PLATFORM_EXTENSIONS", int64(native.PlatformExtensions)},

	{"DEVICE_TYPE", int64(native.DeviceType)},
	{"DEVICE_VENDOR_ID", int64(native.DeviceVendorID)},
	{"DEVICE_MAX_COMPUTE_UNITS", int64(native.DeviceMaxComputeUnits)},
	{"DEVICE_MAX_WORK_ITEM_DIMENSIONS", int64(native.DeviceMaxWorkItemDimensions)},
	{"DEVICE_MAX_WORK_GROUP_SIZE", int64(native.DeviceMaxWorkGroupSize)},
	{"DEVICE_MAX_WORK_ITEM_SIZES", int64(native.DeviceMaxWorkItemSizes)},
	{"DEVICE_MAX_CLOCK_FREQUENCY", int64(native.DeviceMaxClockFrequency)},
	{"DEVICE_MAX_MEM_ALLOC_SIZE", int64(native.DeviceMaxMemAllocSize)},
	{"DEVICE_GLOBAL_MEM_SIZE", int64(native.DeviceGlobalMemSize)},
	{"DEVICE_LOCAL_MEM_SIZE", int64(native.DeviceLocalMemSize)},
	{"DEVICE_AVAILABLE", int64(native.DeviceAvailable)},
	{"DEVICE_COMPILER_AVAILABLE", int64(native.DeviceCompilerAvailable)},
	{"DEVICE_NAME", int64(native.DeviceName)},
	{"DEVICE_VENDOR", int64(native.DeviceVendor)},
	{"DRIVER_VERSION", int64(native.DriverVersion)},
	{"DEVICE_PROFILE", int64(native.DeviceProfile)},
	{"DEVICE_VERSION", int64(native.DeviceVersion)},
	{"DEVICE_EXTENSIONS", int64(native.DeviceExtensions)},
	{"DEVICE_PLATFORM", int64(native.DevicePlatform)},

	{"CONTEXT_REFERENCE_COUNT", int64(native.ContextReferenceCount)},
	{"CONTEXT_DEVICES", int64(native.ContextDevices)},
	{"CONTEXT_PROPERTIES", int64(native.ContextProperties)},
	{"CONTEXT_NUM_DEVICES", int64(native.ContextNumDevices)},

	{"QUEUE_CONTEXT", int64(native.QueueContext)},
	{"QUEUE_DEVICE", int64(native.QueueDevice)},
	{"QUEUE_REFERENCE_COUNT", int64(native.QueueReferenceCount)},
	{"QUEUE_PROPERTIES", int64(native.QueueProperties)},

	{"MEM_TYPE", int64(native.MemType)},
	{"MEM_FLAGS", int64(native.MemFlags)},
	{"MEM_SIZE", int64(native.MemSize)},
	{"MEM_HOST_PTR", int64(native.MemHostPtr)},
	{"MEM_MAP_COUNT", int64(native.MemMapCount)},
	{"MEM_REFERENCE_COUNT", int64(native.MemReferenceCount)},
	{"MEM_CONTEXT", int64(native.MemContext)},

	{"PROGRAM_REFERENCE_COUNT", int64(native.ProgramReferenceCount)},
	{"PROGRAM_CONTEXT", int64(native.ProgramContext)},
	{"PROGRAM_NUM_DEVICES", int64(native.ProgramNumDevices)},
	{"PROGRAM_DEVICES", int64(native.ProgramDevices)},
	{"PROGRAM_SOURCE", int64(native.ProgramSource)},
	{"PROGRAM_NUM_KERNELS", int64(native.ProgramNumKernels)},
	{"PROGRAM_KERNEL_NAMES", int64(native.ProgramKernelNames)},
	{"PROGRAM_BUILD_STATUS", int64(native.ProgramBuildStatus)},
	{"PROGRAM_BUILD_OPTIONS", int64(native.ProgramBuildOptions)},
	{"PROGRAM_BUILD_LOG", int64(native.ProgramBuildLog)},

	{"KERNEL_FUNCTION_NAME", int64(native.KernelFunctionName)},
	{"KERNEL_NUM_ARGS", int64(native.KernelNumArgs)},
	{"KERNEL_REFERENCE_COUNT", int64(native.KernelReferenceCount)},
	{"KERNEL_CONTEXT", int64(native.KernelContext)},
	{"KERNEL_PROGRAM", int64(native.KernelProgram)},
	{"KERNEL_ATTRIBUTES", int64(native.KernelAttributes)},

	{"KERNEL_ARG_ADDRESS_QUALIFIER", int64(native.KernelArgAddressQualifier)},
	{"KERNEL_ARG_ACCESS_QUALIFIER", int64(native.KernelArgAccessQualifier)},
	{"KERNEL_ARG_TYPE_NAME", int64(native.KernelArgTypeName)},
	{"KERNEL_ARG_TYPE_QUALIFIER", int64(native.KernelArgTypeQualifier)},
	{"KERNEL_ARG_NAME", int64(native.KernelArgName)},
	{"KERNEL_ARG_ADDRESS_GLOBAL", int64(native.KernelArgAddressGlobal)},
	{"KERNEL_ARG_ADDRESS_LOCAL", int64(native.KernelArgAddressLocal)},
	{"KERNEL_ARG_ADDRESS_CONSTANT", int64(native.KernelArgAddressConstant)},
	{"KERNEL_ARG_ADDRESS_PRIVATE", int64(native.KernelArgAddressPrivate)},
	{"KERNEL_ARG_ACCESS_READ_ONLY", int64(native.KernelArgAccessReadOnly)},
	{"KERNEL_ARG_ACCESS_WRITE_ONLY", int64(native.KernelArgAccessWriteOnly)},
	{"KERNEL_ARG_ACCESS_READ_WRITE", int64(native.KernelArgAccessReadWrite)},
	{"KERNEL_ARG_ACCESS_NONE", int64(native.KernelArgAccessNone)},
	{"KERNEL_ARG_TYPE_NONE", int64(native.KernelArgTypeNone)},
	{"KERNEL_ARG_TYPE_CONST", int64(native.KernelArgTypeConst)},
	{"KERNEL_ARG_TYPE_RESTRICT", int64(native.KernelArgTypeRestrict)},
	{"KERNEL_ARG_TYPE_VOLATILE", int64(native.KernelArgTypeVolatile)},

	{"KERNEL_WORK_GROUP_SIZE", int64(native.KernelWorkGroupSize)},
	{"KERNEL_COMPILE_WORK_GROUP_SIZE", int64(native.KernelCompileWorkGroupSize)},
	{"KERNEL_LOCAL_MEM_SIZE", int64(native.KernelLocalMemSize)},
	{"KERNEL_PREFERRED_WORK_GROUP_SIZE_MULTIPLE", int64(native.KernelPreferredWorkGroupSizeMultiple)},
	{"KERNEL_PRIVATE_MEM_SIZE", int64(native.KernelPrivateMemSize)},
	{"KERNEL_GLOBAL_WORK_SIZE", int64(native.KernelGlobalWorkSize)},

	{"EVENT_COMMAND_QUEUE", int64(native.EventCommandQueue)},
	{"EVENT_COMMAND_TYPE", int64(native.EventCommandType)},
	{"EVENT_REFERENCE_COUNT", int64(native.EventReferenceCount)},
	{"EVENT_COMMAND_EXECUTION_STATUS", int64(native.EventCommandExecutionStatus)},
	{"EVENT_CONTEXT", int64(native.EventContext)},
}

// Constants returns every exported constant, status codes last.
func (m *Module) Constants() *host.Map {
	out := host.NewMap()
	for _, c := range constants {
		out.Set(c.name, host.Int(c.value))
	}
	for _, st := range native.Statuses() {
		out.Set(strings.TrimPrefix(st.Name(), "CL_"), host.Int(int64(st)))
	}
	return out
}

// Constant looks up one constant by name.
func (m *Module) Constant(name string) (int64, bool) {
	v, ok := m.Constants().Get(name)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}
