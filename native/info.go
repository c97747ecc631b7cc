package native

// InfoType is the Go type an info query returns for a given parameter.
type InfoType int

const (
	InfoString    InfoType = iota // string
	InfoUint32                    // uint32 (cl_uint, enums)
	InfoUint64                    // uint64 (cl_ulong, bitfields, size_t)
	InfoInt32                     // int32 (cl_int)
	InfoBool                      // bool
	InfoSizes                     // []uint64 (size_t[])
	InfoPlatform                  // PlatformID
	InfoDevice                    // DeviceID
	InfoDevices                   // []DeviceID
	InfoContext                   // Context
	InfoQueue                     // CommandQueue
	InfoProgram                   // Program
	InfoProps                     // []uintptr
)

// ParamTypes maps every supported query parameter to its result type.
var ParamTypes = map[uint32]InfoType{
	PlatformProfile:    InfoString,
	PlatformVersion:    InfoString,
	PlatformName:       InfoString,
	PlatformVendor:     InfoString,
	PlatformExtensions: InfoString,

	DeviceType:                  InfoUint64,
	DeviceVendorID:              InfoUint32,
	DeviceMaxComputeUnits:       InfoUint32,
	DeviceMaxWorkItemDimensions: InfoUint32,
	DeviceMaxWorkGroupSize:      InfoUint64,
	DeviceMaxWorkItemSizes:      InfoSizes,
	DeviceMaxClockFrequency:     InfoUint32,
	DeviceMaxMemAllocSize:       InfoUint64,
	DeviceGlobalMemSize:         InfoUint64,
	DeviceLocalMemSize:          InfoUint64,
	DeviceAvailable:             InfoBool,
	DeviceCompilerAvailable:     InfoBool,
	DeviceName:                  InfoString,
	DeviceVendor:                InfoString,
	DriverVersion:               InfoString,
	DeviceProfile:               InfoString,
	DeviceVersion:               InfoString,
	DeviceExtensions:            InfoString,
	DevicePlatform:              InfoPlatform,

	ContextReferenceCount: InfoUint32,
	ContextDevices:        InfoDevices,
	ContextProperties:     InfoProps,
	ContextNumDevices:     InfoUint32,

	QueueContext:        InfoContext,
	QueueDevice:         InfoDevice,
	QueueReferenceCount: InfoUint32,
	QueueProperties:     InfoUint64,

	MemType:           InfoUint32,
	MemFlags:          InfoUint64,
	MemSize:           InfoUint64,
	MemMapCount:       InfoUint32,
	MemReferenceCount: InfoUint32,
	MemContext:        InfoContext,

	ProgramReferenceCount: InfoUint32,
	ProgramContext:        InfoContext,
	ProgramNumDevices:     InfoUint32,
	ProgramDevices:        InfoDevices,
	ProgramSource:         InfoString,
	ProgramNumKernels:     InfoUint64,
	ProgramKernelNames:    InfoString,

	ProgramBuildStatus:  InfoInt32,
	ProgramBuildOptions: InfoString,
	ProgramBuildLog:     InfoString,

	KernelFunctionName:   InfoString,
	KernelNumArgs:        InfoUint32,
	KernelReferenceCount: InfoUint32,
	KernelContext:        InfoContext,
	KernelProgram:        InfoProgram,
	KernelAttributes:     InfoString,

	KernelArgAddressQualifier: InfoUint32,
	KernelArgAccessQualifier:  InfoUint32,
	KernelArgTypeName:         InfoString,
	KernelArgTypeQualifier:    InfoUint64,
	KernelArgName:             InfoString,

	KernelWorkGroupSize:                  InfoUint64,
	KernelCompileWorkGroupSize:           InfoSizes,
	KernelLocalMemSize:                   InfoUint64,
	KernelPreferredWorkGroupSizeMultiple: InfoUint64,
	KernelPrivateMemSize:                 InfoUint64,
	KernelGlobalWorkSize:                 InfoSizes,

	EventCommandQueue:           InfoQueue,
	EventCommandType:            InfoUint32,
	EventReferenceCount:         InfoUint32,
	EventCommandExecutionStatus: InfoInt32,
	EventContext:                InfoContext,
}
