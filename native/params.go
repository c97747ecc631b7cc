package native

// Device types (bitfield).
const (
	DeviceTypeDefault     uint64 = 1 << 0
	DeviceTypeCPU         uint64 = 1 << 1
	DeviceTypeGPU         uint64 = 1 << 2
	DeviceTypeAccelerator uint64 = 1 << 3
	DeviceTypeCustom      uint64 = 1 << 4
	DeviceTypeAll         uint64 = 0xFFFFFFFF
)

// Memory flags (bitfield).
const (
	MemReadWrite    uint64 = 1 << 0
	MemWriteOnly    uint64 = 1 << 1
	MemReadOnly     uint64 = 1 << 2
	MemUseHostPtr   uint64 = 1 << 3
	MemAllocHostPtr uint64 = 1 << 4
	MemCopyHostPtr  uint64 = 1 << 5
)

// Command queue properties (bitfield).
const (
	QueueOutOfOrderExecModeEnable uint64 = 1 << 0
	QueueProfilingEnable          uint64 = 1 << 1
)

// Context properties.
const (
	ContextPlatform uintptr = 0x1084
)

// Command execution statuses. Negative values are error statuses.
const (
	Complete  int32 = 0x0
	Running   int32 = 0x1
	Submitted int32 = 0x2
	Queued    int32 = 0x3
)

// Command types reported by EventCommandType.
const (
	CommandNDRangeKernel uint32 = 0x11F0
	CommandReadBuffer    uint32 = 0x11F3
	CommandWriteBuffer   uint32 = 0x11F4
	CommandCopyBuffer    uint32 = 0x11F5
	CommandUser          uint32 = 0x1204
	CommandFillBuffer    uint32 = 0x1207
)

// Build statuses reported by ProgramBuildStatus.
const (
	BuildSuccess    int32 = 0
	BuildNone       int32 = -1
	BuildError      int32 = -2
	BuildInProgress int32 = -3
)

// Platform info.
const (
	PlatformProfile    uint32 = 0x0900
	PlatformVersion    uint32 = 0x0901
	PlatformName       uint32 = 0x0902
	PlatformVendor     uint32 = 0x0903
	PlatformExtensions uint32 = 0x0904
)

// Device info.
const (
	DeviceType                  uint32 = 0x1000
	DeviceVendorID              uint32 = 0x1001
	DeviceMaxComputeUnits       uint32 = 0x1002
	DeviceMaxWorkItemDimensions uint32 = 0x1003
	DeviceMaxWorkGroupSize      uint32 = 0x1004
	DeviceMaxWorkItemSizes      uint32 = 0x1005
	DeviceMaxClockFrequency     uint32 = 0x100C
	DeviceMaxMemAllocSize       uint32 = 0x1010
	DeviceGlobalMemSize         uint32 = 0x101F
	DeviceLocalMemSize          uint32 = 0x1023
	DeviceAvailable             uint32 = 0x1027
	DeviceCompilerAvailable     uint32 = 0x1028
	DeviceName                  uint32 = 0x102B
	DeviceVendor                uint32 = 0x102C
	DriverVersion               uint32 = 0x102D
	DeviceProfile               uint32 = 0x102E
	DeviceVersion               uint32 = 0x102F
	DeviceExtensions            uint32 = 0x1030
	DevicePlatform              uint32 = 0x1031
)

// Context info.
const (
	ContextReferenceCount uint32 = 0x1080
	ContextDevices        uint32 = 0x1081
	ContextProperties     uint32 = 0x1082
	ContextNumDevices     uint32 = 0x1083
)

// Command queue info.
const (
	QueueContext        uint32 = 0x1090
	QueueDevice         uint32 = 0x1091
	QueueReferenceCount uint32 = 0x1092
	QueueProperties     uint32 = 0x1093
)

// Memory object info.
const (
	MemType           uint32 = 0x1100
	MemFlags          uint32 = 0x1101
	MemSize           uint32 = 0x1102
	MemHostPtr        uint32 = 0x1103
	MemMapCount       uint32 = 0x1104
	MemReferenceCount uint32 = 0x1105
	MemContext        uint32 = 0x1106
)

// Program info.
const (
	ProgramReferenceCount uint32 = 0x1160
	ProgramContext        uint32 = 0x1161
	ProgramNumDevices     uint32 = 0x1162
	ProgramDevices        uint32 = 0x1163
	ProgramSource         uint32 = 0x1164
	ProgramNumKernels     uint32 = 0x1167
	ProgramKernelNames    uint32 = 0x1168
)

// Program build info.
const (
	ProgramBuildStatus  uint32 = 0x1181
	ProgramBuildOptions uint32 = 0x1182
	ProgramBuildLog     uint32 = 0x1183
)

// Kernel info.
const (
	KernelFunctionName   uint32 = 0x1190
	KernelNumArgs        uint32 = 0x1191
	KernelReferenceCount uint32 = 0x1192
	KernelContext        uint32 = 0x1193
	KernelProgram        uint32 = 0x1194
	KernelAttributes     uint32 = 0x1195
)

// Kernel argument info.
const (
	KernelArgAddressQualifier uint32 = 0x1196
	KernelArgAccessQualifier  uint32 = 0x1197
	KernelArgTypeName         uint32 = 0x1198
	KernelArgTypeQualifier    uint32 = 0x1199
	KernelArgName             uint32 = 0x119A
)

// Address qualifiers reported by KernelArgAddressQualifier.
const (
	KernelArgAddressGlobal   uint32 = 0x119B
	KernelArgAddressLocal    uint32 = 0x119C
	KernelArgAddressConstant uint32 = 0x119D
	KernelArgAddressPrivate  uint32 = 0x119E
)

// Access qualifiers reported by KernelArgAccessQualifier.
const (
	KernelArgAccessReadOnly  uint32 = 0x11A0
	KernelArgAccessWriteOnly uint32 = 0x11A1
	KernelArgAccessReadWrite uint32 = 0x11A2
	KernelArgAccessNone      uint32 = 0x11A3
)

// Type qualifiers reported by KernelArgTypeQualifier (bitfield).
const (
	KernelArgTypeNone     uint64 = 0
	KernelArgTypeConst    uint64 = 1 << 0
	KernelArgTypeRestrict uint64 = 1 << 1
	KernelArgTypeVolatile uint64 = 1 << 2
)

// Kernel work group info.
const (
	KernelWorkGroupSize                  uint32 = 0x11B0
	KernelCompileWorkGroupSize           uint32 = 0x11B1
	KernelLocalMemSize                   uint32 = 0x11B2
	KernelPreferredWorkGroupSizeMultiple uint32 = 0x11B3
	KernelPrivateMemSize                 uint32 = 0x11B4
	KernelGlobalWorkSize                 uint32 = 0x11B5
)

// Event info.
const (
	EventCommandQueue           uint32 = 0x11D0
	EventCommandType            uint32 = 0x11D1
	EventReferenceCount         uint32 = 0x11D2
	EventCommandExecutionStatus uint32 = 0x11D3
	EventContext                uint32 = 0x11D4
)

// MemObjectBuffer is the MemType of buffers.
const MemObjectBuffer uint32 = 0x10F0
