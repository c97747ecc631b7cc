package marshal

import (
	"fmt"

	"github.com/tsawler/go-clhost/native"
)

var descriptions = map[native.Status]string{
	native.Success:                            "Success",
	native.DeviceNotFound:                     "Device not found",
	native.DeviceNotAvailable:                 "Device not available",
	native.CompilerNotAvailable:               "Compiler not available",
	native.MemObjectAllocationFailure:         "Memory object allocation failure",
	native.OutOfResources:                     "Out of resources",
	native.OutOfHostMemory:                    "Out of host memory",
	native.ProfilingInfoNotAvailable:          "Profiling information not available",
	native.MemCopyOverlap:                     "Memory copy overlap",
	native.ImageFormatMismatch:                "Image format mismatch",
	native.ImageFormatNotSupported:            "Image format not supported",
	native.BuildProgramFailure:                "Program build failure",
	native.MapFailure:                         "Map failure",
	native.MisalignedSubBufferOffset:          "Misaligned sub-buffer offset",
	native.ExecStatusErrorForEventsInWaitList: "Execution status error for events in wait list",
	native.CompileProgramFailure:              "Program compile failure",
	native.LinkerNotAvailable:                 "Linker not available",
	native.LinkProgramFailure:                 "Program link failure",
	native.DevicePartitionFailed:              "Device partition failed",
	native.KernelArgInfoNotAvailable:          "Kernel argument info not available",
	native.InvalidValue:                       "Invalid value",
	native.InvalidDeviceType:                  "Invalid device type",
	native.InvalidPlatform:                    "Invalid platform",
	native.InvalidDevice:                      "Invalid device",
	native.InvalidContext:                     "Invalid context",
	native.InvalidQueueProperties:             "Invalid queue properties",
	native.InvalidCommandQueue:                "Invalid command queue",
	native.InvalidHostPtr:                     "Invalid host pointer",
	native.InvalidMemObject:                   "Invalid memory object",
	native.InvalidImageFormatDescriptor:       "Invalid image format descriptor",
	native.InvalidImageSize:                   "Invalid image size",
	native.InvalidSampler:                     "Invalid sampler",
	native.InvalidBinary:                      "Invalid binary",
	native.InvalidBuildOptions:                "Invalid build options",
	native.InvalidProgram:                     "Invalid program",
	native.InvalidProgramExecutable:           "Invalid program executable",
	native.InvalidKernelName:                  "Invalid kernel name",
	native.InvalidKernelDefinition:            "Invalid kernel definition",
	native.InvalidKernel:                      "Invalid kernel",
	native.InvalidArgIndex:                    "Invalid argument index",
	native.InvalidArgValue:                    "Invalid argument value",
	native.InvalidArgSize:                     "Invalid argument size",
	native.InvalidKernelArgs:                  "Invalid kernel arguments",
	native.InvalidWorkDimension:               "Invalid work dimension",
	native.InvalidWorkGroupSize:               "Invalid work group size",
	native.InvalidWorkItemSize:                "Invalid work item size",
	native.InvalidGlobalOffset:                "Invalid global offset",
	native.InvalidEventWaitList:               "Invalid event wait list",
	native.InvalidEvent:                       "Invalid event",
	native.InvalidOperation:                   "Invalid operation",
	native.InvalidGLObject:                    "Invalid OpenGL object",
	native.InvalidBufferSize:                  "Invalid buffer size",
	native.InvalidMipLevel:                    "Invalid mip-map level",
	native.InvalidGlobalWorkSize:              "Invalid global work size",
	native.InvalidProperty:                    "Invalid property",
	native.InvalidImageDescriptor:             "Invalid image descriptor",
	native.InvalidCompilerOptions:             "Invalid compiler options",
	native.InvalidLinkerOptions:               "Invalid linker options",
	native.InvalidDevicePartitionCount:        "Invalid device partition count",
	native.InvalidGLSharegroupReferenceKHR:    "Invalid OpenGL sharegroup reference",
	native.PlatformNotFoundKHR:                "No valid ICD platform found",
	native.InvalidD3D10DeviceKHR:              "Invalid Direct3D 10 device",
	native.InvalidD3D10ResourceKHR:            "Invalid Direct3D 10 resource",
	native.DevicePartitionFailedEXT:           "Device partition failed",
	native.InvalidPartitionCountEXT:           "Invalid partition count",
	native.InvalidPartitionNameEXT:            "Invalid partition name",
}

// Describe returns the human-readable description of a status code. It is
// total: codes outside the table get a generic description.
func Describe(code native.Status) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return fmt.Sprintf("unknown error %d", int32(code))
}

// IsSuccess reports whether code is the success sentinel.
func IsSuccess(code native.Status) bool {
	return code == native.Success
}

// Check turns a native status into an error. The success status yields nil
// without consulting the description table.
func Check(code native.Status) error {
	if IsSuccess(code) {
		return nil
	}
	return &StatusError{Code: code, Description: Describe(code)}
}
