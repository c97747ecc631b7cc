// Package cl_bridge implements native.Driver on top of the system OpenCL
// library through cgo. It is compiled only with the "opencl" build tag;
// without it New reports ErrNotBuilt.
package cl_bridge

import "errors"

// ErrNotBuilt indicates the binary was built without OpenCL support.
var ErrNotBuilt = errors.New("opencl support requires building with '-tags opencl'")

// ErrNoPlatform is returned by New when the ICD loader finds no platform.
var ErrNoPlatform = errors.New("no OpenCL platform available")
