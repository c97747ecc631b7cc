//go:build !opencl

package cl_bridge

import "github.com/tsawler/go-clhost/native"

// New returns ErrNotBuilt when OpenCL support is not compiled in.
func New() (native.Driver, error) {
	return nil, ErrNotBuilt
}

// Available reports whether this binary can talk to OpenCL.
func Available() bool { return false }
