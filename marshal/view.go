package marshal

import (
	"unsafe"

	"github.com/tsawler/go-clhost/host"
)

// View is a borrowed window onto a host buffer's backing memory. It is valid
// only while the enclosing native call runs and the buffer is neither
// released nor resized; callers must not keep Ptr afterwards.
type View struct {
	Ptr unsafe.Pointer
	Len int
}

// AsView exposes the memory behind a buffer-like host value without copying.
// An empty buffer yields a nil pointer and zero length.
func AsView(v host.Value) (View, error) {
	b, ok := v.AsBuffer()
	if !ok {
		return View{}, &NotBufferLikeError{Actual: v.TypeName()}
	}
	raw := b.Bytes()
	if len(raw) == 0 {
		return View{}, nil
	}
	return View{Ptr: unsafe.Pointer(unsafe.SliceData(raw)), Len: len(raw)}, nil
}

// Bytes re-slices the view. Same lifetime rules as the view itself.
func (v View) Bytes() []byte {
	if v.Ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(v.Ptr), v.Len)
}

// Slice narrows the view to [offset, offset+size). The caller has checked
// the bounds.
func (v View) Slice(offset, size int) View {
	if size == 0 {
		return View{}
	}
	return View{Ptr: unsafe.Add(v.Ptr, offset), Len: size}
}

// bytesAs reinterprets the first n elements of raw as []T.
func bytesAs[T Scalar](raw []byte, n int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), n)
}

// aligned returns raw, or an aligned copy of it when its start address is not
// a multiple of align.
func aligned(raw []byte, align int) []byte {
	if align <= 1 || uintptr(unsafe.Pointer(unsafe.SliceData(raw)))%uintptr(align) == 0 {
		return raw
	}
	words := make([]uint64, (len(raw)+7)/8)
	cp := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(raw))
	copy(cp, raw)
	return cp
}
