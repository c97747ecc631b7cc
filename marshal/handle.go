package marshal

import (
	"fmt"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/native"
)

// Box is the single hidden slot of a boxed handle: the handle's bits and the
// tag of its kind. Its fields are unexported and never modified, so a Box can
// only come from Wrap and can be shared freely.
type Box struct {
	tag  string
	bits uintptr
}

// Tag returns the handle kind stored in the box.
func (b *Box) Tag() string { return b.tag }

func (b *Box) String() string {
	return fmt.Sprintf("<%s %#x>", b.tag, b.bits)
}

// Wrap boxes a native handle for the script host. The handle's bits are
// stored untouched and the tag comes from the handle's type.
func Wrap[H native.Handle](h H) host.Value {
	return host.Opaque(&Box{tag: h.Kind(), bits: uintptr(h)})
}

// WrapAll boxes every handle of a slice into a host array.
func WrapAll[H native.Handle](hs []H) host.Value {
	out := make([]host.Value, len(hs))
	for i, h := range hs {
		out[i] = Wrap(h)
	}
	return host.Arr(out)
}

// box is the object-shape pre-check shared by ArgGuard and Unwrap: the value
// must be opaque and its payload must be a Box. Null, sequences, plain maps
// and foreign opaque payloads all fail it.
func box(v host.Value) (*Box, bool) {
	if v.Tag != host.TOpaque {
		return nil, false
	}
	b, ok := v.Data.(*Box)
	return b, ok && b != nil
}

// IsBoxed reports whether v is a boxed handle, without looking at its tag.
func IsBoxed(v host.Value) bool {
	_, ok := box(v)
	return ok
}

// TagOf returns the tag of a boxed handle.
func TagOf(v host.Value) (string, bool) {
	b, ok := box(v)
	if !ok {
		return "", false
	}
	return b.tag, true
}

// Same reports slot equality: both values are boxes holding the same tag and
// the same handle bits.
func Same(a, b host.Value) bool {
	ba, okA := box(a)
	bb, okB := box(b)
	return okA && okB && ba.tag == bb.tag && ba.bits == bb.bits
}

// Unwrap returns the handle stored in v. It fails with TypeMismatchError when
// v is not a boxed handle and with TagMismatchError when the box holds a
// handle of another kind.
func Unwrap[H native.Handle](v host.Value) (H, error) {
	return unwrapAt[H](v, -1)
}

// UnwrapAll unwraps every element of a host array of boxed handles.
func UnwrapAll[H native.Handle](v host.Value) ([]H, error) {
	elems, ok := v.Elems()
	if !ok {
		var zero H
		return nil, &TypeMismatchError{Expected: "array of " + zero.Kind(), Actual: v.TypeName(), Index: -1}
	}
	out := make([]H, len(elems))
	for i, e := range elems {
		h, err := unwrapAt[H](e, i)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

func unwrapAt[H native.Handle](v host.Value, index int) (H, error) {
	var zero H
	want := zero.Kind()
	b, ok := box(v)
	if !ok {
		return zero, &TypeMismatchError{Expected: want, Actual: v.TypeName(), Index: index}
	}
	if b.tag != want {
		return zero, &TagMismatchError{Expected: want, Actual: b.tag, Index: index}
	}
	return H(b.bits), nil
}
