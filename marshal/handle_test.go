package marshal

import (
	"errors"
	"testing"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/native"
)

// TestWrapUnwrapRoundTrip checks unwrap(wrap(h)) == h for every handle kind
func TestWrapUnwrapRoundTrip(t *testing.T) {
	bits := []uintptr{0, 1, 0xdeadbeef, ^uintptr(0)}

	for _, b := range bits {
		if got, err := Unwrap[native.PlatformID](Wrap(native.PlatformID(b))); err != nil || uintptr(got) != b {
			t.Errorf("platform %#x: got %#x, %v", b, uintptr(got), err)
		}
		if got, err := Unwrap[native.DeviceID](Wrap(native.DeviceID(b))); err != nil || uintptr(got) != b {
			t.Errorf("device %#x: got %#x, %v", b, uintptr(got), err)
		}
		if got, err := Unwrap[native.Context](Wrap(native.Context(b))); err != nil || uintptr(got) != b {
			t.Errorf("context %#x: got %#x, %v", b, uintptr(got), err)
		}
		if got, err := Unwrap[native.CommandQueue](Wrap(native.CommandQueue(b))); err != nil || uintptr(got) != b {
			t.Errorf("queue %#x: got %#x, %v", b, uintptr(got), err)
		}
		if got, err := Unwrap[native.Mem](Wrap(native.Mem(b))); err != nil || uintptr(got) != b {
			t.Errorf("mem %#x: got %#x, %v", b, uintptr(got), err)
		}
		if got, err := Unwrap[native.Program](Wrap(native.Program(b))); err != nil || uintptr(got) != b {
			t.Errorf("program %#x: got %#x, %v", b, uintptr(got), err)
		}
		if got, err := Unwrap[native.Kernel](Wrap(native.Kernel(b))); err != nil || uintptr(got) != b {
			t.Errorf("kernel %#x: got %#x, %v", b, uintptr(got), err)
		}
		if got, err := Unwrap[native.Event](Wrap(native.Event(b))); err != nil || uintptr(got) != b {
			t.Errorf("event %#x: got %#x, %v", b, uintptr(got), err)
		}
		if got, err := Unwrap[native.Sampler](Wrap(native.Sampler(b))); err != nil || uintptr(got) != b {
			t.Errorf("sampler %#x: got %#x, %v", b, uintptr(got), err)
		}
	}
}

// TestUnwrapRejectsNonHandles ensures plain values never yield a handle
func TestUnwrapRejectsNonHandles(t *testing.T) {
	forged := host.NewMap()
	forged.Set("tag", host.Str("context"))
	forged.Set("bits", host.Int(42))

	cases := map[string]host.Value{
		"null":           host.Null,
		"number":         host.Int(42),
		"float":          host.Num(42),
		"string":         host.Str("context"),
		"array":          host.Arr([]host.Value{host.Int(42)}),
		"forged object":  host.Obj(forged),
		"function":       host.Fun(func([]host.Value) (host.Value, error) { return host.Null, nil }),
		"foreign opaque": host.Opaque(struct{ bits uintptr }{42}),
		"nil box":        host.Opaque((*Box)(nil)),
	}

	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			h, err := Unwrap[native.Context](v)
			if h != 0 {
				t.Errorf("Expected zero handle, got %#x", uintptr(h))
			}
			var tm *TypeMismatchError
			if !errors.As(err, &tm) {
				t.Fatalf("Expected TypeMismatchError, got %v", err)
			}
			if kind, _ := KindOf(err); kind != KindTypeMismatch {
				t.Errorf("Expected kind %s, got %s", KindTypeMismatch, kind)
			}
			if IsBoxed(v) {
				t.Errorf("IsBoxed should be false for %s", name)
			}
		})
	}
}

// TestUnwrapTagMismatch ensures a handle of another kind is refused
func TestUnwrapTagMismatch(t *testing.T) {
	k := Wrap(native.Kernel(7))

	_, err := Unwrap[native.Context](k)
	var tm *TagMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("Expected TagMismatchError, got %v", err)
	}
	if tm.Expected != native.KindContext || tm.Actual != native.KindKernel {
		t.Errorf("Expected context/kernel, got %s/%s", tm.Expected, tm.Actual)
	}
	if tm.Error() != "expected context handle, got kernel handle" {
		t.Errorf("Unexpected message %q", tm.Error())
	}
}

func TestSameAndTagOf(t *testing.T) {
	a := Wrap(native.Mem(5))
	b := Wrap(native.Mem(5))
	c := Wrap(native.Event(5))

	if !Same(a, b) {
		t.Error("Expected boxes of the same handle to be equal")
	}
	if Same(a, c) {
		t.Error("Expected boxes with different tags to differ")
	}
	if Same(a, host.Int(5)) {
		t.Error("Expected a box and a number to differ")
	}
	if tag, ok := TagOf(c); !ok || tag != native.KindEvent {
		t.Errorf("Expected tag event, got %q (%v)", tag, ok)
	}
	if _, ok := TagOf(host.Int(1)); ok {
		t.Error("TagOf should fail on a number")
	}
}

func TestUnwrapAll(t *testing.T) {
	devs := WrapAll([]native.DeviceID{1, 2, 3})
	got, err := UnwrapAll[native.DeviceID](devs)
	if err != nil {
		t.Fatalf("UnwrapAll failed: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("Expected [1 2 3], got %v", got)
	}

	mixed := host.Arr([]host.Value{Wrap(native.DeviceID(1)), Wrap(native.Context(2))})
	_, err = UnwrapAll[native.DeviceID](mixed)
	var tm *TagMismatchError
	if !errors.As(err, &tm) || tm.Index != 1 {
		t.Errorf("Expected TagMismatchError at index 1, got %v", err)
	}

	_, err = UnwrapAll[native.DeviceID](host.Int(1))
	var ty *TypeMismatchError
	if !errors.As(err, &ty) {
		t.Errorf("Expected TypeMismatchError for a non-array, got %v", err)
	}
}
