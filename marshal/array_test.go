package marshal

import (
	"errors"
	"math"
	"testing"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/memory"
)

func ints(ns ...int64) host.Value {
	out := make([]host.Value, len(ns))
	for i, n := range ns {
		out[i] = host.Int(n)
	}
	return host.Arr(out)
}

func TestToNativeInt32(t *testing.T) {
	buf, err := ToNative[int32](ints(1, 2, 3))
	if err != nil {
		t.Fatalf("ToNative failed: %v", err)
	}
	if len(buf) != 3 || buf[0] != 1 || buf[1] != 2 || buf[2] != 3 {
		t.Fatalf("Expected [1 2 3], got %v", buf)
	}

	back := FromNative(buf)
	elems, _ := back.Elems()
	if len(elems) != 3 {
		t.Fatalf("Expected 3 elements, got %d", len(elems))
	}
	for i, want := range []int64{1, 2, 3} {
		if n, ok := elems[i].AsInt(); !ok || n != want || elems[i].Tag != host.TInt {
			t.Errorf("Element %d: expected int %d, got %v", i, want, elems[i])
		}
	}
}

func TestToNativeRejectsOutOfRange(t *testing.T) {
	_, err := ToNative[uint8](ints(300))
	var ee *ElementTypeError
	if !errors.As(err, &ee) {
		t.Fatalf("Expected ElementTypeError, got %v", err)
	}
	if ee.Index != 0 || ee.Target != memory.Uint8 {
		t.Errorf("Expected index 0 target uchar, got %d %s", ee.Index, ee.Target)
	}

	tests := []struct {
		name  string
		seq   host.Value
		index int
		conv  func(host.Value) error
	}{
		{"negative to unsigned", ints(1, -1), 1, func(v host.Value) error { _, err := ToNative[uint32](v); return err }},
		{"int8 overflow", ints(127, 128), 1, func(v host.Value) error { _, err := ToNative[int8](v); return err }},
		{"int16 underflow", ints(-32769), 0, func(v host.Value) error { _, err := ToNative[int16](v); return err }},
		{"fraction to int", host.Arr([]host.Value{host.Int(1), host.Num(2.5)}), 1, func(v host.Value) error { _, err := ToNative[int32](v); return err }},
		{"NaN to int", host.Arr([]host.Value{host.Num(math.NaN())}), 0, func(v host.Value) error { _, err := ToNative[int64](v); return err }},
		{"float32 overflow", host.Arr([]host.Value{host.Num(1e39)}), 0, func(v host.Value) error { _, err := ToNative[float32](v); return err }},
		{"string element", host.Arr([]host.Value{host.Int(0), host.Int(0), host.Str("3")}), 2, func(v host.Value) error { _, err := ToNative[float64](v); return err }},
		{"int64 boundary float", host.Arr([]host.Value{host.Num(9223372036854775808.0)}), 0, func(v host.Value) error { _, err := ToNative[int64](v); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conv(tt.seq)
			var ee *ElementTypeError
			if !errors.As(err, &ee) {
				t.Fatalf("Expected ElementTypeError, got %v", err)
			}
			if ee.Index != tt.index {
				t.Errorf("Expected index %d, got %d", tt.index, ee.Index)
			}
		})
	}
}

func TestToNativeBoundaries(t *testing.T) {
	if buf, err := ToNative[uint8](ints(0, 255)); err != nil || buf[1] != 255 {
		t.Errorf("Expected 255 to fit uchar, got %v %v", buf, err)
	}
	if buf, err := ToNative[int64](ints(math.MinInt64, math.MaxInt64)); err != nil || buf[0] != math.MinInt64 {
		t.Errorf("Expected int64 extremes to fit, got %v %v", buf, err)
	}
	if buf, err := ToNative[uint64](host.Arr([]host.Value{host.Num(1 << 63)})); err != nil || buf[0] != 1<<63 {
		t.Errorf("Expected 2^63 to fit ulong, got %v %v", buf, err)
	}
	if buf, err := ToNative[int32](host.Arr([]host.Value{host.Bool(true), host.Num(-4)})); err != nil || buf[0] != 1 || buf[1] != -4 {
		t.Errorf("Expected bool and integral float coercion, got %v %v", buf, err)
	}
	if buf, err := ToNative[float32](host.Arr([]host.Value{host.Num(math.Inf(1))})); err != nil || !math.IsInf(float64(buf[0]), 1) {
		t.Errorf("Expected +Inf to pass through to float, got %v %v", buf, err)
	}
}

func TestToNativeNotAnArray(t *testing.T) {
	_, err := ToNative[int32](host.Int(3))
	var ke *KindError
	if !errors.As(err, &ke) || ke.Expected != ArrayLike {
		t.Errorf("Expected KindError(ArrayLike), got %v", err)
	}
}

func TestFromNativeFloatAndEmpty(t *testing.T) {
	v := FromNative([]float32{0.5, -1.25})
	elems, _ := v.Elems()
	if f, _ := elems[1].AsFloat(); f != -1.25 || elems[1].Tag != host.TNum {
		t.Errorf("Expected -1.25 number, got %v", elems[1])
	}

	empty := FromNative([]int16{})
	if elems, ok := empty.Elems(); !ok || len(elems) != 0 {
		t.Errorf("Expected empty array, got %v", empty)
	}
}

func TestToNativeBytesRoundTrip(t *testing.T) {
	seq := host.Arr([]host.Value{host.Num(1.5), host.Num(-2), host.Int(8)})

	for _, dt := range []memory.DataType{memory.Float32, memory.Float64} {
		dst := make([]byte, 3*dt.Size())
		n, err := ToNativeBytes(seq, dt, dst)
		if err != nil || n != 3 {
			t.Fatalf("%s: expected 3 elements, got %d %v", dt, n, err)
		}
		back, _ := BytesToValues(dt, dst).Elems()
		for i, want := range []float64{1.5, -2, 8} {
			if f, _ := back[i].AsFloat(); f != want {
				t.Errorf("%s element %d: expected %v, got %v", dt, i, want, back[i])
			}
		}
	}

	if _, err := ToNativeBytes(seq, memory.Int32, make([]byte, 4)); err == nil {
		t.Error("Expected short destination to fail")
	}
}

func TestNewBufferAndValues(t *testing.T) {
	buf, err := NewBuffer(ints(4, 5, 6), memory.Uint16)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	if buf.Len() != 3 || buf.ByteLen() != 6 {
		t.Errorf("Expected 3 elements in 6 bytes, got %d in %d", buf.Len(), buf.ByteLen())
	}
	elems, _ := BufferValues(buf).Elems()
	if n, _ := elems[2].AsInt(); n != 6 {
		t.Errorf("Expected last element 6, got %v", elems[2])
	}

	if _, err := NewBuffer(ints(70000), memory.Uint16); err == nil {
		t.Error("Expected out-of-range element to fail buffer creation")
	}
}
