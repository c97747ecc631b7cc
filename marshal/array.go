package marshal

import (
	"fmt"
	"math"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/memory"
)

// Scalar is the set of native element types arrays can be marshalled to.
type Scalar interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// DataTypeOf returns the memory.DataType matching T.
func DataTypeOf[T Scalar]() memory.DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return memory.Int8
	case uint8:
		return memory.Uint8
	case int16:
		return memory.Int16
	case uint16:
		return memory.Uint16
	case int32:
		return memory.Int32
	case uint32:
		return memory.Uint32
	case int64:
		return memory.Int64
	case uint64:
		return memory.Uint64
	case float32:
		return memory.Float32
	default:
		return memory.Float64
	}
}

// ToNative converts a host array into a contiguous slice of T with the same
// length and order. An element that T cannot represent fails the whole
// conversion with ElementTypeError; nothing is truncated.
func ToNative[T Scalar](seq host.Value) ([]T, error) {
	elems, ok := seq.Elems()
	if !ok {
		return nil, &KindError{Index: 0, Expected: ArrayLike, Actual: seq.TypeName()}
	}
	out := make([]T, len(elems))
	if err := convertInto(elems, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromNative converts a native slice back into a host array.
func FromNative[T Scalar](buf []T) host.Value {
	out := make([]host.Value, len(buf))
	dt := DataTypeOf[T]()
	for i, x := range buf {
		out[i] = scalarValue(x, dt)
	}
	return host.Arr(out)
}

func convertInto[T Scalar](elems []host.Value, out []T) error {
	dt := DataTypeOf[T]()
	for i, e := range elems {
		x, reason := convert[T](e, dt)
		if reason != "" {
			return &ElementTypeError{Index: i, Target: dt, Reason: reason}
		}
		out[i] = x
	}
	return nil
}

func scalarValue[T Scalar](x T, dt memory.DataType) host.Value {
	if dt.IsFloat() {
		return host.Num(float64(x))
	}
	if dt == memory.Uint64 && uint64(x) > math.MaxInt64 {
		return host.Num(float64(x))
	}
	return host.Int(int64(x))
}

// convert coerces one host value to T. The returned reason is empty on
// success.
func convert[T Scalar](v host.Value, dt memory.DataType) (T, string) {
	if dt.IsFloat() {
		var f float64
		switch v.Tag {
		case host.TBool:
			if v.Data.(bool) {
				f = 1
			}
		case host.TInt:
			f = float64(v.Data.(int64))
		case host.TNum:
			f = v.Data.(float64)
		default:
			return 0, "expected a number, got " + v.TypeName()
		}
		if dt == memory.Float32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return 0, fmt.Sprintf("%v is outside the float range", f)
		}
		return T(f), ""
	}

	lo, hi := intRange(dt)
	switch v.Tag {
	case host.TBool:
		if v.Data.(bool) {
			return 1, ""
		}
		return 0, ""
	case host.TInt:
		n := v.Data.(int64)
		if n < lo || (n >= 0 && uint64(n) > hi) {
			return 0, fmt.Sprintf("%d is out of range", n)
		}
		return T(n), ""
	case host.TNum:
		f := v.Data.(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fmt.Sprintf("%v is not an integer", f)
		}
		if f < float64(lo) || f >= float64(hi)+1 {
			return 0, fmt.Sprintf("%v is out of range", f)
		}
		if f >= 0 {
			return T(uint64(f)), ""
		}
		return T(int64(f)), ""
	default:
		return 0, "expected an integer, got " + v.TypeName()
	}
}

// intRange returns the inclusive bounds of an integer type.
func intRange(dt memory.DataType) (int64, uint64) {
	bits := uint(dt.Size() * 8)
	if dt.IsSigned() {
		return -(1 << (bits - 1)), 1<<(bits-1) - 1
	}
	if bits == 64 {
		return 0, math.MaxUint64
	}
	return 0, 1<<bits - 1
}

// ToNativeBytes converts a host array into dst using the runtime element
// type dt and returns the element count. dst must hold at least
// len(seq)*dt.Size() bytes.
func ToNativeBytes(seq host.Value, dt memory.DataType, dst []byte) (int, error) {
	elems, ok := seq.Elems()
	if !ok {
		return 0, &KindError{Index: 0, Expected: ArrayLike, Actual: seq.TypeName()}
	}
	if need := len(elems) * dt.Size(); len(dst) < need {
		return 0, fmt.Errorf("destination holds %d bytes, need %d", len(dst), need)
	}
	if len(elems) == 0 {
		return 0, nil
	}
	var err error
	switch dt {
	case memory.Int8:
		err = convertInto(elems, bytesAs[int8](dst, len(elems)))
	case memory.Uint8:
		err = convertInto(elems, bytesAs[uint8](dst, len(elems)))
	case memory.Int16:
		err = convertInto(elems, bytesAs[int16](dst, len(elems)))
	case memory.Uint16:
		err = convertInto(elems, bytesAs[uint16](dst, len(elems)))
	case memory.Int32:
		err = convertInto(elems, bytesAs[int32](dst, len(elems)))
	case memory.Uint32:
		err = convertInto(elems, bytesAs[uint32](dst, len(elems)))
	case memory.Int64:
		err = convertInto(elems, bytesAs[int64](dst, len(elems)))
	case memory.Uint64:
		err = convertInto(elems, bytesAs[uint64](dst, len(elems)))
	case memory.Float32:
		err = convertInto(elems, bytesAs[float32](dst, len(elems)))
	case memory.Float64:
		err = convertInto(elems, bytesAs[float64](dst, len(elems)))
	default:
		return 0, fmt.Errorf("unsupported element type %s", dt)
	}
	if err != nil {
		return 0, err
	}
	return len(elems), nil
}

// BytesToValues reads raw native memory of element type dt into a host
// array. Trailing bytes that do not form a whole element are ignored.
func BytesToValues(dt memory.DataType, raw []byte) host.Value {
	n := 0
	if dt.Size() > 0 {
		n = len(raw) / dt.Size()
	}
	if n == 0 {
		return host.Arr([]host.Value{})
	}
	raw = aligned(raw, dt.Size())
	switch dt {
	case memory.Int8:
		return FromNative(bytesAs[int8](raw, n))
	case memory.Uint8:
		return FromNative(bytesAs[uint8](raw, n))
	case memory.Int16:
		return FromNative(bytesAs[int16](raw, n))
	case memory.Uint16:
		return FromNative(bytesAs[uint16](raw, n))
	case memory.Int32:
		return FromNative(bytesAs[int32](raw, n))
	case memory.Uint32:
		return FromNative(bytesAs[uint32](raw, n))
	case memory.Int64:
		return FromNative(bytesAs[int64](raw, n))
	case memory.Uint64:
		return FromNative(bytesAs[uint64](raw, n))
	case memory.Float32:
		return FromNative(bytesAs[float32](raw, n))
	default:
		return FromNative(bytesAs[float64](raw, n))
	}
}

// NewBuffer builds a host buffer of element type dt from a host array.
func NewBuffer(seq host.Value, dt memory.DataType) (*host.Buffer, error) {
	elems, ok := seq.Elems()
	if !ok {
		return nil, &KindError{Index: 0, Expected: ArrayLike, Actual: seq.TypeName()}
	}
	buf, err := host.NewBuffer(dt, len(elems))
	if err != nil {
		return nil, err
	}
	if _, err := ToNativeBytes(seq, dt, buf.Bytes()); err != nil {
		return nil, err
	}
	return buf, nil
}

// BufferValues reads a host buffer back as a host array.
func BufferValues(b *host.Buffer) host.Value {
	return BytesToValues(b.Type(), b.Bytes())
}
