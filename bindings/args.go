package bindings

import (
	"fmt"
	"math"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/native"
)

// args is an argument list that has already passed its signature check, so
// accessors only fail on content: handle tags, number ranges, elements.
type args []host.Value

func (a args) has(i int) bool { return i < len(a) && !a[i].IsNull() }

func handleArg[H native.Handle](a args, i int) (H, error) {
	return marshal.Unwrap[H](a[i])
}

func handlesArg[H native.Handle](a args, i int) ([]H, error) {
	if !a.has(i) {
		return nil, nil
	}
	return marshal.UnwrapAll[H](a[i])
}

func (a args) str(i int) string {
	s, _ := a[i].AsString()
	return s
}

// optStr returns the string at i, or "" when the argument is absent.
func (a args) optStr(i int) string {
	if !a.has(i) {
		return ""
	}
	return a.str(i)
}

func outOfRange(i int, kind marshal.ArgKind, v host.Value) error {
	return &marshal.KindError{Index: i, Expected: kind, Actual: "out of range " + v.String()}
}

// uint returns a non-negative integral number no larger than limit.
func (a args) uint(i int, limit uint64) (uint64, error) {
	v := a[i]
	if n, ok := v.AsInt(); ok && n >= 0 && uint64(n) <= limit {
		return uint64(n), nil
	}
	if f, ok := v.AsFloat(); ok && f >= 0 && f == math.Trunc(f) && f < math.MaxUint64 && uint64(f) <= limit {
		return uint64(f), nil
	}
	return 0, outOfRange(i, marshal.Number, v)
}

func (a args) size(i int) (int, error) {
	n, err := a.uint(i, math.MaxInt)
	return int(n), err
}

func (a args) u32(i int) (uint32, error) {
	n, err := a.uint(i, math.MaxUint32)
	return uint32(n), err
}

func (a args) u64(i int) (uint64, error) {
	return a.uint(i, math.MaxUint64)
}

func (a args) i32(i int) (int32, error) {
	if n, ok := a[i].AsInt(); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
		return int32(n), nil
	}
	return 0, outOfRange(i, marshal.Number, a[i])
}

func (a args) flag(i int) bool {
	if b, ok := a[i].AsBool(); ok {
		return b
	}
	f, _ := a[i].AsFloat()
	return f != 0
}

// sizes converts an array of sizes, or null, to []uint64.
func (a args) sizes(i int) ([]uint64, error) {
	if !a.has(i) {
		return nil, nil
	}
	return marshal.ToNative[uint64](a[i])
}

func (a args) events(i int) ([]native.Event, error) {
	return handlesArg[native.Event](a, i)
}

func (a args) callback(i int) host.Func {
	if !a.has(i) {
		return nil
	}
	fn, _ := a[i].AsFunc()
	return fn
}

// hostBuffer returns the buffer at i, checking that [offset, offset+size)
// lies inside it.
func (a args) hostBuffer(i, offset, size int) (*host.Buffer, error) {
	buf, ok := a[i].AsBuffer()
	if !ok || offset < 0 || size < 0 || offset > buf.ByteLen() || size > buf.ByteLen()-offset {
		return nil, &marshal.KindError{Index: i, Expected: marshal.BufferLike, Actual: "buffer too small"}
	}
	return buf, nil
}

// infoValue converts a driver info result to a host value.
func infoValue(v any) host.Value {
	switch x := v.(type) {
	case nil:
		return host.Null
	case string:
		return host.Str(x)
	case bool:
		return host.Bool(x)
	case int32:
		return host.Int(int64(x))
	case uint32:
		return host.Int(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return host.Num(float64(x))
		}
		return host.Int(int64(x))
	case []uint64:
		return marshal.FromNative(x)
	case []string:
		out := make([]host.Value, len(x))
		for i, s := range x {
			out[i] = host.Str(s)
		}
		return host.Arr(out)
	case []uintptr:
		out := make([]host.Value, len(x))
		for i, w := range x {
			out[i] = host.Int(int64(w))
		}
		return host.Arr(out)
	case native.PlatformID:
		return wrapNonZero(x)
	case native.DeviceID:
		return wrapNonZero(x)
	case native.Context:
		return wrapNonZero(x)
	case native.CommandQueue:
		return wrapNonZero(x)
	case native.Program:
		return wrapNonZero(x)
	case []native.DeviceID:
		return marshal.WrapAll(x)
	}
	return host.Str(fmt.Sprint(v))
}

// wrapNonZero maps the null handle to host null.
func wrapNonZero[H native.Handle](h H) host.Value {
	if h == 0 {
		return host.Null
	}
	return marshal.Wrap(h)
}

// status turns a driver status into the call's error.
func status(st native.Status) error {
	return marshal.Check(st)
}

// info finishes an info query.
func info(v any, st native.Status) (host.Value, error) {
	if err := status(st); err != nil {
		return host.Null, err
	}
	return infoValue(v), nil
}

// invokeCallback runs a host callback. The native side has no way to receive
// its failure, so errors are logged and dropped.
func invokeCallback(kind string, fn host.Func, argv ...host.Value) {
	if fn == nil {
		return
	}
	if _, err := fn(argv); err != nil {
		Logger().Warn("callback failed", "callback", kind, "error", err)
	}
}
