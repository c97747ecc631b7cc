// Package host is the value model of the script host: every argument a script
// passes to an exposed operation, and every result it gets back, is a Value.
package host

import (
	"fmt"
	"strconv"
)

// Tag is the discriminant of a Value.
type Tag int

const (
	TNull   Tag = iota // null (no payload)
	TBool              // bool
	TInt               // int64
	TNum               // float64
	TStr               // string
	TArray             // []Value
	TMap               // *Map (plain script object)
	TFun               // Func
	TBuffer            // *Buffer (contiguous typed memory)
	TOpaque            // opaque payload owned by an integration
)

// Value is the universal carrier exchanged with the script host.
//
// Invariants:
//   - When Tag==TNull, Data is nil.
//   - When Tag==TArray, Data is []Value.
//   - When Tag==TOpaque, Data is whatever the integration stored; scripts can
//     pass it around but never look inside.
type Value struct {
	Tag  Tag
	Data any
}

// Func is a host callable.
type Func func(args []Value) (Value, error)

// Null is the singleton null Value.
var Null = Value{Tag: TNull}

func Bool(b bool) Value       { return Value{Tag: TBool, Data: b} }
func Int(n int64) Value       { return Value{Tag: TInt, Data: n} }
func Num(f float64) Value     { return Value{Tag: TNum, Data: f} }
func Str(s string) Value      { return Value{Tag: TStr, Data: s} }
func Arr(elems []Value) Value { return Value{Tag: TArray, Data: elems} }
func Fun(fn Func) Value       { return Value{Tag: TFun, Data: fn} }
func Buf(b *Buffer) Value     { return Value{Tag: TBuffer, Data: b} }

// Opaque wraps an integration-owned payload.
func Opaque(data any) Value { return Value{Tag: TOpaque, Data: data} }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Tag == TNull }

// IsNumber reports whether v is an int or a float.
func (v Value) IsNumber() bool { return v.Tag == TInt || v.Tag == TNum }

// AsString returns the payload of a TStr value.
func (v Value) AsString() (string, bool) {
	s, ok := v.Data.(string)
	return s, ok && v.Tag == TStr
}

// AsInt returns the payload of a TInt value, or a TNum value holding an
// integral float.
func (v Value) AsInt() (int64, bool) {
	switch v.Tag {
	case TInt:
		return v.Data.(int64), true
	case TNum:
		f := v.Data.(float64)
		if f == float64(int64(f)) {
			return int64(f), true
		}
	}
	return 0, false
}

// AsFloat returns the numeric payload as a float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.Tag {
	case TInt:
		return float64(v.Data.(int64)), true
	case TNum:
		return v.Data.(float64), true
	}
	return 0, false
}

// AsBool returns the payload of a TBool value.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.Data.(bool)
	return b, ok && v.Tag == TBool
}

// Elems returns the elements of a TArray value.
func (v Value) Elems() ([]Value, bool) {
	if v.Tag != TArray {
		return nil, false
	}
	elems, _ := v.Data.([]Value)
	return elems, true
}

// AsMap returns the payload of a TMap value.
func (v Value) AsMap() (*Map, bool) {
	m, ok := v.Data.(*Map)
	return m, ok && v.Tag == TMap
}

// AsFunc returns the payload of a TFun value.
func (v Value) AsFunc() (Func, bool) {
	fn, ok := v.Data.(Func)
	return fn, ok && v.Tag == TFun && fn != nil
}

// AsBuffer returns the payload of a TBuffer value.
func (v Value) AsBuffer() (*Buffer, bool) {
	b, ok := v.Data.(*Buffer)
	return b, ok && v.Tag == TBuffer && b != nil
}

// TypeName is the short, user-facing name of the value's kind.
func (v Value) TypeName() string {
	switch v.Tag {
	case TNull:
		return "null"
	case TBool:
		return "bool"
	case TInt:
		return "int"
	case TNum:
		return "number"
	case TStr:
		return "string"
	case TArray:
		return "array"
	case TMap:
		return "object"
	case TFun:
		return "function"
	case TBuffer:
		return "buffer"
	case TOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// String renders a debug representation.
func (v Value) String() string {
	switch v.Tag {
	case TNull:
		return "null"
	case TBool:
		return strconv.FormatBool(v.Data.(bool))
	case TInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case TNum:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case TStr:
		return strconv.Quote(v.Data.(string))
	case TArray:
		return fmt.Sprintf("<array len=%d>", len(v.Data.([]Value)))
	case TMap:
		return "<object>"
	case TFun:
		return "<function>"
	case TBuffer:
		if b, ok := v.AsBuffer(); ok {
			return fmt.Sprintf("<buffer %s[%d]>", b.Type(), b.Len())
		}
		return "<buffer>"
	case TOpaque:
		if s, ok := v.Data.(fmt.Stringer); ok {
			return s.String()
		}
		return "<opaque>"
	default:
		return "<unknown>"
	}
}
