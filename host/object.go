package host

import (
	"fmt"

	"github.com/tsawler/go-clhost/memory"
)

// Map is a plain script object with insertion-ordered keys. Scripts can build
// one with any fields they like, so a Map is never accepted where a native
// handle is expected.
type Map struct {
	Keys    []string
	Entries map[string]Value
}

// NewMap returns an empty object.
func NewMap() *Map {
	return &Map{Entries: make(map[string]Value)}
}

// Set assigns key, keeping first-insertion order.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.Entries[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.Entries[key]
	return v, ok
}

// Obj wraps m as a Value.
func Obj(m *Map) Value { return Value{Tag: TMap, Data: m} }

// Buffer is host-owned contiguous typed memory, the script equivalent of a
// typed array. Its bytes may be lent to a native call through a zero-copy
// view for the duration of that call.
type Buffer struct {
	dtype memory.DataType
	data  []byte
}

// NewBuffer allocates a zeroed buffer of n elements.
func NewBuffer(dtype memory.DataType, n int) (*Buffer, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("invalid buffer element type %d", int(dtype))
	}
	if n < 0 {
		return nil, fmt.Errorf("buffer length cannot be negative, got %d", n)
	}
	return &Buffer{dtype: dtype, data: make([]byte, n*dtype.Size())}, nil
}

// BufferFromBytes adopts raw as the backing store of a buffer. len(raw) must
// be a multiple of the element size.
func BufferFromBytes(dtype memory.DataType, raw []byte) (*Buffer, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("invalid buffer element type %d", int(dtype))
	}
	if len(raw)%dtype.Size() != 0 {
		return nil, fmt.Errorf("buffer of %d bytes is not a whole number of %s elements", len(raw), dtype)
	}
	return &Buffer{dtype: dtype, data: raw}, nil
}

// Type returns the element type.
func (b *Buffer) Type() memory.DataType { return b.dtype }

// Len returns the number of elements.
func (b *Buffer) Len() int { return len(b.data) / b.dtype.Size() }

// ByteLen returns the size of the backing store in bytes.
func (b *Buffer) ByteLen() int { return len(b.data) }

// Bytes exposes the backing store.
func (b *Buffer) Bytes() []byte { return b.data }
