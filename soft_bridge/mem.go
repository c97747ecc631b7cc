package soft_bridge

import (
	"unsafe"

	"github.com/tsawler/go-clhost/native"
)

type memObj struct {
	rc
	ctx     uintptr
	flags   uint64
	data    []byte
	hostPtr unsafe.Pointer // set for MemUseHostPtr; data aliases it
}

const accessFlags = native.MemReadWrite | native.MemWriteOnly | native.MemReadOnly

func validMemFlags(flags uint64, hostPtr unsafe.Pointer) native.Status {
	known := accessFlags | native.MemUseHostPtr | native.MemAllocHostPtr | native.MemCopyHostPtr
	if flags&^known != 0 {
		return native.InvalidValue
	}
	if n := flags & accessFlags; n != 0 && n&(n-1) != 0 {
		return native.InvalidValue
	}
	if flags&native.MemUseHostPtr != 0 && flags&(native.MemAllocHostPtr|native.MemCopyHostPtr) != 0 {
		return native.InvalidValue
	}
	wantsHost := flags&(native.MemUseHostPtr|native.MemCopyHostPtr) != 0
	if wantsHost != (hostPtr != nil) {
		return native.InvalidHostPtr
	}
	return native.Success
}

func (d *Driver) CreateBuffer(c native.Context, flags uint64, size int, hostPtr unsafe.Pointer) (native.Mem, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	if _, ok := get[contextObj](d, uintptr(c)); !ok {
		return 0, native.InvalidContext
	}
	if flags == 0 {
		flags = native.MemReadWrite
	}
	if st := validMemFlags(flags, hostPtr); st != native.Success {
		return 0, st
	}
	if size <= 0 || uint64(size) > d.facts.globalMem/4 {
		return 0, native.InvalidBufferSize
	}

	m := &memObj{rc: rc{refs: 1}, ctx: uintptr(c), flags: flags}
	switch {
	case flags&native.MemUseHostPtr != 0:
		m.data = unsafe.Slice((*byte)(hostPtr), size)
		m.hostPtr = hostPtr
	case flags&native.MemCopyHostPtr != 0:
		m.data = make([]byte, size)
		copy(m.data, unsafe.Slice((*byte)(hostPtr), size))
	default:
		m.data = make([]byte, size)
	}
	id := d.register(m)
	Logger().Debug("soft: buffer created", "mem", id, "size", size, "flags", flags)
	return native.Mem(id), native.Success
}

func (d *Driver) GetMemObjectInfo(mo native.Mem, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	m, ok := get[memObj](d, uintptr(mo))
	if !ok {
		return nil, native.InvalidMemObject
	}
	switch param {
	case native.MemType:
		return native.MemObjectBuffer, native.Success
	case native.MemFlags:
		return m.flags, native.Success
	case native.MemSize:
		return uint64(len(m.data)), native.Success
	case native.MemMapCount:
		return uint32(0), native.Success
	case native.MemReferenceCount:
		return m.refs, native.Success
	case native.MemContext:
		return native.Context(m.ctx), native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) RetainMemObject(mo native.Mem) native.Status {
	return retainObj[memObj](d, uintptr(mo), native.InvalidMemObject)
}

func (d *Driver) ReleaseMemObject(mo native.Mem) native.Status {
	return releaseObj[memObj](d, uintptr(mo), native.InvalidMemObject, nil)
}

// transferTarget resolves the queue and buffer of a transfer command and
// checks the range and wait list. Must be called under the lock.
func (d *Driver) transferTarget(q native.CommandQueue, mo native.Mem, offset, size int, wait []native.Event) (*queueObj, *memObj, native.Status) {
	queue, ok := get[queueObj](d, uintptr(q))
	if !ok {
		return nil, nil, native.InvalidCommandQueue
	}
	m, ok := get[memObj](d, uintptr(mo))
	if !ok {
		return nil, nil, native.InvalidMemObject
	}
	if m.ctx != queue.ctx {
		return nil, nil, native.InvalidContext
	}
	if offset < 0 || size <= 0 || offset > len(m.data) || size > len(m.data)-offset {
		return nil, nil, native.InvalidValue
	}
	if st := d.checkWaitList(queue.ctx, wait); st != native.Success {
		return nil, nil, st
	}
	return queue, m, native.Success
}

// EnqueueReadBuffer copies device memory into dst. Reads are always
// complete on return, so blocking only documents the caller's intent.
func (d *Driver) EnqueueReadBuffer(q native.CommandQueue, mo native.Mem, blocking bool, offset, size int, dst unsafe.Pointer, wait []native.Event) (native.Event, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	queue, m, st := d.transferTarget(q, mo, offset, size, wait)
	if st != native.Success {
		return 0, st
	}
	if dst == nil {
		return 0, native.InvalidValue
	}
	copy(unsafe.Slice((*byte)(dst), size), m.data[offset:offset+size])
	return d.newEvent(queue.ctx, uintptr(q), native.CommandReadBuffer, native.Complete), native.Success
}

func (d *Driver) EnqueueWriteBuffer(q native.CommandQueue, mo native.Mem, blocking bool, offset, size int, src unsafe.Pointer, wait []native.Event) (native.Event, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	queue, m, st := d.transferTarget(q, mo, offset, size, wait)
	if st != native.Success {
		return 0, st
	}
	if src == nil {
		return 0, native.InvalidValue
	}
	copy(m.data[offset:offset+size], unsafe.Slice((*byte)(src), size))
	return d.newEvent(queue.ctx, uintptr(q), native.CommandWriteBuffer, native.Complete), native.Success
}

func (d *Driver) EnqueueCopyBuffer(q native.CommandQueue, src, dst native.Mem, srcOffset, dstOffset, size int, wait []native.Event) (native.Event, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	queue, from, st := d.transferTarget(q, src, srcOffset, size, wait)
	if st != native.Success {
		return 0, st
	}
	_, to, st := d.transferTarget(q, dst, dstOffset, size, nil)
	if st != native.Success {
		return 0, st
	}
	if src == dst && srcOffset < dstOffset+size && dstOffset < srcOffset+size {
		return 0, native.MemCopyOverlap
	}
	copy(to.data[dstOffset:dstOffset+size], from.data[srcOffset:srcOffset+size])
	return d.newEvent(queue.ctx, uintptr(q), native.CommandCopyBuffer, native.Complete), native.Success
}

// EnqueueFillBuffer repeats a pattern of 1 to 128 bytes (a power of two)
// over [offset, offset+size). Both ends must be pattern aligned.
func (d *Driver) EnqueueFillBuffer(q native.CommandQueue, mo native.Mem, pattern unsafe.Pointer, patternSize, offset, size int, wait []native.Event) (native.Event, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	queue, m, st := d.transferTarget(q, mo, offset, size, wait)
	if st != native.Success {
		return 0, st
	}
	if pattern == nil || patternSize <= 0 || patternSize > 128 || patternSize&(patternSize-1) != 0 {
		return 0, native.InvalidValue
	}
	if offset%patternSize != 0 || size%patternSize != 0 {
		return 0, native.InvalidValue
	}
	pat := unsafe.Slice((*byte)(pattern), patternSize)
	region := m.data[offset : offset+size]
	for i := 0; i < len(region); i += patternSize {
		copy(region[i:], pat)
	}
	return d.newEvent(queue.ctx, uintptr(q), native.CommandFillBuffer, native.Complete), native.Success
}
