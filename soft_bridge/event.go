package soft_bridge

import (
	"github.com/tsawler/go-clhost/native"
)

type eventObj struct {
	rc
	ctx       uintptr
	queue     uintptr
	cmd       uint32
	status    int32
	user      bool
	callbacks []eventCallback
}

type eventCallback struct {
	execType int32
	fn       native.EventNotify
}

// reached reports whether status has progressed to execType. Statuses count
// down towards Complete and every error status is terminal.
func reached(status, execType int32) bool {
	return status <= execType
}

// newEvent registers a finished command. Must be called under the lock.
func (d *Driver) newEvent(ctx, queue uintptr, cmd uint32, status int32) native.Event {
	ev := &eventObj{rc: rc{refs: 1}, ctx: ctx, queue: queue, cmd: cmd, status: status}
	return native.Event(d.register(ev))
}

// checkWaitList validates the events a command depends on. Commands run at
// enqueue time, so a dependency must already be finished.
func (d *Driver) checkWaitList(ctx uintptr, wait []native.Event) native.Status {
	for _, e := range wait {
		ev, ok := get[eventObj](d, uintptr(e))
		if !ok {
			return native.InvalidEventWaitList
		}
		if ev.ctx != ctx {
			return native.InvalidContext
		}
		if ev.status < 0 {
			return native.ExecStatusErrorForEventsInWaitList
		}
		if ev.status != native.Complete {
			return native.InvalidOperation
		}
	}
	return native.Success
}

func (d *Driver) WaitForEvents(events []native.Event) native.Status {
	d.lock()
	defer d.mu.Unlock()
	if len(events) == 0 {
		return native.InvalidValue
	}
	var ctx uintptr
	failed := false
	for i, e := range events {
		ev, ok := get[eventObj](d, uintptr(e))
		if !ok {
			return native.InvalidEvent
		}
		if i == 0 {
			ctx = ev.ctx
		} else if ev.ctx != ctx {
			return native.InvalidContext
		}
		switch {
		case ev.status < 0:
			failed = true
		case ev.status != native.Complete:
			// nothing else can complete a user event while this call blocks
			return native.InvalidOperation
		}
	}
	if failed {
		return native.ExecStatusErrorForEventsInWaitList
	}
	return native.Success
}

func (d *Driver) GetEventInfo(e native.Event, param uint32) (any, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	ev, ok := get[eventObj](d, uintptr(e))
	if !ok {
		return nil, native.InvalidEvent
	}
	switch param {
	case native.EventCommandQueue:
		return native.CommandQueue(ev.queue), native.Success
	case native.EventCommandType:
		return ev.cmd, native.Success
	case native.EventReferenceCount:
		return ev.refs, native.Success
	case native.EventCommandExecutionStatus:
		return ev.status, native.Success
	case native.EventContext:
		return native.Context(ev.ctx), native.Success
	}
	return nil, native.InvalidValue
}

func (d *Driver) RetainEvent(e native.Event) native.Status {
	return retainObj[eventObj](d, uintptr(e), native.InvalidEvent)
}

func (d *Driver) ReleaseEvent(e native.Event) native.Status {
	return releaseObj[eventObj](d, uintptr(e), native.InvalidEvent, nil)
}

func (d *Driver) CreateUserEvent(c native.Context) (native.Event, native.Status) {
	d.lock()
	defer d.mu.Unlock()
	if _, ok := get[contextObj](d, uintptr(c)); !ok {
		return 0, native.InvalidContext
	}
	ev := &eventObj{
		rc:     rc{refs: 1},
		ctx:    uintptr(c),
		cmd:    native.CommandUser,
		status: native.Submitted,
		user:   true,
	}
	return native.Event(d.register(ev)), native.Success
}

// SetUserEventStatus completes a user event, either with Complete or with a
// negative error status. It may be called once per event.
func (d *Driver) SetUserEventStatus(e native.Event, status int32) native.Status {
	d.lock()
	ev, ok := get[eventObj](d, uintptr(e))
	if !ok || !ev.user {
		d.mu.Unlock()
		return native.InvalidEvent
	}
	if status > native.Complete {
		d.mu.Unlock()
		return native.InvalidValue
	}
	if ev.status != native.Submitted {
		d.mu.Unlock()
		return native.InvalidOperation
	}
	ev.status = status

	var fire []native.EventNotify
	pending := ev.callbacks[:0]
	for _, cb := range ev.callbacks {
		if reached(status, cb.execType) {
			fire = append(fire, cb.fn)
		} else {
			pending = append(pending, cb)
		}
	}
	ev.callbacks = pending
	d.mu.Unlock()

	for _, fn := range fire {
		fn(e, status)
	}
	Logger().Debug("soft: user event set", "event", uintptr(e), "status", status, "callbacks", len(fire))
	return native.Success
}

// SetEventCallback registers notify for when the event reaches execType.
// If it already has, notify runs before SetEventCallback returns.
func (d *Driver) SetEventCallback(e native.Event, execType int32, notify native.EventNotify) native.Status {
	d.lock()
	ev, ok := get[eventObj](d, uintptr(e))
	if !ok {
		d.mu.Unlock()
		return native.InvalidEvent
	}
	if notify == nil {
		d.mu.Unlock()
		return native.InvalidValue
	}
	switch execType {
	case native.Complete, native.Running, native.Submitted:
	default:
		d.mu.Unlock()
		return native.InvalidValue
	}
	status := ev.status
	if !reached(status, execType) {
		ev.callbacks = append(ev.callbacks, eventCallback{execType: execType, fn: notify})
		d.mu.Unlock()
		return native.Success
	}
	d.mu.Unlock()

	notify(e, status)
	return native.Success
}
