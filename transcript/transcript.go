// Package transcript records the calls a script makes through bindings and
// persists them as JSON or as a delimited protobuf stream.
package transcript

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tsawler/go-clhost/bindings"
	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/marshal"
)

// Transcript is one recorded session.
type Transcript struct {
	Session   string    `json:"session"`
	Driver    string    `json:"driver"`
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
}

// Entry is one call. Arguments and results are rendered to plain values:
// nil, bool, float64, string, []any and map[string]any. Handles render as
// their debug string, so a transcript can be read but never replayed into
// live handles.
type Entry struct {
	Seq        int       `json:"seq"`
	At         time.Time `json:"at"`
	Op         string    `json:"op"`
	Args       []any     `json:"args"`
	Result     any       `json:"result,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	Status     string    `json:"status,omitempty"`
	DurationNS int64     `json:"duration_ns"`
}

// Failed reports whether the call returned an error.
func (e Entry) Failed() bool { return e.Error != "" }

// Duration returns the recorded call latency.
func (e Entry) Duration() time.Duration { return time.Duration(e.DurationNS) }

// Recorder collects entries. It implements bindings.Observer and is safe for
// concurrent use.
type Recorder struct {
	mu  sync.Mutex
	t   Transcript
	now func() time.Time
}

var _ bindings.Observer = (*Recorder)(nil)

// NewRecorder starts a session with a fresh id.
func NewRecorder(driver string) *Recorder {
	r := &Recorder{now: func() time.Time { return time.Now().UTC() }}
	r.t = Transcript{Session: uuid.NewString(), Driver: driver, CreatedAt: r.now()}
	return r
}

// Session returns the session id.
func (r *Recorder) Session() string { return r.t.Session }

// ObserveCall appends one entry.
func (r *Recorder) ObserveCall(rec bindings.CallRecord) {
	e := Entry{
		Op:         rec.Op,
		Args:       Render(rec.Args...),
		DurationNS: rec.Duration.Nanoseconds(),
	}
	if rec.Err != nil {
		e.Error = rec.Err.Error()
		if kind, ok := marshal.KindOf(rec.Err); ok {
			e.ErrorKind = string(kind)
		}
		var serr *marshal.StatusError
		if errors.As(rec.Err, &serr) {
			e.Status = serr.Code.Name()
		}
	} else if !rec.Result.IsNull() {
		e.Result = RenderValue(rec.Result)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e.Seq = len(r.t.Entries) + 1
	e.At = r.now()
	r.t.Entries = append(r.t.Entries, e)
}

// Transcript returns a snapshot of everything recorded so far.
func (r *Recorder) Transcript() *Transcript {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.t
	t.Entries = append([]Entry(nil), r.t.Entries...)
	return &t
}

// Render converts host values for storage.
func Render(vs ...host.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = RenderValue(v)
	}
	return out
}

// RenderValue converts one host value. Numbers become float64 so that both
// formats decode to the same thing.
func RenderValue(v host.Value) any {
	switch v.Tag {
	case host.TNull:
		return nil
	case host.TBool:
		b, _ := v.AsBool()
		return b
	case host.TInt, host.TNum:
		f, _ := v.AsFloat()
		return f
	case host.TStr:
		s, _ := v.AsString()
		return s
	case host.TArray:
		elems, _ := v.Elems()
		return Render(elems...)
	case host.TMap:
		m, _ := v.AsMap()
		out := make(map[string]any, len(m.Keys))
		for _, k := range m.Keys {
			out[k] = RenderValue(m.Entries[k])
		}
		return out
	case host.TBuffer:
		b, _ := v.AsBuffer()
		return map[string]any{"type": b.Type().String(), "len": float64(b.Len())}
	}
	return v.String()
}
