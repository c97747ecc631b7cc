package transcript

import (
	"bytes"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tsawler/go-clhost/bindings"
	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/memory"
	"github.com/tsawler/go-clhost/soft_bridge"
)

// recorded runs a few calls, one of each outcome, through a recorder.
func recorded(t *testing.T) *Transcript {
	t.Helper()
	rec := NewRecorder("soft")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	rec.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	m := bindings.New(soft_bridge.New(soft_bridge.Config{}), bindings.WithObserver(rec))
	platforms, err := m.Call("getPlatformIDs")
	if err != nil {
		t.Fatalf("getPlatformIDs failed: %v", err)
	}
	plats, _ := platforms.Elems()
	m.Call("getPlatformInfo", plats[0], host.Int(0x0902))
	m.Call("getPlatformInfo", plats[0], host.Int(0x7777))
	m.Call("getPlatformInfo", host.Str("ok"), host.Int(42))

	buf, _ := host.NewBuffer(memory.Float32, 2)
	opts := host.NewMap()
	opts.Set("nested", host.Arr([]host.Value{host.Bool(true), host.Null}))
	rec.ObserveCall(bindings.CallRecord{Op: "custom", Args: []host.Value{host.Buf(buf), host.Obj(opts)}, Duration: 5})
	return rec.Transcript()
}

func TestRecorderEntries(t *testing.T) {
	tr := recorded(t)
	if tr.Session == "" || tr.Driver != "soft" {
		t.Errorf("Expected session id and driver, got %q %q", tr.Session, tr.Driver)
	}
	if len(tr.Entries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(tr.Entries))
	}

	for i, e := range tr.Entries {
		if e.Seq != i+1 {
			t.Errorf("Expected seq %d, got %d", i+1, e.Seq)
		}
	}
	if res, ok := tr.Entries[1].Result.(string); !ok || res == "" {
		t.Errorf("Expected platform name result, got %v", tr.Entries[1].Result)
	}
	if e := tr.Entries[2]; !e.Failed() || e.Status != "CL_INVALID_VALUE" || e.ErrorKind != "NativeStatusError" {
		t.Errorf("Expected CL_INVALID_VALUE entry, got %+v", e)
	}
	if e := tr.Entries[3]; e.ErrorKind != "KindError" || e.Status != "" {
		t.Errorf("Expected KindError entry, got %+v", e)
	}
	want := []any{
		map[string]any{"type": "float", "len": float64(2)},
		map[string]any{"nested": []any{true, nil}},
	}
	if !reflect.DeepEqual(tr.Entries[4].Args, want) {
		t.Errorf("Expected %v, got %v", want, tr.Entries[4].Args)
	}
}

func TestRoundTrip(t *testing.T) {
	tr := recorded(t)
	for _, f := range []Format{FormatJSON, FormatProto} {
		var buf bytes.Buffer
		if err := Encode(&buf, tr, f); err != nil {
			t.Fatalf("%s: Encode failed: %v", f, err)
		}
		got, err := Decode(&buf, f)
		if err != nil {
			t.Fatalf("%s: Decode failed: %v", f, err)
		}
		if got.Session != tr.Session || got.Driver != tr.Driver || !got.CreatedAt.Equal(tr.CreatedAt) {
			t.Errorf("%s: Expected header %s/%s/%v, got %s/%s/%v", f,
				tr.Session, tr.Driver, tr.CreatedAt, got.Session, got.Driver, got.CreatedAt)
		}
		if len(got.Entries) != len(tr.Entries) {
			t.Fatalf("%s: Expected %d entries, got %d", f, len(tr.Entries), len(got.Entries))
		}
		for i := range tr.Entries {
			w, g := tr.Entries[i], got.Entries[i]
			if !g.At.Equal(w.At) {
				t.Errorf("%s: entry %d: Expected time %v, got %v", f, i, w.At, g.At)
			}
			w.At, g.At = time.Time{}, time.Time{}
			if !reflect.DeepEqual(w, g) {
				t.Errorf("%s: entry %d: Expected %+v, got %+v", f, i, w, g)
			}
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tr := recorded(t)
	dir := t.TempDir()
	for _, name := range []string{"session.json", "session.pb"} {
		path := filepath.Join(dir, name)
		f := FormatForPath(path)
		if err := Save(tr, path, f); err != nil {
			t.Fatalf("Save %s failed: %v", name, err)
		}
		got, err := Load(path, f)
		if err != nil {
			t.Fatalf("Load %s failed: %v", name, err)
		}
		if len(got.Entries) != len(tr.Entries) {
			t.Errorf("%s: Expected %d entries, got %d", name, len(tr.Entries), len(got.Entries))
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.json"), FormatJSON); err == nil {
		t.Error("Expected error loading a missing file")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "": FormatJSON, "proto": FormatProto, "PROTOBUF": FormatProto} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): Expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("Expected error for xml")
	}
}
