package transcript

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Format selects the on-disk encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatProto
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatProto:
		return "proto"
	default:
		return "unknown"
	}
}

// ParseFormat accepts "json" and "proto" (or "protobuf").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "proto", "protobuf", "pb":
		return FormatProto, nil
	}
	return 0, fmt.Errorf("unsupported transcript format: %q", s)
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".pb"), strings.HasSuffix(path, ".binpb"):
		return FormatProto
	default:
		return FormatJSON
	}
}

// Save writes t to path.
func Save(t *Transcript, path string, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create transcript file: %w", err)
	}
	if err := Encode(file, t, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Load reads a transcript from path.
func Load(path string, f Format) (*Transcript, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript file: %w", err)
	}
	defer file.Close()
	return Decode(file, f)
}

// Encode writes t to w.
func Encode(w io.Writer, t *Transcript, f Format) error {
	switch f {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(t); err != nil {
			return fmt.Errorf("failed to encode transcript: %w", err)
		}
		return nil
	case FormatProto:
		return encodeProto(w, t)
	default:
		return fmt.Errorf("unsupported transcript format: %s", f)
	}
}

// Decode reads a transcript from r.
func Decode(r io.Reader, f Format) (*Transcript, error) {
	switch f {
	case FormatJSON:
		var t Transcript
		if err := json.NewDecoder(r).Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to decode transcript: %w", err)
		}
		return &t, nil
	case FormatProto:
		return decodeProto(bufio.NewReader(r))
	default:
		return nil, fmt.Errorf("unsupported transcript format: %s", f)
	}
}

// The protobuf form is a length-delimited message stream: a header Struct
// and its Timestamp, then one Timestamp and one Struct per entry.

func encodeProto(w io.Writer, t *Transcript) error {
	header, err := structpb.NewStruct(map[string]any{
		"session": t.Session,
		"driver":  t.Driver,
	})
	if err != nil {
		return fmt.Errorf("failed to encode transcript header: %w", err)
	}
	msgs := []proto.Message{header, timestamppb.New(t.CreatedAt)}
	for _, e := range t.Entries {
		body, err := entryStruct(e)
		if err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", e.Seq, err)
		}
		msgs = append(msgs, timestamppb.New(e.At), body)
	}
	for _, m := range msgs {
		if _, err := protodelim.MarshalTo(w, m); err != nil {
			return fmt.Errorf("failed to write transcript: %w", err)
		}
	}
	return nil
}

func entryStruct(e Entry) (*structpb.Struct, error) {
	fields := map[string]any{
		"seq":         float64(e.Seq),
		"op":          e.Op,
		"args":        e.Args,
		"duration_ns": float64(e.DurationNS),
	}
	if e.Result != nil {
		fields["result"] = e.Result
	}
	for k, v := range map[string]string{"error_kind": e.ErrorKind, "error": e.Error, "status": e.Status} {
		if v != "" {
			fields[k] = v
		}
	}
	return structpb.NewStruct(fields)
}

func decodeProto(r *bufio.Reader) (*Transcript, error) {
	var header structpb.Struct
	var created timestamppb.Timestamp
	if err := protodelim.UnmarshalFrom(r, &header); err != nil {
		return nil, fmt.Errorf("failed to read transcript header: %w", err)
	}
	if err := protodelim.UnmarshalFrom(r, &created); err != nil {
		return nil, fmt.Errorf("failed to read transcript header: %w", err)
	}
	hf := header.GetFields()
	t := &Transcript{
		Session:   hf["session"].GetStringValue(),
		Driver:    hf["driver"].GetStringValue(),
		CreatedAt: created.AsTime(),
	}

	for {
		var at timestamppb.Timestamp
		err := protodelim.UnmarshalFrom(r, &at)
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %d: %w", len(t.Entries)+1, err)
		}
		var body structpb.Struct
		if err := protodelim.UnmarshalFrom(r, &body); err != nil {
			return nil, fmt.Errorf("failed to read entry %d: %w", len(t.Entries)+1, err)
		}
		t.Entries = append(t.Entries, structEntry(&body, at.AsTime()))
	}
}

func structEntry(s *structpb.Struct, at time.Time) Entry {
	f := s.GetFields()
	e := Entry{
		Seq:        int(f["seq"].GetNumberValue()),
		At:         at,
		Op:         f["op"].GetStringValue(),
		Args:       f["args"].GetListValue().AsSlice(),
		ErrorKind:  f["error_kind"].GetStringValue(),
		Error:      f["error"].GetStringValue(),
		Status:     f["status"].GetStringValue(),
		DurationNS: int64(f["duration_ns"].GetNumberValue()),
	}
	if v, ok := f["result"]; ok {
		e.Result = v.AsInterface()
	}
	return e
}
