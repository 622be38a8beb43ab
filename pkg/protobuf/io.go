// Package protobuf reads and writes protobuf messages, selecting the encoding
// by file extension: .json (protojson), .pbtext (prototext) or binary.
package protobuf

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

type marshaler func(m protoreflect.ProtoMessage) ([]byte, error)
type unmarshaler func(b []byte, m protoreflect.ProtoMessage) error

func unmarshalerForFilename(filename string) unmarshaler {
	switch filepath.Ext(filename) {
	case ".json":
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal
	case ".pbtext":
		return prototext.Unmarshal
	default:
		return proto.Unmarshal
	}
}

func marshalerForFilename(filename string) marshaler {
	switch filepath.Ext(filename) {
	case ".json":
		return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal
	case ".pbtext":
		return prototext.MarshalOptions{Multiline: true}.Marshal
	default:
		return proto.MarshalOptions{Deterministic: true}.Marshal
	}
}

func ReadFile(filename string, message protoreflect.ProtoMessage) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read %q: %w", filename, err)
	}
	if err := unmarshalerForFilename(filename)(data, message); err != nil {
		return fmt.Errorf("unmarshal %q: %w", filename, err)
	}
	return nil
}

// WriteFile writes the message atomically, creating parent directories.
func WriteFile(filename string, message protoreflect.ProtoMessage) error {
	data, err := marshalerForFilename(filename)(message)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// WriteStableJSON writes the message as indented JSON with a stable layout.
func WriteStableJSON(out io.Writer, message protoreflect.ProtoMessage) error {
	data, err := StableJSON(message)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, data+"\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func StableJSON(message protoreflect.ProtoMessage) (string, error) {
	data, err := protojson.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	var rm json.RawMessage = data
	data2, err := json.MarshalIndent(rm, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(data2), nil
}
