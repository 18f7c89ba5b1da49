package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Serializer defines how an item is laid out in its file.
type Serializer interface {
	// Ext is the file extension, dot included.
	Ext() string
	Parse(r io.Reader) (core.Metadata, error)
	Serialize(md core.Metadata) ([]byte, error)
}

// SerializerFor returns the serializer registered under a format name.
func SerializerFor(format string) (Serializer, error) {
	switch format {
	case "", "json":
		return JSONSerializer{}, nil
	case "yaml", "yml":
		return YAMLSerializer{}, nil
	case "cbor":
		return newCBORSerializer()
	default:
		return nil, fmt.Errorf("unknown serializer %q", format)
	}
}

// --- JSON Serializer ---

// JSONSerializer writes indented JSON, the same shape the items have in memory.
type JSONSerializer struct{}

func (JSONSerializer) Ext() string { return ".json" }

func (JSONSerializer) Parse(r io.Reader) (core.Metadata, error) {
	var md core.Metadata
	if err := json.NewDecoder(r).Decode(&md); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return md, nil
}

func (JSONSerializer) Serialize(md core.Metadata) ([]byte, error) {
	return json.MarshalIndent(md, "", "  ")
}

// --- YAML Serializer ---

// YAMLSerializer is meant for data directories that people edit by hand.
type YAMLSerializer struct{}

func (YAMLSerializer) Ext() string { return ".yaml" }

func (YAMLSerializer) Parse(r io.Reader) (core.Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var md core.Metadata
	if err := yaml.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return md, nil
}

func (YAMLSerializer) Serialize(md core.Metadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(md)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- CBOR Serializer ---

// CBORSerializer stores items in compact binary form.
type CBORSerializer struct {
	dec cbor.DecMode
}

func newCBORSerializer() (*CBORSerializer, error) {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("failed to build cbor decoder: %w", err)
	}
	return &CBORSerializer{dec: dm}, nil
}

func (*CBORSerializer) Ext() string { return ".cbor" }

func (s *CBORSerializer) Parse(r io.Reader) (core.Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var md map[string]any
	if err := s.dec.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("invalid cbor: %w", err)
	}
	return core.Metadata(md), nil
}

func (*CBORSerializer) Serialize(md core.Metadata) ([]byte, error) {
	return cbor.Marshal(map[string]any(md))
}
