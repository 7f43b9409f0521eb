package resources

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the untyped structured value exchanged with the orchestrator.
// Only the edges of the Manager see documents; everything inside is typed.
type Document map[string]any

func decodeInputs[T any](t ResourceType, doc Document) (*T, error) {
	return decodeDocument[T](t, inputsDocument, doc)
}

func decodeOutputs[T any](t ResourceType, doc Document) (*T, error) {
	return decodeDocument[T](t, outputsDocument, doc)
}

func decodeDocument[T any](t ResourceType, kind documentKind, doc Document) (*T, error) {
	var v T
	if err := checkRequired(reflect.TypeOf(v), doc); err != nil {
		return nil, &DocumentError{Type: t, Kind: string(kind), Err: err}
	}

	raw, err := yaml.Marshal(normalizeValue(map[string]any(doc)))
	if err != nil {
		return nil, &DocumentError{Type: t, Kind: string(kind), Err: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return nil, &DocumentError{Type: t, Kind: string(kind), Err: err}
	}
	return &v, nil
}

// encodeOutputs converts a typed outputs record into a Document.
func encodeOutputs(t ResourceType, v any) (Document, error) {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s outputs: %w", t, err)
	}
	doc := Document{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to serialize %s outputs: %w", t, err)
	}
	return doc, nil
}

// checkRequired rejects documents missing a key for a non-pointer field.
// Fields tagged omitempty are optional and default to their zero value.
func checkRequired(rt reflect.Type, doc Document) error {
	var missing []string
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if field.Type.Kind() == reflect.Ptr || strings.Contains(opts, "omitempty") {
			continue
		}
		if val, ok := doc[name]; !ok || val == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// normalizeValue converts decoder artifacts into values yaml.v3 marshals
// losslessly: map[any]any keys become strings and integral floats become
// integers so that ids survive a JSON round trip.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[fmt.Sprintf("%v", k)] = normalizeValue(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[k] = normalizeValue(v)
		}
		return m
	case Document:
		return normalizeValue(map[string]any(val))
	case []any:
		s := make([]any, len(val))
		for i, v := range val {
			s[i] = normalizeValue(v)
		}
		return s
	case float64:
		if val == math.Trunc(val) && val >= 0 && val < math.MaxUint64 {
			return uint64(val)
		}
		if val == math.Trunc(val) && val < 0 && val >= math.MinInt64 {
			return int64(val)
		}
		return val
	default:
		return val
	}
}
