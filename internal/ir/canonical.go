package ir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for golden traces and
// other byte-stable output. Content hashes use the same encoding without
// step 3.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No floats (returns error)
//
// Besides Values it accepts Item, Collection, Action and the plain Go shapes
// produced by decoders (string, int, int64, bool, nil, []any, map[string]any).
func MarshalCanonical(v any) ([]byte, error) {
	return canonicalEncoder{nfc: true}.marshal(v)
}

// marshalExact is MarshalCanonical without NFC normalization. Hashes use it
// so texts and ids that differ only in Unicode form hash differently.
func marshalExact(v any) ([]byte, error) {
	return canonicalEncoder{}.marshal(v)
}

type canonicalEncoder struct {
	nfc bool
}

func (e canonicalEncoder) marshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return e.marshalString(string(val))
	case string:
		return e.marshalString(val)
	case ItemID:
		return e.marshalString(string(val))
	case ActionType:
		return e.marshalString(string(val))
	case Int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case Bool:
		return marshalCanonicalBool(bool(val)), nil
	case bool:
		return marshalCanonicalBool(val), nil
	case Array:
		return e.marshalArray(len(val), func(i int) any { return val[i] })
	case []any:
		return e.marshalArray(len(val), func(i int) any { return val[i] })
	case Object:
		return e.marshalObject(val.SortedKeys(), func(k string) any { return val[k] })
	case map[string]any:
		return e.marshalObject(sortedAnyKeys(val), func(k string) any { return val[k] })
	case Item:
		return e.marshal(map[string]any{"id": val.ID, "text": val.Text})
	case Collection:
		return e.marshalArray(len(val), func(i int) any { return val[i] })
	case Action:
		return e.marshal(map[string]any{"type": val.Type, "value": val.Value})
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalCanonicalBool(b bool) []byte {
	if b {
		return []byte("true")
	}
	return []byte("false")
}

func sortedAnyKeys(m map[string]any) []string {
	obj := make(Object, len(m))
	for k := range m {
		obj[k] = Null{}
	}
	return obj.SortedKeys()
}

// marshalString produces a canonical JSON string, NFC normalized when e.nfc.
// RFC 8785: only control characters, backslash and quote are escaped;
// < > & and U+2028/U+2029 are written literally.
func (e canonicalEncoder) marshalString(s string) ([]byte, error) {
	normalized := s
	if e.nfc {
		normalized = norm.NFC.String(s)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline
	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})

	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators turns \u2028 and \u2029 escapes back into literal
// characters, leaving \\u2028 (escaped backslash followed by text) alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && data[i+1] == 'u' && data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// Any other escape: copy the backslash and the escaped byte together
		// so an escaped backslash is never mistaken for an escape start.
		out = append(out, data[i])
		if i+1 < len(data) {
			out = append(out, data[i+1])
			i++
		}
	}
	return out
}

func (e canonicalEncoder) marshalArray(n int, at func(int) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := e.marshal(at(i))
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (e canonicalEncoder) marshalObject(keys []string, at func(string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := e.marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := e.marshal(at(k))
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
