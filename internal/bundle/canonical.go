package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// MarshalCanonical renders v as canonical JSON: object keys lexicographically
// sorted at every nesting level, no insignificant whitespace. Two
// semantically identical documents always produce identical bytes, so the
// SHA-256 of the output is a stable content hash.
//
// The value is first marshaled with encoding/json (struct tags and omitempty
// apply), then re-serialized through a sorted-key traversal. Numbers are
// decoded as json.Number so their literals survive the round trip unchanged.
func MarshalCanonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch node := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("marshal object key: %w", err)
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			if err := writeCanonical(buf, node[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		buf.WriteByte('[')
		for i, elem := range node {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case json.Number:
		buf.WriteString(node.String())
		return nil

	default:
		// Strings, bools, null: encoding/json output is already canonical.
		scalar, err := json.Marshal(node)
		if err != nil {
			return fmt.Errorf("marshal scalar: %w", err)
		}
		buf.Write(scalar)
		return nil
	}
}
