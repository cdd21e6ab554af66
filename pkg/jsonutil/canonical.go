// Package jsonutil produces the canonical JSON that journal record hashes
// are computed over.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalMarshal encodes v with object keys sorted at every level and no
// whitespace. Values round-trip through json.Number so integers never pass
// through float64.
func CanonicalMarshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonical decode: %w", err)
	}
	// encoding/json writes map keys in sorted order.
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("canonical encode: %w", err)
	}
	return out, nil
}
