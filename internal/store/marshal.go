package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/schema"
)

// marshalDoc converts a record to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so the stored document matches its hash.
func marshalDoc(r ir.Record) (string, error) {
	data, err := ir.MarshalCanonical(r)
	if err != nil {
		return "", fmt.Errorf("marshal doc: %w", err)
	}
	return string(data), nil
}

// unmarshalDoc parses a stored document and restores the schema's kinds
// (dates, floats stored as integral numbers).
// Uses ir.Record.UnmarshalJSON which handles large integers via json.Number
// to avoid float64 precision loss for values > 2^53.
func unmarshalDoc(data string, s *schema.Schema) (ir.Record, error) {
	var r ir.Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("unmarshal doc: %w", err)
	}
	if err := s.Convert(r); err != nil {
		return nil, fmt.Errorf("unmarshal doc: %w", err)
	}
	return r, nil
}
